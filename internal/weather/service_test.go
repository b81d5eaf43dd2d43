package weather_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datecast/datecast/internal/weather"
)

func newServiceFixture(t *testing.T) (*weather.QueryService, weather.Repositories, *weather.InMemoryRegionRepository) {
	t.Helper()

	repos, regions := weather.NewInMemoryRepositories()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC))
	svc := weather.NewQueryService(repos, zerolog.Nop(), clock)
	return svc, repos, regions
}

func seedRecommendation(t *testing.T, repos weather.Repositories, regionID int64, date time.Time) {
	t.Helper()

	tpl, err := repos.Templates.FindOrCreate(context.Background(), weather.NewTemplate(weather.CategoryTriple{
		Weather: weather.WeatherClear,
		Temp:    weather.TempMild,
		Precip:  weather.PrecipNone,
	}))
	require.NoError(t, err)

	require.NoError(t, repos.Recommendations.Upsert(context.Background(), &weather.DailyRecommendation{
		RegionID:     regionID,
		TemplateID:   tpl.ID,
		ForecastDate: date,
		UpdatedAt:    date,
	}))
}

func TestQueryService_GetDailyRecommendation(t *testing.T) {
	svc, repos, regions := newServiceFixture(t)
	seoul := regions.Seed(&weather.Region{Name: "Seoul", Latitude: 37.5665, Longitude: 126.978})
	seedRecommendation(t, repos, seoul.ID, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))

	rec, err := svc.GetDailyRecommendation(context.Background(), seoul.ID, "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, "Seoul", rec.RegionName)

	_, err = svc.GetDailyRecommendation(context.Background(), seoul.ID, "not-a-date")
	assert.ErrorIs(t, err, weather.ErrInvalidDate)

	_, err = svc.GetDailyRecommendation(context.Background(), 999, "2026-08-30")
	assert.ErrorIs(t, err, weather.ErrRegionNotFound)

	_, err = svc.GetDailyRecommendation(context.Background(), seoul.ID, "2026-12-25")
	assert.ErrorIs(t, err, weather.ErrRecommendationNotFound)
}

func TestQueryService_GetWeeklyRecommendations(t *testing.T) {
	svc, repos, regions := newServiceFixture(t)
	seoul := regions.Seed(&weather.Region{Name: "Seoul"})

	// Today, today+3 and today+6 are inside the window; today+7 is not.
	for _, offset := range []int{0, 3, 6, 7} {
		seedRecommendation(t, repos, seoul.ID, time.Date(2026, 8, 29+offset, 0, 0, 0, 0, time.UTC))
	}

	name, recs, err := svc.GetWeeklyRecommendations(context.Background(), seoul.ID)
	require.NoError(t, err)
	assert.Equal(t, "Seoul", name)
	require.Len(t, recs, 3)

	// Ordered by forecast date.
	for i := 1; i < len(recs); i++ {
		assert.True(t, recs[i-1].ForecastDate.Before(recs[i].ForecastDate))
	}
}

func TestQueryService_GetWeeklyRecommendations_Empty(t *testing.T) {
	svc, _, regions := newServiceFixture(t)
	seoul := regions.Seed(&weather.Region{Name: "Seoul"})

	_, _, err := svc.GetWeeklyRecommendations(context.Background(), seoul.ID)
	assert.ErrorIs(t, err, weather.ErrRecommendationNotFound)
}

func TestQueryService_GetByCoordinate(t *testing.T) {
	svc, repos, regions := newServiceFixture(t)
	seoul := regions.Seed(&weather.Region{Name: "Seoul", Latitude: 37.5665, Longitude: 126.978})
	regions.Seed(&weather.Region{Name: "Busan", Latitude: 35.1796, Longitude: 129.0756})

	today := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	seedRecommendation(t, repos, seoul.ID, today)

	// A point in Gangnam resolves to Seoul, not Busan.
	rec, err := svc.GetByCoordinate(context.Background(), 37.4979, 127.0276)
	require.NoError(t, err)
	assert.Equal(t, "Seoul", rec.RegionName)
}

func TestQueryService_GetByCoordinate_OutOfBounds(t *testing.T) {
	svc, _, _ := newServiceFixture(t)

	for _, c := range []struct{ lat, lon float64 }{
		{32.9, 127}, // south of the service area
		{43.1, 127},
		{37, 123.9},
		{37, 132.1},
	} {
		_, err := svc.GetByCoordinate(context.Background(), c.lat, c.lon)
		assert.ErrorIs(t, err, weather.ErrInvalidCoordinates, "(%.1f, %.1f)", c.lat, c.lon)
	}
}

func TestQueryService_GetTodaySummary(t *testing.T) {
	svc, repos, regions := newServiceFixture(t)
	seoul := regions.Seed(&weather.Region{Name: "Seoul"})
	busan := regions.Seed(&weather.Region{Name: "Busan"})

	today := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	seedRecommendation(t, repos, seoul.ID, today)
	seedRecommendation(t, repos, busan.ID, today)
	seedRecommendation(t, repos, seoul.ID, today.AddDate(0, 0, 1))

	recs, err := svc.GetTodaySummary(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Ordered by region name.
	assert.Equal(t, "Busan", recs[0].RegionName)
	assert.Equal(t, "Seoul", recs[1].RegionName)
}

func TestQueryService_GetTodaySummary_Empty(t *testing.T) {
	svc, _, _ := newServiceFixture(t)

	_, err := svc.GetTodaySummary(context.Background())
	assert.ErrorIs(t, err, weather.ErrRecommendationNotFound)
}
