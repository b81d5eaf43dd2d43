package weather

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Coordinate bounds accepted by coordinate lookups (roughly South Korea).
const (
	minLat = 33.0
	maxLat = 43.0
	minLon = 124.0
	maxLon = 132.0
)

// QueryService serves stored recommendations to the read API.
type QueryService struct {
	repos  Repositories
	logger zerolog.Logger
	clock  clockwork.Clock
}

// NewQueryService creates a query service. A nil clock uses real time.
func NewQueryService(repos Repositories, logger zerolog.Logger, clock clockwork.Clock) *QueryService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &QueryService{repos: repos, logger: logger, clock: clock}
}

// GetDailyRecommendation returns the recommendation for one region and one
// forecast date given as "2006-01-02". The date is validated before any
// storage access.
func (s *QueryService) GetDailyRecommendation(ctx context.Context, regionID int64, dateStr string) (*Recommendation, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, dateStr)
	}

	if _, err := s.repos.Regions.Get(ctx, regionID); err != nil {
		return nil, err
	}

	return s.repos.Recommendations.FindByRegionAndDate(ctx, regionID, date)
}

// GetWeeklyRecommendations returns the recommendations for a region from
// today through today+6, ordered by date.
func (s *QueryService) GetWeeklyRecommendations(ctx context.Context, regionID int64) (string, []*Recommendation, error) {
	region, err := s.repos.Regions.Get(ctx, regionID)
	if err != nil {
		return "", nil, err
	}

	today := midnight(s.clock.Now())
	recs, err := s.repos.Recommendations.FindByRegionAndRange(ctx, regionID, today, today.AddDate(0, 0, 6))
	if err != nil {
		return "", nil, err
	}
	if len(recs) == 0 {
		return "", nil, ErrRecommendationNotFound
	}

	return region.Name, recs, nil
}

// GetByCoordinate returns today's recommendation for the region nearest to
// the given coordinate. Coordinates outside the service area fail validation
// before any storage access.
func (s *QueryService) GetByCoordinate(ctx context.Context, lat, lon float64) (*Recommendation, error) {
	if lat < minLat || lat > maxLat || lon < minLon || lon > maxLon {
		return nil, fmt.Errorf("%w: (%.4f, %.4f)", ErrInvalidCoordinates, lat, lon)
	}

	regions, err := s.repos.Regions.List(ctx)
	if err != nil {
		return nil, err
	}
	nearest := nearestRegion(regions, lat, lon)
	if nearest == nil {
		return nil, ErrRegionNotFound
	}

	return s.repos.Recommendations.FindByRegionAndDate(ctx, nearest.ID, midnight(s.clock.Now()))
}

// GetTodaySummary returns today's recommendations for all regions, ordered
// by region name.
func (s *QueryService) GetTodaySummary(ctx context.Context) ([]*Recommendation, error) {
	recs, err := s.repos.Recommendations.FindByDate(ctx, midnight(s.clock.Now()))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrRecommendationNotFound
	}
	return recs, nil
}

// nearestRegion picks the region with the smallest Euclidean distance in
// lat/lon space. Good enough at this scale; regions are far apart.
func nearestRegion(regions []*Region, lat, lon float64) *Region {
	var nearest *Region
	best := math.MaxFloat64

	for _, region := range regions {
		dLat := lat - region.Latitude
		dLon := lon - region.Longitude
		d := dLat*dLat + dLon*dLon
		if d < best {
			best = d
			nearest = region
		}
	}

	return nearest
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
