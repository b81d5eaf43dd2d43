package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Source selects which raw feed is authoritative for a forecast horizon.
type Source string

const (
	// SourceShortTerm covers day offsets 0-2.
	SourceShortTerm Source = "short-term"
	// SourceMediumTerm covers day offsets 3-6.
	SourceMediumTerm Source = "medium-term"
)

// Builder materializes one DailyRecommendation per (region, forecast date)
// from whichever raw observation source is authoritative for the horizon.
type Builder struct {
	repos  Repositories
	logger zerolog.Logger
	clock  clockwork.Clock
}

// NewBuilder creates a recommendation builder. A nil clock uses real time.
func NewBuilder(repos Repositories, logger zerolog.Logger, clock clockwork.Clock) *Builder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Builder{repos: repos, logger: logger, clock: clock}
}

// Rebuild recomputes the recommendation for one region and target date.
// Missing raw data is not an error: the existing recommendation (if any) is
// left untouched and the next cycle retries. The upsert is last-write-wins:
// an existing row's template and timestamp are always overwritten.
func (b *Builder) Rebuild(ctx context.Context, region *Region, targetDate time.Time, source Source) error {
	temp, precip, sky, err := b.representativeValues(ctx, region.ID, targetDate, source)
	if err != nil {
		if errors.Is(err, ErrObservationNotFound) {
			b.logger.Debug().
				Str("region", region.Name).
				Str("source", string(source)).
				Time("target_date", targetDate).
				Msg("no raw data for date, skipping recommendation rebuild")
			return nil
		}
		return fmt.Errorf("loading raw observation: %w", err)
	}

	triple := Classify(temp, precip, sky)
	tpl, err := b.repos.Templates.FindOrCreate(ctx, NewTemplate(triple))
	if err != nil {
		return fmt.Errorf("resolving template: %w", err)
	}

	rec := &DailyRecommendation{
		RegionID:     region.ID,
		TemplateID:   tpl.ID,
		ForecastDate: targetDate,
		UpdatedAt:    b.clock.Now(),
	}
	if err := b.repos.Recommendations.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upserting recommendation: %w", err)
	}

	b.logger.Info().
		Str("region", region.Name).
		Time("target_date", targetDate).
		Str("weather", string(triple.Weather)).
		Str("temp", string(triple.Temp)).
		Str("precip", string(triple.Precip)).
		Msg("daily recommendation updated")
	return nil
}

// representativeValues loads the classification inputs for a date from the
// authoritative raw source. Medium-range readings carry no precipitation
// amount and represent temperature as the min/max midpoint.
func (b *Builder) representativeValues(ctx context.Context, regionID int64, date time.Time, source Source) (temp, precip float64, sky string, err error) {
	switch source {
	case SourceMediumTerm:
		obs, ferr := b.repos.MediumTerm.FindByRegionAndDate(ctx, regionID, date)
		if ferr != nil {
			return 0, 0, "", ferr
		}
		return (obs.MinTemp + obs.MaxTemp) / 2, 0, obs.Sky, nil
	default:
		obs, ferr := b.repos.ShortTerm.FindByRegionAndDate(ctx, regionID, date)
		if ferr != nil {
			return 0, 0, "", ferr
		}
		return obs.Temperature, obs.PrecipAmount, obs.Sky, nil
	}
}
