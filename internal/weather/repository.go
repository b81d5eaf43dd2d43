package weather

import (
	"context"
	"time"
)

// RegionRepository provides read access to seeded region reference data.
type RegionRepository interface {
	// Get retrieves a region by ID. Returns ErrRegionNotFound if absent.
	Get(ctx context.Context, id int64) (*Region, error)

	// List retrieves all regions ordered by name.
	List(ctx context.Context) ([]*Region, error)
}

// ShortTermRepository persists normalized short-range observations.
type ShortTermRepository interface {
	// Upsert inserts or replaces the observation for its natural key
	// (region, forecast date, forecast time).
	Upsert(ctx context.Context, obs *RawShortTermObservation) error

	// FindByRegionAndDate retrieves the stored observation for a forecast
	// date. Returns ErrObservationNotFound if absent.
	FindByRegionAndDate(ctx context.Context, regionID int64, date time.Time) (*RawShortTermObservation, error)

	// DeleteOlderThan removes observations whose base-issue date is strictly
	// older than cutoff. Returns the number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// MediumTermRepository persists normalized medium-range observations.
type MediumTermRepository interface {
	// Upsert inserts or replaces the observation for its natural key
	// (region, target date).
	Upsert(ctx context.Context, obs *RawMediumTermObservation) error

	// FindByRegionAndDate retrieves the stored observation for a target
	// date. Returns ErrObservationNotFound if absent.
	FindByRegionAndDate(ctx context.Context, regionID int64, date time.Time) (*RawMediumTermObservation, error)

	// DeleteOlderThan removes observations whose issue date is strictly
	// older than cutoff. Returns the number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// TemplateRepository persists deduplicated weather templates.
type TemplateRepository interface {
	// FindByTriple retrieves the template for a category triple.
	// Returns ErrTemplateNotFound if absent.
	FindByTriple(ctx context.Context, triple CategoryTriple) (*WeatherTemplate, error)

	// FindOrCreate persists tpl unless a template with the same triple
	// already exists, and returns the stored row either way. Implementations
	// must be safe under concurrent creation of the same triple.
	FindOrCreate(ctx context.Context, tpl *WeatherTemplate) (*WeatherTemplate, error)
}

// RecommendationRepository persists materialized daily recommendations.
type RecommendationRepository interface {
	// Upsert inserts or replaces the recommendation for its natural key
	// (region, forecast date), always overwriting template and timestamp.
	Upsert(ctx context.Context, rec *DailyRecommendation) error

	// FindByRegionAndDate returns the projection for one region and date.
	// Returns ErrRecommendationNotFound if absent.
	FindByRegionAndDate(ctx context.Context, regionID int64, date time.Time) (*Recommendation, error)

	// FindByRegionAndRange returns projections for a region within
	// [from, to], ordered by forecast date.
	FindByRegionAndRange(ctx context.Context, regionID int64, from, to time.Time) ([]*Recommendation, error)

	// FindByDate returns projections for all regions on one date, ordered
	// by region name.
	FindByDate(ctx context.Context, date time.Time) ([]*Recommendation, error)
}

// Repositories bundles the domain repositories wired into the pipeline.
type Repositories struct {
	Regions         RegionRepository
	ShortTerm       ShortTermRepository
	MediumTerm      MediumTermRepository
	Templates       TemplateRepository
	Recommendations RecommendationRepository
}
