package weather

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRegionRepository is a PostgreSQL implementation of RegionRepository.
type PostgresRegionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRegionRepository creates a new PostgreSQL region repository.
func NewPostgresRegionRepository(pool *pgxpool.Pool) *PostgresRegionRepository {
	return &PostgresRegionRepository{pool: pool}
}

// Get retrieves a region by ID.
func (r *PostgresRegionRepository) Get(ctx context.Context, id int64) (*Region, error) {
	query := `
		SELECT id, name, latitude, longitude, grid_x, grid_y, reg_code
		FROM regions
		WHERE id = $1
	`

	var region Region
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&region.ID,
		&region.Name,
		&region.Latitude,
		&region.Longitude,
		&region.GridX,
		&region.GridY,
		&region.RegCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRegionNotFound
		}
		return nil, err
	}

	return &region, nil
}

// List retrieves all regions ordered by name.
func (r *PostgresRegionRepository) List(ctx context.Context) ([]*Region, error) {
	query := `
		SELECT id, name, latitude, longitude, grid_x, grid_y, reg_code
		FROM regions
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regions []*Region
	for rows.Next() {
		var region Region
		err := rows.Scan(
			&region.ID,
			&region.Name,
			&region.Latitude,
			&region.Longitude,
			&region.GridX,
			&region.GridY,
			&region.RegCode,
		)
		if err != nil {
			return nil, err
		}
		regions = append(regions, &region)
	}

	return regions, rows.Err()
}

// PostgresShortTermRepository is a PostgreSQL implementation of
// ShortTermRepository.
type PostgresShortTermRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresShortTermRepository creates a new PostgreSQL short-term
// observation repository.
func NewPostgresShortTermRepository(pool *pgxpool.Pool) *PostgresShortTermRepository {
	return &PostgresShortTermRepository{pool: pool}
}

// Upsert inserts or replaces the observation for its natural key.
func (r *PostgresShortTermRepository) Upsert(ctx context.Context, obs *RawShortTermObservation) error {
	query := `
		INSERT INTO raw_short_term_observations (
			region_id, base_date, base_time, forecast_date, forecast_time,
			temperature, sky, precip_prob, precip_type, precip_amount
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (region_id, forecast_date, forecast_time) DO UPDATE SET
			base_date = EXCLUDED.base_date,
			base_time = EXCLUDED.base_time,
			temperature = EXCLUDED.temperature,
			sky = EXCLUDED.sky,
			precip_prob = EXCLUDED.precip_prob,
			precip_type = EXCLUDED.precip_type,
			precip_amount = EXCLUDED.precip_amount
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		obs.RegionID,
		obs.BaseDate,
		obs.BaseTime,
		obs.ForecastDate,
		obs.ForecastTime,
		obs.Temperature,
		obs.Sky,
		obs.PrecipProb,
		obs.PrecipType,
		obs.PrecipAmount,
	).Scan(&obs.ID)
}

// FindByRegionAndDate returns the stored observation for a forecast date,
// preferring the 12:00 reading when several times exist for the date.
func (r *PostgresShortTermRepository) FindByRegionAndDate(ctx context.Context, regionID int64, date time.Time) (*RawShortTermObservation, error) {
	query := `
		SELECT id, region_id, base_date, base_time, forecast_date, forecast_time,
			temperature, sky, precip_prob, precip_type, precip_amount
		FROM raw_short_term_observations
		WHERE region_id = $1 AND forecast_date = $2
		ORDER BY (forecast_time = '1200') DESC, forecast_time
		LIMIT 1
	`

	var obs RawShortTermObservation
	err := r.pool.QueryRow(ctx, query, regionID, date).Scan(
		&obs.ID,
		&obs.RegionID,
		&obs.BaseDate,
		&obs.BaseTime,
		&obs.ForecastDate,
		&obs.ForecastTime,
		&obs.Temperature,
		&obs.Sky,
		&obs.PrecipProb,
		&obs.PrecipType,
		&obs.PrecipAmount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrObservationNotFound
		}
		return nil, err
	}

	return &obs, nil
}

// DeleteOlderThan removes observations issued strictly before cutoff.
func (r *PostgresShortTermRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM raw_short_term_observations WHERE base_date < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PostgresMediumTermRepository is a PostgreSQL implementation of
// MediumTermRepository.
type PostgresMediumTermRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresMediumTermRepository creates a new PostgreSQL medium-term
// observation repository.
func NewPostgresMediumTermRepository(pool *pgxpool.Pool) *PostgresMediumTermRepository {
	return &PostgresMediumTermRepository{pool: pool}
}

// Upsert inserts or replaces the observation for its natural key.
func (r *PostgresMediumTermRepository) Upsert(ctx context.Context, obs *RawMediumTermObservation) error {
	query := `
		INSERT INTO raw_medium_term_observations (
			region_id, issue_date, target_date, sky, min_temp, max_temp
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (region_id, target_date) DO UPDATE SET
			issue_date = EXCLUDED.issue_date,
			sky = EXCLUDED.sky,
			min_temp = EXCLUDED.min_temp,
			max_temp = EXCLUDED.max_temp
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		obs.RegionID,
		obs.IssueDate,
		obs.TargetDate,
		obs.Sky,
		obs.MinTemp,
		obs.MaxTemp,
	).Scan(&obs.ID)
}

// FindByRegionAndDate returns the stored observation for a target date.
func (r *PostgresMediumTermRepository) FindByRegionAndDate(ctx context.Context, regionID int64, date time.Time) (*RawMediumTermObservation, error) {
	query := `
		SELECT id, region_id, issue_date, target_date, sky, min_temp, max_temp
		FROM raw_medium_term_observations
		WHERE region_id = $1 AND target_date = $2
	`

	var obs RawMediumTermObservation
	err := r.pool.QueryRow(ctx, query, regionID, date).Scan(
		&obs.ID,
		&obs.RegionID,
		&obs.IssueDate,
		&obs.TargetDate,
		&obs.Sky,
		&obs.MinTemp,
		&obs.MaxTemp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrObservationNotFound
		}
		return nil, err
	}

	return &obs, nil
}

// DeleteOlderThan removes observations issued strictly before cutoff.
func (r *PostgresMediumTermRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM raw_medium_term_observations WHERE issue_date < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PostgresTemplateRepository is a PostgreSQL implementation of
// TemplateRepository.
type PostgresTemplateRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTemplateRepository creates a new PostgreSQL template repository.
func NewPostgresTemplateRepository(pool *pgxpool.Pool) *PostgresTemplateRepository {
	return &PostgresTemplateRepository{pool: pool}
}

// FindByTriple retrieves the template for a category triple.
func (r *PostgresTemplateRepository) FindByTriple(ctx context.Context, triple CategoryTriple) (*WeatherTemplate, error) {
	query := `
		SELECT id, weather, temp_category, precip_category, message, emoji, keywords
		FROM weather_templates
		WHERE weather = $1 AND temp_category = $2 AND precip_category = $3
	`

	var tpl WeatherTemplate
	err := r.pool.QueryRow(ctx, query, triple.Weather, triple.Temp, triple.Precip).Scan(
		&tpl.ID,
		&tpl.Weather,
		&tpl.Temp,
		&tpl.Precip,
		&tpl.Message,
		&tpl.Emoji,
		&tpl.Keywords,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	return &tpl, nil
}

// FindOrCreate persists tpl unless its triple already exists and returns the
// stored row. The unique constraint on the category triple plus the no-op
// conflict update makes concurrent resolution of the same triple return the
// same row instead of creating duplicates.
func (r *PostgresTemplateRepository) FindOrCreate(ctx context.Context, tpl *WeatherTemplate) (*WeatherTemplate, error) {
	query := `
		INSERT INTO weather_templates (
			weather, temp_category, precip_category, message, emoji, keywords
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (weather, temp_category, precip_category) DO UPDATE SET
			weather = EXCLUDED.weather
		RETURNING id, weather, temp_category, precip_category, message, emoji, keywords
	`

	var stored WeatherTemplate
	err := r.pool.QueryRow(ctx, query,
		tpl.Weather,
		tpl.Temp,
		tpl.Precip,
		tpl.Message,
		tpl.Emoji,
		tpl.Keywords,
	).Scan(
		&stored.ID,
		&stored.Weather,
		&stored.Temp,
		&stored.Precip,
		&stored.Message,
		&stored.Emoji,
		&stored.Keywords,
	)
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

// PostgresRecommendationRepository is a PostgreSQL implementation of
// RecommendationRepository.
type PostgresRecommendationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRecommendationRepository creates a new PostgreSQL
// recommendation repository.
func NewPostgresRecommendationRepository(pool *pgxpool.Pool) *PostgresRecommendationRepository {
	return &PostgresRecommendationRepository{pool: pool}
}

// Upsert inserts or replaces the recommendation for its natural key.
func (r *PostgresRecommendationRepository) Upsert(ctx context.Context, rec *DailyRecommendation) error {
	query := `
		INSERT INTO daily_recommendations (region_id, template_id, forecast_date, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (region_id, forecast_date) DO UPDATE SET
			template_id = EXCLUDED.template_id,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		rec.RegionID,
		rec.TemplateID,
		rec.ForecastDate,
		rec.UpdatedAt,
	).Scan(&rec.ID)
}

const recommendationProjection = `
	SELECT d.id, rg.name, d.forecast_date, t.message, t.emoji, t.keywords, d.updated_at
	FROM daily_recommendations d
	JOIN regions rg ON rg.id = d.region_id
	JOIN weather_templates t ON t.id = d.template_id
`

// FindByRegionAndDate returns the projection for one region and date.
func (r *PostgresRecommendationRepository) FindByRegionAndDate(ctx context.Context, regionID int64, date time.Time) (*Recommendation, error) {
	query := recommendationProjection + `
		WHERE d.region_id = $1 AND d.forecast_date = $2
	`

	var rec Recommendation
	err := r.pool.QueryRow(ctx, query, regionID, date).Scan(
		&rec.ID,
		&rec.RegionName,
		&rec.ForecastDate,
		&rec.Message,
		&rec.Emoji,
		&rec.Keywords,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecommendationNotFound
		}
		return nil, err
	}

	return &rec, nil
}

// FindByRegionAndRange returns projections within [from, to] ordered by date.
func (r *PostgresRecommendationRepository) FindByRegionAndRange(ctx context.Context, regionID int64, from, to time.Time) ([]*Recommendation, error) {
	query := recommendationProjection + `
		WHERE d.region_id = $1 AND d.forecast_date BETWEEN $2 AND $3
		ORDER BY d.forecast_date
	`
	return r.scanRecommendations(ctx, query, regionID, from, to)
}

// FindByDate returns projections for all regions on one date, ordered by
// region name.
func (r *PostgresRecommendationRepository) FindByDate(ctx context.Context, date time.Time) ([]*Recommendation, error) {
	query := recommendationProjection + `
		WHERE d.forecast_date = $1
		ORDER BY rg.name
	`
	return r.scanRecommendations(ctx, query, date)
}

func (r *PostgresRecommendationRepository) scanRecommendations(ctx context.Context, query string, args ...interface{}) ([]*Recommendation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Recommendation
	for rows.Next() {
		var rec Recommendation
		err := rows.Scan(
			&rec.ID,
			&rec.RegionName,
			&rec.ForecastDate,
			&rec.Message,
			&rec.Emoji,
			&rec.Keywords,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}

	return recs, rows.Err()
}

// NewPostgresRepositories wires a full PostgreSQL repository bundle on one
// connection pool.
func NewPostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Regions:         NewPostgresRegionRepository(pool),
		ShortTerm:       NewPostgresShortTermRepository(pool),
		MediumTerm:      NewPostgresMediumTermRepository(pool),
		Templates:       NewPostgresTemplateRepository(pool),
		Recommendations: NewPostgresRecommendationRepository(pool),
	}
}
