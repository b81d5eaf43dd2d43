package weather

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// In-memory repository implementations for tests and local development.
// The recommendation repository joins against the region and template
// repositories to build projections, mirroring the SQL joins in Postgres.

func dayKey(regionID int64, date time.Time) string {
	return fmt.Sprintf("%d/%s", regionID, date.Format("2006-01-02"))
}

// InMemoryRegionRepository is an in-memory RegionRepository.
type InMemoryRegionRepository struct {
	mu      sync.RWMutex
	regions map[int64]*Region
	nextID  int64
}

// NewInMemoryRegionRepository creates an empty region repository.
func NewInMemoryRegionRepository() *InMemoryRegionRepository {
	return &InMemoryRegionRepository{regions: make(map[int64]*Region), nextID: 1}
}

// Seed adds a region, assigning an ID if unset.
func (r *InMemoryRegionRepository) Seed(region *Region) *Region {
	r.mu.Lock()
	defer r.mu.Unlock()
	if region.ID == 0 {
		region.ID = r.nextID
		r.nextID++
	}
	r.regions[region.ID] = region
	return region
}

// Get retrieves a region by ID.
func (r *InMemoryRegionRepository) Get(_ context.Context, id int64) (*Region, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	region, ok := r.regions[id]
	if !ok {
		return nil, ErrRegionNotFound
	}
	return region, nil
}

// List retrieves all regions ordered by name.
func (r *InMemoryRegionRepository) List(_ context.Context) ([]*Region, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	regions := make([]*Region, 0, len(r.regions))
	for _, region := range r.regions {
		regions = append(regions, region)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Name < regions[j].Name })
	return regions, nil
}

// InMemoryShortTermRepository is an in-memory ShortTermRepository.
type InMemoryShortTermRepository struct {
	mu     sync.RWMutex
	rows   map[string]*RawShortTermObservation // key: region/date/time
	nextID int64
}

// NewInMemoryShortTermRepository creates an empty short-term repository.
func NewInMemoryShortTermRepository() *InMemoryShortTermRepository {
	return &InMemoryShortTermRepository{rows: make(map[string]*RawShortTermObservation), nextID: 1}
}

// Upsert inserts or replaces the observation for its natural key.
func (r *InMemoryShortTermRepository) Upsert(_ context.Context, obs *RawShortTermObservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dayKey(obs.RegionID, obs.ForecastDate) + "/" + obs.ForecastTime
	if existing, ok := r.rows[key]; ok {
		obs.ID = existing.ID
	} else {
		obs.ID = r.nextID
		r.nextID++
	}
	cp := *obs
	r.rows[key] = &cp
	return nil
}

// FindByRegionAndDate returns the stored observation for a forecast date,
// preferring the 12:00 reading when several times exist for the date.
func (r *InMemoryShortTermRepository) FindByRegionAndDate(_ context.Context, regionID int64, date time.Time) (*RawShortTermObservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var candidates []*RawShortTermObservation
	for _, obs := range r.rows {
		if obs.RegionID == regionID && sameDay(obs.ForecastDate, date) {
			candidates = append(candidates, obs)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrObservationNotFound
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ForecastTime < candidates[j].ForecastTime })
	for _, obs := range candidates {
		if obs.ForecastTime == "1200" {
			return obs, nil
		}
	}
	return candidates[0], nil
}

// DeleteOlderThan removes observations issued strictly before cutoff.
func (r *InMemoryShortTermRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for key, obs := range r.rows {
		if obs.BaseDate.Before(cutoff) {
			delete(r.rows, key)
			removed++
		}
	}
	return removed, nil
}

// InMemoryMediumTermRepository is an in-memory MediumTermRepository.
type InMemoryMediumTermRepository struct {
	mu     sync.RWMutex
	rows   map[string]*RawMediumTermObservation // key: region/date
	nextID int64
}

// NewInMemoryMediumTermRepository creates an empty medium-term repository.
func NewInMemoryMediumTermRepository() *InMemoryMediumTermRepository {
	return &InMemoryMediumTermRepository{rows: make(map[string]*RawMediumTermObservation), nextID: 1}
}

// Upsert inserts or replaces the observation for its natural key.
func (r *InMemoryMediumTermRepository) Upsert(_ context.Context, obs *RawMediumTermObservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dayKey(obs.RegionID, obs.TargetDate)
	if existing, ok := r.rows[key]; ok {
		obs.ID = existing.ID
	} else {
		obs.ID = r.nextID
		r.nextID++
	}
	cp := *obs
	r.rows[key] = &cp
	return nil
}

// FindByRegionAndDate returns the stored observation for a target date.
func (r *InMemoryMediumTermRepository) FindByRegionAndDate(_ context.Context, regionID int64, date time.Time) (*RawMediumTermObservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obs, ok := r.rows[dayKey(regionID, date)]
	if !ok {
		return nil, ErrObservationNotFound
	}
	return obs, nil
}

// DeleteOlderThan removes observations issued strictly before cutoff.
func (r *InMemoryMediumTermRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for key, obs := range r.rows {
		if obs.IssueDate.Before(cutoff) {
			delete(r.rows, key)
			removed++
		}
	}
	return removed, nil
}

// InMemoryTemplateRepository is an in-memory TemplateRepository.
type InMemoryTemplateRepository struct {
	mu        sync.Mutex
	templates map[CategoryTriple]*WeatherTemplate
	nextID    int64
}

// NewInMemoryTemplateRepository creates an empty template repository.
func NewInMemoryTemplateRepository() *InMemoryTemplateRepository {
	return &InMemoryTemplateRepository{templates: make(map[CategoryTriple]*WeatherTemplate), nextID: 1}
}

// FindByTriple retrieves the template for a category triple.
func (r *InMemoryTemplateRepository) FindByTriple(_ context.Context, triple CategoryTriple) (*WeatherTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl, ok := r.templates[triple]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	return tpl, nil
}

// FindOrCreate returns the stored template for tpl's triple, creating it if
// absent. The mutex makes the check-then-insert atomic, so concurrent
// resolution of the same triple never yields duplicates.
func (r *InMemoryTemplateRepository) FindOrCreate(_ context.Context, tpl *WeatherTemplate) (*WeatherTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.templates[tpl.Triple()]; ok {
		return existing, nil
	}
	cp := *tpl
	cp.ID = r.nextID
	r.nextID++
	r.templates[cp.Triple()] = &cp
	return &cp, nil
}

// Count returns the number of stored templates.
func (r *InMemoryTemplateRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.templates)
}

// InMemoryRecommendationRepository is an in-memory RecommendationRepository.
// It joins regions and templates when building projections.
type InMemoryRecommendationRepository struct {
	mu        sync.RWMutex
	rows      map[string]*DailyRecommendation // key: region/date
	regions   *InMemoryRegionRepository
	templates *InMemoryTemplateRepository
	nextID    int64
}

// NewInMemoryRecommendationRepository creates an empty recommendation
// repository joined against the given region and template repositories.
func NewInMemoryRecommendationRepository(regions *InMemoryRegionRepository, templates *InMemoryTemplateRepository) *InMemoryRecommendationRepository {
	return &InMemoryRecommendationRepository{
		rows:      make(map[string]*DailyRecommendation),
		regions:   regions,
		templates: templates,
		nextID:    1,
	}
}

// Upsert inserts or replaces the recommendation for its natural key.
func (r *InMemoryRecommendationRepository) Upsert(_ context.Context, rec *DailyRecommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dayKey(rec.RegionID, rec.ForecastDate)
	if existing, ok := r.rows[key]; ok {
		rec.ID = existing.ID
	} else {
		rec.ID = r.nextID
		r.nextID++
	}
	cp := *rec
	r.rows[key] = &cp
	return nil
}

// FindByRegionAndDate returns the projection for one region and date.
func (r *InMemoryRecommendationRepository) FindByRegionAndDate(ctx context.Context, regionID int64, date time.Time) (*Recommendation, error) {
	r.mu.RLock()
	rec, ok := r.rows[dayKey(regionID, date)]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrRecommendationNotFound
	}
	return r.project(ctx, rec)
}

// FindByRegionAndRange returns projections within [from, to] ordered by date.
func (r *InMemoryRecommendationRepository) FindByRegionAndRange(ctx context.Context, regionID int64, from, to time.Time) ([]*Recommendation, error) {
	r.mu.RLock()
	var matched []*DailyRecommendation
	for _, rec := range r.rows {
		if rec.RegionID == regionID && !rec.ForecastDate.Before(from) && !rec.ForecastDate.After(to) {
			matched = append(matched, rec)
		}
	}
	r.mu.RUnlock()
	sort.Slice(matched, func(i, j int) bool { return matched[i].ForecastDate.Before(matched[j].ForecastDate) })
	return r.projectAll(ctx, matched)
}

// FindByDate returns projections for all regions on one date, ordered by
// region name.
func (r *InMemoryRecommendationRepository) FindByDate(ctx context.Context, date time.Time) ([]*Recommendation, error) {
	r.mu.RLock()
	var matched []*DailyRecommendation
	for _, rec := range r.rows {
		if sameDay(rec.ForecastDate, date) {
			matched = append(matched, rec)
		}
	}
	r.mu.RUnlock()
	out, err := r.projectAll(ctx, matched)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegionName < out[j].RegionName })
	return out, nil
}

func (r *InMemoryRecommendationRepository) project(ctx context.Context, rec *DailyRecommendation) (*Recommendation, error) {
	region, err := r.regions.Get(ctx, rec.RegionID)
	if err != nil {
		return nil, err
	}
	var tpl *WeatherTemplate
	r.templates.mu.Lock()
	for _, t := range r.templates.templates {
		if t.ID == rec.TemplateID {
			tpl = t
			break
		}
	}
	r.templates.mu.Unlock()
	if tpl == nil {
		return nil, ErrTemplateNotFound
	}
	return &Recommendation{
		ID:           rec.ID,
		RegionName:   region.Name,
		ForecastDate: rec.ForecastDate,
		Message:      tpl.Message,
		Emoji:        tpl.Emoji,
		Keywords:     tpl.Keywords,
		UpdatedAt:    rec.UpdatedAt,
	}, nil
}

func (r *InMemoryRecommendationRepository) projectAll(ctx context.Context, recs []*DailyRecommendation) ([]*Recommendation, error) {
	out := make([]*Recommendation, 0, len(recs))
	for _, rec := range recs {
		p, err := r.project(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// NewInMemoryRepositories wires a full in-memory repository bundle.
func NewInMemoryRepositories() (Repositories, *InMemoryRegionRepository) {
	regions := NewInMemoryRegionRepository()
	templates := NewInMemoryTemplateRepository()
	return Repositories{
		Regions:         regions,
		ShortTerm:       NewInMemoryShortTermRepository(),
		MediumTerm:      NewInMemoryMediumTermRepository(),
		Templates:       templates,
		Recommendations: NewInMemoryRecommendationRepository(regions, templates),
	}, regions
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
