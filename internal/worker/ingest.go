package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/datecast/datecast/internal/kma"
	"github.com/datecast/datecast/internal/weather"
)

// ForecastProvider is the slice of the KMA client the orchestrator needs.
type ForecastProvider interface {
	GetShortTermForecast(ctx context.Context, baseDate, baseTime string, nx, ny int) ([]kma.ShortTermItem, error)
	GetMediumTermTemperature(ctx context.Context, regCode string) ([]kma.MediumTermTempItem, error)
	GetMediumTermLand(ctx context.Context, regCode string) ([]kma.MediumTermLandItem, error)
}

// Orchestrator runs forecast ingestion cycles: it fans fetches out across
// regions, stores the normalized raw observations and rebuilds the daily
// recommendations they feed.
type Orchestrator struct {
	config   IngestConfig
	provider ForecastProvider
	repos    weather.Repositories
	builder  *weather.Builder
	logger   zerolog.Logger
	clock    clockwork.Clock

	metrics *IngestMetrics
}

// IngestMetrics tracks ingestion statistics.
type IngestMetrics struct {
	mu sync.RWMutex

	TotalCycles        int64
	SuccessfulRegions  int64
	FailedRegions      int64
	ShortTermStored    int64
	MediumTermStored   int64
	ObservationsSwept  int64
	LastCycleAt        time.Time
	LastCycleDuration  time.Duration
	TotalCycleDuration time.Duration
}

// OrchestratorConfig holds configuration for creating an Orchestrator.
type OrchestratorConfig struct {
	Config   IngestConfig
	Provider ForecastProvider
	Repos    weather.Repositories
	Builder  *weather.Builder
	Logger   zerolog.Logger
	Clock    clockwork.Clock
}

// NewOrchestrator creates a new ingestion orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	config := cfg.Config
	if config.Concurrency == 0 {
		config.Concurrency = 3
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetentionDays == 0 {
		config.RetentionDays = 7
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Orchestrator{
		config:   config,
		provider: cfg.Provider,
		repos:    cfg.Repos,
		builder:  cfg.Builder,
		logger:   cfg.Logger,
		clock:    clock,
		metrics:  &IngestMetrics{},
	}
}

// CycleResult contains the outcome of one ingestion cycle.
type CycleResult struct {
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	TotalRegions int
	Successful   int
	Failed       int
	Observations int
	Errors       []CycleError
}

// CycleError records one region's failure; the rest of the cycle proceeds.
type CycleError struct {
	Region string
	Error  string
}

type regionResult struct {
	region       weather.Region
	success      bool
	observations int
	errors       []CycleError
}

// RunShortTermCycle fetches the short-range feed for every region at the
// most recent issue slot, stores one observation per forecast date and
// rebuilds the recommendations for the near horizon.
func (o *Orchestrator) RunShortTermCycle(ctx context.Context) *CycleResult {
	baseDate, baseTime := BaseIssueTime(o.clock.Now())

	return o.runCycle(ctx, "short_term", func(ctx context.Context, region weather.Region) (int, error) {
		return o.ingestShortTerm(ctx, region, baseDate, baseTime)
	})
}

// RunMediumTermCycle fetches the medium-range temperature and land feeds
// for every region, pairs their lines and stores one observation per target
// date, then rebuilds the recommendations for the far horizon.
func (o *Orchestrator) RunMediumTermCycle(ctx context.Context) *CycleResult {
	return o.runCycle(ctx, "medium_term", o.ingestMediumTerm)
}

func (o *Orchestrator) runCycle(ctx context.Context, name string, ingest func(context.Context, weather.Region) (int, error)) *CycleResult {
	startTime := o.clock.Now()
	regions := o.config.regions()
	result := &CycleResult{
		StartTime:    startTime,
		TotalRegions: len(regions),
	}

	o.logger.Info().
		Str("cycle", name).
		Int("regions", len(regions)).
		Int("concurrency", o.config.Concurrency).
		Msg("starting ingestion cycle")

	regionsChan := make(chan weather.Region, len(regions))
	resultsChan := make(chan regionResult, len(regions))

	var wg sync.WaitGroup
	for i := 0; i < o.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.ingestWorker(ctx, ingest, regionsChan, resultsChan)
		}()
	}

	for _, r := range regions {
		regionsChan <- r
	}
	close(regionsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for rr := range resultsChan {
		if rr.success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Observations += rr.observations
		result.Errors = append(result.Errors, rr.errors...)
	}

	result.EndTime = o.clock.Now()
	result.Duration = result.EndTime.Sub(startTime)

	o.updateMetrics(result)

	o.logger.Info().
		Str("cycle", name).
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("observations", result.Observations).
		Msg("ingestion cycle completed")

	return result
}

func (o *Orchestrator) ingestWorker(ctx context.Context, ingest func(context.Context, weather.Region) (int, error), regions <-chan weather.Region, results chan<- regionResult) {
	for region := range regions {
		select {
		case <-ctx.Done():
			return
		default:
			results <- o.ingestRegion(ctx, ingest, region)
		}
	}
}

func (o *Orchestrator) ingestRegion(ctx context.Context, ingest func(context.Context, weather.Region) (int, error), region weather.Region) regionResult {
	regionCtx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	stored, err := ingest(regionCtx, region)
	if err != nil {
		return regionResult{
			region:  region,
			success: false,
			errors:  []CycleError{{Region: region.Name, Error: err.Error()}},
		}
	}

	return regionResult{region: region, success: true, observations: stored}
}

func (o *Orchestrator) ingestShortTerm(ctx context.Context, region weather.Region, baseDate, baseTime string) (int, error) {
	items, err := o.provider.GetShortTermForecast(ctx, baseDate, baseTime, region.GridX, region.GridY)
	if err != nil {
		return 0, err
	}

	now := o.clock.Now()
	stored := 0

	dates, grouped := kma.GroupShortTermByDate(items)
	for _, date := range dates {
		obs, ok := kma.BuildShortTermObservation(region.ID, grouped[date])
		if !ok {
			continue
		}

		if err := o.repos.ShortTerm.Upsert(ctx, obs); err != nil {
			return stored, err
		}
		stored++
		atomic.AddInt64(&o.metrics.ShortTermStored, 1)

		// Every parsed date is kept as raw data; only the near horizon
		// feeds recommendations. Retention bounds raw storage.
		offset := dayOffset(now, obs.ForecastDate)
		if offset < 0 || offset >= shortTermHorizonDays {
			continue
		}

		if err := o.builder.Rebuild(ctx, &region, obs.ForecastDate, weather.SourceShortTerm); err != nil {
			return stored, err
		}
	}

	return stored, nil
}

func (o *Orchestrator) ingestMediumTerm(ctx context.Context, region weather.Region) (int, error) {
	// The temperature and land feeds are independent; fetch them in
	// parallel and join before pairing.
	type landFetch struct {
		items []kma.MediumTermLandItem
		err   error
	}
	landChan := make(chan landFetch, 1)
	go func() {
		items, err := o.provider.GetMediumTermLand(ctx, region.RegCode)
		landChan <- landFetch{items: items, err: err}
	}()

	tempItems, err := o.provider.GetMediumTermTemperature(ctx, region.RegCode)
	land := <-landChan
	if err != nil {
		return 0, err
	}
	if land.err != nil {
		return 0, land.err
	}
	landItems := land.items

	// The two feeds are paired line-by-line; a length mismatch drops the
	// unmatched tail.
	pairs := len(tempItems)
	if len(landItems) < pairs {
		pairs = len(landItems)
	}

	now := o.clock.Now()
	stored := 0

	for i := 0; i < pairs; i++ {
		obs, err := kma.BuildMediumTermObservation(region.ID, tempItems[i], landItems[i])
		if err != nil {
			o.logger.Warn().Err(err).
				Str("region", region.Name).
				Msg("skipping unparseable medium-term pair")
			continue
		}

		if err := o.repos.MediumTerm.Upsert(ctx, obs); err != nil {
			return stored, err
		}
		stored++
		atomic.AddInt64(&o.metrics.MediumTermStored, 1)

		// Raw pairs are kept for every target date; recommendations only
		// cover the far-horizon window the short-range feed does not.
		offset := dayOffset(now, obs.TargetDate)
		if offset < mediumTermFirstOffset || offset > mediumTermLastOffset {
			continue
		}

		if err := o.builder.Rebuild(ctx, &region, obs.TargetDate, weather.SourceMediumTerm); err != nil {
			return stored, err
		}
	}

	return stored, nil
}

// RunRetentionSweep deletes raw observations older than the retention
// window. The cutoff is midnight of (today - retention days); rows dated
// exactly at the cutoff survive.
func (o *Orchestrator) RunRetentionSweep(ctx context.Context) error {
	now := o.clock.Now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -o.config.RetentionDays)

	shortDeleted, err := o.repos.ShortTerm.DeleteOlderThan(ctx, cutoff)
	if err != nil && !errors.Is(err, context.Canceled) {
		o.logger.Error().Err(err).Msg("short-term retention sweep failed")
		return err
	}

	mediumDeleted, err := o.repos.MediumTerm.DeleteOlderThan(ctx, cutoff)
	if err != nil && !errors.Is(err, context.Canceled) {
		o.logger.Error().Err(err).Msg("medium-term retention sweep failed")
		return err
	}

	atomic.AddInt64(&o.metrics.ObservationsSwept, shortDeleted+mediumDeleted)

	o.logger.Info().
		Time("cutoff", cutoff).
		Int64("short_term_deleted", shortDeleted).
		Int64("medium_term_deleted", mediumDeleted).
		Msg("retention sweep completed")

	return nil
}

func (o *Orchestrator) updateMetrics(result *CycleResult) {
	o.metrics.mu.Lock()
	defer o.metrics.mu.Unlock()

	o.metrics.TotalCycles++
	o.metrics.SuccessfulRegions += int64(result.Successful)
	o.metrics.FailedRegions += int64(result.Failed)
	o.metrics.LastCycleAt = result.EndTime
	o.metrics.LastCycleDuration = result.Duration
	o.metrics.TotalCycleDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (o *Orchestrator) GetMetrics() IngestMetrics {
	o.metrics.mu.RLock()
	defer o.metrics.mu.RUnlock()

	return IngestMetrics{
		TotalCycles:        o.metrics.TotalCycles,
		SuccessfulRegions:  o.metrics.SuccessfulRegions,
		FailedRegions:      o.metrics.FailedRegions,
		ShortTermStored:    atomic.LoadInt64(&o.metrics.ShortTermStored),
		MediumTermStored:   atomic.LoadInt64(&o.metrics.MediumTermStored),
		ObservationsSwept:  atomic.LoadInt64(&o.metrics.ObservationsSwept),
		LastCycleAt:        o.metrics.LastCycleAt,
		LastCycleDuration:  o.metrics.LastCycleDuration,
		TotalCycleDuration: o.metrics.TotalCycleDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (o *Orchestrator) MetricsSnapshot() map[string]interface{} {
	m := o.GetMetrics()
	return map[string]interface{}{
		"total_cycles":         m.TotalCycles,
		"successful_regions":   m.SuccessfulRegions,
		"failed_regions":       m.FailedRegions,
		"short_term_stored":    m.ShortTermStored,
		"medium_term_stored":   m.MediumTermStored,
		"observations_swept":   m.ObservationsSwept,
		"last_cycle_at":        m.LastCycleAt,
		"last_cycle_duration":  m.LastCycleDuration.String(),
		"total_cycle_duration": m.TotalCycleDuration.String(),
	}
}
