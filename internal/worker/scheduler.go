package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/datecast/datecast/internal/kma"
)

// Fixed daily slots for the jobs that do not follow the issue schedule.
const (
	mediumTermMorningHour   = 6
	mediumTermEveningHour   = 18
	mediumTermMinute        = 30
	retentionHour           = 2
	livenessIntervalMinutes = 60
)

// Job is one scheduled unit of work. Next returns the first instant
// strictly after its argument at which the job should run.
type Job struct {
	Name string
	Next func(after time.Time) time.Time
	Run  func(ctx context.Context) error
}

// Scheduler drives jobs on wall-clock slots. Each job runs on its own
// goroutine; a panicking or failing run is logged and the job keeps its
// schedule.
type Scheduler struct {
	jobs   []Job
	logger zerolog.Logger
	clock  clockwork.Clock
}

// NewScheduler creates a scheduler for the given jobs.
func NewScheduler(jobs []Job, logger zerolog.Logger, clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		jobs:   jobs,
		logger: logger,
		clock:  clock,
	}
}

// Start runs all jobs until ctx is cancelled, then returns once every job
// goroutine has stopped.
func (s *Scheduler) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range s.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			s.runJob(ctx, job)
		}(job)
	}
	wg.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	logger := s.logger.With().Str("job", job.Name).Logger()

	for {
		next := job.Next(s.clock.Now())
		wait := next.Sub(s.clock.Now())

		logger.Debug().Time("next_run", next).Msg("job scheduled")

		select {
		case <-ctx.Done():
			logger.Info().Msg("job stopped")
			return
		case <-s.clock.After(wait):
		}

		s.invoke(ctx, job, logger)
	}
}

// invoke runs one job execution, containing panics so one bad run does not
// take the scheduler down.
func (s *Scheduler) invoke(ctx context.Context, job Job, logger zerolog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("job panicked")
		}
	}()

	start := s.clock.Now()
	if err := job.Run(ctx); err != nil {
		logger.Error().Err(err).Dur("duration", s.clock.Now().Sub(start)).Msg("job failed")
		return
	}
	logger.Info().Dur("duration", s.clock.Now().Sub(start)).Msg("job completed")
}

// nextDailySlot returns the first instant strictly after `after` falling on
// one of the given hours at the given minute.
func nextDailySlot(after time.Time, hours []int, minute int) time.Time {
	for dayShift := 0; ; dayShift++ {
		day := after.AddDate(0, 0, dayShift)
		for _, h := range hours {
			slot := time.Date(day.Year(), day.Month(), day.Day(), h, minute, 0, 0, after.Location())
			if slot.After(after) {
				return slot
			}
		}
	}
}

// DefaultJobs builds the standard job set: a short-range ingest a few
// minutes after every issue slot, a medium-range ingest twice a day, a
// daily retention sweep and an hourly liveness probe against the grid
// lookup endpoint.
func DefaultJobs(orch *Orchestrator, client *kma.Client, logger zerolog.Logger) []Job {
	return []Job{
		{
			Name: "short_term_ingest",
			Next: func(after time.Time) time.Time {
				return nextDailySlot(after, issueHours, issueJobDelayMinutes)
			},
			Run: func(ctx context.Context) error {
				result := orch.RunShortTermCycle(ctx)
				return cycleErr(result)
			},
		},
		{
			Name: "medium_term_ingest",
			Next: func(after time.Time) time.Time {
				return nextDailySlot(after, []int{mediumTermMorningHour, mediumTermEveningHour}, mediumTermMinute)
			},
			Run: func(ctx context.Context) error {
				result := orch.RunMediumTermCycle(ctx)
				return cycleErr(result)
			},
		},
		{
			Name: "retention_sweep",
			Next: func(after time.Time) time.Time {
				return nextDailySlot(after, []int{retentionHour}, 0)
			},
			Run: orch.RunRetentionSweep,
		},
		{
			Name: "provider_liveness",
			Next: func(after time.Time) time.Time {
				return after.Add(livenessIntervalMinutes * time.Minute)
			},
			Run: func(ctx context.Context) error {
				seoul := DefaultRegions()[0]
				_, err := client.GetGridCoordinate(ctx, seoul.Latitude, seoul.Longitude)
				if err != nil {
					logger.Warn().Err(err).Msg("provider liveness probe failed")
				}
				return err
			},
		},
	}
}

// cycleErr folds a cycle result into an error when every region failed;
// partial failures are already logged per region and do not fail the job.
func cycleErr(result *CycleResult) error {
	if result.TotalRegions > 0 && result.Failed == result.TotalRegions {
		return errAllRegionsFailed
	}
	return nil
}

var errAllRegionsFailed = errors.New("all regions failed in ingestion cycle")
