package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/hingham-practice/city-explorer/internal/explore"
)

// Scheduler periodically warms the cache for configured seed queries. Warming
// is cache-first and append-only, so repeated runs after the first resolve
// perform no upstream calls.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *explore.Service
	queries   []string
	interval  time.Duration
	log       *zap.SugaredLogger
}

// New creates a new Scheduler.
func New(queries []string, interval time.Duration, service *explore.Service, log *zap.SugaredLogger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		queries:   queries,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic warm job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.queries) == 0 {
		s.log.Info("scheduler: no warm queries configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		s.log.Info("scheduler: running cache warm job")

		var wg sync.WaitGroup
		for _, q := range s.queries {
			q := q
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := s.service.Warm(ctx, q); err != nil {
					s.log.Warnw("scheduler: warm failed", "query", q, "error", err)
				}
			}()
		}
		wg.Wait()
		s.log.Info("scheduler: completed cache warm job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
