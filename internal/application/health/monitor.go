package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/execution-hub/supervisor/internal/domain/worker"
)

const defaultConcurrency = 8

// Result is one worker's health after a check.
type Result struct {
	WorkerID    string        `json:"workerId"`
	Health      worker.Health `json:"health"`
	LastChecked *time.Time    `json:"lastChecked,omitempty"`
}

// Monitor checks workers and keeps registry health current.
type Monitor struct {
	registry    worker.Registry
	client      worker.Client
	timeout     time.Duration
	concurrency int
	logger      zerolog.Logger

	mu        sync.Mutex
	scheduler *cron.Cron
	initial   sync.WaitGroup
}

func NewMonitor(registry worker.Registry, client worker.Client, timeout time.Duration, concurrency int, logger zerolog.Logger) *Monitor {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Monitor{
		registry:    registry,
		client:      client,
		timeout:     timeout,
		concurrency: concurrency,
		logger:      logger.With().Str("service", "health").Logger(),
	}
}

// Check checks one worker and returns its refreshed descriptor.
func (m *Monitor) Check(ctx context.Context, workerID string) (worker.Descriptor, error) {
	w, err := m.registry.Lookup(workerID)
	if err != nil {
		return worker.Descriptor{}, err
	}
	m.client.CheckHealth(ctx, w, m.timeout)
	return m.registry.Lookup(workerID)
}

// SweepOnce checks every registered worker in parallel. Results follow
// registration order.
func (m *Monitor) SweepOnce(ctx context.Context) []Result {
	workers := m.registry.All()
	results := make([]Result, len(workers))

	var g errgroup.Group
	g.SetLimit(m.concurrency)
	for i, w := range workers {
		i, w := i, w
		g.Go(func() error {
			h := m.client.CheckHealth(ctx, w, m.timeout)
			results[i] = Result{WorkerID: w.ID, Health: h}
			return nil
		})
	}
	_ = g.Wait()

	healthy := 0
	for i := range results {
		if d, err := m.registry.Lookup(results[i].WorkerID); err == nil {
			results[i].LastChecked = d.LastChecked
		}
		if results[i].Health == worker.HealthHealthy {
			healthy++
		}
	}
	m.logger.Info().
		Int("workers", len(results)).
		Int("healthy", healthy).
		Msg("health sweep finished")
	return results
}

// Start runs a sweep now and then on schedule until ctx is done.
// schedule uses cron syntax or descriptors such as "@every 30s".
func (m *Monitor) Start(ctx context.Context, schedule string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scheduler != nil {
		return fmt.Errorf("health monitor already started")
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if ctx.Err() != nil {
			return
		}
		m.SweepOnce(ctx)
	}); err != nil {
		return fmt.Errorf("invalid health schedule %q: %w", schedule, err)
	}
	m.scheduler = c

	m.initial.Add(1)
	go func() {
		defer m.initial.Done()
		m.SweepOnce(ctx)
	}()
	c.Start()
	m.logger.Info().Str("schedule", schedule).Msg("health monitor started")

	go func() {
		<-ctx.Done()
		m.Stop()
	}()
	return nil
}

// Stop halts scheduled sweeps and waits for a running sweep to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	c := m.scheduler
	m.scheduler = nil
	m.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	m.initial.Wait()
	m.logger.Info().Msg("health monitor stopped")
}
