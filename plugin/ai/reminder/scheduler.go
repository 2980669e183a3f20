package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// FireHandler receives the alarms that started ringing in one cycle.
type FireHandler func(ctx context.Context, fired []*Alarm)

// Scheduler drives Service.Tick on a fixed interval from a single goroutine.
type Scheduler struct {
	service   *Service
	interval  time.Duration
	handler   FireHandler
	now       func() time.Time
	running   bool
	stopCh    chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	logger    *slog.Logger
	firedChan chan int // For testing: reports fired count per cycle
	health    *HealthCheck
}

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	Interval time.Duration // How often to check for due alarms
}

// DefaultSchedulerConfig returns default scheduler configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval: time.Second,
	}
}

// NewScheduler creates a new alarm scheduler. handler may be nil.
func NewScheduler(service *Service, config SchedulerConfig, handler FireHandler) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = time.Second
	}

	s := &Scheduler{
		service:  service,
		interval: config.Interval,
		handler:  handler,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		logger:   slog.Default(),
	}
	s.health = &HealthCheck{scheduler: s}
	return s
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)

	s.log().Info("alarm scheduler started", "interval", s.interval)
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.log().Info("alarm scheduler stopped")
}

// IsRunning returns whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SetLogger sets a custom logger. It is safe to call while running.
func (s *Scheduler) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// SetClock replaces the clock passed to Service.Tick. It is safe to call while running.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Scheduler) log() *slog.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logger
}

func (s *Scheduler) clock() time.Time {
	s.mu.Lock()
	now := s.now
	s.mu.Unlock()
	return now()
}

// EnableTestMode enables test mode with a channel for fired counts.
func (s *Scheduler) EnableTestMode() <-chan int {
	s.firedChan = make(chan int, 100)
	return s.firedChan
}

// Health returns the scheduler's health check.
func (s *Scheduler) Health() *HealthCheck {
	return s.health
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Process immediately on start
	s.processCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log().Info("scheduler context cancelled")
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.processCycle(ctx)
		}
	}
}

// processCycle runs one tick and hands fired alarms to the handler.
func (s *Scheduler) processCycle(ctx context.Context) {
	fired := s.RunOnce(ctx)

	if len(fired) > 0 && s.handler != nil {
		s.handler(ctx, fired)
	}

	// Report to test channel if enabled
	if s.firedChan != nil {
		select {
		case s.firedChan <- len(fired):
		default:
			// Don't block if channel is full
		}
	}
}

// RunOnce ticks the service once (for manual triggering).
// It does not invoke the handler.
func (s *Scheduler) RunOnce(ctx context.Context) []*Alarm {
	fired := s.service.Tick(ctx, s.clock())
	s.health.record(len(fired))
	return fired
}

// HealthCheck provides health check for the scheduler.
type HealthCheck struct {
	scheduler  *Scheduler
	lastRunAt  time.Time
	cycles     int64
	totalFired int64
	mu         sync.RWMutex
}

func (h *HealthCheck) record(fired int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastRunAt = time.Now()
	h.cycles++
	h.totalFired += int64(fired)
}

// Check returns the health status.
func (h *HealthCheck) Check() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return HealthStatus{
		Healthy:    h.scheduler.IsRunning(),
		LastRunAt:  h.lastRunAt,
		Cycles:     h.cycles,
		TotalFired: h.totalFired,
	}
}

// HealthStatus represents the health of the scheduler.
type HealthStatus struct {
	Healthy    bool      `json:"healthy"`
	LastRunAt  time.Time `json:"last_run_at"`
	Cycles     int64     `json:"cycles"`
	TotalFired int64     `json:"total_fired"`
}
