package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Prober refreshes a Checker on a cron schedule so that /ready answers from
// a recent result instead of calling the identity service and the list
// store on every probe.
type Prober struct {
	checker  *Checker
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewProber creates a prober for checker. The schedule accepts standard
// five-field cron expressions and descriptors such as "@every 5m".
func NewProber(checker *Checker, schedule string, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		checker:  checker,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "health.prober"),
	}
}

// Start runs one probe immediately and then schedules further probes.
// If the schedule is empty, the prober does nothing and readiness is
// checked inline on each request.
func (p *Prober) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.schedule == "" {
		p.logger.Info("probe schedule not configured, readiness is checked per request")
		return nil
	}

	if _, err := p.cron.AddFunc(p.schedule, func() { p.probe(ctx) }); err != nil {
		return fmt.Errorf("invalid probe schedule %q: %w", p.schedule, err)
	}

	p.probe(ctx)

	p.cron.Start()
	p.running = true

	p.logger.Info("readiness prober started", "schedule", p.schedule)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// probe executes one refresh and logs the outcome.
func (p *Prober) probe(ctx context.Context) {
	start := time.Now()
	status := p.checker.Refresh(ctx)

	if status.Ready() {
		p.logger.Debug("readiness probe passed", "duration", time.Since(start))
		return
	}

	for name, result := range status.Checks {
		if result.Status != "ok" {
			p.logger.Warn("readiness probe failed",
				"check", name,
				"message", result.Message,
			)
		}
	}
}

// Stop stops the prober and waits for a running probe to complete.
func (p *Prober) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		<-p.cron.Stop().Done()
		p.running = false
		p.logger.Info("readiness prober stopped")
	}
}

// IsRunning returns true if the prober is running.
func (p *Prober) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.running
}

// NextRun returns the next scheduled probe time.
func (p *Prober) NextRun() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
