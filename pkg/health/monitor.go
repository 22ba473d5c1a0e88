package health

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ReportFunc receives the settled health of a component after every check
type ReportFunc func(component string, healthy bool, message string)

// Monitor runs checkers periodically and reports their settled status
type Monitor struct {
	checkers []Checker
	config   Config
	report   ReportFunc
	logger   zerolog.Logger

	mu       sync.Mutex
	statuses map[string]*Status
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewMonitor creates a monitor over checkers
func NewMonitor(config Config, report ReportFunc, logger zerolog.Logger, checkers ...Checker) *Monitor {
	statuses := make(map[string]*Status, len(checkers))
	for _, c := range checkers {
		statuses[c.Name()] = NewStatus()
	}
	return &Monitor{
		checkers: checkers,
		config:   config,
		report:   report,
		logger:   logger,
		statuses: statuses,
		stopCh:   make(chan struct{}),
	}
}

// Start checks every component now and then every interval
func (m *Monitor) Start() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.config.Interval)
		defer ticker.Stop()

		m.CheckAll(context.Background())
		for {
			select {
			case <-ticker.C:
				m.CheckAll(context.Background())
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Stop stops the monitor and waits for a running round to finish
func (m *Monitor) Stop() {
	close(m.stopCh)
	m.wg.Wait()
}

// CheckAll runs one round of checks
func (m *Monitor) CheckAll(ctx context.Context) {
	for _, c := range m.checkers {
		cctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
		res := c.Check(cctx)
		cancel()

		m.mu.Lock()
		status := m.statuses[c.Name()]
		wasHealthy := status.Healthy
		status.Update(res, m.config)
		healthy := status.Healthy
		m.mu.Unlock()

		if wasHealthy && !healthy {
			m.logger.Warn().Str("check", c.Name()).Str("reason", res.Message).Msg("Component became unhealthy")
		}
		if m.report != nil {
			m.report(c.Name(), healthy, res.Message)
		}
	}
}

// Status returns a copy of the status of component
func (m *Monitor) Status(component string) (Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.statuses[component]
	if !ok {
		return Status{}, false
	}
	return *status, true
}
