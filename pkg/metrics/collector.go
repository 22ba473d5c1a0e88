package metrics

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultCollectInterval is how often the collector refreshes gauges
const DefaultCollectInterval = 15 * time.Second

// CountSource reports the number of stored objects per collection
type CountSource interface {
	Counts() (map[string]int, error)
}

// Collector periodically copies store counts into ConfigObjectsTotal
type Collector struct {
	source   CountSource
	interval time.Duration
	logger   zerolog.Logger
	stopCh   chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(source CountSource, interval time.Duration, logger zerolog.Logger) *Collector {
	if interval <= 0 {
		interval = DefaultCollectInterval
	}
	return &Collector{
		source:   source,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		c.Collect()

		for {
			select {
			case <-ticker.C:
				c.Collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

// Collect refreshes the gauges once. A failing store marks the storage
// component unhealthy until the next successful read.
func (c *Collector) Collect() {
	counts, err := c.source.Counts()
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to collect configuration counts")
		UpdateComponent(ComponentStorage, false, err.Error())
		return
	}
	UpdateComponent(ComponentStorage, true, "")

	for collection, n := range counts {
		ConfigObjectsTotal.WithLabelValues(collection).Set(float64(n))
	}
}
