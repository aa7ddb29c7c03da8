package monitor

import (
	"time"

	"github.com/voxelbase/voxcache/internal/timeutil"
	"github.com/voxelbase/voxcache/volume"
)

// StatsLogger periodically writes cache statistics to the process log.
// The first report lands one interval after Start.
type StatsLogger struct {
	cache  *volume.Cache
	clock  timeutil.Clock
	every  time.Duration
	ticker timeutil.Ticker
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewStatsLogger creates a logger that reports on the given interval.
func NewStatsLogger(c *volume.Cache, every time.Duration) *StatsLogger {
	return NewStatsLoggerWithClock(c, every, timeutil.RealClock{})
}

// NewStatsLoggerWithClock is NewStatsLogger with an injectable clock.
func NewStatsLoggerWithClock(c *volume.Cache, every time.Duration, clock timeutil.Clock) *StatsLogger {
	return &StatsLogger{
		cache:  c,
		clock:  clock,
		every:  every,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the reporting goroutine. Call it at most once.
func (s *StatsLogger) Start() {
	s.ticker = s.clock.NewTicker(s.every)
	go s.run()
}

// Stop ends the reporting goroutine and waits for it to exit.
func (s *StatsLogger) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *StatsLogger) run() {
	defer close(s.doneCh)
	defer s.ticker.Stop()

	for {
		select {
		case <-s.ticker.C():
			s.cache.LogStats()
		case <-s.stopCh:
			return
		}
	}
}
