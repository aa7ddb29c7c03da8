package monitor

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/voxelbase/voxcache/internal/monitoring"
	"github.com/voxelbase/voxcache/internal/timeutil"
	"github.com/voxelbase/voxcache/volume"
)

type logCapture struct {
	mu    sync.Mutex
	lines []string
}

func (c *logCapture) logf(format string, v ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, fmt.Sprintf(format, v...))
}

func (c *logCapture) count(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}

func waitForCount(t *testing.T, c *logCapture, substr string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for c.count(substr) < want {
		if time.Now().After(deadline) {
			t.Fatalf("saw %d lines containing %q, want %d", c.count(substr), substr, want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStatsLoggerReportsOnInterval(t *testing.T) {
	capture := &logCapture{}
	monitoring.SetLogger(capture.logf)
	defer monitoring.SetLogger(nil)

	cache := volume.NewCache()
	defer cache.Close()

	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := NewStatsLoggerWithClock(cache, time.Minute, clock)
	logger.Start()

	clock.Advance(time.Minute)
	waitForCount(t, capture, "entries=", 1)

	clock.Advance(time.Minute)
	waitForCount(t, capture, "entries=", 2)

	logger.Stop()

	// After Stop the goroutine is gone, so further ticks cannot report.
	clock.Advance(time.Minute)
	if got := capture.count("entries="); got != 2 {
		t.Errorf("lines after Stop = %d, want 2", got)
	}
}

func TestStatsLoggerStopBeforeFirstTick(t *testing.T) {
	capture := &logCapture{}
	monitoring.SetLogger(capture.logf)
	defer monitoring.SetLogger(nil)

	cache := volume.NewCache()
	defer cache.Close()

	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := NewStatsLoggerWithClock(cache, time.Hour, clock)
	logger.Start()
	logger.Stop()

	if got := capture.count("entries="); got != 0 {
		t.Errorf("lines before any tick = %d, want 0", got)
	}
}
