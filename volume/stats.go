package volume

import (
	"github.com/docker/go-units"

	"github.com/voxelbase/voxcache/internal/monitoring"
)

// Stats is a point-in-time snapshot of cache occupancy and I/O counters.
type Stats struct {
	// Entries is the number of cached grids, loaded or not.
	Entries int
	// MetadataUsers and TreeUsers sum the user counts over all entries.
	MetadataUsers int
	TreeUsers     int
	// TreeReads counts backing-file read attempts over the cache's
	// lifetime; deduplicated loads do not read and do not count.
	TreeReads int64
	// TreeEvictions counts trees dropped when their last user left.
	TreeEvictions int64
	// ResidentBytes estimates the memory held by loaded trees.
	ResidentBytes int64
}

// Stats returns a consistent snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Entries:       len(c.entries),
		TreeReads:     c.treeReads,
		TreeEvictions: c.treeEvictions,
		ResidentBytes: c.residentBytes,
	}
	for _, e := range c.entries {
		s.MetadataUsers += e.metaUsers
		s.TreeUsers += e.treeUsers
	}
	return s
}

// LogStats writes a one-line cache summary through the monitoring logger.
func (c *Cache) LogStats() {
	s := c.Stats()
	monitoring.Logf("[FileCache] entries=%d users=%d/%d reads=%d evictions=%d resident=%s",
		s.Entries, s.MetadataUsers, s.TreeUsers, s.TreeReads, s.TreeEvictions,
		units.BytesSize(float64(s.ResidentBytes)))
}
