package volume

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/voxelbase/voxcache/internal/testutil"
	"github.com/voxelbase/voxcache/voxel"
)

func TestProceduralHandle(t *testing.T) {
	t.Parallel()

	g := voxel.NewGridOf[float32]("fog", 0)
	acc, err := voxel.Values[float32](g)
	require.NoError(t, err)
	acc.Set(voxel.Coord{X: 1, Y: 2, Z: 3}, 0.7)

	h := NewProceduralGrid(g)
	assert.True(t, h.IsLoaded())
	assert.Empty(t, h.ErrorMessage())
	assert.Equal(t, "fog", h.Name())
	assert.Equal(t, voxel.KindFloat, h.Kind())
	assert.True(t, h.Load("standalone"))

	// Copies share the grid object and never touch a cache.
	cp := h.Copy()
	assert.Same(t, h.Grid(), cp.Grid())
	assert.True(t, cp.IsLoaded())

	cp.Release()
	h.Release()
	h.Release()
	assert.Nil(t, h.Grid())
}

func TestHandleConcurrentLoadPromotesOnce(t *testing.T) {
	t.Parallel()

	c := NewCache()
	path := testutil.WriteContainer(t, t.TempDir(), "fluid.vxb",
		testutil.DensityGrid(t, 0.5))

	v := NewVolume(c, "shared", path)
	h := v.Grid(0)
	require.NotNil(t, h)

	var eg errgroup.Group
	for i := 0; i < 8; i++ {
		eg.Go(func() error {
			if !h.Load("shared") {
				return fmt.Errorf("load failed: %s", h.ErrorMessage())
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	// Eight racing Load calls on one handle promote a single user and
	// read the file once.
	s := c.Stats()
	assert.Equal(t, int64(1), s.TreeReads)
	assert.Equal(t, 1, s.TreeUsers)
	assert.Equal(t, 0, s.MetadataUsers)

	v.Unload()
	require.NoError(t, c.Close())
}

func TestHandleLoadErrorRecordedOnce(t *testing.T) {
	t.Parallel()

	c := NewCache()
	path := testutil.WriteContainer(t, t.TempDir(), "fluid.vxb",
		testutil.DensityGrid(t, 0.5))

	v := NewVolume(c, "broken", path)
	h := v.Grid(0)
	require.NotNil(t, h)

	// Corrupt the container after discovery so the tree read fails.
	require.NoError(t, os.WriteFile(path, []byte("not a container"), 0o644))

	require.False(t, v.LoadGrid(h))
	assert.NotEmpty(t, h.ErrorMessage())
	assert.Equal(t, h.ErrorMessage(), v.Error())
	assert.True(t, h.IsLoaded())
	assert.Nil(t, h.Grid().Tree())

	// The failure is recorded on the entry; a second load reports it
	// without another file read.
	require.False(t, v.LoadGrid(h))
	assert.Equal(t, int64(1), c.Stats().TreeReads)

	// Unloading resets the entry, so the next load retries the file.
	v.UnloadGrid(h)
	assert.Empty(t, h.ErrorMessage())
	require.False(t, v.LoadGrid(h))
	assert.Equal(t, int64(2), c.Stats().TreeReads)

	v.Unload()
	require.NoError(t, c.Close())
}

func TestHandleErrorSharedThroughEntry(t *testing.T) {
	t.Parallel()

	c := NewCache()
	path := testutil.WriteContainer(t, t.TempDir(), "fluid.vxb",
		testutil.DensityGrid(t, 0.5))

	v1 := NewVolume(c, "broken_a", path)
	v2 := NewVolume(c, "broken_b", path)
	h1, h2 := v1.Grid(0), v2.Grid(0)

	require.NoError(t, os.WriteFile(path, []byte("not a container"), 0o644))
	require.False(t, v1.LoadGrid(h1))

	// The second volume sees the recorded failure without reading, but
	// only once its own handle loads.
	assert.Empty(t, h2.ErrorMessage())
	require.False(t, v2.LoadGrid(h2))
	assert.Equal(t, h1.ErrorMessage(), h2.ErrorMessage())
	assert.Equal(t, int64(1), c.Stats().TreeReads)

	v1.Unload()
	v2.Unload()
	require.NoError(t, c.Close())
}
