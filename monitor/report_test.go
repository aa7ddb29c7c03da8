package monitor

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voxelbase/voxcache/internal/testutil"
	"github.com/voxelbase/voxcache/volume"
)

func TestWriteGridReport(t *testing.T) {
	c := volume.NewCache()
	path := testutil.WriteContainer(t, t.TempDir(), "fluid.vxb",
		testutil.DensityGrid(t, 0.5), testutil.VelocityGrid(t))
	v := volume.NewVolume(c, "fluid", path)

	var buf bytes.Buffer
	if err := WriteGridReport(&buf, v, ReportOptions{}); err != nil {
		t.Fatalf("WriteGridReport: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"density", "velocity", "active voxels", "uuid="} {
		if !strings.Contains(out, want) {
			t.Errorf("report does not mention %q", want)
		}
	}

	v.Unload()
	if err := c.Close(); err != nil {
		t.Fatalf("close cache: %v", err)
	}
}

func TestSaveGridReport(t *testing.T) {
	c := volume.NewCache()
	dir := t.TempDir()
	path := testutil.WriteContainer(t, dir, "fluid.vxb", testutil.DensityGrid(t, 0.5))
	v := volume.NewVolume(c, "fluid", path)

	out := filepath.Join(dir, "fluid_report.html")
	if err := SaveGridReport(out, v, ReportOptions{Theme: "light"}); err != nil {
		t.Fatalf("SaveGridReport: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(strings.ToLower(string(data)), "<html") {
		t.Error("report is not an HTML document")
	}

	v.Unload()
	if err := c.Close(); err != nil {
		t.Fatalf("close cache: %v", err)
	}
}
