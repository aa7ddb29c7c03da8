package monitor

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/voxelbase/voxcache/internal/monitoring"
	"github.com/voxelbase/voxcache/volume"
	"github.com/voxelbase/voxcache/vxb"
)

// ReportOptions tunes the HTML grid report.
type ReportOptions struct {
	// Theme is an echarts theme name, dark when empty.
	Theme string
}

// WriteGridReport renders a bar chart of per-grid active voxel counts for
// the volume's current file into w as a standalone HTML document. Every
// grid is loaded to count its voxels; grids that fail to load chart as
// zero.
func WriteGridReport(w io.Writer, v *volume.Volume, o ReportOptions) error {
	if o.Theme == "" {
		o.Theme = "dark"
	}

	n := v.NumGrids()
	names := make([]string, 0, n)
	counts := make([]opts.BarData, 0, n)
	for i := 0; i < n; i++ {
		h := v.Grid(i)
		v.LoadGrid(h)
		names = append(names, h.Name())
		counts = append(counts, opts.BarData{Value: h.Grid().ActiveVoxelCount()})
	}

	subtitle := fmt.Sprintf("file=%s grids=%d", v.ResolvedPath(), n)
	if f, err := vxb.Open(v.ResolvedPath()); err == nil {
		subtitle += " uuid=" + f.UUID()
		f.Close()
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Volume Grids", Theme: o.Theme, Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Volume %q", v.Name()), Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("active voxels", counts,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render grid report: %w", err)
	}
	return nil
}

// SaveGridReport writes the grid report to path.
func SaveGridReport(path string, v *volume.Volume, o ReportOptions) error {
	var buf bytes.Buffer
	if err := WriteGridReport(&buf, v, o); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write grid report: %w", err)
	}
	monitoring.Logf("[Monitor] wrote grid report %s (%d grids)", path, v.NumGrids())
	return nil
}
