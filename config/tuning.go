// Package config loads optional tuning parameters from JSON files.
//
// Every field is a pointer so that absent keys fall back to the built-in
// defaults instead of the zero value. Callers go through the Get methods
// and never inspect the pointers directly.
package config

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/voxelbase/voxcache/volume"
	"github.com/voxelbase/voxcache/vxb"
)

// maxConfigSize caps how much of a config file we are willing to read.
const maxConfigSize = 1 << 20

// Tuning adjusts cache and container behavior. The zero value selects
// defaults for everything.
type Tuning struct {
	// WriteCodec compresses tree payloads on write: "none", "gzip" or "lz4".
	WriteCodec *string `json:"write_codec,omitempty"`

	// GzipLevel applies when WriteCodec is "gzip". Accepts the range
	// gzip.HuffmanOnly..gzip.BestCompression.
	GzipLevel *int `json:"gzip_level,omitempty"`

	// SQLiteBusyTimeoutMS bounds how long container opens wait on a lock
	// held by another process.
	SQLiteBusyTimeoutMS *int `json:"sqlite_busy_timeout_ms,omitempty"`

	// StrictShutdown makes Cache.Close panic when live users remain,
	// instead of only logging them.
	StrictShutdown *bool `json:"strict_shutdown,omitempty"`

	// LogIO enables the container read/write log lines. Applications apply
	// it through monitoring.SetLogger.
	LogIO *bool `json:"log_io,omitempty"`

	// HeatmapInches is the edge length of saved heatmap images.
	HeatmapInches *float64 `json:"heatmap_inches,omitempty"`

	// ReportTheme selects the echarts theme for grid reports.
	ReportTheme *string `json:"report_theme,omitempty"`
}

// DefaultTuning returns a config with every field set to its default.
func DefaultTuning() *Tuning {
	return &Tuning{
		WriteCodec:          ptrString(vxb.CodecLZ4),
		GzipLevel:           ptrInt(gzip.DefaultCompression),
		SQLiteBusyTimeoutMS: ptrInt(5000),
		StrictShutdown:      ptrBool(false),
		LogIO:               ptrBool(true),
		HeatmapInches:       ptrFloat64(8),
		ReportTheme:         ptrString("dark"),
	}
}

// LoadTuning reads a tuning config from a JSON file and validates it.
func LoadTuning(path string) (*Tuning, error) {
	path = filepath.Clean(path)
	if !strings.HasSuffix(path, ".json") {
		return nil, fmt.Errorf("config file must have .json extension, got %q", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Tuning
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks that every set field holds a usable value.
func (t *Tuning) Validate() error {
	if t.WriteCodec != nil {
		switch *t.WriteCodec {
		case vxb.CodecNone, vxb.CodecGzip, vxb.CodecLZ4:
		default:
			return fmt.Errorf("write_codec must be %q, %q or %q, got %q",
				vxb.CodecNone, vxb.CodecGzip, vxb.CodecLZ4, *t.WriteCodec)
		}
	}
	if t.GzipLevel != nil {
		if *t.GzipLevel < gzip.HuffmanOnly || *t.GzipLevel > gzip.BestCompression {
			return fmt.Errorf("gzip_level must be in %d..%d, got %d",
				gzip.HuffmanOnly, gzip.BestCompression, *t.GzipLevel)
		}
	}
	if t.SQLiteBusyTimeoutMS != nil && *t.SQLiteBusyTimeoutMS < 0 {
		return fmt.Errorf("sqlite_busy_timeout_ms must be >= 0, got %d", *t.SQLiteBusyTimeoutMS)
	}
	if t.HeatmapInches != nil && *t.HeatmapInches <= 0 {
		return fmt.Errorf("heatmap_inches must be > 0, got %v", *t.HeatmapInches)
	}
	return nil
}

// GetWriteCodec returns the configured codec or "lz4".
func (t *Tuning) GetWriteCodec() string {
	if t == nil || t.WriteCodec == nil {
		return vxb.CodecLZ4
	}
	return *t.WriteCodec
}

// GetGzipLevel returns the configured gzip level or gzip.DefaultCompression.
func (t *Tuning) GetGzipLevel() int {
	if t == nil || t.GzipLevel == nil {
		return gzip.DefaultCompression
	}
	return *t.GzipLevel
}

// GetSQLiteBusyTimeoutMS returns the configured busy timeout or 5000.
func (t *Tuning) GetSQLiteBusyTimeoutMS() int {
	if t == nil || t.SQLiteBusyTimeoutMS == nil {
		return 5000
	}
	return *t.SQLiteBusyTimeoutMS
}

// GetStrictShutdown reports whether Cache.Close should panic on leaks.
func (t *Tuning) GetStrictShutdown() bool {
	if t == nil || t.StrictShutdown == nil {
		return false
	}
	return *t.StrictShutdown
}

// GetLogIO reports whether container I/O logging is enabled.
func (t *Tuning) GetLogIO() bool {
	if t == nil || t.LogIO == nil {
		return true
	}
	return *t.LogIO
}

// GetHeatmapInches returns the configured heatmap edge length or 8.
func (t *Tuning) GetHeatmapInches() float64 {
	if t == nil || t.HeatmapInches == nil {
		return 8
	}
	return *t.HeatmapInches
}

// GetReportTheme returns the configured report theme or "dark".
func (t *Tuning) GetReportTheme() string {
	if t == nil || t.ReportTheme == nil {
		return "dark"
	}
	return *t.ReportTheme
}

// CreateOptions assembles the container write options this config selects.
func (t *Tuning) CreateOptions() vxb.CreateOptions {
	return vxb.CreateOptions{
		Codec:         t.GetWriteCodec(),
		GzipLevel:     t.GetGzipLevel(),
		BusyTimeoutMS: t.GetSQLiteBusyTimeoutMS(),
	}
}

// CacheOptions assembles the cache options this config selects.
func (t *Tuning) CacheOptions() volume.CacheOptions {
	return volume.CacheOptions{StrictClose: t.GetStrictShutdown()}
}

func ptrString(s string) *string { return &s }

func ptrInt(i int) *int { return &i }

func ptrBool(b bool) *bool { return &b }

func ptrFloat64(f float64) *float64 { return &f }
