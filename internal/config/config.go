package config

import (
	"fmt"
	"time"

	"github.com/soltixdb/modelviz/internal/plot"
)

// Config represents the complete application configuration
type Config struct {
	App             AppConfig             `mapstructure:"app"`
	Plotter         PlotterConfig         `mapstructure:"plotter"`
	Histogram2D     Histogram2DConfig     `mapstructure:"histogram2d"`
	BoxPlotOverTime BoxPlotOverTimeConfig `mapstructure:"boxplot_over_time"`
	Histogram       HistogramConfig       `mapstructure:"histogram"`
	Overlay         OverlayConfig         `mapstructure:"overlay"`
	DateAxis        DateAxisConfig        `mapstructure:"date_axis"`
	Store           StoreConfig           `mapstructure:"store"`
	Cache           CacheConfig           `mapstructure:"cache"`
	Logging         LoggingConfig         `mapstructure:"logging"`
}

// AppConfig controls where reports are written
type AppConfig struct {
	OutputDir      string `mapstructure:"output_dir"`
	OutputFilename string `mapstructure:"output_filename"` // merged report name, default model_viz_<run>.pdf
}

// PlotterConfig is shared by every plot export
type PlotterConfig struct {
	OutputFormat string `mapstructure:"output_format"` // png, svg, pdf
	ExportEngine string `mapstructure:"export_engine"` // gochart
	Width        int    `mapstructure:"width"`
	Height       int    `mapstructure:"height"`
}

// Histogram2DConfig represents density plot configuration
type Histogram2DConfig struct {
	Title             string `mapstructure:"title"`
	XTitle            string `mapstructure:"x_title"`
	YTitle            string `mapstructure:"y_title"`
	ColorbarTitle     string `mapstructure:"colorbar_title"`
	ColorbarTitleSide string `mapstructure:"colorbar_titleside"` // top, bottom, right
	HistFunc          string `mapstructure:"histfunc"`           // count, sum, avg, min, max
	ScatterMode       string `mapstructure:"scatter_mode"`       // overlay display mode
	ColorScale        string `mapstructure:"colorscale"`
	RasterThreshold   int    `mapstructure:"raster_threshold"`
	RasterBins        int    `mapstructure:"raster_bins"`
	YBins             int    `mapstructure:"y_bins"`
}

// BoxPlotOverTimeConfig represents box plot configuration
type BoxPlotOverTimeConfig struct {
	Title       string `mapstructure:"title"`
	XTitle      string `mapstructure:"x_title"`
	YTitle      string `mapstructure:"y_title"`
	BoxPoints   bool   `mapstructure:"boxpoints"`   // draw outliers
	ShowFences  bool   `mapstructure:"show_fences"` // whiskers at min/max
	ShowLegend  bool   `mapstructure:"showlegend"`
	ScatterMode string `mapstructure:"scatter_mode"`
	BoxColor    string `mapstructure:"box_color"`
}

// HistogramConfig represents simple histogram configuration
type HistogramConfig struct {
	Title     string  `mapstructure:"title"`
	XTitle    string  `mapstructure:"x_title"`
	YTitle    string  `mapstructure:"y_title"`
	Bins      int     `mapstructure:"bins"`
	BarColor  string  `mapstructure:"bar_color"`
	LineWidth float64 `mapstructure:"line_width"`
	LineColor string  `mapstructure:"line_color"`
	LineDash  string  `mapstructure:"line_dash"` // solid, dash, dot, dashdot
}

// OverlayConfig styles the empirical series
type OverlayConfig struct {
	Name  string `mapstructure:"name"`
	Color string `mapstructure:"color"`
}

// DateAxisConfig turns time step indices into dates
type DateAxisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Epoch     string `mapstructure:"epoch"` // YYYY-MM-DD
	TickCount int    `mapstructure:"tick_count"`
}

// StoreConfig represents the HDF5 store configuration
type StoreConfig struct {
	Path           string `mapstructure:"path"`
	ModelDataset   string `mapstructure:"model_dataset"`
	OverlayDataset string `mapstructure:"overlay_dataset"`
	TimeMajor      bool   `mapstructure:"time_major"` // model dataset stored as T×N
}

// CacheConfig bounds the panel cache
type CacheConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, UnixMs, etc
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app config: %w", err)
	}

	if err := c.Plotter.Validate(); err != nil {
		return fmt.Errorf("plotter config: %w", err)
	}

	if err := c.Histogram2D.Validate(); err != nil {
		return fmt.Errorf("histogram2d config: %w", err)
	}

	if err := c.BoxPlotOverTime.Validate(); err != nil {
		return fmt.Errorf("boxplot_over_time config: %w", err)
	}

	if err := c.Histogram.Validate(); err != nil {
		return fmt.Errorf("histogram config: %w", err)
	}

	if err := c.DateAxis.Validate(); err != nil {
		return fmt.Errorf("date_axis config: %w", err)
	}

	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache config: max_entries must be at least 1")
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates app configuration
func (c *AppConfig) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	return nil
}

// Validate validates plotter configuration
func (c *PlotterConfig) Validate() error {
	validFormats := map[string]bool{
		"png": true,
		"svg": true,
		"pdf": true,
	}

	if !validFormats[c.OutputFormat] {
		return fmt.Errorf("output_format must be one of: png, svg, pdf")
	}

	if c.ExportEngine != "gochart" {
		return fmt.Errorf("export_engine must be 'gochart'")
	}

	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("width and height must be positive, got %dx%d", c.Width, c.Height)
	}

	return nil
}

// Validate validates density plot configuration
func (c *Histogram2DConfig) Validate() error {
	if err := plot.ValidateHistFunc(c.HistFunc); err != nil {
		return err
	}

	if err := plot.ValidateDisplayMode(c.ScatterMode); err != nil {
		return fmt.Errorf("scatter_mode: %w", err)
	}

	if _, err := plot.LookupColorScale(c.ColorScale); err != nil {
		return err
	}

	switch c.ColorbarTitleSide {
	case "top", "bottom", "right":
	default:
		return fmt.Errorf("colorbar_titleside must be one of: top, bottom, right")
	}

	if c.RasterThreshold < 1 || c.RasterBins < 1 || c.YBins < 1 {
		return fmt.Errorf("raster_threshold, raster_bins and y_bins must be positive")
	}

	return nil
}

// Validate validates box plot configuration
func (c *BoxPlotOverTimeConfig) Validate() error {
	if err := plot.ValidateDisplayMode(c.ScatterMode); err != nil {
		return fmt.Errorf("scatter_mode: %w", err)
	}
	return nil
}

// Validate validates histogram configuration
func (c *HistogramConfig) Validate() error {
	if c.Bins < 1 {
		return fmt.Errorf("bins must be at least 1")
	}

	if c.LineWidth <= 0 {
		return fmt.Errorf("line_width must be positive")
	}

	return plot.ValidateDash(c.LineDash)
}

// Validate validates date axis configuration
func (c *DateAxisConfig) Validate() error {
	if _, err := c.EpochTime(); err != nil {
		return err
	}

	if c.TickCount < 1 {
		return fmt.Errorf("tick_count must be at least 1")
	}

	return nil
}

// EpochTime parses the configured day zero.
func (c *DateAxisConfig) EpochTime() (time.Time, error) {
	t, err := time.Parse(plot.DateLayout, c.Epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch %q, expected YYYY-MM-DD", c.Epoch)
	}
	return t, nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
