package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// iniSections maps section names of the ini layout to config keys.
var iniSections = map[string]string{
	"boxplotovertime": "boxplot_over_time",
}

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides, e.g. MODELVIZ_PLOTTER_WIDTH
	v.SetEnvPrefix("MODELVIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.EqualFold(filepath.Ext(configPath), ".ini") {
		if err := mergeINI(v, configPath); err != nil {
			return nil, err
		}
		return parseConfig(v)
	}

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.AddConfigPath(".")             // Current directory
		v.AddConfigPath("./configs")     // Project configs directory
		v.AddConfigPath("./config")      // Alternative config directory
		v.AddConfigPath("/etc/modelviz") // System-wide config
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// LoadDotEnv loads environment variables from path when the file exists.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// mergeINI reads an ini file with [APP], [PLOTTER], [HISTOGRAM2D] ... sections
// into v. Section and key names are case-insensitive.
func mergeINI(v *viper.Viper, path string) error {
	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	settings := make(map[string]interface{})
	for _, section := range f.Sections() {
		name := strings.ToLower(section.Name())
		if mapped, ok := iniSections[name]; ok {
			name = mapped
		}

		values := make(map[string]interface{})
		for _, key := range section.Keys() {
			values[strings.ToLower(key.Name())] = key.String()
		}
		if len(values) == 0 {
			continue
		}
		if name == strings.ToLower(ini.DefaultSection) {
			for k, val := range values {
				settings[k] = val
			}
			continue
		}
		settings[name] = values
	}

	if err := v.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.output_dir", "./output")
	v.SetDefault("app.output_filename", "")

	// Plotter defaults
	v.SetDefault("plotter.output_format", "pdf")
	v.SetDefault("plotter.export_engine", "gochart")
	v.SetDefault("plotter.width", 1200)
	v.SetDefault("plotter.height", 800)

	// Density plot defaults
	v.SetDefault("histogram2d.title", "")
	v.SetDefault("histogram2d.x_title", "Date")
	v.SetDefault("histogram2d.y_title", "Value")
	v.SetDefault("histogram2d.colorbar_title", "Count")
	v.SetDefault("histogram2d.colorbar_titleside", "top")
	v.SetDefault("histogram2d.histfunc", "count")
	v.SetDefault("histogram2d.scatter_mode", "lines")
	v.SetDefault("histogram2d.colorscale", "viridis")
	v.SetDefault("histogram2d.raster_threshold", 100000)
	v.SetDefault("histogram2d.raster_bins", 100)
	v.SetDefault("histogram2d.y_bins", 50)

	// Box plot defaults
	v.SetDefault("boxplot_over_time.title", "")
	v.SetDefault("boxplot_over_time.x_title", "Date")
	v.SetDefault("boxplot_over_time.y_title", "Value")
	v.SetDefault("boxplot_over_time.boxpoints", false)
	v.SetDefault("boxplot_over_time.show_fences", true)
	v.SetDefault("boxplot_over_time.showlegend", false)
	v.SetDefault("boxplot_over_time.scatter_mode", "lines")
	v.SetDefault("boxplot_over_time.box_color", "#1f77b4")

	// Histogram defaults
	v.SetDefault("histogram.title", "")
	v.SetDefault("histogram.x_title", "Frequency")
	v.SetDefault("histogram.y_title", "Value")
	v.SetDefault("histogram.bins", 30)
	v.SetDefault("histogram.bar_color", "#1f77b4")
	v.SetDefault("histogram.line_width", 2.0)
	v.SetDefault("histogram.line_color", "#d62728")
	v.SetDefault("histogram.line_dash", "dash")

	// Overlay defaults
	v.SetDefault("overlay.name", "Empirical")
	v.SetDefault("overlay.color", "#d62728")

	// Date axis defaults
	v.SetDefault("date_axis.enabled", true)
	v.SetDefault("date_axis.epoch", "2020-01-01")
	v.SetDefault("date_axis.tick_count", 10)

	// Store defaults
	v.SetDefault("store.path", "")
	v.SetDefault("store.model_dataset", "model_values")
	v.SetDefault("store.overlay_dataset", "empirical_values")
	v.SetDefault("store.time_major", false)

	// Cache defaults
	v.SetDefault("cache.max_entries", 32)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output_path", "stderr")
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			OutputDir: "./output",
		},
		Plotter: PlotterConfig{
			OutputFormat: "pdf",
			ExportEngine: "gochart",
			Width:        1200,
			Height:       800,
		},
		Histogram2D: Histogram2DConfig{
			XTitle:            "Date",
			YTitle:            "Value",
			ColorbarTitle:     "Count",
			ColorbarTitleSide: "top",
			HistFunc:          "count",
			ScatterMode:       "lines",
			ColorScale:        "viridis",
			RasterThreshold:   100000,
			RasterBins:        100,
			YBins:             50,
		},
		BoxPlotOverTime: BoxPlotOverTimeConfig{
			XTitle:      "Date",
			YTitle:      "Value",
			ShowFences:  true,
			ScatterMode: "lines",
			BoxColor:    "#1f77b4",
		},
		Histogram: HistogramConfig{
			XTitle:    "Frequency",
			YTitle:    "Value",
			Bins:      30,
			BarColor:  "#1f77b4",
			LineWidth: 2,
			LineColor: "#d62728",
			LineDash:  "dash",
		},
		Overlay: OverlayConfig{
			Name:  "Empirical",
			Color: "#d62728",
		},
		DateAxis: DateAxisConfig{
			Enabled:   true,
			Epoch:     "2020-01-01",
			TickCount: 10,
		},
		Store: StoreConfig{
			ModelDataset:   "model_values",
			OverlayDataset: "empirical_values",
		},
		Cache: CacheConfig{
			MaxEntries: 32,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
		},
	}
}
