package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunLayout names a report run directory.
const RunLayout = "2006-01-02_15-04-05"

// EnsureDirectories ensures all required directories exist
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.App.OutputDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// RunName returns the directory name of a report run started at t.
func RunName(t time.Time) string {
	return t.Format(RunLayout)
}

// RunDir returns the output directory of a run.
func (c *Config) RunDir(run string) string {
	return filepath.Join(c.App.OutputDir, run)
}

// ReportPath returns the merged report path of a run.
func (c *Config) ReportPath(run string) string {
	name := c.App.OutputFilename
	if name == "" {
		name = fmt.Sprintf("model_viz_%s.pdf", run)
	}
	return filepath.Join(c.RunDir(run), name)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}
