package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/soltixdb/modelviz/internal/config"
	"github.com/soltixdb/modelviz/internal/dashboard"
	"github.com/soltixdb/modelviz/internal/datastore"
	"github.com/soltixdb/modelviz/internal/logging"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modelviz",
		Short: "Model visualisation - density and box plots of simulated samples",
		Long: `modelviz reads model samples and empirical values from an HDF5 file
laid out as /<group>/<item>/{model_values,empirical_values} and renders
them as 2D histograms, box plots over time or histograms.

Each group is a tab, each item a panel. Reports merge every panel of a
plot kind into a single PDF.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to configuration file (yaml or ini)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newGroupsCmd(),
		newRenderCmd(),
		newReportCmd(),
		newStatsCmd(),
	)
	return rootCmd
}

// app holds what every data command needs
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	store  datastore.Store
	ctrl   *dashboard.Controller
}

// setup loads configuration, opens the store named by the first argument
// (or store.path) and builds the controller. The store is closed on exit.
func setup(cmd *cobra.Command, args []string) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetGlobal(logger)

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	path := cfg.Store.Path
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, fmt.Errorf("no store given: pass a file or set store.path")
	}

	store, err := datastore.OpenHDF5(path, datastore.HDF5Options{
		ModelDataset:   cfg.Store.ModelDataset,
		OverlayDataset: cfg.Store.OverlayDataset,
		TimeMajor:      cfg.Store.TimeMajor,
	}, logger)
	if err != nil {
		return nil, err
	}
	atexit.Register(func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close store", "path", store.Path(), "error", err)
		}
	})

	ctrl, err := dashboard.New(store, cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.IsDevelopment() {
		logger.Debug("modelviz ready",
			"version", Version,
			"commit", GitCommit,
			"store", store.Path(),
			"groups", len(store.Groups()),
			"output_dir", cfg.App.OutputDir,
			"format", cfg.Plotter.OutputFormat)
	}

	return &app{cfg: cfg, logger: logger, store: store, ctrl: ctrl}, nil
}
