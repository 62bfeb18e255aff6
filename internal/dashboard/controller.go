// Package dashboard wires the store, plot builders and exporter into the
// tab/panel model of the model visualisation dashboard.
package dashboard

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/soltixdb/modelviz/internal/cache"
	"github.com/soltixdb/modelviz/internal/config"
	"github.com/soltixdb/modelviz/internal/datastore"
	"github.com/soltixdb/modelviz/internal/dataset"
	"github.com/soltixdb/modelviz/internal/export"
	"github.com/soltixdb/modelviz/internal/logging"
	"github.com/soltixdb/modelviz/internal/plot"
	"github.com/soltixdb/modelviz/internal/stats"
)

// Panel is one plot of a tab. Exactly one of Artifact and Err is set.
type Panel struct {
	Group    string
	Item     string
	Artifact *plot.Artifact
	Err      *PanelError
}

// Controller serves tabs (groups) and panels (one plot per item).
type Controller struct {
	store   datastore.Store
	cfg     *config.Config
	options map[plot.Kind]plot.Options
	panels  *cache.Cache[[]Panel]
	logger  *logging.Logger
	now     func() time.Time
}

// New creates a controller. The configuration is treated as immutable.
func New(store datastore.Store, cfg *config.Config, logger *logging.Logger) (*Controller, error) {
	if logger == nil {
		logger = logging.Global()
	}

	options := make(map[plot.Kind]plot.Options, len(plot.Kinds()))
	for _, kind := range plot.Kinds() {
		opts, err := OptionsFor(cfg, kind)
		if err != nil {
			return nil, fmt.Errorf("options for %s: %w", kind, err)
		}
		options[kind] = opts
	}

	panels, err := cache.New[[]Panel](cfg.Cache.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create panel cache: %w", err)
	}

	return &Controller{
		store:   store,
		cfg:     cfg,
		options: options,
		panels:  panels,
		logger:  logger.With("component", "dashboard"),
		now:     time.Now,
	}, nil
}

// Tabs returns the group names in store order.
func (c *Controller) Tabs() []string {
	return c.store.Groups()
}

// Items returns the item names of a tab.
func (c *Controller) Items(group string) ([]string, error) {
	return c.store.Items(group)
}

// CacheStats reports panel cache statistics.
func (c *Controller) CacheStats() map[string]interface{} {
	return c.panels.Stats()
}

func panelKey(kind plot.Kind, group string) string {
	return string(kind) + "\x00" + group
}

// Panels builds one panel per item of group. Results are memoised per
// (kind, group). Item failures are reported on the panel; only an unknown
// kind or group fails the call.
func (c *Controller) Panels(kind plot.Kind, group string) ([]Panel, error) {
	if _, ok := c.options[kind]; !ok {
		return nil, fmt.Errorf("%w: %q", plot.ErrUnsupportedPlotType, string(kind))
	}

	key := panelKey(kind, group)
	if panels, ok := c.panels.Get(key); ok {
		return append([]Panel(nil), panels...), nil
	}

	items, err := c.store.Items(group)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	panels := make([]Panel, 0, len(items))
	failed := 0
	for _, item := range items {
		p := c.buildPanel(kind, group, item)
		if p.Err != nil {
			failed++
			c.logger.Warn("Panel build failed",
				"kind", kind.String(),
				"group", group,
				"item", item,
				"code", p.Err.Code,
				"error", p.Err)
		}
		panels = append(panels, p)
	}

	c.logger.Debug("Panels built",
		"kind", kind.String(),
		"group", group,
		"panels", len(panels),
		"failed", failed,
		"duration", time.Since(start).String())

	c.panels.Set(key, panels)
	return append([]Panel(nil), panels...), nil
}

// Panel returns the panel of a single item.
func (c *Controller) Panel(kind plot.Kind, group, item string) (Panel, error) {
	panels, err := c.Panels(kind, group)
	if err != nil {
		return Panel{}, err
	}
	for _, p := range panels {
		if p.Item == item {
			return p, nil
		}
	}
	return Panel{}, fmt.Errorf("%w: item %q in group %q", dataset.ErrNotFound, item, group)
}

func (c *Controller) buildPanel(kind plot.Kind, group, item string) Panel {
	p := Panel{Group: group, Item: item}
	details := map[string]interface{}{"kind": kind.String(), "group": group, "item": item}

	m, overlay, err := c.store.Read(group, item)
	if err != nil {
		p.Err = NewPanelError(err, details)
		return p
	}

	// The simple histogram only takes a scalar reference value
	if kind == plot.KindHistogram {
		if _, ok := overlay.Scalar(); !ok {
			overlay = nil
		}
	}

	opts := c.options[kind]
	opts.Title = panelTitle(opts.Title, item)

	a, err := plot.Build(kind, m, overlay, opts)
	if err != nil {
		p.Err = NewPanelError(err, details)
		return p
	}
	p.Artifact = a
	return p
}

// Summary aggregates the samples of one item.
func (c *Controller) Summary(group, item string) (stats.Summary, error) {
	m, _, err := c.store.Read(group, item)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Aggregate(m)
}

func (c *Controller) exporter(dir, format string) (*export.Exporter, error) {
	return export.NewExporter(dir, format, c.cfg.Plotter.ExportEngine,
		c.cfg.Plotter.Width, c.cfg.Plotter.Height)
}

// fileNames returns the file name of every panel of a group. Items whose
// names only differ by path separators get numbered suffixes.
func fileNames(panels []Panel) []string {
	titles := make([]string, len(panels))
	for i, p := range panels {
		titles[i] = p.Item
		if p.Artifact != nil {
			titles[i] = p.Artifact.Title
		}
	}
	return export.UniqueNames(titles)
}

// ExportPanels writes the panels of group, or only item when not empty, in
// the configured output format and returns the written paths.
func (c *Controller) ExportPanels(ctx context.Context, kind plot.Kind, group, item string) ([]string, error) {
	panels, err := c.Panels(kind, group)
	if err != nil {
		return nil, err
	}
	names := fileNames(panels)

	run := config.RunName(c.now())
	e, err := c.exporter(c.cfg.RunDir(run), c.cfg.Plotter.OutputFormat)
	if err != nil {
		return nil, err
	}
	e = e.WithOutputDir(filepath.Join(e.OutputDir, export.SanitizeTitle(group)))
	ctx = logging.WithLogger(ctx, c.logger)

	found := item == ""
	paths := make([]string, 0, len(panels))
	for i, p := range panels {
		if item != "" && p.Item != item {
			continue
		}
		found = true
		if p.Err != nil {
			return paths, p.Err
		}
		path, err := e.ExportAs(ctx, p.Artifact, names[i])
		if err != nil {
			if ctx.Err() != nil {
				return paths, err
			}
			return paths, NewPanelError(err, map[string]interface{}{"group": p.Group, "item": p.Item})
		}
		paths = append(paths, path)
	}
	if !found {
		return nil, fmt.Errorf("%w: item %q in group %q", dataset.ErrNotFound, item, group)
	}
	return paths, nil
}

// ExportReport renders every panel of kind, tab by tab and item by item, and
// merges the pages into one PDF. Any failure aborts the export and no report
// is written. It returns the report path.
func (c *Controller) ExportReport(ctx context.Context, kind plot.Kind) (string, error) {
	if _, ok := c.options[kind]; !ok {
		return "", fmt.Errorf("%w: %q", plot.ErrUnsupportedPlotType, string(kind))
	}

	run := config.RunName(c.now())
	ctx = logging.WithRequestID(ctx, uuid.New().String())
	ctx = logging.WithRun(ctx, run)
	ctx = logging.WithKind(ctx, kind.String())
	ctx = logging.WithLogger(ctx, c.logger)
	logger := c.logger.WithContext(ctx)

	// Merged reports are PDF whatever the panel output format
	runDir := c.cfg.RunDir(run)
	e, err := c.exporter(runDir, export.FormatPDF)
	if err != nil {
		return "", err
	}

	start := time.Now()
	var pages []string

	for _, group := range c.store.Groups() {
		panels, err := c.Panels(kind, group)
		if err != nil {
			return "", err
		}
		names := fileNames(panels)
		ge := e.WithOutputDir(filepath.Join(runDir, export.SanitizeTitle(group)))

		for i, p := range panels {
			if err := ctx.Err(); err != nil {
				logger.Warn("Report export cancelled", "error", err)
				return "", err
			}
			if p.Err != nil {
				logger.Error("Report export aborted", "group", group, "item", p.Item, "error", p.Err)
				return "", p.Err
			}
			path, err := ge.ExportAs(ctx, p.Artifact, names[i])
			if err != nil {
				logger.Error("Report export aborted", "group", group, "item", p.Item, "error", err)
				return "", err
			}
			pages = append(pages, path)
		}
	}

	out := c.cfg.ReportPath(run)
	if err := export.Merge(pages, out); err != nil {
		logger.Error("Report merge failed", "pages", len(pages), "error", err)
		return "", err
	}

	logger.Info("Report exported",
		"path", out,
		"pages", len(pages),
		"duration", time.Since(start).String())
	return out, nil
}
