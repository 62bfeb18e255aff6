package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/modelviz/internal/config"
	"github.com/soltixdb/modelviz/internal/datastore"
	"github.com/soltixdb/modelviz/internal/dataset"
	"github.com/soltixdb/modelviz/internal/export"
	"github.com/soltixdb/modelviz/internal/logging"
	"github.com/soltixdb/modelviz/internal/plot"
)

func randomMatrix(t *testing.T, seed int64, rows, cols int) dataset.Matrix {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = float64(i%cols) + rng.NormFloat64()
	}
	m, err := dataset.New(data, rows, cols)
	require.NoError(t, err)
	return m
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.App.OutputDir = t.TempDir()
	cfg.Plotter.Width = 480
	cfg.Plotter.Height = 320
	return cfg
}

func newTestController(t *testing.T, store datastore.Store, cfg *config.Config) *Controller {
	t.Helper()
	c, err := New(store, cfg, logging.NewNop())
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	return c
}

func healthyStore(t *testing.T) *datastore.MemoryStore {
	t.Helper()
	s := datastore.NewMemoryStore()
	s.Put("equities", "stock_a", randomMatrix(t, 1, 20, 10), dataset.NewOverlay([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
	s.Put("equities", "stock_b", randomMatrix(t, 2, 20, 10), nil)
	s.Put("rates", "curve", randomMatrix(t, 3, 15, 6), dataset.NewOverlay([]float64{2.5}))
	return s
}

func TestController_Tabs(t *testing.T) {
	c := newTestController(t, healthyStore(t), testConfig(t))
	assert.Equal(t, []string{"equities", "rates"}, c.Tabs())

	items, err := c.Items("equities")
	require.NoError(t, err)
	assert.Equal(t, []string{"stock_a", "stock_b"}, items)
}

func TestController_Panels(t *testing.T) {
	c := newTestController(t, healthyStore(t), testConfig(t))

	for _, kind := range plot.Kinds() {
		panels, err := c.Panels(kind, "equities")
		require.NoError(t, err)
		require.Len(t, panels, 2)
		for _, p := range panels {
			assert.Nil(t, p.Err)
			require.NotNil(t, p.Artifact)
			assert.Equal(t, p.Item, p.Artifact.Title)
			assert.Equal(t, kind, p.Artifact.Kind)
		}
	}

	_, err := c.Panels(plot.KindHistogram2D, "fx")
	assert.True(t, errors.Is(err, dataset.ErrNotFound))

	_, err = c.Panels(plot.Kind("scatter"), "equities")
	assert.True(t, errors.Is(err, plot.ErrUnsupportedPlotType))
}

func TestController_PanelsAreMemoised(t *testing.T) {
	c := newTestController(t, healthyStore(t), testConfig(t))

	first, err := c.Panels(plot.KindBoxPlotOverTime, "equities")
	require.NoError(t, err)
	second, err := c.Panels(plot.KindBoxPlotOverTime, "equities")
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Same(t, first[i].Artifact, second[i].Artifact)
	}
	assert.Equal(t, uint64(1), c.CacheStats()["hits"])

	other, err := c.Panels(plot.KindHistogram2D, "equities")
	require.NoError(t, err)
	assert.NotSame(t, first[0].Artifact, other[0].Artifact)
}

func TestController_PanelFailuresAreIsolated(t *testing.T) {
	s := healthyStore(t)
	empty, err := dataset.New(nil, 0, 4)
	require.NoError(t, err)
	s.Put("equities", "misaligned", randomMatrix(t, 4, 5, 5), dataset.NewOverlay([]float64{1, 2}))
	s.Put("equities", "empty", empty, nil)

	c := newTestController(t, s, testConfig(t))
	panels, err := c.Panels(plot.KindHistogram2D, "equities")
	require.NoError(t, err)
	require.Len(t, panels, 4)

	assert.NotNil(t, panels[0].Artifact)
	assert.NotNil(t, panels[1].Artifact)

	require.NotNil(t, panels[2].Err)
	assert.Equal(t, CodeInvalidShape, panels[2].Err.Code)
	assert.True(t, errors.Is(panels[2].Err, dataset.ErrInvalidShape))
	assert.Equal(t, "misaligned", panels[2].Err.Details["item"])

	require.NotNil(t, panels[3].Err)
	assert.Equal(t, CodeEmptyData, panels[3].Err.Code)

	rates, err := c.Panels(plot.KindHistogram2D, "rates")
	require.NoError(t, err)
	assert.Nil(t, rates[0].Err)
}

func TestController_PanelTitlePrefix(t *testing.T) {
	cfg := testConfig(t)
	cfg.BoxPlotOverTime.Title = "Spread"
	c := newTestController(t, healthyStore(t), cfg)

	p, err := c.Panel(plot.KindBoxPlotOverTime, "rates", "curve")
	require.NoError(t, err)
	assert.Equal(t, "Spread - curve", p.Artifact.Title)

	_, err = c.Panel(plot.KindBoxPlotOverTime, "rates", "missing")
	assert.True(t, errors.Is(err, dataset.ErrNotFound))
}

func TestController_HistogramUsesScalarReferenceOnly(t *testing.T) {
	c := newTestController(t, healthyStore(t), testConfig(t))

	p, err := c.Panel(plot.KindHistogram, "equities", "stock_a")
	require.NoError(t, err)
	require.Nil(t, p.Err)
	assert.Len(t, p.Artifact.Chart.Series, 1)

	p, err = c.Panel(plot.KindHistogram, "rates", "curve")
	require.NoError(t, err)
	require.Nil(t, p.Err)
	assert.Len(t, p.Artifact.Chart.Series, 2)
}

func TestController_Summary(t *testing.T) {
	c := newTestController(t, healthyStore(t), testConfig(t))

	s, err := c.Summary("rates", "curve")
	require.NoError(t, err)
	assert.Equal(t, 6, s.Len())

	_, err = c.Summary("rates", "nope")
	assert.True(t, errors.Is(err, dataset.ErrNotFound))
}

func TestController_ExportReport(t *testing.T) {
	cfg := testConfig(t)
	c := newTestController(t, healthyStore(t), cfg)

	out, err := c.ExportReport(context.Background(), plot.KindBoxPlotOverTime)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.App.OutputDir, "2024-03-09_14-05-07", "model_viz_2024-03-09_14-05-07.pdf"), out)

	n, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, page := range []string{"equities/stock_a.pdf", "equities/stock_b.pdf", "rates/curve.pdf"} {
		assert.FileExists(t, filepath.Join(cfg.App.OutputDir, "2024-03-09_14-05-07", page))
	}
}

func TestController_ExportReportAbortsOnPanelFailure(t *testing.T) {
	cfg := testConfig(t)
	s := healthyStore(t)
	s.Put("rates", "broken", randomMatrix(t, 5, 4, 6), dataset.NewOverlay([]float64{1, 2, 3}))
	c := newTestController(t, s, cfg)

	_, err := c.ExportReport(context.Background(), plot.KindHistogram2D)
	require.Error(t, err)
	assert.Equal(t, CodeInvalidShape, ErrorCode(err))
	assert.NoFileExists(t, cfg.ReportPath("2024-03-09_14-05-07"))
}

func TestController_ExportReportCancelled(t *testing.T) {
	cfg := testConfig(t)
	c := newTestController(t, healthyStore(t), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ExportReport(ctx, plot.KindHistogram2D)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NoFileExists(t, cfg.ReportPath("2024-03-09_14-05-07"))
}

func TestController_ExportReportEmptyStore(t *testing.T) {
	c := newTestController(t, datastore.NewMemoryStore(), testConfig(t))

	_, err := c.ExportReport(context.Background(), plot.KindHistogram2D)
	assert.True(t, errors.Is(err, export.ErrMerge))
}

func TestController_ExportPanels(t *testing.T) {
	cfg := testConfig(t)
	cfg.Plotter.OutputFormat = export.FormatPNG
	c := newTestController(t, healthyStore(t), cfg)

	paths, err := c.ExportPanels(context.Background(), plot.KindHistogram2D, "equities", "")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for i, item := range []string{"stock_a", "stock_b"} {
		assert.Equal(t, filepath.Join(cfg.RunDir("2024-03-09_14-05-07"), "equities", item+".png"), paths[i])
		info, err := os.Stat(paths[i])
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	paths, err = c.ExportPanels(context.Background(), plot.KindHistogram2D, "equities", "stock_b")
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{err: fmt.Errorf("read: %w", dataset.ErrInvalidShape), code: CodeInvalidShape},
		{err: dataset.ErrEmptyData, code: CodeEmptyData},
		{err: dataset.ErrNotFound, code: CodeNotFound},
		{err: plot.ErrUnsupportedPlotType, code: CodeUnsupportedKind},
		{err: export.ErrRender, code: CodeRenderFailed},
		{err: export.ErrMerge, code: CodeMergeFailed},
		{err: errors.New("boom"), code: CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			pe := NewPanelError(tt.err, nil)
			require.NotNil(t, pe)
			assert.Equal(t, tt.code, pe.Code)
			assert.Equal(t, tt.err.Error(), pe.Error())
			assert.Same(t, pe, NewPanelError(pe, nil))
		})
	}

	assert.Nil(t, NewPanelError(nil, nil))
}

func TestOptionsFor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Histogram2D.ColorScale = "hot"
	cfg.Histogram2D.ScatterMode = "markers"
	cfg.BoxPlotOverTime.BoxPoints = true
	cfg.DateAxis.Epoch = "2021-06-30"

	opts, err := OptionsFor(cfg, plot.KindHistogram2D)
	require.NoError(t, err)
	assert.Equal(t, "hot", opts.Histogram2D.ColorScale)
	assert.Equal(t, plot.ModeMarkers, opts.Overlay.Mode)
	assert.Equal(t, time.Date(2021, 6, 30, 0, 0, 0, 0, time.UTC), opts.DateAxis.Epoch)
	assert.True(t, opts.DateAxis.Enabled)

	opts, err = OptionsFor(cfg, plot.KindBoxPlotOverTime)
	require.NoError(t, err)
	assert.True(t, opts.BoxPlot.ShowOutliers)
	assert.True(t, opts.BoxPlot.ShowFences)

	_, err = OptionsFor(cfg, plot.Kind("pie"))
	assert.True(t, errors.Is(err, plot.ErrUnsupportedPlotType))
}

func TestController_ExportReportCollidingItemNames(t *testing.T) {
	cfg := testConfig(t)
	s := datastore.NewMemoryStore()
	s.Put("eu", "eu/stock_b", randomMatrix(t, 6, 10, 5), nil)
	s.Put("eu", "eu_stock_b", randomMatrix(t, 7, 10, 5), nil)
	c := newTestController(t, s, cfg)

	out, err := c.ExportReport(context.Background(), plot.KindHistogram)
	require.NoError(t, err)

	n, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	groupDir := filepath.Join(cfg.RunDir("2024-03-09_14-05-07"), "eu")
	assert.FileExists(t, filepath.Join(groupDir, "eu_stock_b.pdf"))
	assert.FileExists(t, filepath.Join(groupDir, "eu_stock_b_2.pdf"))

	cfg.Plotter.OutputFormat = export.FormatSVG
	c = newTestController(t, s, cfg)
	paths, err := c.ExportPanels(context.Background(), plot.KindHistogram, "eu", "eu_stock_b")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(groupDir, "eu_stock_b_2.svg")}, paths)

	_, err = c.ExportPanels(context.Background(), plot.KindHistogram, "eu", "missing")
	assert.True(t, errors.Is(err, dataset.ErrNotFound))
}
