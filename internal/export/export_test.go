package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/modelviz/internal/dataset"
	"github.com/soltixdb/modelviz/internal/logging"
	"github.com/soltixdb/modelviz/internal/plot"
)

func testArtifact(t *testing.T, kind plot.Kind, title string) *plot.Artifact {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	rows := make([][]float64, 25)
	for i := range rows {
		rows[i] = make([]float64, 12)
		for j := range rows[i] {
			rows[i][j] = float64(j) + rng.Float64()
		}
	}
	m, err := dataset.FromRows(rows)
	require.NoError(t, err)

	opts := plot.DefaultOptions()
	opts.Title = title
	a, err := plot.Build(kind, m, nil, opts)
	require.NoError(t, err)
	return a
}

func TestNewExporter_Validation(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		engine  string
		wantErr bool
	}{
		{name: "png", format: "png", engine: "gochart"},
		{name: "svg default engine", format: "svg"},
		{name: "pdf", format: "pdf", engine: "gochart"},
		{name: "unknown format", format: "jpeg", engine: "gochart", wantErr: true},
		{name: "unknown engine", format: "png", engine: "kaleido", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewExporter(t.TempDir(), tt.format, tt.engine, 0, 0)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrRender))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultWidth, e.Width)
			assert.Equal(t, DefaultHeight, e.Height)
			assert.Equal(t, EngineGoChart, e.Engine)
		})
	}
}

func TestSanitizeTitle(t *testing.T) {
	assert.Equal(t, "equities_stock_a", SanitizeTitle("equities/stock_a"))
	assert.Equal(t, "a_b", SanitizeTitle(`a\b`))
	assert.Equal(t, "plot", SanitizeTitle("  "))
	assert.Equal(t, "plot", SanitizeTitle(".."))
	assert.Equal(t, "Boxplot over Time", SanitizeTitle("Boxplot over Time"))
	assert.Equal(t, "nul_byte", SanitizeTitle("nul\x00byte"))
	assert.Equal(t, "a__b", SanitizeTitle(`a/\b`))
}

func TestUniqueNames(t *testing.T) {
	tests := []struct {
		name   string
		titles []string
		want   []string
	}{
		{name: "distinct", titles: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "separator collision", titles: []string{"eu/stock_b", "eu_stock_b"}, want: []string{"eu_stock_b", "eu_stock_b_2"}},
		{name: "three way", titles: []string{"x", "x", "x"}, want: []string{"x", "x_2", "x_3"}},
		{name: "suffix already taken", titles: []string{"x", "x_2", "x"}, want: []string{"x", "x_2", "x_3"}},
		{name: "case insensitive", titles: []string{"Curve", "curve"}, want: []string{"Curve", "curve_2"}},
		{name: "empty titles", titles: []string{"", " "}, want: []string{"plot", "plot_2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UniqueNames(tt.titles))
		})
	}
}

func TestExportAs_CollidingTitles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e, err := NewExporter(dir, FormatPNG, EngineGoChart, 320, 240)
	require.NoError(t, err)

	first := testArtifact(t, plot.KindHistogram, "eu/stock_b")
	second := testArtifact(t, plot.KindHistogram, "eu_stock_b")
	names := UniqueNames([]string{first.Title, second.Title})

	p1, err := e.ExportAs(ctx, first, names[0])
	require.NoError(t, err)
	p2, err := e.ExportAs(ctx, second, names[1])
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2)
	assert.FileExists(t, p1)
	assert.FileExists(t, p2)
}

func TestExport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	e, err := NewExporter(dir, FormatPNG, EngineGoChart, 320, 240)
	require.NoError(t, err)
	_, err = e.Export(ctx, testArtifact(t, plot.KindHistogram, "h"))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NoFileExists(t, filepath.Join(dir, "h.png"))
}

func TestExport_ImageFormats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a := testArtifact(t, plot.KindBoxPlotOverTime, "stock/a")

	png, err := NewExporter(dir, FormatPNG, EngineGoChart, 640, 480)
	require.NoError(t, err)
	path, err := png.Export(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "stock_a.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	svg := png.WithOutputDir(filepath.Join(dir, "svg"))
	svg.Format = FormatSVG
	path, err = svg.Export(ctx, a)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".export-")
	}
}

func TestExport_RejectsUnknownEngine(t *testing.T) {
	ctx := context.Background()
	e := &Exporter{OutputDir: t.TempDir(), Format: FormatPNG, Engine: "matplotlib"}
	_, err := e.Export(ctx, testArtifact(t, plot.KindHistogram, "h"))
	assert.True(t, errors.Is(err, ErrRender))

	_, err = (&Exporter{OutputDir: t.TempDir(), Format: FormatPNG, Engine: EngineGoChart}).Export(ctx, nil)
	assert.True(t, errors.Is(err, ErrRender))
}

func TestExportAndMerge(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e, err := NewExporter(dir, FormatPDF, EngineGoChart, 800, 600)
	require.NoError(t, err)

	first, err := e.Export(ctx, testArtifact(t, plot.KindHistogram2D, "first"))
	require.NoError(t, err)
	second, err := e.Export(ctx, testArtifact(t, plot.KindBoxPlotOverTime, "second"))
	require.NoError(t, err)

	n, err := api.PageCountFile(first)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	out := filepath.Join(dir, "report", "merged.pdf")
	require.NoError(t, Merge([]string{first, second}, out))

	n, err = api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// exporting again replaces rather than appends
	first, err = e.Export(ctx, testArtifact(t, plot.KindHistogram2D, "first"))
	require.NoError(t, err)
	n, err = api.PageCountFile(first)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMerge_MissingInputLeavesNoOutput(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e, err := NewExporter(dir, FormatPDF, EngineGoChart, 400, 300)
	require.NoError(t, err)
	first, err := e.Export(ctx, testArtifact(t, plot.KindHistogram, "only"))
	require.NoError(t, err)

	out := filepath.Join(dir, "merged.pdf")
	err = Merge([]string{first, filepath.Join(dir, "missing.pdf")}, out)
	assert.True(t, errors.Is(err, ErrMerge))
	assert.NoFileExists(t, out)

	err = Merge(nil, out)
	assert.True(t, errors.Is(err, ErrMerge))
	assert.NoFileExists(t, out)
}

func TestMerge_InvalidInput(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.pdf")
	require.NoError(t, os.WriteFile(bogus, []byte("not a pdf"), 0o644))

	out := filepath.Join(dir, "merged.pdf")
	err := Merge([]string{bogus}, out)
	assert.True(t, errors.Is(err, ErrMerge))
	assert.NoFileExists(t, out)

	err = Merge([]string{dir}, out)
	assert.True(t, errors.Is(err, ErrMerge))
}

func TestExport_LogsThroughContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.NewWithWriter(&buf, zerolog.DebugLevel))
	ctx = logging.WithRequestID(ctx, "req-7")

	e, err := NewExporter(t.TempDir(), FormatSVG, EngineGoChart, 320, 240)
	require.NoError(t, err)
	path, err := e.Export(ctx, testArtifact(t, plot.KindHistogram, "logged"))
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Plot exported", entry["message"])
	assert.Equal(t, path, entry["path"])
	assert.Equal(t, "req-7", entry["request_id"])
}
