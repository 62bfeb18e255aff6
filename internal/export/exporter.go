// Package export writes plot artifacts to image files and merges rendered
// pages into a single PDF report.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/soltixdb/modelviz/internal/logging"
	"github.com/soltixdb/modelviz/internal/plot"
)

var (
	// ErrRender is returned when an artifact cannot be written to an image.
	ErrRender = errors.New("render failed")

	// ErrMerge is returned when rendered pages cannot be merged.
	ErrMerge = errors.New("merge failed")
)

// Supported output formats
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatPDF = "pdf"
)

// EngineGoChart is the only render engine.
const EngineGoChart = "gochart"

const (
	DefaultWidth  = 1200
	DefaultHeight = 800
)

var disablePDFConfigDir sync.Once

// pdfConfig returns a pdfcpu configuration that never touches the user's
// config directory.
func pdfConfig() *model.Configuration {
	disablePDFConfigDir.Do(api.DisableConfigDir)
	return model.NewDefaultConfiguration()
}

// Formats lists the supported output formats.
func Formats() []string {
	return []string{FormatPNG, FormatSVG, FormatPDF}
}

// ValidateFormat reports whether format can be exported.
func ValidateFormat(format string) error {
	switch format {
	case FormatPNG, FormatSVG, FormatPDF:
		return nil
	}
	return fmt.Errorf("%w: unsupported format %q (supported: %s)", ErrRender, format, strings.Join(Formats(), ", "))
}

// ValidateEngine reports whether engine can render artifacts.
func ValidateEngine(engine string) error {
	if engine == EngineGoChart {
		return nil
	}
	return fmt.Errorf("%w: unsupported engine %q", ErrRender, engine)
}

// Exporter writes artifacts as <OutputDir>/<title>.<Format>.
type Exporter struct {
	OutputDir string
	Format    string
	Engine    string
	Width     int
	Height    int
}

// NewExporter creates an exporter after checking format and engine.
func NewExporter(outputDir, format, engine string, width, height int) (*Exporter, error) {
	if engine == "" {
		engine = EngineGoChart
	}
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	if err := ValidateEngine(engine); err != nil {
		return nil, err
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	return &Exporter{
		OutputDir: outputDir,
		Format:    format,
		Engine:    engine,
		Width:     width,
		Height:    height,
	}, nil
}

// WithOutputDir returns a copy of the exporter writing into dir.
func (e *Exporter) WithOutputDir(dir string) *Exporter {
	cp := *e
	cp.OutputDir = dir
	return &cp
}

// FileName returns the file name an artifact titled title is written to.
func (e *Exporter) FileName(title string) string {
	return SanitizeTitle(title) + "." + e.Format
}

// SanitizeTitle makes a plot title usable as a file name.
func SanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, title)
	if title == "" || title == "." || title == ".." {
		return "plot"
	}
	return title
}

// UniqueNames sanitises titles and appends _2, _3 ... to any name already
// taken, so artifacts written to one directory never replace each other.
// Names are compared case-insensitively.
func UniqueNames(titles []string) []string {
	names := make([]string, len(titles))
	taken := make(map[string]bool, len(titles))
	for i, title := range titles {
		base := SanitizeTitle(title)
		name := base
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		taken[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

// Export writes a under its title and returns the path of the written file.
func (e *Exporter) Export(ctx context.Context, a *plot.Artifact) (string, error) {
	if a == nil {
		return "", fmt.Errorf("%w: nil artifact", ErrRender)
	}
	return e.ExportAs(ctx, a, a.Title)
}

// ExportAs writes a as <OutputDir>/<name>.<Format>. It logs through the
// logger carried by ctx.
func (e *Exporter) ExportAs(ctx context.Context, a *plot.Artifact, name string) (string, error) {
	if a == nil {
		return "", fmt.Errorf("%w: nil artifact", ErrRender)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := ValidateEngine(e.Engine); err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create output directory: %v", ErrRender, err)
	}

	path := filepath.Join(e.OutputDir, e.FileName(name))

	var err error
	switch e.Format {
	case FormatPNG:
		err = e.writeImage(path, a, chart.PNG)
	case FormatSVG:
		err = e.writeImage(path, a, chart.SVG)
	case FormatPDF:
		err = e.writePDF(path, a)
	default:
		err = ValidateFormat(e.Format)
	}
	if err != nil {
		return "", err
	}

	logging.FromContext(ctx).WithContext(ctx).Debug("Plot exported",
		"path", path,
		"kind", a.Kind.String(),
		"format", e.Format)
	return path, nil
}

// writeImage renders into a temporary sibling and renames it into place.
func (e *Exporter) writeImage(path string, a *plot.Artifact, rp chart.RendererProvider) error {
	return writeAtomic(path, func(w io.Writer) error {
		if err := a.Render(w, rp, e.Width, e.Height); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrRender, a.Title, err)
		}
		return nil
	})
}

// writePDF renders a PNG and wraps it into a one-page PDF.
func (e *Exporter) writePDF(path string, a *plot.Artifact) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".page-*.png")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := a.Render(tmp, chart.PNG, e.Width, e.Height); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %s: %v", ErrRender, a.Title, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}

	// ImportImagesFile appends to an existing file
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if err := api.ImportImagesFile([]string{tmpName}, path, pdfcpu.DefaultImportConfig(), pdfConfig()); err != nil {
		os.Remove(path)
		return fmt.Errorf("%w: %s: %v", ErrRender, a.Title, err)
	}
	return nil
}

func writeAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	return nil
}
