package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Merge concatenates the PDF files in paths, in order, into out. Every input
// is validated before anything is written; on failure out is left untouched.
func Merge(paths []string, out string) error {
	if len(paths) == 0 {
		return fmt.Errorf("%w: no input files", ErrMerge)
	}

	conf := pdfConfig()
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMerge, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", ErrMerge, p)
		}
		if err := api.ValidateFile(p, conf); err != nil {
			return fmt.Errorf("%w: %s is not a valid PDF: %v", ErrMerge, p, err)
		}
	}

	dir := filepath.Dir(out)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrMerge, err)
	}
	tmp, err := os.CreateTemp(dir, ".merge-*.pdf")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMerge, err)
	}
	tmpName := tmp.Name()
	tmp.Close()

	if err := api.MergeCreateFile(paths, tmpName, false, conf); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrMerge, err)
	}
	if err := os.Rename(tmpName, out); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrMerge, err)
	}
	return nil
}
