package datastore

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/scigolib/hdf5"

	"github.com/soltixdb/modelviz/internal/dataset"
	"github.com/soltixdb/modelviz/internal/logging"
)

// shapeDataset optionally stores the dims of the model dataset when the file
// format does not carry them.
const shapeDataset = "shape"

// HDF5Options selects which datasets of an item are read.
type HDF5Options struct {
	ModelDataset   string
	OverlayDataset string
	// TimeMajor is set when the model dataset is stored as T×N instead of N×T.
	TimeMajor bool
}

func (o HDF5Options) withDefaults() HDF5Options {
	if o.ModelDataset == "" {
		o.ModelDataset = DefaultModelDataset
	}
	if o.OverlayDataset == "" {
		o.OverlayDataset = DefaultOverlayDataset
	}
	return o
}

// HDF5Store reads items laid out as /<group>/<item>/<dataset>. The file is
// opened once, read-only, and held until Close.
type HDF5Store struct {
	mu       sync.Mutex
	path     string
	file     *hdf5.File
	opts     HDF5Options
	ns       *namespace
	datasets map[string]*hdf5.Dataset
	logger   *logging.Logger
}

// OpenHDF5 opens path and indexes every item that has a model dataset.
func OpenHDF5(path string, opts HDF5Options, logger *logging.Logger) (*HDF5Store, error) {
	if logger == nil {
		logger = logging.Global()
	}
	opts = opts.withDefaults()

	file, err := hdf5.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hdf5 file %s: %w", path, err)
	}

	s := &HDF5Store{
		path:     path,
		file:     file,
		opts:     opts,
		ns:       newNamespace(),
		datasets: make(map[string]*hdf5.Dataset),
		logger:   logger,
	}

	skipped := 0
	file.Walk(func(p string, obj hdf5.Object) {
		ds, ok := obj.(*hdf5.Dataset)
		if !ok {
			return
		}
		group, item, name, ok := splitDatasetPath(p)
		if !ok {
			skipped++
			return
		}
		s.datasets[datasetKey(group, item, name)] = ds
		if name == opts.ModelDataset {
			s.ns.add(group, item)
		}
	})

	logger.Info("HDF5 store opened",
		"path", path,
		"groups", len(s.ns.groups),
		"datasets", len(s.datasets),
		"skipped", skipped)

	return s, nil
}

func datasetKey(group, item, name string) string {
	return entryKey(group, item) + "\x00" + name
}

// Path returns the file path the store was opened from.
func (s *HDF5Store) Path() string {
	return s.path
}

// Groups implements Store.
func (s *HDF5Store) Groups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ns.Groups()
}

// Items implements Store.
func (s *HDF5Store) Items(group string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ns.Items(group)
}

// Read implements Store.
func (s *HDF5Store) Read(group, item string) (dataset.Matrix, *dataset.Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return dataset.Matrix{}, nil, fmt.Errorf("hdf5 store %s is closed", s.path)
	}
	if !s.ns.has(group, item) {
		return dataset.Matrix{}, nil, fmt.Errorf("%w: %s/%s", dataset.ErrNotFound, group, item)
	}

	model := s.datasets[datasetKey(group, item, s.opts.ModelDataset)]
	values, err := model.Read()
	if err != nil {
		return dataset.Matrix{}, nil, fmt.Errorf("failed to read %s/%s/%s: %w", group, item, s.opts.ModelDataset, err)
	}

	var overlay *dataset.Overlay
	if ds, ok := s.datasets[datasetKey(group, item, s.opts.OverlayDataset)]; ok {
		ov, err := ds.Read()
		if err != nil {
			return dataset.Matrix{}, nil, fmt.Errorf("failed to read %s/%s/%s: %w", group, item, s.opts.OverlayDataset, err)
		}
		overlay = dataset.NewOverlay(ov)
	}

	dims, err := datasetDims(model)
	if err != nil {
		return dataset.Matrix{}, nil, fmt.Errorf("failed to inspect %s/%s/%s: %w", group, item, s.opts.ModelDataset, err)
	}
	if dims == nil {
		if ds, ok := s.datasets[datasetKey(group, item, shapeDataset)]; ok {
			shape, err := ds.Read()
			if err != nil {
				return dataset.Matrix{}, nil, fmt.Errorf("failed to read %s/%s/%s: %w", group, item, shapeDataset, err)
			}
			dims = make([]uint64, len(shape))
			for i, v := range shape {
				dims[i] = uint64(v)
			}
		}
	}

	m, err := shapeMatrix(values, dims, overlay.Len(), s.opts.TimeMajor)
	if err != nil {
		return dataset.Matrix{}, nil, fmt.Errorf("%s/%s: %w", group, item, err)
	}
	return m, overlay, nil
}

// Close implements Store. It is safe to call more than once.
func (s *HDF5Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.datasets = nil
	s.logger.Debug("HDF5 store closed", "path", s.path)
	return err
}

// datasetDims returns the dataspace dims of ds, nil for scalars.
func datasetDims(ds *hdf5.Dataset) ([]uint64, error) {
	info, err := ds.Info()
	if err != nil {
		return nil, err
	}
	return parseDataspaceDims(info), nil
}

// parseDataspaceDims extracts dims from a dataset description such as
// "Dataset: float64, 2D array [3 x 4], contiguous" or "3D array [2 3 4]".
func parseDataspaceDims(info string) []uint64 {
	i := strings.Index(info, "D array [")
	if i < 0 {
		return nil
	}
	rest := info[i+len("D array ["):]
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return nil
	}

	var dims []uint64
	for _, f := range strings.Fields(rest[:end]) {
		if f == "x" {
			continue
		}
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil
		}
		dims = append(dims, n)
	}
	return dims
}

// shapeMatrix arranges a flat read into an N×T matrix. Two dims are used as
// stored. Without dims, an overlay of length T fixes the column count. A
// vector is a single sample whatever the orientation.
func shapeMatrix(values []float64, dims []uint64, overlayLen int, timeMajor bool) (dataset.Matrix, error) {
	var rows, cols int
	switch {
	case len(dims) > 2:
		return dataset.Matrix{}, fmt.Errorf("%w: %d-dimensional model dataset", dataset.ErrInvalidShape, len(dims))
	case len(dims) == 2:
		rows, cols = int(dims[0]), int(dims[1])
	case len(dims) == 1:
		return dataset.New(values, 1, int(dims[0]))
	case overlayLen > 1 && len(values)%overlayLen == 0:
		rows, cols = len(values)/overlayLen, overlayLen
		if timeMajor {
			rows, cols = cols, rows
		}
	default:
		return dataset.New(values, 1, len(values))
	}

	m, err := dataset.New(values, rows, cols)
	if err != nil {
		return dataset.Matrix{}, err
	}
	if timeMajor {
		return m.Transpose(), nil
	}
	return m, nil
}
