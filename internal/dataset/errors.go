// Package dataset holds the in-memory sample data that plot builders consume:
// the N×T sample matrix and its optional overlay series.
package dataset

import "errors"

var (
	// ErrInvalidShape is returned for malformed dimensionality: ragged rows,
	// buffers that do not match their dimensions, misaligned overlays.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrEmptyData is returned when a matrix has zero rows or zero columns.
	ErrEmptyData = errors.New("empty data")

	// ErrNotFound is returned for unknown groups, items or tabs.
	ErrNotFound = errors.New("not found")
)
