// Package datastore exposes the group/item namespace of a sample store and
// reads per-item sample matrices and overlays from it.
package datastore

import (
	"fmt"
	"strings"

	"github.com/soltixdb/modelviz/internal/dataset"
)

// Default dataset names inside an item, as written by the model pipeline.
const (
	DefaultModelDataset   = "model_values"
	DefaultOverlayDataset = "empirical_values"
)

// Store is the read contract consumed by the dashboard.
type Store interface {
	// Groups returns the group names in store order
	Groups() []string

	// Items returns the item names of a group in store order
	Items(group string) ([]string, error)

	// Read returns the sample matrix of an item and its overlay, if any.
	// The overlay is nil when the item has none.
	Read(group, item string) (dataset.Matrix, *dataset.Overlay, error)

	// Close releases the underlying handle
	Close() error
}

// namespace keeps groups and items in insertion order.
type namespace struct {
	groups []string
	items  map[string][]string
}

func newNamespace() *namespace {
	return &namespace{items: make(map[string][]string)}
}

func (n *namespace) add(group, item string) bool {
	items, ok := n.items[group]
	if !ok {
		n.groups = append(n.groups, group)
	}
	for _, it := range items {
		if it == item {
			return false
		}
	}
	n.items[group] = append(items, item)
	return true
}

func (n *namespace) Groups() []string {
	return append([]string(nil), n.groups...)
}

func (n *namespace) Items(group string) ([]string, error) {
	items, ok := n.items[group]
	if !ok {
		return nil, fmt.Errorf("%w: group %q", dataset.ErrNotFound, group)
	}
	return append([]string(nil), items...), nil
}

func (n *namespace) has(group, item string) bool {
	for _, it := range n.items[group] {
		if it == item {
			return true
		}
	}
	return false
}

// splitDatasetPath splits "/group/item/dataset" into its parts. Items may be
// nested, in which case every segment between the group and the dataset name
// forms the item name.
func splitDatasetPath(path string) (group, item, name string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 3 {
		return "", "", "", false
	}
	for _, p := range parts {
		if p == "" {
			return "", "", "", false
		}
	}
	return parts[0], strings.Join(parts[1:len(parts)-1], "/"), parts[len(parts)-1], true
}
