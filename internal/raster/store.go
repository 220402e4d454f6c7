package raster

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrLayerNotFound is returned when a named layer is not loaded.
var ErrLayerNotFound = errors.New("raster layer not found")

// Layer describes a loaded raster.
type Layer struct {
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Header Header `json:"header"`
	Stats  Stats  `json:"stats"`
}

// Store holds raster layers and answers cell lookups.
type Store interface {
	// Add loads g under name, replacing any layer with the same name.
	Add(ctx context.Context, name string, role Role, g *Grid) error
	// Layers lists the loaded layers ordered by name.
	Layers(ctx context.Context) ([]Layer, error)
	// Layer returns one layer.
	Layer(ctx context.Context, name string) (Layer, error)
	// Value returns the cell value. ok is false for nodata or out-of-grid cells.
	Value(ctx context.Context, name string, row, col int) (v float64, ok bool, err error)
	Close() error
}

type memoryLayer struct {
	Layer
	grid *Grid
}

// MemoryStore keeps grids in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	layers map[string]*memoryLayer
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{layers: make(map[string]*memoryLayer)}
}

func (s *MemoryStore) Add(_ context.Context, name string, role Role, g *Grid) error {
	if name == "" {
		return fmt.Errorf("layer name is required")
	}
	if g == nil || len(g.Values) != g.Rows*g.Cols {
		return fmt.Errorf("layer %s: %w: cell count does not match header", name, ErrFormat)
	}
	l := &memoryLayer{
		Layer: Layer{Name: name, Role: role, Header: g.Header, Stats: ComputeStats(g)},
		grid:  g,
	}
	s.mu.Lock()
	s.layers[name] = l
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Layers(_ context.Context) ([]Layer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Layer, 0, len(s.layers))
	for _, l := range s.layers {
		out = append(out, l.Layer)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) Layer(_ context.Context, name string) (Layer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.layers[name]
	if !ok {
		return Layer{}, fmt.Errorf("%w: %s", ErrLayerNotFound, name)
	}
	return l.Layer, nil
}

func (s *MemoryStore) Value(_ context.Context, name string, row, col int) (float64, bool, error) {
	s.mu.RLock()
	l, ok := s.layers[name]
	s.mu.RUnlock()
	if !ok {
		return 0, false, fmt.Errorf("%w: %s", ErrLayerNotFound, name)
	}
	v, ok := l.grid.At(row, col)
	return v, ok, nil
}

func (s *MemoryStore) Close() error { return nil }
