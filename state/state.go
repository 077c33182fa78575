// Package state holds the process-wide mutable stores: which canvas is
// active and what its grid looks like, and which pixel the user has
// selected. Each store has a single owning component funneling all
// mutation through named operations; presentation code only reads.
// Stores replace whole values under the lock rather than mutating them
// in place, so concurrent readers never observe a torn update.
package state

import (
	"sync"

	"github.com/canvaslabs/go-canvas/grid"
	"github.com/canvaslabs/go-canvas/registry"
)

// CanvasState is the active canvas and its latest grid snapshot.
type CanvasState struct {
	mu   sync.RWMutex
	desc *registry.Descriptor
	snap *grid.Snapshot
}

// NewCanvasState creates an empty store with no canvas selected.
func NewCanvasState() *CanvasState {
	return &CanvasState{}
}

// SelectCanvas switches the active canvas and drops the previous grid
// snapshot; the stale grid must never render against new addresses.
func (s *CanvasState) SelectCanvas(desc registry.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.desc = &desc
	s.snap = nil
}

// Descriptor returns the active canvas, if one is selected.
func (s *CanvasState) Descriptor() (registry.Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.desc == nil {
		return registry.Descriptor{}, false
	}
	return *s.desc, true
}

// ReplaceSnapshot installs a freshly fetched grid snapshot. The whole
// snapshot is swapped in one assignment; the map inside is treated as
// immutable from here on.
func (s *CanvasState) ReplaceSnapshot(snap *grid.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Snapshot returns the current grid snapshot, or nil before the first
// fetch completes.
func (s *CanvasState) Snapshot() *grid.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// UpdatePixel applies a targeted single-pixel update after a confirmed
// transaction, without waiting for the next full refetch. It copies the
// pixel map so readers holding the old snapshot are unaffected.
func (s *CanvasState) UpdatePixel(coord grid.Coord, pixel grid.Pixel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return
	}

	pixels := make(map[grid.Coord]grid.Pixel, len(s.snap.Pixels)+1)
	for k, v := range s.snap.Pixels {
		pixels[k] = v
	}
	pixels[coord] = pixel

	next := *s.snap
	next.Pixels = pixels
	s.snap = &next
}

// Selection is the pixel the user is focused on, independent of which
// canvas is active.
type Selection struct {
	mu    sync.RWMutex
	coord *grid.Coord
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Select focuses a pixel.
func (s *Selection) Select(coord grid.Coord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coord = &coord
}

// Clear drops the focus.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coord = nil
}

// Current returns the focused pixel, if any.
func (s *Selection) Current() (grid.Coord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.coord == nil {
		return grid.Coord{}, false
	}
	return *s.coord, true
}
