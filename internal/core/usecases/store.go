package usecases

import (
	"sync"

	"github.com/jortega/routesketch/internal/core/domain"
	"github.com/jortega/routesketch/internal/pkg/geospatial"
)

// MainRouteStore holds the live route. It implements ports.RouteStore with
// internal locking so display observers can read while a mutation holds the
// editor guard.
type MainRouteStore struct {
	mu      sync.RWMutex
	markers []domain.Marker
	lines   []domain.Line
}

// NewMainRouteStore creates an empty route store.
func NewMainRouteStore() *MainRouteStore {
	return &MainRouteStore{}
}

// Markers returns a deep copy of the marker sequence.
func (s *MainRouteStore) Markers() []domain.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneMarkers(s.markers)
}

// Lines returns a deep copy of the line collection.
func (s *MainRouteStore) Lines() []domain.Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneLines(s.lines)
}

// ReplaceMarkers atomically swaps in a new marker sequence.
func (s *MainRouteStore) ReplaceMarkers(markers []domain.Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = domain.CloneMarkers(markers)
}

// ReplaceLines atomically swaps in a new line collection.
func (s *MainRouteStore) ReplaceLines(lines []domain.Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = domain.CloneLines(lines)
}

// ShadowEditStore is the bulk-edit shadow model: the section being redrawn
// lives here while the main route stays untouched. It implements
// ports.RouteStore so the ordinary mutation operations run against it
// unchanged, and additionally carries the splice bookkeeping: the finish
// marker the drawing must reach, the bracketing indices into the main
// route, and the undo-log backup taken when the session began.
type ShadowEditStore struct {
	mu      sync.RWMutex
	markers []domain.Marker
	lines   []domain.Line

	finish     domain.Marker
	startIndex int
	endIndex   int
	undoBackup []domain.UndoRecord
}

// NewShadowEditStore starts a session seeded with a copy of the section's
// start marker (stripped of its main-route line associations) and the copy
// of the end marker the redraw has to reach.
func NewShadowEditStore(start, finish domain.Marker, startIndex, endIndex int, undoBackup []domain.UndoRecord) *ShadowEditStore {
	seed := start.Clone()
	seed.LineIDs = nil
	return &ShadowEditStore{
		markers:    []domain.Marker{seed},
		finish:     finish.Clone(),
		startIndex: startIndex,
		endIndex:   endIndex,
		undoBackup: undoBackup,
	}
}

// Markers returns a deep copy of the shadow marker sequence.
func (s *ShadowEditStore) Markers() []domain.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneMarkers(s.markers)
}

// Lines returns a deep copy of the shadow line collection.
func (s *ShadowEditStore) Lines() []domain.Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneLines(s.lines)
}

// ReplaceMarkers atomically swaps in a new shadow marker sequence.
func (s *ShadowEditStore) ReplaceMarkers(markers []domain.Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = domain.CloneMarkers(markers)
}

// ReplaceLines atomically swaps in a new shadow line collection.
func (s *ShadowEditStore) ReplaceLines(lines []domain.Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = domain.CloneLines(lines)
}

// FinishMarker returns the marker the drawn section must reach.
func (s *ShadowEditStore) FinishMarker() domain.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finish.Clone()
}

// Bounds returns the positions in the main route bracketing the section
// under edit.
func (s *ShadowEditStore) Bounds() (start, end int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startIndex, s.endIndex
}

// UndoBackup returns the main undo log saved when the session began.
func (s *ShadowEditStore) UndoBackup() []domain.UndoRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.undoBackup
}

// GapClosed reports whether the last drawn marker sits within epsilon of
// the finish marker, i.e. the redrawn section spans the whole gap.
func (s *ShadowEditStore) GapClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.markers) < 2 {
		return false
	}
	last := s.markers[len(s.markers)-1]
	return geospatial.SamePoint(last.Position, s.finish.Position)
}
