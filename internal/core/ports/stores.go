package ports

import "github.com/jortega/routesketch/internal/core/domain"

// RouteStore owns one route model: the ordered marker sequence and the
// position-aligned line collection (line i connects markers i and i+1).
//
// There is deliberately no per-field mutation API. Operations read whole
// copies, compute the full new collections, and write them back in one
// replace each, which keeps the model trivially snapshot-able for undo.
// Accessors return deep copies; replaces take ownership of deep copies.
type RouteStore interface {
	Markers() []domain.Marker
	Lines() []domain.Line
	ReplaceMarkers(markers []domain.Marker)
	ReplaceLines(lines []domain.Line)
}
