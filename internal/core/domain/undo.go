package domain

// UndoRecord describes one committed mutation with exactly the information
// needed to reverse it without recomputation. The six variants form a closed
// set so the undo dispatcher can type-switch exhaustively.
type UndoRecord interface {
	undoRecord()
}

// AddRecord reverses an add-point operation.
type AddRecord struct {
	Marker Marker
}

// MoveRecord reverses a marker drag. Lines holds deep copies of every line
// taken immediately before the drag recomputed them.
type MoveRecord struct {
	MarkerID    string
	OldPosition GeoPoint
	OldSnapped  bool
	Lines       []Line
}

// RemovedLine is one line removed by a delete, with its position in the line
// collection and the marker that sat on its far end.
type RemovedLine struct {
	Line          Line
	Index         int
	OtherMarkerID string
}

// DeleteRecord reverses a delete-point operation. ReplacementLineID names
// the reconnecting line created by an interior delete, empty otherwise.
// Removed is ordered by ascending Index.
type DeleteRecord struct {
	Marker            Marker
	Index             int
	Removed           []RemovedLine
	ReplacementLineID string
}

// OutAndBackRecord reverses an out-and-back by truncating both collections
// back to their pre-operation lengths and detaching the one line that was
// hooked onto the turnaround marker.
type OutAndBackRecord struct {
	MarkerCount    int
	LineCount      int
	EndpointLineID string
}

// InsertRecord reverses an insert-mid-line: the inserted marker's position
// in the sequence, the two replacement line ids, and the entire original
// line so undo is a pure splice-back.
type InsertRecord struct {
	MarkerIndex int
	NewLineIDs  [2]string
	RemovedLine Line
}

// BulkEditRecord reverses a finished bulk edit. It is deliberately a full
// pre-splice snapshot of the route rather than a diff; a delta encoding
// would be smaller but is a future optimization, not a correctness need.
type BulkEditRecord struct {
	Markers []Marker
	Lines   []Line
}

func (AddRecord) undoRecord()        {}
func (MoveRecord) undoRecord()       {}
func (DeleteRecord) undoRecord()     {}
func (OutAndBackRecord) undoRecord() {}
func (InsertRecord) undoRecord()     {}
func (BulkEditRecord) undoRecord()   {}
