package usecases

import (
	"context"
	"fmt"

	"github.com/jortega/routesketch/internal/core/domain"
)

// Undo pops the most recent record and reverses it. Invoked on an empty log
// it is a silent no-op. Undo is itself a mutation: it runs under the guard,
// routes through the same main-or-shadow store resolution as the operation
// it reverses, and leaves the model untouched if the reversal detects an
// inconsistency (the record is put back in that case).
func (e *Editor) Undo(ctx context.Context) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	rec := e.undo.Pop()
	if rec == nil {
		return nil
	}

	var err error
	switch r := rec.(type) {
	case domain.AddRecord:
		err = e.undoAdd(r)
	case domain.MoveRecord:
		err = e.undoMove(r)
	case domain.DeleteRecord:
		err = e.undoDelete(r)
	case domain.OutAndBackRecord:
		err = e.undoOutAndBack(r)
	case domain.InsertRecord:
		err = e.undoInsert(r)
	case domain.BulkEditRecord:
		err = e.undoBulkEdit(r)
	default:
		err = fmt.Errorf("%w: unknown undo record %T", domain.ErrInconsistentRoute, rec)
	}
	if err != nil {
		e.undo.Push(rec)
		e.log.Error("undo aborted", "error", err)
		return err
	}

	e.publish(ctx)
	return nil
}

// undoAdd removes the added marker (still at one end of the sequence) and
// the single line that attached it.
func (e *Editor) undoAdd(rec domain.AddRecord) error {
	st := e.store()
	markers := st.Markers()
	lines := st.Lines()

	idx := markerIndex(markers, rec.Marker.ID)
	if idx < 0 {
		return fmt.Errorf("%w: added marker %s is gone", domain.ErrInconsistentRoute, rec.Marker.ID)
	}

	if len(markers) == 1 {
		st.ReplaceMarkers(nil)
		st.ReplaceLines(nil)
		return nil
	}

	if idx != 0 && idx != len(markers)-1 {
		return fmt.Errorf("%w: added marker %s is no longer an endpoint", domain.ErrInconsistentRoute, rec.Marker.ID)
	}

	if idx == 0 {
		line := lines[0]
		if !markers[0].HasLine(line.ID) {
			return fmt.Errorf("%w: line %s out of position", domain.ErrInconsistentRoute, line.ID)
		}
		markers[1].LineIDs = removeLineID(markers[1].LineIDs, line.ID)
		markers = markers[1:]
		lines = lines[1:]
	} else {
		line := lines[len(lines)-1]
		if !markers[idx].HasLine(line.ID) {
			return fmt.Errorf("%w: line %s out of position", domain.ErrInconsistentRoute, line.ID)
		}
		markers[idx-1].LineIDs = removeLineID(markers[idx-1].LineIDs, line.ID)
		markers = markers[:idx]
		lines = lines[:len(lines)-1]
	}

	st.ReplaceMarkers(markers)
	st.ReplaceLines(lines)
	return nil
}

// undoMove restores the dragged marker's pre-drag position and snapped flag
// and puts back the exact pre-drag copy of every recomputed line.
func (e *Editor) undoMove(rec domain.MoveRecord) error {
	st := e.store()
	markers := st.Markers()
	lines := st.Lines()

	idx := markerIndex(markers, rec.MarkerID)
	if idx < 0 {
		return fmt.Errorf("%w: moved marker %s is gone", domain.ErrInconsistentRoute, rec.MarkerID)
	}

	for _, saved := range rec.Lines {
		li := lineIndex(lines, saved.ID)
		if li < 0 {
			return fmt.Errorf("%w: line %s is gone", domain.ErrInconsistentRoute, saved.ID)
		}
		lines[li] = saved.Clone()
	}

	markers[idx].Position = rec.OldPosition
	markers[idx].Snapped = rec.OldSnapped
	markers[idx].Dragging = false
	markers[idx].OriginalPosition = nil

	st.ReplaceMarkers(markers)
	st.ReplaceLines(lines)
	return nil
}

// undoDelete removes the reconnecting line (if the delete created one),
// reinserts the deleted marker at its original position, and splices every
// removed line back where it was, reattaching it to its far-end marker.
func (e *Editor) undoDelete(rec domain.DeleteRecord) error {
	st := e.store()
	markers := st.Markers()
	lines := st.Lines()

	for i := 1; i < len(rec.Removed); i++ {
		if rec.Removed[i].Index <= rec.Removed[i-1].Index {
			return fmt.Errorf("%w: removed lines out of position order", domain.ErrInconsistentRoute)
		}
	}

	if rec.ReplacementLineID != "" {
		li := lineIndex(lines, rec.ReplacementLineID)
		if li < 0 {
			return fmt.Errorf("%w: replacement line %s is gone", domain.ErrInconsistentRoute, rec.ReplacementLineID)
		}
		lines = append(lines[:li], lines[li+1:]...)
		for i := range markers {
			markers[i].LineIDs = removeLineID(markers[i].LineIDs, rec.ReplacementLineID)
		}
	}

	if rec.Index < 0 || rec.Index > len(markers) {
		return fmt.Errorf("%w: marker index %d out of range", domain.ErrInconsistentRoute, rec.Index)
	}
	restored := rec.Marker.Clone()
	markers = append(markers[:rec.Index], append([]domain.Marker{restored}, markers[rec.Index:]...)...)

	for _, rl := range rec.Removed {
		if rl.Index < 0 || rl.Index > len(lines) {
			return fmt.Errorf("%w: line index %d out of range", domain.ErrInconsistentRoute, rl.Index)
		}
		lines = append(lines[:rl.Index], append([]domain.Line{rl.Line.Clone()}, lines[rl.Index:]...)...)

		if rl.OtherMarkerID == rec.Marker.ID {
			// Degenerate self-reference from a single-marker delete;
			// the restored marker already carries its associations.
			continue
		}
		oi := markerIndex(markers, rl.OtherMarkerID)
		if oi < 0 {
			return fmt.Errorf("%w: far-end marker %s is gone", domain.ErrInconsistentRoute, rl.OtherMarkerID)
		}
		if oi < rec.Index {
			markers[oi].LineIDs = append(markers[oi].LineIDs, rl.Line.ID)
		} else {
			markers[oi].LineIDs = append([]string{rl.Line.ID}, markers[oi].LineIDs...)
		}
	}

	st.ReplaceMarkers(markers)
	st.ReplaceLines(lines)
	return nil
}

// undoOutAndBack truncates both collections back to their pre-operation
// lengths and detaches the mirrored line from the turnaround marker.
func (e *Editor) undoOutAndBack(rec domain.OutAndBackRecord) error {
	st := e.store()
	markers := st.Markers()
	lines := st.Lines()

	if len(markers) < rec.MarkerCount || len(lines) < rec.LineCount {
		return fmt.Errorf("%w: route shrank below its out-and-back origin", domain.ErrInconsistentRoute)
	}

	markers = markers[:rec.MarkerCount]
	lines = lines[:rec.LineCount]
	last := len(markers) - 1
	markers[last].LineIDs = removeLineID(markers[last].LineIDs, rec.EndpointLineID)

	st.ReplaceMarkers(markers)
	st.ReplaceLines(lines)
	return nil
}

// undoInsert removes the inserted marker and its two half-lines and splices
// the original line back, restoring the neighbor associations to reference
// only the original id.
func (e *Editor) undoInsert(rec domain.InsertRecord) error {
	st := e.store()
	markers := st.Markers()
	lines := st.Lines()

	mi := rec.MarkerIndex
	if mi <= 0 || mi >= len(markers) {
		return fmt.Errorf("%w: inserted marker index %d out of range", domain.ErrInconsistentRoute, mi)
	}
	liA := lineIndex(lines, rec.NewLineIDs[0])
	liB := lineIndex(lines, rec.NewLineIDs[1])
	if liA != mi-1 || liB != mi {
		return fmt.Errorf("%w: split lines out of position order", domain.ErrInconsistentRoute)
	}

	markers = append(markers[:mi], markers[mi+1:]...)

	newLines := make([]domain.Line, 0, len(lines)-1)
	newLines = append(newLines, lines[:liA]...)
	newLines = append(newLines, rec.RemovedLine.Clone())
	newLines = append(newLines, lines[liB+1:]...)
	lines = newLines

	markers[mi-1].LineIDs = replaceLineID(markers[mi-1].LineIDs, rec.NewLineIDs[0], rec.RemovedLine.ID)
	markers[mi].LineIDs = replaceLineID(markers[mi].LineIDs, rec.NewLineIDs[1], rec.RemovedLine.ID)

	st.ReplaceMarkers(markers)
	st.ReplaceLines(lines)
	return nil
}

// undoBulkEdit swaps the full pre-splice snapshot back in.
func (e *Editor) undoBulkEdit(rec domain.BulkEditRecord) error {
	st := e.store()
	st.ReplaceMarkers(rec.Markers)
	st.ReplaceLines(rec.Lines)
	return nil
}
