package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jortega/routesketch/internal/core/domain"
)

// DeletePoint removes a waypoint. Endpoint markers take their one line with
// them; interior markers additionally get their two neighbors reconnected
// with a single fresh line from the directions gateway, inserted where the
// removed pair sat. The undo record carries everything needed to splice the
// originals back without recomputation.
func (e *Editor) DeletePoint(ctx context.Context, markerID string) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	st := e.store()
	markers := st.Markers()
	lines := st.Lines()

	idx := markerIndex(markers, markerID)
	if idx < 0 {
		return fmt.Errorf("delete point: %w: %s", domain.ErrMarkerNotFound, markerID)
	}
	m := markers[idx]

	switch len(m.LineIDs) {
	case 0:
		if len(markers) > 1 {
			// A marker inside a multi-point route with no lines should
			// be impossible. Surface it, change nothing.
			err := fmt.Errorf("%w: marker %s has no associated lines", domain.ErrInconsistentRoute, markerID)
			e.log.Error("delete point aborted", "error", err)
			return err
		}
		st.ReplaceMarkers(nil)
		st.ReplaceLines(nil)
		e.undo.Push(domain.DeleteRecord{Marker: m.Clone(), Index: idx})

	case 1:
		li := lineIndex(lines, m.LineIDs[0])
		if li < 0 {
			err := fmt.Errorf("%w: marker %s references missing line %s", domain.ErrInconsistentRoute, markerID, m.LineIDs[0])
			e.log.Error("delete point aborted", "error", err)
			return err
		}
		line := lines[li]

		otherIdx := idx - 1
		if idx == 0 {
			otherIdx = 1
		}
		other := markers[otherIdx]

		rec := domain.DeleteRecord{
			Marker: m.Clone(),
			Index:  idx,
			Removed: []domain.RemovedLine{
				{Line: line.Clone(), Index: li, OtherMarkerID: other.ID},
			},
		}

		other.LineIDs = removeLineID(other.LineIDs, line.ID)
		markers[otherIdx] = other
		markers = append(markers[:idx], markers[idx+1:]...)
		lines = append(lines[:li], lines[li+1:]...)

		st.ReplaceMarkers(markers)
		st.ReplaceLines(lines)
		e.undo.Push(rec)

	case 2:
		before := markers[idx-1]
		after := markers[idx+1]
		lineA := lines[idx-1]
		lineB := lines[idx]
		if !m.HasLine(lineA.ID) || !m.HasLine(lineB.ID) {
			err := fmt.Errorf("%w: lines adjacent to marker %s are out of position", domain.ErrInconsistentRoute, markerID)
			e.log.Error("delete point aborted", "error", err)
			return err
		}

		// Reconnect the gap with one line, carrying each side's snapped
		// state so the gateway can bridge any remaining offset.
		path := e.requestPath(ctx, before.Position, after.Position, true, !before.Snapped, !after.Snapped)
		newLine := domain.Line{
			ID:          uuid.NewString(),
			Coordinates: path.Coordinates,
			LengthMiles: path.LengthMiles,
		}
		newLine.ElevationGain, newLine.ElevationLoss = e.lineElevation(ctx, newLine.Coordinates, newLine.LengthMiles)

		rec := domain.DeleteRecord{
			Marker: m.Clone(),
			Index:  idx,
			Removed: []domain.RemovedLine{
				{Line: lineA.Clone(), Index: idx - 1, OtherMarkerID: before.ID},
				{Line: lineB.Clone(), Index: idx, OtherMarkerID: after.ID},
			},
			ReplacementLineID: newLine.ID,
		}

		before.LineIDs = append(removeLineID(before.LineIDs, lineA.ID), newLine.ID)
		after.LineIDs = append([]string{newLine.ID}, removeLineID(after.LineIDs, lineB.ID)...)
		markers[idx-1] = before
		markers[idx+1] = after

		markers = append(markers[:idx], markers[idx+1:]...)
		newLines := make([]domain.Line, 0, len(lines)-1)
		newLines = append(newLines, lines[:idx-1]...)
		newLines = append(newLines, newLine)
		newLines = append(newLines, lines[idx+1:]...)
		lines = newLines

		st.ReplaceMarkers(markers)
		st.ReplaceLines(lines)
		e.undo.Push(rec)

	default:
		err := fmt.Errorf("%w: marker %s has %d associated lines", domain.ErrInconsistentRoute, markerID, len(m.LineIDs))
		e.log.Error("delete point aborted", "error", err)
		return err
	}

	e.publish(ctx)
	return nil
}
