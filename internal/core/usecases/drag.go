package usecases

import (
	"context"
	"fmt"

	"github.com/jortega/routesketch/internal/core/domain"
)

// StartDrag marks a waypoint as being dragged and snapshots its position so
// the drag can be cancelled or undone.
func (e *Editor) StartDrag(markerID string) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	st := e.store()
	markers := st.Markers()

	idx := markerIndex(markers, markerID)
	if idx < 0 {
		return fmt.Errorf("start drag: %w: %s", domain.ErrMarkerNotFound, markerID)
	}

	m := markers[idx]
	if m.Dragging {
		return nil
	}
	orig := m.Position
	m.Dragging = true
	m.OriginalPosition = &orig
	markers[idx] = m

	st.ReplaceMarkers(markers)
	return nil
}

// CancelDrag puts a dragged waypoint back where it started. No undo record:
// nothing was committed.
func (e *Editor) CancelDrag(ctx context.Context, markerID string) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	st := e.store()
	markers := st.Markers()

	idx := markerIndex(markers, markerID)
	if idx < 0 {
		return fmt.Errorf("cancel drag: %w: %s", domain.ErrMarkerNotFound, markerID)
	}

	m := markers[idx]
	if !m.Dragging {
		return nil
	}
	if m.OriginalPosition != nil {
		m.Position = *m.OriginalPosition
	}
	m.Dragging = false
	m.OriginalPosition = nil
	markers[idx] = m

	st.ReplaceMarkers(markers)
	e.publish(ctx)
	return nil
}

// DragEnd commits a drag: the marker moves to newPos and each of its (up to
// two) lines is re-requested between the correct neighbor pair. Exactly one
// of the recomputations corrects the dragged marker's own position to the
// gateway's snapped endpoint. The undo record keeps deep copies of every
// line about to be modified, taken before modification.
func (e *Editor) DragEnd(ctx context.Context, markerID string, newPos domain.GeoPoint) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	st := e.store()
	markers := st.Markers()
	lines := st.Lines()

	idx := markerIndex(markers, markerID)
	if idx < 0 {
		return fmt.Errorf("drag end: %w: %s", domain.ErrMarkerNotFound, markerID)
	}

	m := markers[idx]
	oldPos := m.Position
	if m.OriginalPosition != nil {
		oldPos = *m.OriginalPosition
	}
	rec := domain.MoveRecord{
		MarkerID:    markerID,
		OldPosition: oldPos,
		OldSnapped:  m.Snapped,
	}

	m.Dragging = false
	m.OriginalPosition = nil
	m.Position = newPos
	m.Snapped = false

	// Pre-modification copies, in association order.
	for _, lineID := range m.LineIDs {
		li := lineIndex(lines, lineID)
		if li < 0 {
			err := fmt.Errorf("%w: marker %s references missing line %s", domain.ErrInconsistentRoute, markerID, lineID)
			e.log.Error("drag end aborted", "error", err)
			return err
		}
		rec.Lines = append(rec.Lines, lines[li].Clone())
	}

	snappedOnce := false
	for _, lineID := range m.LineIDs {
		li := lineIndex(lines, lineID)

		// The line before the marker runs neighbor->marker, the line
		// after runs marker->neighbor. Position alignment gives us the
		// side: line at idx-1 is incoming.
		incoming := li == idx-1
		var path domain.Path
		if incoming {
			neighbor := markers[idx-1]
			path = e.requestPath(ctx, neighbor.Position, m.Position, true, !neighbor.Snapped, snappedOnce)
		} else {
			neighbor := markers[idx+1]
			path = e.requestPath(ctx, m.Position, neighbor.Position, true, snappedOnce, !neighbor.Snapped)
		}

		if path.Followed && !snappedOnce {
			if incoming {
				m.Position = path.Coordinates[len(path.Coordinates)-1]
			} else {
				m.Position = path.Coordinates[0]
			}
			m.Snapped = true
			snappedOnce = true
		}

		line := lines[li]
		line.Coordinates = path.Coordinates
		line.LengthMiles = path.LengthMiles
		line.ElevationGain, line.ElevationLoss = e.lineElevation(ctx, line.Coordinates, line.LengthMiles)
		lines[li] = line
	}

	markers[idx] = m
	st.ReplaceMarkers(markers)
	st.ReplaceLines(lines)
	e.undo.Push(rec)
	e.publish(ctx)
	return nil
}
