package usecases

import (
	"context"
	"fmt"

	"github.com/jortega/routesketch/internal/core/domain"
)

// ToggleSelect flips a marker's bulk-edit selection flag on the main route.
func (e *Editor) ToggleSelect(ctx context.Context, markerID string) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if e.currentSession() != nil {
		return domain.ErrEditSessionActive
	}

	markers := e.main.Markers()
	idx := markerIndex(markers, markerID)
	if idx < 0 {
		return fmt.Errorf("toggle select: %w: %s", domain.ErrMarkerNotFound, markerID)
	}
	markers[idx].SelectedForEdit = !markers[idx].SelectedForEdit
	e.main.ReplaceMarkers(markers)
	e.publish(ctx)
	return nil
}

// BeginEdit opens a bulk-edit session over the section between the two
// markers currently flagged for selection, found by scanning marker order
// (first flagged, then the next flagged after it). The lines strictly
// between them are tagged as editing, the markers strictly between them
// hidden, and the live undo log is swapped out for an empty one so the
// drawing phase gets its own undo scope.
func (e *Editor) BeginEdit(ctx context.Context) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if e.currentSession() != nil {
		return domain.ErrEditSessionActive
	}

	markers := e.main.Markers()
	lines := e.main.Lines()

	selected := make([]int, 0, 2)
	for i, m := range markers {
		if m.SelectedForEdit {
			selected = append(selected, i)
		}
	}
	if len(selected) != 2 {
		err := fmt.Errorf("%w: bulk edit needs exactly 2 selected markers, found %d", domain.ErrInconsistentRoute, len(selected))
		e.log.Error("begin edit aborted", "error", err)
		return err
	}
	start, end := selected[0], selected[1]

	for i := start; i < end; i++ {
		lines[i].Editing = true
	}
	for i := start + 1; i < end; i++ {
		markers[i].Hidden = true
	}
	e.main.ReplaceMarkers(markers)
	e.main.ReplaceLines(lines)

	e.setSession(NewShadowEditStore(markers[start], markers[end], start, end, e.undo.Take()))
	e.publish(ctx)
	return nil
}

// FinishEdit commits the session: flags are cleared throughout the main
// route, the saved undo log is restored and a full pre-splice snapshot
// pushed onto it, and the drawn section replaces everything between the
// boundary markers. The session's duplicate boundary markers are dropped,
// with their line associations transferred onto the originals.
func (e *Editor) FinishEdit(ctx context.Context) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	session := e.currentSession()
	if session == nil {
		return domain.ErrNoEditSession
	}
	if !session.GapClosed() {
		return domain.ErrGapNotClosed
	}

	markers := e.main.Markers()
	lines := e.main.Lines()
	start, end := session.Bounds()
	drawnMarkers := session.Markers()
	drawnLines := session.Lines()

	for i := range markers {
		markers[i].SelectedForEdit = false
		markers[i].Hidden = false
	}
	for i := range lines {
		lines[i].Editing = false
	}

	e.undo.Restore(session.UndoBackup())
	e.undo.Push(domain.BulkEditRecord{
		Markers: domain.CloneMarkers(markers),
		Lines:   domain.CloneLines(lines),
	})

	// Boundary markers keep their outside lines and adopt the drawn
	// section's first/last line in place of the replaced ones.
	oldFirst := lines[start].ID
	oldLast := lines[end-1].ID
	markers[start].LineIDs = append(removeLineID(markers[start].LineIDs, oldFirst), drawnLines[0].ID)
	markers[end].LineIDs = append([]string{drawnLines[len(drawnLines)-1].ID}, removeLineID(markers[end].LineIDs, oldLast)...)

	newMarkers := make([]domain.Marker, 0, start+1+len(drawnMarkers)-2+len(markers)-end)
	newMarkers = append(newMarkers, markers[:start+1]...)
	newMarkers = append(newMarkers, drawnMarkers[1:len(drawnMarkers)-1]...)
	newMarkers = append(newMarkers, markers[end:]...)

	newLines := make([]domain.Line, 0, start+len(drawnLines)+len(lines)-end)
	newLines = append(newLines, lines[:start]...)
	newLines = append(newLines, drawnLines...)
	newLines = append(newLines, lines[end:]...)

	e.main.ReplaceMarkers(newMarkers)
	e.main.ReplaceLines(newLines)
	e.setSession(nil)
	e.publish(ctx)
	return nil
}

// CancelEdit discards the session. The main route was never touched while
// drawing, so only the display flags set by BeginEdit are reverted and the
// saved undo log comes back untouched: there is nothing user-visible to
// undo.
func (e *Editor) CancelEdit(ctx context.Context) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	session := e.currentSession()
	if session == nil {
		return domain.ErrNoEditSession
	}

	markers := e.main.Markers()
	lines := e.main.Lines()
	for i := range markers {
		markers[i].Hidden = false
	}
	for i := range lines {
		lines[i].Editing = false
	}
	e.main.ReplaceMarkers(markers)
	e.main.ReplaceLines(lines)

	e.undo.Restore(session.UndoBackup())
	e.setSession(nil)
	e.publish(ctx)
	return nil
}
