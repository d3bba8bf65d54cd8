package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jortega/routesketch/internal/core/domain"
	"github.com/jortega/routesketch/internal/core/usecases"
)

func selectMarkers(t *testing.T, ed *usecases.Editor, indexes ...int) {
	t.Helper()
	snap := ed.Snapshot()
	for _, i := range indexes {
		if err := ed.ToggleSelect(context.Background(), snap.Markers[i].ID); err != nil {
			t.Fatalf("select marker %d: %v", i, err)
		}
	}
}

func TestBulkEdit_BeginNeedsExactlyTwoSelected(t *testing.T) {
	ed := newEditor(&stubGateway{})
	buildRoute(t, ed, 4)
	selectMarkers(t, ed, 1)

	err := ed.BeginEdit(context.Background())
	if !errors.Is(err, domain.ErrInconsistentRoute) {
		t.Fatalf("expected ErrInconsistentRoute with one selection, got %v", err)
	}
	if ed.EditActive() {
		t.Fatal("session opened despite rejected begin")
	}
}

func TestBulkEdit_SessionShadowsTheMainRoute(t *testing.T) {
	ed := newEditor(&stubGateway{})
	buildRoute(t, ed, 4)
	selectMarkers(t, ed, 1, 3)

	if err := ed.BeginEdit(context.Background()); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !ed.EditActive() {
		t.Fatal("session not active after begin")
	}

	// The read model now shows the drawing surface: the seeded copy of the
	// start boundary marker, nothing else.
	snap := ed.Snapshot()
	if len(snap.Markers) != 1 || len(snap.Lines) != 0 {
		t.Fatalf("shadow shows %d markers %d lines", len(snap.Markers), len(snap.Lines))
	}
	if snap.Markers[0].Position != pt(1) {
		t.Errorf("seed at %v, want start boundary %v", snap.Markers[0].Position, pt(1))
	}
	if snap.UndoDepth != 0 {
		t.Errorf("session inherited undo depth %d", snap.UndoDepth)
	}
	if snap.GapClosed {
		t.Error("gap closed before any drawing")
	}

	// Drawing only grows toward the finish marker: prepend is coerced.
	if err := ed.AddPoint(context.Background(), domain.GeoPoint{Lat: 43.272, Lon: -2.94}, false, false); err != nil {
		t.Fatalf("draw: %v", err)
	}
	snap = ed.Snapshot()
	if len(snap.Markers) != 2 || snap.Markers[0].Position != pt(1) {
		t.Fatalf("drawn point did not append: %+v", snap.Markers)
	}

	// Reaching the finish marker's position closes the gap.
	if err := ed.AddPoint(context.Background(), pt(3), true, false); err != nil {
		t.Fatalf("close gap: %v", err)
	}
	if !ed.GapClosed() {
		t.Fatal("gap not closed at the finish position")
	}

	// Nested or re-entrant sessions are rejected.
	if err := ed.BeginEdit(context.Background()); !errors.Is(err, domain.ErrEditSessionActive) {
		t.Fatalf("expected ErrEditSessionActive, got %v", err)
	}
	if err := ed.ToggleSelect(context.Background(), snap.Markers[0].ID); !errors.Is(err, domain.ErrEditSessionActive) {
		t.Fatalf("expected ErrEditSessionActive on toggle, got %v", err)
	}
}

func TestBulkEdit_FinishRequiresClosedGap(t *testing.T) {
	ed := newEditor(&stubGateway{})
	buildRoute(t, ed, 4)
	selectMarkers(t, ed, 1, 3)
	if err := ed.BeginEdit(context.Background()); err != nil {
		t.Fatalf("begin: %v", err)
	}

	if err := ed.FinishEdit(context.Background()); !errors.Is(err, domain.ErrGapNotClosed) {
		t.Fatalf("expected ErrGapNotClosed, got %v", err)
	}
	if !ed.EditActive() {
		t.Fatal("rejected finish killed the session")
	}
}

func TestBulkEdit_FinishSplicesDrawnSection(t *testing.T) {
	ed := newEditor(&stubGateway{})
	buildRoute(t, ed, 4)
	before := ed.Snapshot()
	selectMarkers(t, ed, 1, 3)

	if err := ed.BeginEdit(context.Background()); err != nil {
		t.Fatalf("begin: %v", err)
	}
	detour := domain.GeoPoint{Lat: 43.275, Lon: -2.95}
	if err := ed.AddPoint(context.Background(), detour, true, false); err != nil {
		t.Fatalf("draw detour: %v", err)
	}
	if err := ed.AddPoint(context.Background(), pt(3), true, false); err != nil {
		t.Fatalf("close gap: %v", err)
	}
	if err := ed.FinishEdit(context.Background()); err != nil {
		t.Fatalf("finish: %v", err)
	}

	snap := ed.Snapshot()
	checkAdjacency(t, snap)
	if ed.EditActive() {
		t.Fatal("session survived finish")
	}
	if len(snap.Markers) != 4 || len(snap.Lines) != 3 {
		t.Fatalf("got %d markers %d lines", len(snap.Markers), len(snap.Lines))
	}

	// Outside section untouched, boundary markers keep their identity, the
	// detour replaces the interior marker.
	if snap.Markers[0].ID != before.Markers[0].ID || snap.Markers[1].ID != before.Markers[1].ID ||
		snap.Markers[3].ID != before.Markers[3].ID {
		t.Error("markers outside the section changed identity")
	}
	if snap.Lines[0].ID != before.Lines[0].ID {
		t.Error("line outside the section changed identity")
	}
	if snap.Markers[2].Position != detour {
		t.Errorf("interior marker at %v, want the drawn detour %v", snap.Markers[2].Position, detour)
	}
	for i, m := range snap.Markers {
		if m.SelectedForEdit || m.Hidden {
			t.Errorf("marker %d kept a session flag", i)
		}
	}
	for i, l := range snap.Lines {
		if l.Editing {
			t.Errorf("line %d kept its editing flag", i)
		}
	}

	// Finish collapses to one undoable operation on the restored log.
	if snap.UndoDepth != before.UndoDepth+1 {
		t.Fatalf("undo depth %d, want %d", snap.UndoDepth, before.UndoDepth+1)
	}
	if err := ed.Undo(context.Background()); err != nil {
		t.Fatalf("undo: %v", err)
	}
	restored := ed.Snapshot()
	if len(restored.Markers) != 4 {
		t.Fatalf("undo restored %d markers", len(restored.Markers))
	}
	for i := range restored.Markers {
		if restored.Markers[i].ID != before.Markers[i].ID {
			t.Errorf("marker %d identity lost across undo", i)
		}
	}
	for i := range restored.Lines {
		if restored.Lines[i].ID != before.Lines[i].ID {
			t.Errorf("line %d identity lost across undo", i)
		}
	}
}

func TestBulkEdit_CancelLeavesMainRouteUntouched(t *testing.T) {
	ed := newEditor(&stubGateway{})
	buildRoute(t, ed, 4)
	selectMarkers(t, ed, 1, 3)
	before := ed.Snapshot()

	if err := ed.BeginEdit(context.Background()); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := ed.AddPoint(context.Background(), domain.GeoPoint{Lat: 43.28, Lon: -2.96}, true, false); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if err := ed.Undo(context.Background()); err != nil {
		t.Fatalf("session undo: %v", err)
	}
	if err := ed.CancelEdit(context.Background()); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if ed.EditActive() {
		t.Fatal("session survived cancel")
	}
	if !snapshotsEqual(before, ed.Snapshot()) {
		t.Errorf("cancel changed the main route:\n before %+v\n after  %+v", before, ed.Snapshot())
	}
}

func TestBulkEdit_FinishWithoutSession(t *testing.T) {
	ed := newEditor(&stubGateway{})
	buildRoute(t, ed, 2)

	if err := ed.FinishEdit(context.Background()); !errors.Is(err, domain.ErrNoEditSession) {
		t.Fatalf("expected ErrNoEditSession, got %v", err)
	}
	if err := ed.CancelEdit(context.Background()); !errors.Is(err, domain.ErrNoEditSession) {
		t.Fatalf("expected ErrNoEditSession on cancel, got %v", err)
	}
}
