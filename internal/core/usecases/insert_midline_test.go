package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jortega/routesketch/internal/core/domain"
)

func TestInsertMidLine_UnknownLine(t *testing.T) {
	ed := newEditor(&stubGateway{})
	buildRoute(t, ed, 2)

	err := ed.InsertMidLine(context.Background(), "nope", pt(0))
	if !errors.Is(err, domain.ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
}

func TestInsertMidLine_SplitsLineAtPoint(t *testing.T) {
	ed := newEditor(&stubGateway{})
	buildRoute(t, ed, 2)
	before := ed.Snapshot()
	pos := domain.GeoPoint{Lat: 43.265, Lon: -2.931}

	if err := ed.InsertMidLine(context.Background(), before.Lines[0].ID, pos); err != nil {
		t.Fatalf("insert: %v", err)
	}

	snap := ed.Snapshot()
	checkAdjacency(t, snap)
	if len(snap.Markers) != 3 || len(snap.Lines) != 2 {
		t.Fatalf("got %d markers %d lines", len(snap.Markers), len(snap.Lines))
	}
	if snap.Markers[1].Position != pos {
		t.Errorf("new marker at %v, want %v", snap.Markers[1].Position, pos)
	}

	// Both halves share the split point as an endpoint.
	left, right := snap.Lines[0], snap.Lines[1]
	if left.Coordinates[len(left.Coordinates)-1] != pos || right.Coordinates[0] != pos {
		t.Error("halves do not meet at the split point")
	}
	if left.ID == before.Lines[0].ID || right.ID == before.Lines[0].ID {
		t.Error("split reused the original line id")
	}

	if err := ed.Undo(context.Background()); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !snapshotsEqual(before, ed.Snapshot()) {
		t.Errorf("undo did not restore the split:\n before %+v\n after  %+v", before, ed.Snapshot())
	}
}

func TestInsertMidLine_InteriorLine(t *testing.T) {
	ed := newEditor(&stubGateway{})
	buildRoute(t, ed, 3)
	before := ed.Snapshot()
	pos := domain.GeoPoint{Lat: 43.275, Lon: -2.929}

	if err := ed.InsertMidLine(context.Background(), before.Lines[1].ID, pos); err != nil {
		t.Fatalf("insert: %v", err)
	}
	snap := ed.Snapshot()
	checkAdjacency(t, snap)
	if snap.Markers[2].Position != pos {
		t.Errorf("new marker at index 2 is at %v, want %v", snap.Markers[2].Position, pos)
	}
	if snap.Lines[0].ID != before.Lines[0].ID {
		t.Error("untouched line changed identity")
	}

	if err := ed.Undo(context.Background()); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !snapshotsEqual(before, ed.Snapshot()) {
		t.Error("undo did not restore the interior split")
	}
}
