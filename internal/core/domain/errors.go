package domain

import "errors"

var (
	// ErrEditorBusy is returned when a guarded operation arrives while
	// another one is still running. The caller drops the gesture; it is
	// never queued.
	ErrEditorBusy = errors.New("another edit is in progress")

	// ErrNoRoute signals that the directions provider could not produce a
	// followed path; callers fall back to a straight or great-circle line.
	ErrNoRoute = errors.New("no route available")

	// ErrInconsistentRoute wraps should-be-impossible states. Operations
	// that hit it abort without committing any partial write.
	ErrInconsistentRoute = errors.New("route state is inconsistent")

	ErrMarkerNotFound = errors.New("marker not found")
	ErrLineNotFound   = errors.New("line not found")

	// ErrNoEditSession / ErrEditSessionActive guard bulk-edit lifecycle.
	ErrNoEditSession     = errors.New("no bulk edit session is active")
	ErrEditSessionActive = errors.New("a bulk edit session is already active")

	// ErrGapNotClosed is returned by finish-edit while the drawn section
	// does not yet reach the finish marker.
	ErrGapNotClosed = errors.New("edit section does not reach the finish marker")
)
