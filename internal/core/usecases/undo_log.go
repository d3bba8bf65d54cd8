package usecases

import (
	"sync"

	"github.com/jortega/routesketch/internal/core/domain"
)

// UndoLog is an append-only stack of undo records; records only ever leave
// from the end. Bulk edit swaps the whole log out and back in so the
// session's own records never pollute the pre-edit history.
type UndoLog struct {
	mu      sync.RWMutex
	records []domain.UndoRecord
}

// NewUndoLog creates an empty log.
func NewUndoLog() *UndoLog {
	return &UndoLog{}
}

// Push appends a record.
func (u *UndoLog) Push(rec domain.UndoRecord) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.records = append(u.records, rec)
}

// Pop removes and returns the most recent record, or nil when the log is
// empty.
func (u *UndoLog) Pop() domain.UndoRecord {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.records) == 0 {
		return nil
	}
	rec := u.records[len(u.records)-1]
	u.records = u.records[:len(u.records)-1]
	return rec
}

// Depth returns the number of records in the log.
func (u *UndoLog) Depth() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.records)
}

// Take empties the log and returns the removed records.
func (u *UndoLog) Take() []domain.UndoRecord {
	u.mu.Lock()
	defer u.mu.Unlock()
	records := u.records
	u.records = nil
	return records
}

// Restore replaces the log's contents.
func (u *UndoLog) Restore(records []domain.UndoRecord) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.records = records
}
