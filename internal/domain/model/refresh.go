package model

import "time"

// RefreshStatus tracks whether a completion-log row has been handed to the
// dispatcher. Declared statically in the schema migration as a Postgres enum.
type RefreshStatus string

const (
	// RefreshStatusNew marks a freshly inserted completion record.
	RefreshStatusNew RefreshStatus = "NEW"
	// RefreshStatusSent marks a record whose fan-out was attempted. Delivery
	// to a live subscriber stays best-effort; SENT only means the dispatcher
	// observed the record.
	RefreshStatusSent RefreshStatus = "SENT"
)

// Valid returns true if the RefreshStatus is a known value.
func (s RefreshStatus) Valid() bool {
	return s == RefreshStatusNew || s == RefreshStatusSent
}

// RefreshEvent is one row of the append-only completion log. The scheduled
// notify job inserts rows; a statically migrated trigger turns each insert
// into a pg_notify on the broker topic.
type RefreshEvent struct {
	ID        int64         `json:"id"         db:"id"`
	JobID     int64         `json:"job_id"     db:"job_id"`
	ViewID    int64         `json:"view_id"    db:"view_id"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	Status    RefreshStatus `json:"status"     db:"status"`
}
