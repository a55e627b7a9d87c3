package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChannelStatus represents the lifecycle state of a subscription channel.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type ChannelStatus string

const (
	// ChannelStatusActive means the channel is eligible for pushes and may
	// accept one live subscriber.
	ChannelStatusActive ChannelStatus = "ACTIVE"
	// ChannelStatusInactive means the channel exists and is still a dispatch
	// target but refuses new subscriber attachment.
	ChannelStatusInactive ChannelStatus = "INACTIVE"
	// ChannelStatusClosed is terminal. The public identifier is retained so
	// close stays idempotent, but is never reused.
	ChannelStatusClosed ChannelStatus = "CLOSED"
)

// Valid returns true if the ChannelStatus is a known value.
func (s ChannelStatus) Valid() bool {
	return s == ChannelStatusActive || s == ChannelStatusInactive || s == ChannelStatusClosed
}

// UnmarshalText implements encoding.TextUnmarshaler for query/env parsing.
func (s *ChannelStatus) UnmarshalText(text []byte) error {
	v := ChannelStatus(strings.ToUpper(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return errors.New("invalid channel status: " + string(text))
	}
	*s = v
	return nil
}

// Channel is a client-visible subscription handle. Each channel follows
// exactly one cron job (and transitively one materialized view) for its whole
// lifetime; many channels may follow the same job.
type Channel struct {
	ID int64 `json:"-" db:"id"`
	// PublicID is the collision-resistant identifier used in URLs. Immutable.
	PublicID  uuid.UUID     `json:"public_identifier" db:"public_identifier"`
	Owner     string        `json:"owner"             db:"owner"`
	JobID     int64         `json:"job_id"            db:"job_id"`
	Status    ChannelStatus `json:"status"            db:"status"`
	CreatedAt time.Time     `json:"created_at"        db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"        db:"updated_at"`
}

// CreateChannelRequest represents parameters to register a channel against an
// existing cron job.
type CreateChannelRequest struct {
	Owner string `json:"-"`
	JobID int64  `json:"job_id"`
}

// Validate checks the request; existence and ownership of the job are
// verified against the registry by the channel service.
func (r *CreateChannelRequest) Validate() error {
	if strings.TrimSpace(r.Owner) == "" {
		return errors.New("owner is required")
	}
	if r.JobID <= 0 {
		return errors.New("job_id is required")
	}
	return nil
}
