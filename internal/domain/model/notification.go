package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RefreshNotification is the wire payload the completion-log trigger publishes
// via pg_notify. It references registry rows by id and is never persisted.
type RefreshNotification struct {
	JobID  int64 `json:"job_id"`
	ViewID int64 `json:"view_id"`
}

// ParseRefreshNotification decodes a raw notification payload. Unknown fields
// are rejected so trigger drift surfaces as a parse warning instead of a
// silently half-read payload.
func ParseRefreshNotification(payload string) (RefreshNotification, error) {
	var n RefreshNotification
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&n); err != nil {
		return RefreshNotification{}, fmt.Errorf("parse refresh notification: %w", err)
	}
	if n.JobID <= 0 {
		return RefreshNotification{}, errors.New("refresh notification missing job_id")
	}
	if n.ViewID <= 0 {
		return RefreshNotification{}, errors.New("refresh notification missing view_id")
	}
	return n, nil
}

// ChannelEvent is the outbound event streamed to an attached subscriber.
// Field values are strings to stay wire-compatible with existing consumers
// that expect "true" rather than a JSON boolean.
type ChannelEvent struct {
	UpdateAvailable string `json:"update_available"`
	ViewName        string `json:"view_name"`
}

// NewChannelEvent builds the standard refresh-completed event for a view.
func NewChannelEvent(viewName string) ChannelEvent {
	return ChannelEvent{UpdateAvailable: "true", ViewName: viewName}
}

// EventName is the SSE event name all channel events are delivered under.
const EventName = "message"
