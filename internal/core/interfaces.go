package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tinydevcrm/eventbridge/internal/domain/model"
	"github.com/tinydevcrm/eventbridge/internal/domain/stream"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// ViewRepository defines the interface for the materialized-view registry.
type ViewRepository interface {
	Create(ctx context.Context, req *model.CreateViewRequest) (*model.MaterializedView, error)
	GetByID(ctx context.Context, id int64) (*model.MaterializedView, error)
	GetByName(ctx context.Context, owner, viewName string) (*model.MaterializedView, error)
	List(ctx context.Context, owner string, limit, offset int) ([]*model.MaterializedView, error)
}

// CronJobRepository defines the interface for the scheduled-job registry.
type CronJobRepository interface {
	Create(ctx context.Context, job *model.CronJob) (*model.CronJob, error)
	GetOwnedByID(ctx context.Context, owner string, id int64) (*model.CronJob, error)
	List(ctx context.Context, owner string, limit, offset int) ([]*model.CronJob, error)
	// SetNotifyJobID records the completion-log scheduler id after the registry
	// row exists.
	SetNotifyJobID(ctx context.Context, id, notifyJobID int64) error
	// Delete rolls back a half-created registry row.
	Delete(ctx context.Context, id int64) (bool, error)
}

// ChannelRepository defines the interface for channel registry operations.
type ChannelRepository interface {
	Create(ctx context.Context, req *model.CreateChannelRequest) (*model.Channel, error)
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Channel, error)
	// ListActiveByJobID returns every ACTIVE or INACTIVE channel following the
	// given cron job; CLOSED channels never match.
	ListActiveByJobID(ctx context.Context, jobID int64) ([]*model.Channel, error)
	// SetStatus transitions a channel and reports whether a row changed.
	SetStatus(ctx context.Context, publicID uuid.UUID, status model.ChannelStatus) (bool, error)
}

// RefreshLogRepository defines the interface for the append-only completion log.
type RefreshLogRepository interface {
	Insert(ctx context.Context, jobID, viewID int64) (*model.RefreshEvent, error)
	ListByStatus(ctx context.Context, status model.RefreshStatus, limit int) ([]*model.RefreshEvent, error)
	// MarkSentByJob transitions every NEW record for the job to SENT and
	// returns the number of rows updated.
	MarkSentByJob(ctx context.Context, jobID int64) (int64, error)
	// NotifyPending re-publishes a notification for each NEW record, used by
	// the admin replay command after an outage.
	NotifyPending(ctx context.Context, topic string) (int64, error)
}

// NotificationWaiter blocks until the backing store delivers at least one
// notification on the broker topic, then reports every buffered payload.
type NotificationWaiter interface {
	// WaitForNotifications LISTENs on the topic and returns all payloads
	// drained from one wake-up. A deadline on ctx bounds the wait.
	WaitForNotifications(ctx context.Context, topic string) ([]string, error)
}

// Scheduler is the boundary to the opaque external job scheduler (pg_cron).
// It returns scheduler-assigned identifiers that the registry records.
type Scheduler interface {
	// Schedule registers command under the crontab definition and returns the
	// scheduler-assigned job identifier.
	Schedule(ctx context.Context, crontabDef, command string) (int64, error)
	// Unschedule removes a scheduled job; unknown ids are not an error.
	Unschedule(ctx context.Context, jobID int64) error
}

// EventPusher is the dispatcher's write side of the stream hub.
type EventPusher interface {
	Push(channelID string, ev model.ChannelEvent) stream.PushResult
	// ActiveStreams reports how many channels currently hold an attached
	// subscriber; surfaced as a gauge after each dispatch.
	ActiveStreams() int
}

// CacheRepository defines a byte-oriented TTL cache used for dispatcher
// view-name lookups. A nil value with nil error means cache miss.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
}
