package service

import (
	"context"

	"github.com/tinydevcrm/eventbridge/internal/core"
	"github.com/tinydevcrm/eventbridge/internal/domain/model"
	apperrors "github.com/tinydevcrm/eventbridge/internal/errors"
)

const maxRefreshListLimit = 500

// RefreshLogServiceOptions groups dependencies for RefreshLogService.
type RefreshLogServiceOptions struct {
	RefreshLog core.RefreshLogRepository
}

// RefreshLogService exposes read and replay operations over the append-only
// completion log.
type RefreshLogService struct {
	log core.RefreshLogRepository
}

// NewRefreshLogService constructs a new RefreshLogService.
func NewRefreshLogService(opts RefreshLogServiceOptions) *RefreshLogService {
	return &RefreshLogService{log: opts.RefreshLog}
}

// ListByStatus returns completion records in insertion order.
func (s *RefreshLogService) ListByStatus(ctx context.Context, status model.RefreshStatus, limit int) ([]*model.RefreshEvent, error) {
	if !status.Valid() {
		return nil, apperrors.Validationf("unknown refresh status %q", status)
	}
	if limit <= 0 || limit > maxRefreshListLimit {
		limit = maxRefreshListLimit
	}
	return s.log.ListByStatus(ctx, status, limit)
}

// ReplayPending re-publishes a notification for every record still NEW,
// recovering events that accrued while no broker was listening.
func (s *RefreshLogService) ReplayPending(ctx context.Context, topic string) (int64, error) {
	return s.log.NotifyPending(ctx, topic)
}
