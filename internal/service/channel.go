package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tinydevcrm/eventbridge/internal/core"
	"github.com/tinydevcrm/eventbridge/internal/domain/model"
	"github.com/tinydevcrm/eventbridge/internal/domain/stream"
	apperrors "github.com/tinydevcrm/eventbridge/internal/errors"
)

// ChannelServiceOptions groups dependencies for ChannelService.
type ChannelServiceOptions struct {
	ChannelRepo core.ChannelRepository
	JobRepo     core.CronJobRepository
	Hub         *stream.Hub
	Logger      *slog.Logger
}

// ChannelService manages subscription channels and their hub attachments.
//
// Lifecycle: channels are born ACTIVE; open/close are administrative toggles.
// INACTIVE suspends new subscriber attachment while the dispatcher keeps
// pushing (without a subscriber those pushes are dropped). CLOSED is terminal: the
// identifier stays reserved so close remains idempotent, but it can never
// carry events again.
type ChannelService struct {
	channels core.ChannelRepository
	jobs     core.CronJobRepository
	hub      *stream.Hub
	logger   *slog.Logger
}

// NewChannelService constructs a new ChannelService.
func NewChannelService(opts ChannelServiceOptions) *ChannelService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelService{
		channels: opts.ChannelRepo,
		jobs:     opts.JobRepo,
		hub:      opts.Hub,
		logger:   logger.With("component", "channel_service"),
	}
}

// Create validates that the referenced cron job exists and belongs to the
// caller, then persists a channel with a fresh public identifier.
func (s *ChannelService) Create(ctx context.Context, req *model.CreateChannelRequest) (*model.Channel, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid channel request")
	}

	if _, err := s.jobs.GetOwnedByID(ctx, req.Owner, req.JobID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Validationf("job %d does not exist or is not yours", req.JobID)
		}
		return nil, err
	}

	ch, err := s.channels.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "channel created",
		"channel", ch.PublicID, "job_id", ch.JobID, "owner", ch.Owner)
	return ch, nil
}

// Get returns the owner's channel by public identifier.
func (s *ChannelService) Get(ctx context.Context, owner string, publicID uuid.UUID) (*model.Channel, error) {
	ch, err := s.channels.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if ch.Owner != owner {
		return nil, apperrors.NotFoundf("channel %s not found", publicID)
	}
	return ch, nil
}

// Open transitions a channel back to ACTIVE. Opening an already-ACTIVE
// channel succeeds without effect; a CLOSED channel is gone for good.
func (s *ChannelService) Open(ctx context.Context, owner string, publicID uuid.UUID) (*model.Channel, error) {
	ch, err := s.Get(ctx, owner, publicID)
	if err != nil {
		return nil, err
	}
	if ch.Status == model.ChannelStatusClosed {
		return nil, apperrors.Gone("channel is closed")
	}
	if ch.Status != model.ChannelStatusActive {
		if _, err := s.channels.SetStatus(ctx, publicID, model.ChannelStatusActive); err != nil {
			return nil, err
		}
		ch.Status = model.ChannelStatusActive
	}
	return ch, nil
}

// Close transitions a channel to its terminal state and tears down any live
// stream. Closing an already-CLOSED channel succeeds without side effects.
func (s *ChannelService) Close(ctx context.Context, owner string, publicID uuid.UUID) (*model.Channel, error) {
	ch, err := s.Get(ctx, owner, publicID)
	if err != nil {
		return nil, err
	}
	if ch.Status != model.ChannelStatusClosed {
		if _, err := s.channels.SetStatus(ctx, publicID, model.ChannelStatusClosed); err != nil {
			return nil, err
		}
		ch.Status = model.ChannelStatusClosed
		s.hub.CloseChannel(publicID.String())
		s.logger.InfoContext(ctx, "channel closed", "channel", publicID)
	}
	return ch, nil
}

// Suspend moves an ACTIVE channel to INACTIVE, detaching its subscriber.
// Used by operator tooling, not the public API.
func (s *ChannelService) Suspend(ctx context.Context, owner string, publicID uuid.UUID) (*model.Channel, error) {
	ch, err := s.Get(ctx, owner, publicID)
	if err != nil {
		return nil, err
	}
	if ch.Status == model.ChannelStatusClosed {
		return nil, apperrors.Gone("channel is closed")
	}
	if ch.Status != model.ChannelStatusInactive {
		if _, err := s.channels.SetStatus(ctx, publicID, model.ChannelStatusInactive); err != nil {
			return nil, err
		}
		ch.Status = model.ChannelStatusInactive
		s.hub.CloseChannel(publicID.String())
	}
	return ch, nil
}

// Listen attaches the caller to the channel's event stream. Exactly one
// subscriber may hold a channel open; the caller must Close the returned
// subscription when the client connection ends.
//
// Unknown and CLOSED identifiers report not-found rather than hanging.
func (s *ChannelService) Listen(ctx context.Context, owner string, publicID uuid.UUID) (*stream.Subscription, error) {
	ch, err := s.Get(ctx, owner, publicID)
	if err != nil {
		return nil, err
	}
	switch ch.Status {
	case model.ChannelStatusClosed:
		return nil, apperrors.NotFoundf("channel %s not found", publicID)
	case model.ChannelStatusInactive:
		return nil, apperrors.Conflict("channel is inactive; open it before listening")
	}

	sub, err := s.hub.Subscribe(publicID.String())
	if err != nil {
		if errors.Is(err, stream.ErrSubscriberAttached) {
			return nil, apperrors.Conflict("channel already has an attached listener")
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "listener attached", "channel", publicID)
	return sub, nil
}
