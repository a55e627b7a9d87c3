package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tinydevcrm/eventbridge/internal/core"
	"github.com/tinydevcrm/eventbridge/internal/domain/model"
	"github.com/tinydevcrm/eventbridge/internal/domain/stream"
	apperrors "github.com/tinydevcrm/eventbridge/internal/errors"
	"github.com/tinydevcrm/eventbridge/internal/observability/statsd"
)

// DispatcherOptions groups dependencies for DispatcherService.
type DispatcherOptions struct {
	ViewRepo    core.ViewRepository
	ChannelRepo core.ChannelRepository
	RefreshLog  core.RefreshLogRepository
	Pusher      core.EventPusher
	// Cache memoizes view-id to view-name resolution between refresh cycles.
	// Optional; nil disables caching.
	Cache        core.CacheRepository
	CacheTTL     time.Duration
	Metrics      statsd.Sink
	Logger       *slog.Logger
}

// DispatcherService turns one parsed refresh notification into hub pushes:
// resolve the view name, find every live channel following the job, push the
// outbound event to each, then mark the job's pending log records SENT.
//
// SENT means "handed to the dispatcher". Hub delivery past that point is
// best-effort and deliberately not reflected back into the log.
type DispatcherService struct {
	views    core.ViewRepository
	channels core.ChannelRepository
	log      core.RefreshLogRepository
	pusher   core.EventPusher
	cache    core.CacheRepository
	cacheTTL time.Duration
	metrics  statsd.Sink
	logger   *slog.Logger
}

// NewDispatcherService constructs a new DispatcherService.
func NewDispatcherService(opts DispatcherOptions) *DispatcherService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = statsd.Nop()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &DispatcherService{
		views:    opts.ViewRepo,
		channels: opts.ChannelRepo,
		log:      opts.RefreshLog,
		pusher:   opts.Pusher,
		cache:    opts.Cache,
		cacheTTL: ttl,
		metrics:  metrics,
		logger:   logger.With("component", "dispatcher"),
	}
}

// Dispatch processes one raw notification payload. Malformed payloads and
// unresolvable view ids are logged and dropped; they are data problems, not
// retryable conditions. Zero matching channels is a silent no-op.
func (s *DispatcherService) Dispatch(ctx context.Context, payload string) error {
	started := time.Now()

	notif, err := model.ParseRefreshNotification(payload)
	if err != nil {
		s.logger.WarnContext(ctx, "dropping malformed notification payload",
			"payload", payload, "err", err)
		s.metrics.Count("dispatch.dropped", 1, map[string]string{"reason": "malformed"})
		return nil
	}

	// Name resolution and the channel lookup are independent fetches.
	var (
		viewName string
		channels []*model.Channel
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var resolveErr error
		viewName, resolveErr = s.resolveViewName(gctx, notif.ViewID)
		return resolveErr
	})
	g.Go(func() error {
		var listErr error
		channels, listErr = s.channels.ListActiveByJobID(gctx, notif.JobID)
		return listErr
	})
	if err := g.Wait(); err != nil {
		if apperrors.IsNotFound(err) {
			s.logger.ErrorContext(ctx, "notification references unknown view; registry corrupt?",
				"view_id", notif.ViewID, "job_id", notif.JobID)
			s.metrics.Count("dispatch.dropped", 1, map[string]string{"reason": "unknown_view"})
			s.invalidateViewName(ctx, notif.ViewID)
			return nil
		}
		return err
	}

	ev := model.NewChannelEvent(viewName)
	delivered := 0
	for _, ch := range channels {
		// One channel's outcome never blocks its siblings.
		res := s.pusher.Push(ch.PublicID.String(), ev)
		switch res {
		case stream.PushDelivered:
			delivered++
		case stream.PushDroppedOldest:
			delivered++
			s.metrics.Count("hub.dropped_oldest", 1, nil)
		case stream.PushNoSubscriber:
			// Buffered-or-discarded per hub policy; nothing to do.
		}
	}

	marked, err := s.log.MarkSentByJob(ctx, notif.JobID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to mark completion records sent",
			"job_id", notif.JobID, "err", err)
	}

	s.logger.InfoContext(ctx, "notification dispatched",
		"job_id", notif.JobID,
		"view_id", notif.ViewID,
		"view_name", viewName,
		"channels", len(channels),
		"delivered", delivered,
		"records_marked", marked)
	s.metrics.Count("dispatch.events", int64(len(channels)), nil)
	s.metrics.Gauge("hub.active_streams", float64(s.pusher.ActiveStreams()), nil)
	s.metrics.Timing("dispatch.duration", time.Since(started), nil)
	return nil
}

func (s *DispatcherService) resolveViewName(ctx context.Context, viewID int64) (string, error) {
	key := viewNameCacheKey(viewID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "view name cache read failed", "err", err)
		} else if cached != nil {
			return string(cached), nil
		}
	}

	view, err := s.views.GetByID(ctx, viewID)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, []byte(view.ViewName), s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "view name cache write failed", "err", err)
		}
	}
	return view.ViewName, nil
}

// invalidateViewName removes any cached name for a view the registry no
// longer knows. The registry is authoritative; a stale cache entry would
// otherwise keep resolving a dropped view until its TTL.
func (s *DispatcherService) invalidateViewName(ctx context.Context, viewID int64) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Delete(ctx, viewNameCacheKey(viewID)); err != nil {
		s.logger.WarnContext(ctx, "view name cache invalidation failed", "err", err)
	}
}

func viewNameCacheKey(viewID int64) string {
	return "viewname:" + strconv.FormatInt(viewID, 10)
}
