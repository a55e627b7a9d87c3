// Package broker provides the adapter that runs the notification listener
// loop, bridging backing-store notifications to the dispatcher.
package broker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tinydevcrm/eventbridge/config"
	"github.com/tinydevcrm/eventbridge/internal/core"
	"github.com/tinydevcrm/eventbridge/internal/observability/statsd"
)

// Dispatcher consumes one raw notification payload.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload string) error
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Waiter     core.NotificationWaiter
	Dispatcher Dispatcher
	Config     config.BrokerConfig
	Logger     *slog.Logger
	Metrics    statsd.Sink
}

// Runner owns the process's single backing-store subscription and is the
// sole writer into the dispatcher pipeline. It runs until its context is
// cancelled, reconnecting with backoff on transport errors; a quiet topic is
// normal and only logged.
type Runner struct {
	waiter     core.NotificationWaiter
	dispatcher Dispatcher
	cfg        config.BrokerConfig
	logger     *slog.Logger
	metrics    statsd.Sink
}

// NewRunner creates a new broker runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Waiter == nil {
		return nil, errors.New("notification waiter is required")
	}
	if opts.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = statsd.Nop()
	}
	cfg := opts.Config
	cfg.Sanitize()

	return &Runner{
		waiter:     opts.Waiter,
		dispatcher: opts.Dispatcher,
		cfg:        cfg,
		logger:     logger.With("component", "broker"),
		metrics:    metrics,
	}, nil
}

// Run blocks on the notification loop until ctx is cancelled. Context
// cancellation is a clean shutdown, not an error.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "broker starting",
		"topic", r.cfg.Topic, "poll_interval", r.cfg.PollInterval)

	backoff := r.cfg.ReconnectBackoff
	for {
		if ctx.Err() != nil {
			r.logger.InfoContext(ctx, "broker stopping", "reason", ctx.Err())
			return nil
		}

		waitCtx, cancel := context.WithTimeout(ctx, r.cfg.PollInterval)
		payloads, err := r.waiter.WaitForNotifications(waitCtx, r.cfg.Topic)
		cancel()

		// A transport failure can surface after part of a cycle was already
		// drained. The backend never resends a consumed notification, so hand
		// off everything drained before acting on the error.
		if len(payloads) > 0 {
			r.metrics.Count("broker.notifications", int64(len(payloads)), nil)
			r.dispatchAll(ctx, payloads)
		}

		switch {
		case err == nil:
			backoff = r.cfg.ReconnectBackoff

		case ctx.Err() != nil:
			r.logger.InfoContext(ctx, "broker stopping", "reason", ctx.Err())
			return nil

		case errors.Is(err, context.DeadlineExceeded):
			// Quiet topic. Expected between refreshes.
			r.logger.DebugContext(ctx, "no notifications in poll window", "topic", r.cfg.Topic)
			backoff = r.cfg.ReconnectBackoff

		default:
			r.logger.ErrorContext(ctx, "notification wait failed; reconnecting",
				"err", err, "backoff", backoff)
			r.metrics.Count("broker.reconnects", 1, nil)
			if !sleepCtx(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, r.cfg.ReconnectMax)
		}
	}
}

func (r *Runner) dispatchAll(ctx context.Context, payloads []string) {
	for _, payload := range payloads {
		if err := r.dispatcher.Dispatch(ctx, payload); err != nil {
			// Payload-level problems are dropped inside Dispatch; an error
			// here is infrastructure (registry unreachable).
			r.logger.ErrorContext(ctx, "dispatch failed", "err", err)
			r.metrics.Count("broker.dispatch_errors", 1, nil)
		}
	}
}

// sleepCtx waits for d or until ctx is done, reporting false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
