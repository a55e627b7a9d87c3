package data

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// defaultDrainWindow bounds how long the listener waits for further buffered
// notifications after the first one arrives in a cycle.
const defaultDrainWindow = 50 * time.Millisecond

// RefreshListener owns the bridge's single LISTEN subscription. It holds a
// dedicated session outside the shared pool, because LISTEN state is bound to
// one backend and pooled connections rotate.
//
// Not safe for concurrent use; the broker is the sole caller.
type RefreshListener struct {
	connString  string
	drainWindow time.Duration

	mu        sync.Mutex
	conn      *pgx.Conn
	listening string
}

// NewRefreshListener creates a listener that dials connString lazily on the
// first wait.
func NewRefreshListener(connString string) *RefreshListener {
	return &RefreshListener{
		connString:  connString,
		drainWindow: defaultDrainWindow,
	}
}

// WaitForNotifications blocks until at least one notification arrives on
// topic or ctx expires, then drains every further notification already
// buffered on the session and returns all payloads in arrival order.
//
// A ctx deadline with nothing pending returns (nil, context.DeadlineExceeded);
// the caller treats that as an idle heartbeat. Transport errors tear the
// session down so the next call reconnects and re-subscribes. A transport
// error during the drain is returned together with the payloads drained
// before it; the backend will not resend them, so the caller must still
// process the partial batch.
func (l *RefreshListener) WaitForNotifications(ctx context.Context, topic string) ([]string, error) {
	conn, err := l.ensureConn(ctx, topic)
	if err != nil {
		return nil, err
	}

	first, err := conn.WaitForNotification(ctx)
	if err != nil {
		if !isCtxErr(err) {
			l.teardown(context.Background())
		}
		return nil, err
	}

	payloads := []string{first.Payload}

	// Drain everything the backend already delivered. Each drained payload
	// carries a distinct record reference, so returning only the newest
	// would lose events.
	for {
		drainCtx, cancel := context.WithTimeout(ctx, l.drainWindow)
		n, drainErr := conn.WaitForNotification(drainCtx)
		cancel()
		if drainErr != nil {
			if isCtxErr(drainErr) {
				return payloads, nil
			}
			l.teardown(context.Background())
			return payloads, drainErr
		}
		payloads = append(payloads, n.Payload)
	}
}

// Close releases the dedicated session.
func (l *RefreshListener) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close(ctx)
	l.conn = nil
	l.listening = ""
	return err
}

// ensureConn connects and issues LISTEN if the session is new or the topic
// changed.
func (l *RefreshListener) ensureConn(ctx context.Context, topic string) (*pgx.Conn, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn != nil && l.listening == topic {
		return l.conn, nil
	}

	if l.conn == nil {
		conn, err := pgx.Connect(ctx, l.connString)
		if err != nil {
			return nil, fmt.Errorf("connect listener session: %w", err)
		}
		l.conn = conn
		l.listening = ""
	}

	if l.listening != topic {
		if l.listening != "" {
			if _, err := l.conn.Exec(ctx, "UNLISTEN "+quoteIdent(l.listening)); err != nil {
				l.closeLocked(ctx)
				return nil, fmt.Errorf("unlisten %s: %w", l.listening, err)
			}
		}
		if _, err := l.conn.Exec(ctx, "LISTEN "+quoteIdent(topic)); err != nil {
			l.closeLocked(ctx)
			return nil, fmt.Errorf("listen %s: %w", topic, err)
		}
		l.listening = topic
	}

	return l.conn, nil
}

func (l *RefreshListener) teardown(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeLocked(ctx)
}

func (l *RefreshListener) closeLocked(ctx context.Context) {
	if l.conn != nil {
		_ = l.conn.Close(ctx)
		l.conn = nil
	}
	l.listening = ""
}

func isCtxErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
