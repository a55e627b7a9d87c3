package broker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tinydevcrm/eventbridge/config"
)

// scriptedWaiter plays back a fixed sequence of results, then blocks until
// the wait context expires.
type scriptedWaiter struct {
	mu     sync.Mutex
	script []waitResult
	calls  int
}

type waitResult struct {
	payloads []string
	err      error
}

func (w *scriptedWaiter) WaitForNotifications(ctx context.Context, _ string) ([]string, error) {
	w.mu.Lock()
	w.calls++
	if len(w.script) > 0 {
		step := w.script[0]
		w.script = w.script[1:]
		w.mu.Unlock()
		return step.payloads, step.err
	}
	w.mu.Unlock()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (w *scriptedWaiter) callCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

type recordingDispatcher struct {
	mu       sync.Mutex
	payloads []string
	err      error
	seen     chan string
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{seen: make(chan string, 64)}
}

func (d *recordingDispatcher) Dispatch(_ context.Context, payload string) error {
	d.mu.Lock()
	d.payloads = append(d.payloads, payload)
	d.mu.Unlock()
	d.seen <- payload
	return d.err
}

func (d *recordingDispatcher) dispatched() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.payloads...)
}

func testBrokerConfig() config.BrokerConfig {
	return config.BrokerConfig{
		Topic:            "refresh_events",
		PollInterval:     50 * time.Millisecond,
		ReconnectBackoff: time.Millisecond,
		ReconnectMax:     4 * time.Millisecond,
		QueueCapacity:    4,
	}
}

func TestNewRunnerRequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := NewRunner(RunnerOptions{Dispatcher: newRecordingDispatcher()})
	require.Error(t, err)

	_, err = NewRunner(RunnerOptions{Waiter: &scriptedWaiter{}})
	require.Error(t, err)
}

func TestRunnerDispatchesEveryDrainedPayload(t *testing.T) {
	t.Parallel()

	waiter := &scriptedWaiter{script: []waitResult{
		{payloads: []string{`{"job_id":1,"view_id":2}`, `{"job_id":1,"view_id":3}`}},
	}}
	dispatcher := newRecordingDispatcher()

	runner, err := NewRunner(RunnerOptions{
		Waiter:     waiter,
		Dispatcher: dispatcher,
		Config:     testBrokerConfig(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	for range 2 {
		select {
		case <-dispatcher.seen:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for dispatch")
		}
	}
	cancel()
	require.NoError(t, <-done)

	require.Equal(t,
		[]string{`{"job_id":1,"view_id":2}`, `{"job_id":1,"view_id":3}`},
		dispatcher.dispatched())
}

func TestRunnerTreatsQuietTopicAsNormal(t *testing.T) {
	t.Parallel()

	waiter := &scriptedWaiter{script: []waitResult{
		{err: context.DeadlineExceeded},
		{err: context.DeadlineExceeded},
	}}
	dispatcher := newRecordingDispatcher()

	runner, err := NewRunner(RunnerOptions{
		Waiter:     waiter,
		Dispatcher: dispatcher,
		Config:     testBrokerConfig(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, runner.Run(ctx))

	require.Empty(t, dispatcher.dispatched())
	require.GreaterOrEqual(t, waiter.callCount(), 2)
}

func TestRunnerReconnectsAfterTransportError(t *testing.T) {
	t.Parallel()

	waiter := &scriptedWaiter{script: []waitResult{
		{err: errors.New("connection reset")},
		{err: errors.New("connection reset")},
		{payloads: []string{`{"job_id":7,"view_id":9}`}},
	}}
	dispatcher := newRecordingDispatcher()

	runner, err := NewRunner(RunnerOptions{
		Waiter:     waiter,
		Dispatcher: dispatcher,
		Config:     testBrokerConfig(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	select {
	case payload := <-dispatcher.seen:
		require.Equal(t, `{"job_id":7,"view_id":9}`, payload)
	case <-time.After(time.Second):
		t.Fatal("runner did not recover from transport errors")
	}
	cancel()
	require.NoError(t, <-done)
	require.GreaterOrEqual(t, waiter.callCount(), 3)
}

func TestRunnerDispatchesPayloadsDrainedBeforeTransportError(t *testing.T) {
	t.Parallel()

	// The waiter hands back a partial batch together with the error that cut
	// the drain short. Those payloads are already consumed from the backend
	// and must reach the dispatcher before the reconnect.
	waiter := &scriptedWaiter{script: []waitResult{
		{payloads: []string{`{"job_id":1,"view_id":2}`}, err: errors.New("connection reset mid-drain")},
	}}
	dispatcher := newRecordingDispatcher()

	runner, err := NewRunner(RunnerOptions{
		Waiter:     waiter,
		Dispatcher: dispatcher,
		Config:     testBrokerConfig(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	select {
	case payload := <-dispatcher.seen:
		require.Equal(t, `{"job_id":1,"view_id":2}`, payload)
	case <-time.After(time.Second):
		t.Fatal("payload drained before the transport error was never dispatched")
	}
	cancel()
	require.NoError(t, <-done)
	require.Equal(t, []string{`{"job_id":1,"view_id":2}`}, dispatcher.dispatched())
}

func TestRunnerKeepsGoingWhenDispatchFails(t *testing.T) {
	t.Parallel()

	waiter := &scriptedWaiter{script: []waitResult{
		{payloads: []string{"first", "second"}},
	}}
	dispatcher := newRecordingDispatcher()
	dispatcher.err = errors.New("registry unreachable")

	runner, err := NewRunner(RunnerOptions{
		Waiter:     waiter,
		Dispatcher: dispatcher,
		Config:     testBrokerConfig(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	for range 2 {
		select {
		case <-dispatcher.seen:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for dispatch")
		}
	}
	cancel()
	require.NoError(t, <-done)
	require.Equal(t, []string{"first", "second"}, dispatcher.dispatched())
}

func TestNextBackoffDoublesUpToMax(t *testing.T) {
	t.Parallel()

	require.Equal(t, 2*time.Second, nextBackoff(time.Second, 30*time.Second))
	require.Equal(t, 30*time.Second, nextBackoff(20*time.Second, 30*time.Second))
}
