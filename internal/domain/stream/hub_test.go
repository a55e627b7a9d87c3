package stream

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinydevcrm/eventbridge/internal/domain/model"
)

func newTestHub(capacity int) *Hub {
	return NewHub(HubOptions{QueueCapacity: capacity})
}

func recvOne(t *testing.T, sub *Subscription) model.ChannelEvent {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed unexpectedly")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return model.ChannelEvent{}
	}
}

func TestHub_PushReachesAttachedSubscriber(t *testing.T) {
	t.Parallel()
	hub := newTestHub(4)

	sub, err := hub.Subscribe("chan-a")
	require.NoError(t, err)
	defer sub.Close()

	res := hub.Push("chan-a", model.NewChannelEvent("sales_summary"))
	assert.Equal(t, PushDelivered, res)

	ev := recvOne(t, sub)
	assert.Equal(t, "true", ev.UpdateAvailable)
	assert.Equal(t, "sales_summary", ev.ViewName)
}

func TestHub_PushIsolatedBetweenChannels(t *testing.T) {
	t.Parallel()
	hub := newTestHub(4)

	subA, err := hub.Subscribe("chan-a")
	require.NoError(t, err)
	defer subA.Close()
	subB, err := hub.Subscribe("chan-b")
	require.NoError(t, err)
	defer subB.Close()

	hub.Push("chan-a", model.NewChannelEvent("only_for_a"))

	ev := recvOne(t, subA)
	assert.Equal(t, "only_for_a", ev.ViewName)

	select {
	case ev := <-subB.Events():
		t.Fatalf("channel B received event for channel A: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_OrderingIsFIFOPerChannel(t *testing.T) {
	t.Parallel()
	hub := newTestHub(16)

	sub, err := hub.Subscribe("chan-a")
	require.NoError(t, err)
	defer sub.Close()

	for i := range 10 {
		hub.Push("chan-a", model.NewChannelEvent(fmt.Sprintf("view_%d", i)))
	}
	for i := range 10 {
		ev := recvOne(t, sub)
		assert.Equal(t, fmt.Sprintf("view_%d", i), ev.ViewName)
	}
}

func TestHub_PushWithoutSubscriberIsDiscarded(t *testing.T) {
	t.Parallel()
	hub := newTestHub(4)

	res := hub.Push("chan-a", model.NewChannelEvent("lost"))
	assert.Equal(t, PushNoSubscriber, res)

	// A later subscriber must start from new pushes only.
	sub, err := hub.Subscribe("chan-a")
	require.NoError(t, err)
	defer sub.Close()

	select {
	case ev := <-sub.Events():
		t.Fatalf("replayed event delivered to fresh subscriber: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	hub.Push("chan-a", model.NewChannelEvent("fresh"))
	assert.Equal(t, "fresh", recvOne(t, sub).ViewName)
}

func TestHub_NoReplayAfterReattach(t *testing.T) {
	t.Parallel()
	hub := newTestHub(4)

	sub, err := hub.Subscribe("chan-a")
	require.NoError(t, err)
	sub.Close()

	hub.Push("chan-a", model.NewChannelEvent("while_detached"))

	reattached, err := hub.Subscribe("chan-a")
	require.NoError(t, err)
	defer reattached.Close()

	select {
	case ev, ok := <-reattached.Events():
		if ok {
			t.Fatalf("reattached subscriber saw pre-attachment event: %+v", ev)
		}
		t.Fatal("reattached subscription closed unexpectedly")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_OverflowDropsOldest(t *testing.T) {
	t.Parallel()
	hub := newTestHub(2)

	sub, err := hub.Subscribe("chan-a")
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, PushDelivered, hub.Push("chan-a", model.NewChannelEvent("v1")))
	assert.Equal(t, PushDelivered, hub.Push("chan-a", model.NewChannelEvent("v2")))
	assert.Equal(t, PushDroppedOldest, hub.Push("chan-a", model.NewChannelEvent("v3")))

	// v1 was evicted; the survivors keep their relative order.
	assert.Equal(t, "v2", recvOne(t, sub).ViewName)
	assert.Equal(t, "v3", recvOne(t, sub).ViewName)
}

func TestHub_SubscribeIsExclusive(t *testing.T) {
	t.Parallel()
	hub := newTestHub(4)

	first, err := hub.Subscribe("chan-a")
	require.NoError(t, err)

	_, err = hub.Subscribe("chan-a")
	require.ErrorIs(t, err, ErrSubscriberAttached)

	// Detaching frees the slot.
	first.Close()
	second, err := hub.Subscribe("chan-a")
	require.NoError(t, err)
	second.Close()
}

func TestHub_CloseChannelTerminatesStream(t *testing.T) {
	t.Parallel()
	hub := newTestHub(4)

	sub, err := hub.Subscribe("chan-a")
	require.NoError(t, err)

	hub.CloseChannel("chan-a")

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok, "expected closed event stream")
	case <-time.After(time.Second):
		t.Fatal("stream not closed after CloseChannel")
	}

	// Pushes after close are discarded, and closing again is a no-op.
	assert.Equal(t, PushNoSubscriber, hub.Push("chan-a", model.NewChannelEvent("late")))
	hub.CloseChannel("chan-a")
}

func TestHub_SubscriptionCloseIsIdempotent(t *testing.T) {
	t.Parallel()
	hub := newTestHub(4)

	sub, err := hub.Subscribe("chan-a")
	require.NoError(t, err)
	sub.Close()
	sub.Close()

	assert.Zero(t, hub.ActiveStreams())
}

func TestHub_ConcurrentSubscribeAndPush(t *testing.T) {
	t.Parallel()
	hub := newTestHub(8)

	const channels = 16
	var wg sync.WaitGroup
	for i := range channels {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			sub, err := hub.Subscribe(id)
			if err != nil {
				return
			}
			defer sub.Close()
			for range 4 {
				select {
				case <-sub.Events():
				case <-time.After(time.Second):
					return
				}
			}
		}(fmt.Sprintf("chan-%d", i))
	}

	// Single pusher, matching the broker's concurrency model.
	for range 4 {
		for i := range channels {
			for hub.Push(fmt.Sprintf("chan-%d", i), model.NewChannelEvent("v")) == PushNoSubscriber {
				time.Sleep(time.Millisecond)
			}
		}
	}
	wg.Wait()
	hub.StopAll()
	assert.Zero(t, hub.ActiveStreams())
}
