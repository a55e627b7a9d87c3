// Package stream implements the per-channel event delivery hub that bridges
// the refresh broker to open listen streams.
package stream

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/tinydevcrm/eventbridge/internal/domain/model"
)

// ErrSubscriberAttached indicates a channel already has a live subscriber.
// Attachment is exclusive: one stream per channel at a time.
var ErrSubscriberAttached = errors.New("channel already has an attached subscriber")

// PushResult reports what happened to a pushed event.
type PushResult string

const (
	// PushDelivered means the event was enqueued for an attached subscriber.
	PushDelivered PushResult = "delivered"
	// PushDroppedOldest means the subscriber queue was full and the oldest
	// buffered event was evicted to make room. Designed lossy behaviour.
	PushDroppedOldest PushResult = "dropped_oldest"
	// PushNoSubscriber means nobody was attached; the event was discarded.
	// A later subscriber never sees it (no replay).
	PushNoSubscriber PushResult = "no_subscriber"
)

// HubOptions configure the hub.
type HubOptions struct {
	// QueueCapacity bounds the per-subscriber event buffer. Minimum 1.
	QueueCapacity int
	Logger        *slog.Logger
}

// Hub holds at most one live subscription per channel and fans pushed events
// into them. Push is invoked by the single broker goroutine; Subscribe and
// Subscription.Close run on arbitrary request goroutines.
type Hub struct {
	capacity int
	logger   *slog.Logger

	mu   sync.RWMutex
	subs map[string]*Subscription
}

// NewHub constructs a Hub.
func NewHub(opts HubOptions) *Hub {
	capacity := opts.QueueCapacity
	if capacity < 1 {
		capacity = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		capacity: capacity,
		logger:   logger,
		subs:     make(map[string]*Subscription),
	}
}

// Push enqueues an event for the channel's attached subscriber, if any.
// It never blocks: when the subscriber queue is full the oldest buffered
// event is evicted first. Events pushed while no subscriber is attached are
// discarded; reattachment starts from new pushes only.
func (h *Hub) Push(channelID string, ev model.ChannelEvent) PushResult {
	h.mu.RLock()
	sub := h.subs[channelID]
	h.mu.RUnlock()

	if sub == nil {
		return PushNoSubscriber
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return PushNoSubscriber
	}

	select {
	case sub.ch <- ev:
		return PushDelivered
	default:
	}

	// Queue full: evict the oldest event, then retry. The subscriber may
	// have drained concurrently, so both selects stay non-blocking.
	select {
	case <-sub.ch:
	default:
	}
	select {
	case sub.ch <- ev:
	default:
	}

	h.logger.Debug("subscriber queue full, dropped oldest event",
		"channel", channelID, "capacity", cap(sub.ch))
	return PushDroppedOldest
}

// Subscribe attaches an exclusive reader to the channel's queue. The caller
// must Close the returned subscription when the client disconnects.
func (h *Hub) Subscribe(channelID string) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing := h.subs[channelID]; existing != nil {
		return nil, ErrSubscriberAttached
	}

	sub := &Subscription{
		hub:       h,
		channelID: channelID,
		ch:        make(chan model.ChannelEvent, h.capacity),
	}
	h.subs[channelID] = sub
	return sub, nil
}

// CloseChannel tears down the channel's attached subscription, if any. Used
// when a channel is administratively closed so the live stream terminates.
func (h *Hub) CloseChannel(channelID string) {
	h.mu.Lock()
	sub := h.subs[channelID]
	delete(h.subs, channelID)
	h.mu.Unlock()

	if sub != nil {
		sub.shutdown()
	}
}

// StopAll tears down every subscription. Called on process shutdown.
func (h *Hub) StopAll() {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))
	for id, sub := range h.subs {
		subs = append(subs, sub)
		delete(h.subs, id)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.shutdown()
	}
}

// ActiveStreams returns the number of channels with an attached subscriber.
func (h *Hub) ActiveStreams() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Subscription is an exclusive read-side attachment to one channel's queue.
type Subscription struct {
	hub       *Hub
	channelID string

	mu     sync.Mutex
	ch     chan model.ChannelEvent
	closed bool
}

// Events returns the stream of pushed events, FIFO per channel. The channel
// is closed when the subscription ends.
func (s *Subscription) Events() <-chan model.ChannelEvent {
	return s.ch
}

// Close detaches the subscriber and discards anything still buffered. Safe to
// call more than once.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	if s.hub.subs[s.channelID] == s {
		delete(s.hub.subs, s.channelID)
	}
	s.hub.mu.Unlock()

	s.shutdown()
}

// shutdown drains buffered events before closing so receivers observe a
// closed channel immediately.
func (s *Subscription) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for {
		select {
		case <-s.ch:
		default:
			close(s.ch)
			return
		}
	}
}
