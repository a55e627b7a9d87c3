package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinydevcrm/eventbridge/internal/domain/model"
	"github.com/tinydevcrm/eventbridge/internal/domain/stream"
	apperrors "github.com/tinydevcrm/eventbridge/internal/errors"
)

type stubViewRepository struct {
	getByIDFunc func(ctx context.Context, id int64) (*model.MaterializedView, error)
}

func (s *stubViewRepository) Create(context.Context, *model.CreateViewRequest) (*model.MaterializedView, error) {
	return nil, errors.New("not implemented")
}

func (s *stubViewRepository) GetByID(ctx context.Context, id int64) (*model.MaterializedView, error) {
	if s.getByIDFunc != nil {
		return s.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (s *stubViewRepository) GetByName(context.Context, string, string) (*model.MaterializedView, error) {
	return nil, errors.New("not implemented")
}

func (s *stubViewRepository) List(context.Context, string, int, int) ([]*model.MaterializedView, error) {
	return nil, errors.New("not implemented")
}

type stubChannelRepository struct {
	listActiveFunc func(ctx context.Context, jobID int64) ([]*model.Channel, error)
}

func (s *stubChannelRepository) Create(context.Context, *model.CreateChannelRequest) (*model.Channel, error) {
	return nil, errors.New("not implemented")
}

func (s *stubChannelRepository) GetByPublicID(context.Context, uuid.UUID) (*model.Channel, error) {
	return nil, errors.New("not implemented")
}

func (s *stubChannelRepository) ListActiveByJobID(ctx context.Context, jobID int64) ([]*model.Channel, error) {
	if s.listActiveFunc != nil {
		return s.listActiveFunc(ctx, jobID)
	}
	return nil, errors.New("not implemented")
}

func (s *stubChannelRepository) SetStatus(context.Context, uuid.UUID, model.ChannelStatus) (bool, error) {
	return false, errors.New("not implemented")
}

type stubRefreshLog struct {
	mu          sync.Mutex
	markedJobs  []int64
	markErr     error
	markedCount int64
}

func (s *stubRefreshLog) Insert(context.Context, int64, int64) (*model.RefreshEvent, error) {
	return nil, errors.New("not implemented")
}

func (s *stubRefreshLog) ListByStatus(context.Context, model.RefreshStatus, int) ([]*model.RefreshEvent, error) {
	return nil, errors.New("not implemented")
}

func (s *stubRefreshLog) MarkSentByJob(_ context.Context, jobID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markedJobs = append(s.markedJobs, jobID)
	return s.markedCount, s.markErr
}

func (s *stubRefreshLog) NotifyPending(context.Context, string) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *stubRefreshLog) marked() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.markedJobs...)
}

type recordedPush struct {
	channelID string
	event     model.ChannelEvent
}

type stubPusher struct {
	mu      sync.Mutex
	pushes  []recordedPush
	results map[string]stream.PushResult
}

func (s *stubPusher) Push(channelID string, ev model.ChannelEvent) stream.PushResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushes = append(s.pushes, recordedPush{channelID: channelID, event: ev})
	if res, ok := s.results[channelID]; ok {
		return res
	}
	return stream.PushDelivered
}

func (s *stubPusher) ActiveStreams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pushes)
}

func (s *stubPusher) pushed() []recordedPush {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedPush(nil), s.pushes...)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = append([]byte(nil), value...)
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	delete(c.data, key)
	return ok, nil
}

// failingReadCache simulates a cache whose reads time out while writes and
// deletes still reach the backing store.
type failingReadCache struct {
	*memoryCache
}

func (c *failingReadCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("read timeout")
}

func testChannel(jobID int64) *model.Channel {
	return &model.Channel{
		PublicID: uuid.New(),
		Owner:    "owner-1",
		JobID:    jobID,
		Status:   model.ChannelStatusActive,
	}
}

func TestDispatcherFansOutToEveryChannel(t *testing.T) {
	t.Parallel()

	chA := testChannel(42)
	chB := testChannel(42)
	views := &stubViewRepository{
		getByIDFunc: func(_ context.Context, id int64) (*model.MaterializedView, error) {
			require.Equal(t, int64(7), id)
			return &model.MaterializedView{ID: 7, ViewName: "sales_summary"}, nil
		},
	}
	channels := &stubChannelRepository{
		listActiveFunc: func(_ context.Context, jobID int64) ([]*model.Channel, error) {
			require.Equal(t, int64(42), jobID)
			return []*model.Channel{chA, chB}, nil
		},
	}
	refreshLog := &stubRefreshLog{markedCount: 1}
	pusher := &stubPusher{}

	svc := NewDispatcherService(DispatcherOptions{
		ViewRepo:    views,
		ChannelRepo: channels,
		RefreshLog:  refreshLog,
		Pusher:      pusher,
	})

	err := svc.Dispatch(context.Background(), `{"job_id":42,"view_id":7}`)
	require.NoError(t, err)

	pushes := pusher.pushed()
	require.Len(t, pushes, 2)
	assert.Equal(t, chA.PublicID.String(), pushes[0].channelID)
	assert.Equal(t, chB.PublicID.String(), pushes[1].channelID)
	for _, p := range pushes {
		assert.Equal(t, "true", p.event.UpdateAvailable)
		assert.Equal(t, "sales_summary", p.event.ViewName)
	}
	assert.Equal(t, []int64{42}, refreshLog.marked())
}

func TestDispatcherDuplicateNotificationFansOutAgain(t *testing.T) {
	t.Parallel()

	ch := testChannel(42)
	views := &stubViewRepository{
		getByIDFunc: func(context.Context, int64) (*model.MaterializedView, error) {
			return &model.MaterializedView{ID: 7, ViewName: "sales_summary"}, nil
		},
	}
	channels := &stubChannelRepository{
		listActiveFunc: func(context.Context, int64) ([]*model.Channel, error) {
			return []*model.Channel{ch}, nil
		},
	}
	refreshLog := &stubRefreshLog{markedCount: 1}
	pusher := &stubPusher{}
	svc := NewDispatcherService(DispatcherOptions{
		ViewRepo:    views,
		ChannelRepo: channels,
		RefreshLog:  refreshLog,
		Pusher:      pusher,
	})

	require.NoError(t, svc.Dispatch(context.Background(), `{"job_id":42,"view_id":7}`))

	// A second broker process draining the same notification finds no NEW
	// records left to mark; the fan-out itself simply repeats.
	refreshLog.markedCount = 0
	require.NoError(t, svc.Dispatch(context.Background(), `{"job_id":42,"view_id":7}`))

	pushes := pusher.pushed()
	require.Len(t, pushes, 2)
	for _, p := range pushes {
		assert.Equal(t, ch.PublicID.String(), p.channelID)
		assert.Equal(t, "sales_summary", p.event.ViewName)
	}
	assert.Equal(t, []int64{42, 42}, refreshLog.marked())
}

func TestDispatcherDropsMalformedPayload(t *testing.T) {
	t.Parallel()

	pusher := &stubPusher{}
	refreshLog := &stubRefreshLog{}
	svc := NewDispatcherService(DispatcherOptions{
		ViewRepo:    &stubViewRepository{},
		ChannelRepo: &stubChannelRepository{},
		RefreshLog:  refreshLog,
		Pusher:      pusher,
	})

	for _, payload := range []string{
		"not json",
		`{"job_id":42}`,
		`{"view_id":7}`,
		`{"job_id":42,"view_id":7,"extra":"field"}`,
	} {
		require.NoError(t, svc.Dispatch(context.Background(), payload), payload)
	}

	assert.Empty(t, pusher.pushed())
	assert.Empty(t, refreshLog.marked())
}

func TestDispatcherDropsUnknownView(t *testing.T) {
	t.Parallel()

	views := &stubViewRepository{
		getByIDFunc: func(context.Context, int64) (*model.MaterializedView, error) {
			return nil, apperrors.NotFound("view not found")
		},
	}
	pusher := &stubPusher{}
	refreshLog := &stubRefreshLog{}
	svc := NewDispatcherService(DispatcherOptions{
		ViewRepo: views,
		ChannelRepo: &stubChannelRepository{
			listActiveFunc: func(context.Context, int64) ([]*model.Channel, error) {
				return nil, nil
			},
		},
		RefreshLog: refreshLog,
		Pusher:     pusher,
	})

	require.NoError(t, svc.Dispatch(context.Background(), `{"job_id":42,"view_id":999}`))
	assert.Empty(t, pusher.pushed())
	assert.Empty(t, refreshLog.marked())
}

func TestDispatcherPurgesCachedNameForUnknownView(t *testing.T) {
	t.Parallel()

	backing := newMemoryCache()
	require.NoError(t, backing.Set(context.Background(), "viewname:999", []byte("stale_name"), time.Minute))

	views := &stubViewRepository{
		getByIDFunc: func(context.Context, int64) (*model.MaterializedView, error) {
			return nil, apperrors.NotFound("view not found")
		},
	}
	svc := NewDispatcherService(DispatcherOptions{
		ViewRepo: views,
		ChannelRepo: &stubChannelRepository{
			listActiveFunc: func(context.Context, int64) ([]*model.Channel, error) {
				return nil, nil
			},
		},
		RefreshLog: &stubRefreshLog{},
		Pusher:     &stubPusher{},
		Cache:      &failingReadCache{memoryCache: backing},
		CacheTTL:   time.Minute,
	})

	require.NoError(t, svc.Dispatch(context.Background(), `{"job_id":42,"view_id":999}`))

	cached, err := backing.Get(context.Background(), "viewname:999")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestDispatcherPropagatesRegistryErrors(t *testing.T) {
	t.Parallel()

	views := &stubViewRepository{
		getByIDFunc: func(context.Context, int64) (*model.MaterializedView, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewDispatcherService(DispatcherOptions{
		ViewRepo: views,
		ChannelRepo: &stubChannelRepository{
			listActiveFunc: func(context.Context, int64) ([]*model.Channel, error) {
				return nil, nil
			},
		},
		RefreshLog: &stubRefreshLog{},
		Pusher:     &stubPusher{},
	})

	err := svc.Dispatch(context.Background(), `{"job_id":42,"view_id":7}`)
	require.Error(t, err)
}

func TestDispatcherZeroChannelsIsSilentNoop(t *testing.T) {
	t.Parallel()

	views := &stubViewRepository{
		getByIDFunc: func(context.Context, int64) (*model.MaterializedView, error) {
			return &model.MaterializedView{ID: 7, ViewName: "sales_summary"}, nil
		},
	}
	channels := &stubChannelRepository{
		listActiveFunc: func(context.Context, int64) ([]*model.Channel, error) {
			return nil, nil
		},
	}
	refreshLog := &stubRefreshLog{}
	pusher := &stubPusher{}
	svc := NewDispatcherService(DispatcherOptions{
		ViewRepo:    views,
		ChannelRepo: channels,
		RefreshLog:  refreshLog,
		Pusher:      pusher,
	})

	require.NoError(t, svc.Dispatch(context.Background(), `{"job_id":42,"view_id":7}`))
	assert.Empty(t, pusher.pushed())
	// The records are still handed off even with nobody listening.
	assert.Equal(t, []int64{42}, refreshLog.marked())
}

func TestDispatcherSiblingIsolation(t *testing.T) {
	t.Parallel()

	chA := testChannel(42)
	chB := testChannel(42)
	views := &stubViewRepository{
		getByIDFunc: func(context.Context, int64) (*model.MaterializedView, error) {
			return &model.MaterializedView{ID: 7, ViewName: "sales_summary"}, nil
		},
	}
	channels := &stubChannelRepository{
		listActiveFunc: func(context.Context, int64) ([]*model.Channel, error) {
			return []*model.Channel{chA, chB}, nil
		},
	}
	pusher := &stubPusher{results: map[string]stream.PushResult{
		chA.PublicID.String(): stream.PushNoSubscriber,
	}}
	refreshLog := &stubRefreshLog{}
	svc := NewDispatcherService(DispatcherOptions{
		ViewRepo:    views,
		ChannelRepo: channels,
		RefreshLog:  refreshLog,
		Pusher:      pusher,
	})

	require.NoError(t, svc.Dispatch(context.Background(), `{"job_id":42,"view_id":7}`))
	require.Len(t, pusher.pushed(), 2)
	assert.Equal(t, []int64{42}, refreshLog.marked())
}

func TestDispatcherCachesViewNameResolution(t *testing.T) {
	t.Parallel()

	var lookups int
	views := &stubViewRepository{
		getByIDFunc: func(context.Context, int64) (*model.MaterializedView, error) {
			lookups++
			return &model.MaterializedView{ID: 7, ViewName: "sales_summary"}, nil
		},
	}
	channels := &stubChannelRepository{
		listActiveFunc: func(context.Context, int64) ([]*model.Channel, error) {
			return nil, nil
		},
	}
	svc := NewDispatcherService(DispatcherOptions{
		ViewRepo:    views,
		ChannelRepo: channels,
		RefreshLog:  &stubRefreshLog{},
		Pusher:      &stubPusher{},
		Cache:       newMemoryCache(),
		CacheTTL:    time.Minute,
	})

	require.NoError(t, svc.Dispatch(context.Background(), `{"job_id":42,"view_id":7}`))
	require.NoError(t, svc.Dispatch(context.Background(), `{"job_id":42,"view_id":7}`))
	assert.Equal(t, 1, lookups)
}
