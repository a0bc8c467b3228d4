package service

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"livestream-api/core/errors"
	"livestream-api/core/worker"
	"livestream-api/modules/livestream/dto"
	"livestream-api/modules/livestream/entity"
	userentity "livestream-api/modules/user/entity"
	userservice "livestream-api/modules/user/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type stubTags struct {
	known map[int64]string
}

func (s stubTags) ResolveIDsByName(_ context.Context, name string) ([]int64, *errors.AppError) {
	ids := []int64{}
	for id, n := range s.known {
		if n == name {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type recordingEnqueuer struct {
	mu       sync.Mutex
	payloads []worker.LivestreamReservedPayload
	err      error
}

func (r *recordingEnqueuer) Enqueue(_ context.Context, taskType string, payload any) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if taskType == worker.TypeLivestreamReserved {
		r.payloads = append(r.payloads, payload.(worker.LivestreamReservedPayload))
	}
	return nil
}

var testTags = map[int64]string{1: "chat", 2: "game"}

func testUsers() map[int64]userentity.User {
	users := map[int64]userentity.User{}
	for id := int64(1); id <= 16; id++ {
		users[id] = userentity.User{ID: id, Name: "streamer" + string(rune('a'+id-1)), DisplayName: "Streamer"}
	}
	return users
}

func newTestService(store *memStore, termStart, termEnd int64, enq worker.Enqueuer) *LivestreamService {
	tags := stubTags{known: testTags}
	return NewLivestreamService(
		store,
		NewTermValidator(time.Unix(termStart, 0), time.Unix(termEnd, 0)),
		NewCapacityAllocator(),
		NewReservationWriter(),
		NewAssembler(userservice.NewProfileFiller([]byte("fallback"))),
		tags,
		enq,
	)
}

func reserveReq(startAt, endAt int64) *dto.ReserveLivestreamRequest {
	return &dto.ReserveLivestreamRequest{
		Tags:         []int64{1, 999},
		Title:        "test stream",
		Description:  "desc",
		PlaylistURL:  "https://media.example.com/playlist.m3u8",
		ThumbnailURL: "https://media.example.com/thumb.jpg",
		StartAt:      startAt,
		EndAt:        endAt,
	}
}

func TestReserveLivestream_Success(t *testing.T) {
	store := newMemStore(testUsers(), testTags,
		entity.ReservationSlot{ID: 1, Slot: 2, StartAt: 0, EndAt: 3600},
		entity.ReservationSlot{ID: 2, Slot: 2, StartAt: 3600, EndAt: 7200},
	)
	enq := &recordingEnqueuer{}
	svc := newTestService(store, 0, 7200, enq)

	resp, appErr := svc.ReserveLivestream(context.Background(), 3, reserveReq(0, 3600))
	require.Nil(t, appErr)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, int64(3), resp.Owner.ID)
	assert.Equal(t, "test stream", resp.Title)
	assert.Equal(t, int64(0), resp.StartAt)
	assert.Equal(t, int64(3600), resp.EndAt)
	// tag 999 is linked but not in the catalog, so it is left out of the view
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, "chat", resp.Tags[0].Name)
	assert.Len(t, store.committedLinks(), 2)

	assert.Equal(t, map[int64]int64{1: 1, 2: 2}, store.remaining())
	require.Len(t, enq.payloads, 1)
	assert.Equal(t, resp.ID, enq.payloads[0].LivestreamID)
	assert.Equal(t, int64(3), enq.payloads[0].UserID)
}

func TestReserveLivestream_HorizonBoundaries(t *testing.T) {
	store := newMemStore(testUsers(), testTags,
		entity.ReservationSlot{ID: 1, Slot: 5, StartAt: 1000, EndAt: 2000},
	)
	svc := newTestService(store, 1000, 2000, nil)

	_, appErr := svc.ReserveLivestream(context.Background(), 1, reserveReq(2000, 3000))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrReservationOutOfTerm, appErr.Code)

	_, appErr = svc.ReserveLivestream(context.Background(), 1, reserveReq(0, 1000))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrReservationOutOfTerm, appErr.Code)

	_, appErr = svc.ReserveLivestream(context.Background(), 1, reserveReq(1000, 2000))
	require.Nil(t, appErr)

	assert.Equal(t, map[int64]int64{1: 4}, store.remaining())
}

func TestReserveLivestream_InvalidInterval(t *testing.T) {
	store := newMemStore(testUsers(), testTags, entity.ReservationSlot{ID: 1, Slot: 1, StartAt: 0, EndAt: 3600})
	svc := newTestService(store, 0, 3600, nil)

	_, appErr := svc.ReserveLivestream(context.Background(), 1, reserveReq(1800, 1800))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidReservationInterval, appErr.Code)
	assert.Equal(t, map[int64]int64{1: 1}, store.remaining())
	assert.Empty(t, store.committedLivestreams())
}

// Two adjacent slots of capacity one: a reservation over both exhausts them
// and any overlapping request afterwards is turned away.
func TestReserveLivestream_TwoSlotScenario(t *testing.T) {
	store := newMemStore(testUsers(), testTags,
		entity.ReservationSlot{ID: 1, Slot: 1, StartAt: 1000, EndAt: 2000},
		entity.ReservationSlot{ID: 2, Slot: 1, StartAt: 2000, EndAt: 3000},
	)
	svc := newTestService(store, 0, 10000, nil)

	_, appErr := svc.ReserveLivestream(context.Background(), 1, reserveReq(1000, 3000))
	require.Nil(t, appErr)
	assert.Equal(t, map[int64]int64{1: 0, 2: 0}, store.remaining())

	_, appErr = svc.ReserveLivestream(context.Background(), 2, reserveReq(1500, 2500))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrReservationSlotUnavailable, appErr.Code)

	details, ok := appErr.Details.(dto.SlotUnavailableDetails)
	require.True(t, ok)
	assert.Equal(t, dto.Interval{StartAt: 1500, EndAt: 2500}, details.Requested)
	assert.Equal(t, []dto.Interval{{StartAt: 1000, EndAt: 2000}, {StartAt: 2000, EndAt: 3000}}, details.Conflicts)

	assert.Equal(t, map[int64]int64{1: 0, 2: 0}, store.remaining())
	assert.Len(t, store.committedLivestreams(), 1)
}

func TestReserveLivestream_TwoSlotScenarioConcurrent(t *testing.T) {
	for range 50 {
		store := newMemStore(testUsers(), testTags,
			entity.ReservationSlot{ID: 1, Slot: 1, StartAt: 1000, EndAt: 2000},
			entity.ReservationSlot{ID: 2, Slot: 1, StartAt: 2000, EndAt: 3000},
		)
		svc := newTestService(store, 0, 10000, nil)

		var accepted atomic.Int32
		var g errgroup.Group
		for i, window := range [][2]int64{{1000, 3000}, {1500, 2500}} {
			g.Go(func() error {
				_, appErr := svc.ReserveLivestream(context.Background(), int64(i+1), reserveReq(window[0], window[1]))
				if appErr == nil {
					accepted.Add(1)
					return nil
				}
				if appErr.Code != errors.ErrReservationSlotUnavailable {
					return appErr
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())

		// both requests need both slots, so exactly one wins whatever the order
		assert.Equal(t, int32(1), accepted.Load())
		assert.Equal(t, map[int64]int64{1: 0, 2: 0}, store.remaining())
	}
}

func TestReserveLivestream_CapacityTwoThreeRequests(t *testing.T) {
	for range 50 {
		store := newMemStore(testUsers(), testTags,
			entity.ReservationSlot{ID: 1, Slot: 2, StartAt: 0, EndAt: 3600},
		)
		svc := newTestService(store, 0, 3600, nil)

		var accepted, rejected atomic.Int32
		var g errgroup.Group
		for i := range 3 {
			g.Go(func() error {
				_, appErr := svc.ReserveLivestream(context.Background(), int64(i+1), reserveReq(0, 3600))
				switch {
				case appErr == nil:
					accepted.Add(1)
				case appErr.Code == errors.ErrReservationSlotUnavailable:
					rejected.Add(1)
				default:
					return appErr
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())

		assert.Equal(t, int32(2), accepted.Load())
		assert.Equal(t, int32(1), rejected.Load())
		assert.Equal(t, map[int64]int64{1: 0}, store.remaining())
		assert.Len(t, store.committedLivestreams(), 2)
	}
}

func TestReserveLivestream_NoOverbookingUnderContention(t *testing.T) {
	const capacity = 4
	slots := make([]entity.ReservationSlot, 0, 6)
	for i := int64(0); i < 6; i++ {
		slots = append(slots, entity.ReservationSlot{ID: i + 1, Slot: capacity, StartAt: i * 3600, EndAt: (i + 1) * 3600})
	}
	store := newMemStore(testUsers(), testTags, slots...)
	svc := newTestService(store, 0, 6*3600, nil)

	// overlapping windows of one to three hours with assorted starts
	windows := [][2]int64{
		{0, 3600}, {0, 7200}, {3600, 14400}, {7200, 10800}, {10800, 21600},
		{0, 10800}, {14400, 21600}, {3600, 7200}, {18000, 21600}, {7200, 18000},
	}

	var g errgroup.Group
	for i := range 64 {
		window := windows[i%len(windows)]
		g.Go(func() error {
			_, appErr := svc.ReserveLivestream(context.Background(), int64(i%16+1), reserveReq(window[0], window[1]))
			if appErr != nil && appErr.Code != errors.ErrReservationSlotUnavailable {
				return appErr
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	remaining := store.remaining()
	accepted := store.committedLivestreams()
	for _, slot := range slots {
		overlapping := 0
		for _, ls := range accepted {
			if ls.StartAt < slot.EndAt && ls.EndAt > slot.StartAt {
				overlapping++
			}
		}
		assert.LessOrEqual(t, overlapping, capacity, "slot %d overbooked", slot.ID)
		assert.GreaterOrEqual(t, remaining[slot.ID], int64(0))
		assert.Equal(t, int64(capacity-overlapping), remaining[slot.ID], "slot %d capacity drifted", slot.ID)
	}
}

func TestReserveLivestream_RejectionIsAtomicAndIdempotent(t *testing.T) {
	store := newMemStore(testUsers(), testTags,
		entity.ReservationSlot{ID: 1, Slot: 1, StartAt: 0, EndAt: 3600},
		entity.ReservationSlot{ID: 2, Slot: 0, StartAt: 3600, EndAt: 7200},
		entity.ReservationSlot{ID: 3, Slot: 1, StartAt: 7200, EndAt: 10800},
	)
	svc := newTestService(store, 0, 10800, nil)
	before := store.remaining()

	for range 3 {
		_, appErr := svc.ReserveLivestream(context.Background(), 1, reserveReq(0, 10800))
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrReservationSlotUnavailable, appErr.Code)

		details := appErr.Details.(dto.SlotUnavailableDetails)
		assert.Equal(t, []dto.Interval{{StartAt: 3600, EndAt: 7200}}, details.Conflicts)
		assert.Equal(t, before, store.remaining())
	}
	assert.Empty(t, store.committedLivestreams())
}

func TestReserveLivestream_WriterFailureRollsBackCapacity(t *testing.T) {
	store := newMemStore(testUsers(), testTags,
		entity.ReservationSlot{ID: 1, Slot: 2, StartAt: 0, EndAt: 3600},
	)
	store.failTagInsert = stderrors.New("connection reset by peer")
	enq := &recordingEnqueuer{}
	svc := newTestService(store, 0, 3600, enq)

	_, appErr := svc.ReserveLivestream(context.Background(), 1, reserveReq(0, 3600))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrStorageFailure, appErr.Code)
	assert.NotContains(t, appErr.Message, "connection reset")

	assert.Equal(t, map[int64]int64{1: 2}, store.remaining())
	assert.Empty(t, store.committedLivestreams())
	assert.Empty(t, enq.payloads)
}

func TestReserveLivestream_NoSlotsInsideTermIsAccepted(t *testing.T) {
	store := newMemStore(testUsers(), testTags,
		entity.ReservationSlot{ID: 1, Slot: 1, StartAt: 0, EndAt: 3600},
	)
	svc := newTestService(store, 0, 10800, nil)

	_, appErr := svc.ReserveLivestream(context.Background(), 1, reserveReq(7200, 10800))
	require.Nil(t, appErr)
	assert.Equal(t, map[int64]int64{1: 1}, store.remaining())
}

func TestReserveLivestream_EnqueueFailureKeepsReservation(t *testing.T) {
	store := newMemStore(testUsers(), testTags,
		entity.ReservationSlot{ID: 1, Slot: 1, StartAt: 0, EndAt: 3600},
	)
	svc := newTestService(store, 0, 3600, &recordingEnqueuer{err: stderrors.New("redis down")})

	resp, appErr := svc.ReserveLivestream(context.Background(), 1, reserveReq(0, 3600))
	require.Nil(t, appErr)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, map[int64]int64{1: 0}, store.remaining())
}

func TestReadEndpointsReuseAssembler(t *testing.T) {
	store := newMemStore(testUsers(), testTags,
		entity.ReservationSlot{ID: 1, Slot: 3, StartAt: 0, EndAt: 3600},
	)
	svc := newTestService(store, 0, 3600, nil)
	ctx := context.Background()

	created, appErr := svc.ReserveLivestream(ctx, 2, reserveReq(0, 3600))
	require.Nil(t, appErr)
	other := reserveReq(0, 3600)
	other.Tags = []int64{2}
	_, appErr = svc.ReserveLivestream(ctx, 3, other)
	require.Nil(t, appErr)

	got, appErr := svc.GetLivestream(ctx, created.ID)
	require.Nil(t, appErr)
	assert.Equal(t, *created, *got)

	_, appErr = svc.GetLivestream(ctx, 12345)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)

	all, appErr := svc.SearchLivestreams(ctx, dto.SearchLivestreamsQuery{})
	require.Nil(t, appErr)
	require.Len(t, all, 2)
	assert.Greater(t, all[0].ID, all[1].ID)

	games, appErr := svc.SearchLivestreams(ctx, dto.SearchLivestreamsQuery{Tag: "game"})
	require.Nil(t, appErr)
	require.Len(t, games, 1)
	assert.Equal(t, int64(3), games[0].Owner.ID)

	mine, appErr := svc.ListUserLivestreams(ctx, 2)
	require.Nil(t, appErr)
	require.Len(t, mine, 1)
	assert.Equal(t, *created, mine[0])

	byName, appErr := svc.ListLivestreamsByUsername(ctx, testUsers()[2].Name)
	require.Nil(t, appErr)
	assert.Equal(t, mine, byName)

	_, appErr = svc.ListLivestreamsByUsername(ctx, "nobody")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestListSlots(t *testing.T) {
	store := newMemStore(testUsers(), testTags,
		entity.ReservationSlot{ID: 1, Slot: 2, StartAt: 0, EndAt: 3600},
		entity.ReservationSlot{ID: 2, Slot: 1, StartAt: 3600, EndAt: 7200},
		entity.ReservationSlot{ID: 3, Slot: 2, StartAt: 7200, EndAt: 10800},
	)
	svc := newTestService(store, 0, 10800, nil)

	resp, appErr := svc.ListSlots(context.Background(), 1800, 7200)
	require.Nil(t, appErr)
	assert.Equal(t, []dto.SlotResponse{
		{StartAt: 0, EndAt: 3600, Remaining: 2},
		{StartAt: 3600, EndAt: 7200, Remaining: 1},
	}, resp.Slots)

	_, appErr = svc.ListSlots(context.Background(), 7200, 7200)
	require.NotNil(t, appErr)
}

func TestEnterAndLeaveLivestream(t *testing.T) {
	store := newMemStore(testUsers(), testTags,
		entity.ReservationSlot{ID: 1, Slot: 1, StartAt: 0, EndAt: 3600},
	)
	svc := newTestService(store, 0, 3600, nil)
	ctx := context.Background()

	created, appErr := svc.ReserveLivestream(ctx, 2, reserveReq(0, 3600))
	require.Nil(t, appErr)

	require.Nil(t, svc.EnterLivestream(ctx, 3, created.ID))
	require.Nil(t, svc.EnterLivestream(ctx, 3, created.ID))
	assert.Equal(t, 2, store.viewing(3, created.ID))

	require.Nil(t, svc.LeaveLivestream(ctx, 3, created.ID))
	assert.Equal(t, 0, store.viewing(3, created.ID))
	assert.Nil(t, svc.LeaveLivestream(ctx, 3, created.ID))

	appErr = svc.EnterLivestream(ctx, 3, 999)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
	appErr = svc.LeaveLivestream(ctx, 3, 999)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}
