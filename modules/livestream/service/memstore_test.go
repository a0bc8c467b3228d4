package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"livestream-api/modules/livestream/entity"
	"livestream-api/modules/livestream/repository"
	tagentity "livestream-api/modules/tag/entity"
	userentity "livestream-api/modules/user/entity"
)

// memStore is an in-memory repository.Store whose slot rows carry real
// mutexes, so LockOverlapping blocks exactly like SELECT ... FOR UPDATE.
type memStore struct {
	slots []*memSlot

	mu          sync.Mutex
	livestreams []entity.Livestream
	links       []entity.LivestreamTag

	nextID   atomic.Int64
	users    map[int64]userentity.User
	tagNames map[int64]string
	viewers  map[[2]int64]int

	// failTagInsert makes InsertLivestreamTags fail after capacity is taken.
	failTagInsert error
}

type memSlot struct {
	lock      sync.Mutex
	id        int64
	startAt   int64
	endAt     int64
	remaining atomic.Int64
}

func newMemStore(users map[int64]userentity.User, tags map[int64]string, slots ...entity.ReservationSlot) *memStore {
	s := &memStore{users: users, tagNames: tags}
	for _, row := range slots {
		ms := &memSlot{id: row.ID, startAt: row.StartAt, endAt: row.EndAt}
		ms.remaining.Store(row.Slot)
		s.slots = append(s.slots, ms)
	}
	sort.Slice(s.slots, func(i, j int) bool { return s.slots[i].startAt < s.slots[j].startAt })
	return s
}

func (s *memStore) remaining() map[int64]int64 {
	out := make(map[int64]int64, len(s.slots))
	for _, ms := range s.slots {
		out[ms.id] = ms.remaining.Load()
	}
	return out
}

func (s *memStore) committedLivestreams() []entity.Livestream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Livestream(nil), s.livestreams...)
}

func (s *memStore) committedLinks() []entity.LivestreamTag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.LivestreamTag(nil), s.links...)
}

func (s *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	tx := &memTx{store: s, pending: map[int64]int64{}}
	defer tx.release()

	if err := fn(ctx, tx.repositories()); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *memStore) Reader() repository.Repositories {
	return (&memTx{store: s, readOnly: true}).repositories()
}

type memTx struct {
	store    *memStore
	readOnly bool

	held        []*memSlot
	pending     map[int64]int64
	livestreams []entity.Livestream
	links       []entity.LivestreamTag
}

func (tx *memTx) repositories() repository.Repositories {
	return repository.Repositories{
		Slots:       &memSlotRepo{tx: tx},
		Livestreams: &memLivestreamRepo{tx: tx},
		Users:       &memUserRepo{store: tx.store},
		Tags:        &memTagRepo{store: tx.store},
		Viewers:     &memViewerRepo{store: tx.store},
	}
}

func (tx *memTx) holds(ms *memSlot) bool {
	for _, h := range tx.held {
		if h == ms {
			return true
		}
	}
	return false
}

func (tx *memTx) commit() {
	for _, ms := range tx.held {
		ms.remaining.Add(-tx.pending[ms.id])
	}
	tx.store.mu.Lock()
	tx.store.livestreams = append(tx.store.livestreams, tx.livestreams...)
	tx.store.links = append(tx.store.links, tx.links...)
	tx.store.mu.Unlock()
}

func (tx *memTx) release() {
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.held[i].lock.Unlock()
	}
	tx.held = nil
}

type memSlotRepo struct {
	tx *memTx
}

func (r *memSlotRepo) LockOverlapping(ctx context.Context, startAt, endAt int64) ([]entity.ReservationSlot, error) {
	if r.tx.readOnly {
		return nil, fmt.Errorf("lock requested outside a transaction")
	}
	var out []entity.ReservationSlot
	for _, ms := range r.tx.store.slots {
		if ms.startAt >= endAt || ms.endAt <= startAt {
			continue
		}
		if !r.tx.holds(ms) {
			ms.lock.Lock()
			r.tx.held = append(r.tx.held, ms)
		}
		out = append(out, entity.ReservationSlot{
			ID:      ms.id,
			Slot:    ms.remaining.Load() - r.tx.pending[ms.id],
			StartAt: ms.startAt,
			EndAt:   ms.endAt,
		})
	}
	return out, ctx.Err()
}

func (r *memSlotRepo) GetRemaining(_ context.Context, slotID int64) (int64, error) {
	for _, ms := range r.tx.store.slots {
		if ms.id == slotID {
			return ms.remaining.Load() - r.tx.pending[slotID], nil
		}
	}
	return 0, fmt.Errorf("slot %d not found", slotID)
}

func (r *memSlotRepo) Decrement(_ context.Context, slotIDs []int64) (int64, error) {
	var n int64
	for _, id := range slotIDs {
		for _, ms := range r.tx.store.slots {
			if ms.id != id {
				continue
			}
			if !r.tx.holds(ms) {
				return 0, fmt.Errorf("slot %d decremented without a lock", id)
			}
			if ms.remaining.Load()-r.tx.pending[id] < 1 {
				return 0, fmt.Errorf("slot %d would go negative", id)
			}
			r.tx.pending[id]++
			n++
		}
	}
	return n, nil
}

func (r *memSlotRepo) ListOverlapping(_ context.Context, startAt, endAt int64) ([]entity.ReservationSlot, error) {
	var out []entity.ReservationSlot
	for _, ms := range r.tx.store.slots {
		if ms.startAt < endAt && ms.endAt > startAt {
			out = append(out, entity.ReservationSlot{ID: ms.id, Slot: ms.remaining.Load(), StartAt: ms.startAt, EndAt: ms.endAt})
		}
	}
	return out, nil
}

type memLivestreamRepo struct {
	tx *memTx
}

func (r *memLivestreamRepo) InsertLivestream(_ context.Context, livestream *entity.Livestream) error {
	livestream.ID = r.tx.store.nextID.Add(1)
	r.tx.livestreams = append(r.tx.livestreams, *livestream)
	return nil
}

func (r *memLivestreamRepo) InsertLivestreamTags(_ context.Context, livestreamID int64, tagIDs []int64) error {
	if r.tx.store.failTagInsert != nil {
		return r.tx.store.failTagInsert
	}
	for _, id := range tagIDs {
		r.tx.links = append(r.tx.links, entity.LivestreamTag{LivestreamID: livestreamID, TagID: id})
	}
	return nil
}

func (r *memLivestreamRepo) visible() []entity.Livestream {
	out := r.tx.store.committedLivestreams()
	return append(out, r.tx.livestreams...)
}

func (r *memLivestreamRepo) GetLivestreamByID(_ context.Context, id int64) (*entity.Livestream, error) {
	for _, ls := range r.visible() {
		if ls.ID == id {
			return &ls, nil
		}
	}
	return nil, nil
}

func (r *memLivestreamRepo) ListLivestreams(_ context.Context, limit int) ([]entity.Livestream, error) {
	all := r.visible()
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *memLivestreamRepo) ListLivestreamsByTagIDs(ctx context.Context, tagIDs []int64, limit int) ([]entity.Livestream, error) {
	want := map[int64]bool{}
	for _, id := range tagIDs {
		want[id] = true
	}
	hit := map[int64]bool{}
	for _, l := range append(r.tx.store.committedLinks(), r.tx.links...) {
		if want[l.TagID] {
			hit[l.LivestreamID] = true
		}
	}
	all, _ := r.ListLivestreams(ctx, len(r.visible()))
	var out []entity.Livestream
	for _, ls := range all {
		if hit[ls.ID] && len(out) < limit {
			out = append(out, ls)
		}
	}
	return out, nil
}

func (r *memLivestreamRepo) ListLivestreamsByUserID(_ context.Context, userID int64) ([]entity.Livestream, error) {
	var out []entity.Livestream
	for _, ls := range r.visible() {
		if ls.UserID == userID {
			out = append(out, ls)
		}
	}
	return out, nil
}

func (r *memLivestreamRepo) GetLinkedTags(_ context.Context, livestreamID int64) ([]entity.LinkedTag, error) {
	var out []entity.LinkedTag
	for _, l := range append(r.tx.store.committedLinks(), r.tx.links...) {
		if l.LivestreamID != livestreamID {
			continue
		}
		lt := entity.LinkedTag{TagID: l.TagID}
		if name, ok := r.tx.store.tagNames[l.TagID]; ok {
			lt.Name.String, lt.Name.Valid = name, true
		}
		out = append(out, lt)
	}
	return out, nil
}

type memUserRepo struct {
	store *memStore
}

func (r *memUserRepo) GetUserByID(_ context.Context, id int64) (*userentity.User, error) {
	if u, ok := r.store.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetUserByName(_ context.Context, name string) (*userentity.User, error) {
	for _, u := range r.store.users {
		if u.Name == name {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetThemeByUserID(_ context.Context, userID int64) (*userentity.Theme, error) {
	return &userentity.Theme{ID: userID, UserID: userID}, nil
}

func (r *memUserRepo) GetIconImage(context.Context, int64) ([]byte, error) {
	return nil, nil
}

type memTagRepo struct {
	store *memStore
}

func (r *memTagRepo) ListTags(context.Context) ([]tagentity.Tag, error) {
	var out []tagentity.Tag
	for id, name := range r.store.tagNames {
		out = append(out, tagentity.Tag{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memTagRepo) FindIDsByName(_ context.Context, name string) ([]int64, error) {
	ids := []int64{}
	for id, n := range r.store.tagNames {
		if n == name {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memTagRepo) FindKnownIDs(_ context.Context, ids []int64) ([]int64, error) {
	known := []int64{}
	for _, id := range ids {
		if _, ok := r.store.tagNames[id]; ok {
			known = append(known, id)
		}
	}
	return known, nil
}

type memViewerRepo struct {
	store *memStore
}

func (r *memViewerRepo) Enter(_ context.Context, userID, livestreamID, _ int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.viewers == nil {
		r.store.viewers = map[[2]int64]int{}
	}
	r.store.viewers[[2]int64{userID, livestreamID}]++
	return nil
}

func (r *memViewerRepo) Leave(_ context.Context, userID, livestreamID int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := [2]int64{userID, livestreamID}
	n := r.store.viewers[key]
	delete(r.store.viewers, key)
	return int64(n), nil
}

func (s *memStore) viewing(userID, livestreamID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewers[[2]int64{userID, livestreamID}]
}
