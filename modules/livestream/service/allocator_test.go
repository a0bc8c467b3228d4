package service

import (
	"context"
	"testing"

	"livestream-api/modules/livestream/entity"
	"livestream-api/modules/livestream/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shortDecrementRepo struct {
	*memSlotRepo
}

func (r shortDecrementRepo) Decrement(ctx context.Context, ids []int64) (int64, error) {
	n, err := r.memSlotRepo.Decrement(ctx, ids)
	return n - 1, err
}

func TestCapacityAllocator_UpdatedRowMismatchAborts(t *testing.T) {
	store := newMemStore(nil, nil,
		entity.ReservationSlot{ID: 1, Slot: 1, StartAt: 0, EndAt: 3600},
		entity.ReservationSlot{ID: 2, Slot: 1, StartAt: 3600, EndAt: 7200},
	)
	alloc := NewCapacityAllocator()

	err := store.RunInTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		slots := shortDecrementRepo{memSlotRepo: repos.Slots.(*memSlotRepo)}
		_, err := alloc.Allocate(ctx, slots, 0, 7200)
		return err
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "updated 1 rows, locked 2")
	assert.Equal(t, map[int64]int64{1: 1, 2: 1}, store.remaining())
}

func TestCapacityAllocator_OverlapNotContainment(t *testing.T) {
	store := newMemStore(nil, nil,
		entity.ReservationSlot{ID: 1, Slot: 1, StartAt: 0, EndAt: 3600},
		entity.ReservationSlot{ID: 2, Slot: 1, StartAt: 3600, EndAt: 7200},
		entity.ReservationSlot{ID: 3, Slot: 1, StartAt: 7200, EndAt: 10800},
	)
	alloc := NewCapacityAllocator()

	var got *Allocation
	err := store.RunInTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		var err error
		got, err = alloc.Allocate(ctx, repos.Slots, 1800, 5400)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, got.SlotIDs())
	assert.Equal(t, map[int64]int64{1: 0, 2: 0, 3: 1}, store.remaining())
}
