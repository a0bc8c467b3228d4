package service

import (
	"context"
	"fmt"

	"livestream-api/core/errors"
	"livestream-api/core/logger"
	"livestream-api/modules/livestream/dto"
	"livestream-api/modules/livestream/entity"
	"livestream-api/modules/livestream/repository"
)

type Allocation struct {
	Slots []entity.ReservationSlot
}

func (a *Allocation) SlotIDs() []int64 {
	ids := make([]int64, len(a.Slots))
	for i, s := range a.Slots {
		ids[i] = s.ID
	}
	return ids
}

// CapacityAllocator takes one unit of capacity from every slot a window
// overlaps, or from none of them. It must run inside the caller's transaction
// so the row locks it takes are held until commit or rollback.
type CapacityAllocator struct{}

func NewCapacityAllocator() *CapacityAllocator {
	return &CapacityAllocator{}
}

func (a *CapacityAllocator) Allocate(ctx context.Context, slots repository.SlotRepositoryInterface, startAt, endAt int64) (*Allocation, error) {
	locked, err := slots.LockOverlapping(ctx, startAt, endAt)
	if err != nil {
		return nil, fmt.Errorf("lock slots: %w", err)
	}
	if len(locked) == 0 {
		logger.Warn("CapacityAllocator:Allocate:NoSlots", "start_at", startAt, "end_at", endAt)
		return &Allocation{}, nil
	}

	// re-read remaining capacity now that the rows are locked
	var conflicts []dto.Interval
	for i := range locked {
		remaining, err := slots.GetRemaining(ctx, locked[i].ID)
		if err != nil {
			return nil, fmt.Errorf("read slot %d: %w", locked[i].ID, err)
		}
		locked[i].Slot = remaining
		if remaining < 1 {
			conflicts = append(conflicts, dto.Interval{StartAt: locked[i].StartAt, EndAt: locked[i].EndAt})
		}
	}
	if len(conflicts) > 0 {
		logger.Info("CapacityAllocator:Allocate:SlotUnavailable",
			"start_at", startAt, "end_at", endAt, "conflicts", len(conflicts))
		return nil, errors.NewAppError(errors.ErrReservationSlotUnavailable,
			"one or more slots in the requested window are fully booked", nil).
			WithDetails(dto.SlotUnavailableDetails{
				Requested: dto.Interval{StartAt: startAt, EndAt: endAt},
				Conflicts: conflicts,
			})
	}

	alloc := &Allocation{Slots: locked}
	updated, err := slots.Decrement(ctx, alloc.SlotIDs())
	if err != nil {
		return nil, fmt.Errorf("decrement slots: %w", err)
	}
	if updated != int64(len(locked)) {
		return nil, fmt.Errorf("decrement slots: updated %d rows, locked %d", updated, len(locked))
	}
	for i := range alloc.Slots {
		alloc.Slots[i].Slot--
	}
	return alloc, nil
}
