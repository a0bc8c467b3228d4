package repository

import (
	"context"
	"fmt"
	"time"

	"livestream-api/core/logger"
	"livestream-api/modules/livestream/entity"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type SlotRepositoryInterface interface {
	// LockOverlapping row-locks every slot overlapping [startAt, endAt) in
	// ascending start order and returns them.
	LockOverlapping(ctx context.Context, startAt, endAt int64) ([]entity.ReservationSlot, error)
	GetRemaining(ctx context.Context, slotID int64) (int64, error)
	// Decrement takes one unit of capacity from each slot and reports how
	// many rows changed.
	Decrement(ctx context.Context, slotIDs []int64) (int64, error)
	ListOverlapping(ctx context.Context, startAt, endAt int64) ([]entity.ReservationSlot, error)
}

type SlotRepository struct {
	db sqlx.ExtContext
}

func NewSlotRepository(db sqlx.ExtContext) *SlotRepository {
	return &SlotRepository{db: db}
}

const lockOverlappingSlotsQuery = `
	SELECT id, slot, start_at, end_at FROM reservation_slots
	WHERE start_at < $1 AND end_at > $2
	ORDER BY start_at
	FOR UPDATE
`

func (r *SlotRepository) LockOverlapping(ctx context.Context, startAt, endAt int64) ([]entity.ReservationSlot, error) {
	slots := []entity.ReservationSlot{}
	if err := sqlx.SelectContext(ctx, r.db, &slots, lockOverlappingSlotsQuery, endAt, startAt); err != nil {
		logger.Error("SlotRepository:LockOverlapping:Error", "start_at", startAt, "end_at", endAt, "error", err)
		return nil, err
	}
	return slots, nil
}

func (r *SlotRepository) GetRemaining(ctx context.Context, slotID int64) (int64, error) {
	var remaining int64
	if err := sqlx.GetContext(ctx, r.db, &remaining, `SELECT slot FROM reservation_slots WHERE id = $1`, slotID); err != nil {
		logger.Error("SlotRepository:GetRemaining:Error", "slot_id", slotID, "error", err)
		return 0, err
	}
	return remaining, nil
}

func (r *SlotRepository) Decrement(ctx context.Context, slotIDs []int64) (int64, error) {
	if len(slotIDs) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `UPDATE reservation_slots SET slot = slot - 1 WHERE id = ANY($1)`, pq.Array(slotIDs))
	if err != nil {
		logger.Error("SlotRepository:Decrement:Error", "slot_ids", slotIDs, "error", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SlotRepository) ListOverlapping(ctx context.Context, startAt, endAt int64) ([]entity.ReservationSlot, error) {
	slots := []entity.ReservationSlot{}
	query := `
		SELECT id, slot, start_at, end_at FROM reservation_slots
		WHERE start_at < $1 AND end_at > $2
		ORDER BY start_at
	`
	if err := sqlx.SelectContext(ctx, r.db, &slots, query, endAt, startAt); err != nil {
		logger.Error("SlotRepository:ListOverlapping:Error", "error", err)
		return nil, err
	}
	return slots, nil
}

// Provision creates the fixed-width slot grid over [termStart, termEnd) with
// the given capacity. Existing slots are left untouched, so it is safe to run
// on every start.
func (r *SlotRepository) Provision(ctx context.Context, termStart, termEnd time.Time, width time.Duration, capacity int64) (int64, error) {
	widthSec := int64(width / time.Second)
	if widthSec <= 0 {
		return 0, fmt.Errorf("slot width must be at least one second, got %s", width)
	}
	query := `
		INSERT INTO reservation_slots (slot, start_at, end_at)
		SELECT $1, g, g + $2
		FROM generate_series($3::bigint, $4::bigint - $2::bigint, $2::bigint) AS g
		ON CONFLICT (start_at, end_at) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, capacity, widthSec, termStart.Unix(), termEnd.Unix())
	if err != nil {
		logger.Error("SlotRepository:Provision:Error", "error", err)
		return 0, err
	}
	return res.RowsAffected()
}
