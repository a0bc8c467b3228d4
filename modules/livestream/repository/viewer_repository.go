package repository

import (
	"context"

	"livestream-api/core/logger"

	"github.com/jmoiron/sqlx"
)

// ViewerRepositoryInterface records who is watching a livestream.
type ViewerRepositoryInterface interface {
	Enter(ctx context.Context, userID, livestreamID, at int64) error
	Leave(ctx context.Context, userID, livestreamID int64) (int64, error)
}

type ViewerRepository struct {
	db sqlx.ExtContext
}

func NewViewerRepository(db sqlx.ExtContext) *ViewerRepository {
	return &ViewerRepository{db: db}
}

func (r *ViewerRepository) Enter(ctx context.Context, userID, livestreamID, at int64) error {
	query := `INSERT INTO livestream_viewers_history (user_id, livestream_id, created_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, userID, livestreamID, at); err != nil {
		logger.Error("ViewerRepository:Enter:Error", "user_id", userID, "livestream_id", livestreamID, "error", err)
		return err
	}
	return nil
}

// Leave removes every open viewing of livestreamID by userID and reports how
// many rows went away.
func (r *ViewerRepository) Leave(ctx context.Context, userID, livestreamID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM livestream_viewers_history WHERE user_id = $1 AND livestream_id = $2`, userID, livestreamID)
	if err != nil {
		logger.Error("ViewerRepository:Leave:Error", "user_id", userID, "livestream_id", livestreamID, "error", err)
		return 0, err
	}
	return res.RowsAffected()
}
