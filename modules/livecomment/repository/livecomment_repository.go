package repository

import (
	"context"

	"livestream-api/core/logger"
	"livestream-api/modules/livecomment/entity"

	"github.com/jmoiron/sqlx"
)

type LivecommentRepositoryInterface interface {
	InsertLivecomment(ctx context.Context, livecomment *entity.Livecomment) error
	ListByLivestreamID(ctx context.Context, livestreamID int64, limit int) ([]entity.Livecomment, error)
}

type LivecommentRepository struct {
	db sqlx.ExtContext
}

func NewLivecommentRepository(db sqlx.ExtContext) *LivecommentRepository {
	return &LivecommentRepository{db: db}
}

func (r *LivecommentRepository) InsertLivecomment(ctx context.Context, livecomment *entity.Livecomment) error {
	query := `
		INSERT INTO livecomments (user_id, livestream_id, comment, tip, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := sqlx.GetContext(ctx, r.db, &livecomment.ID, query,
		livecomment.UserID, livecomment.LivestreamID, livecomment.Comment, livecomment.Tip,
		livecomment.CreatedAt, livecomment.UpdatedAt)
	if err != nil {
		logger.Error("LivecommentRepository:InsertLivecomment:Error", "livestream_id", livecomment.LivestreamID, "error", err)
		return err
	}
	return nil
}

// ListByLivestreamID returns the newest comments first.
func (r *LivecommentRepository) ListByLivestreamID(ctx context.Context, livestreamID int64, limit int) ([]entity.Livecomment, error) {
	query := `
		SELECT id, user_id, livestream_id, comment, tip, report_count, created_at, updated_at
		FROM livecomments
		WHERE livestream_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`
	out := []entity.Livecomment{}
	if err := sqlx.SelectContext(ctx, r.db, &out, query, livestreamID, limit); err != nil {
		logger.Error("LivecommentRepository:ListByLivestreamID:Error", "livestream_id", livestreamID, "error", err)
		return nil, err
	}
	return out, nil
}
