package repository

import (
	"context"

	"livestream-api/core/logger"
	"livestream-api/modules/reaction/entity"

	"github.com/jmoiron/sqlx"
)

type ReactionRepositoryInterface interface {
	InsertReaction(ctx context.Context, reaction *entity.Reaction) error
	ListByLivestreamID(ctx context.Context, livestreamID int64, limit int) ([]entity.Reaction, error)
}

type ReactionRepository struct {
	db sqlx.ExtContext
}

func NewReactionRepository(db sqlx.ExtContext) *ReactionRepository {
	return &ReactionRepository{db: db}
}

func (r *ReactionRepository) InsertReaction(ctx context.Context, reaction *entity.Reaction) error {
	query := `INSERT INTO reactions (user_id, livestream_id, emoji_name, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := sqlx.GetContext(ctx, r.db, &reaction.ID, query, reaction.UserID, reaction.LivestreamID, reaction.EmojiName, reaction.CreatedAt); err != nil {
		logger.Error("ReactionRepository:InsertReaction:Error", "livestream_id", reaction.LivestreamID, "error", err)
		return err
	}
	return nil
}

func (r *ReactionRepository) ListByLivestreamID(ctx context.Context, livestreamID int64, limit int) ([]entity.Reaction, error) {
	query := `
		SELECT id, user_id, livestream_id, emoji_name, created_at
		FROM reactions
		WHERE livestream_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`
	out := []entity.Reaction{}
	if err := sqlx.SelectContext(ctx, r.db, &out, query, livestreamID, limit); err != nil {
		logger.Error("ReactionRepository:ListByLivestreamID:Error", "livestream_id", livestreamID, "error", err)
		return nil, err
	}
	return out, nil
}
