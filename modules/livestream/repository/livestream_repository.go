package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"livestream-api/core/logger"
	"livestream-api/modules/livestream/entity"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type LivestreamRepositoryInterface interface {
	InsertLivestream(ctx context.Context, livestream *entity.Livestream) error
	InsertLivestreamTags(ctx context.Context, livestreamID int64, tagIDs []int64) error
	GetLivestreamByID(ctx context.Context, id int64) (*entity.Livestream, error)
	ListLivestreams(ctx context.Context, limit int) ([]entity.Livestream, error)
	ListLivestreamsByTagIDs(ctx context.Context, tagIDs []int64, limit int) ([]entity.Livestream, error)
	ListLivestreamsByUserID(ctx context.Context, userID int64) ([]entity.Livestream, error)
	GetLinkedTags(ctx context.Context, livestreamID int64) ([]entity.LinkedTag, error)
}

type LivestreamRepository struct {
	db sqlx.ExtContext
}

func NewLivestreamRepository(db sqlx.ExtContext) *LivestreamRepository {
	return &LivestreamRepository{db: db}
}

const livestreamColumns = `id, user_id, title, description, playlist_url, thumbnail_url, start_at, end_at`

func (r *LivestreamRepository) InsertLivestream(ctx context.Context, livestream *entity.Livestream) error {
	query := `
		INSERT INTO livestreams (user_id, title, description, playlist_url, thumbnail_url, start_at, end_at)
		VALUES (:user_id, :title, :description, :playlist_url, :thumbnail_url, :start_at, :end_at)
		RETURNING id
	`
	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, livestream)
	if err != nil {
		logger.Error("LivestreamRepository:InsertLivestream:Error", "error", err)
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	return rows.Scan(&livestream.ID)
}

func (r *LivestreamRepository) InsertLivestreamTags(ctx context.Context, livestreamID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO livestream_tags (livestream_id, tag_id)
		SELECT $1, t FROM unnest($2::bigint[]) WITH ORDINALITY AS u(t, ord)
		ORDER BY ord
	`
	if _, err := r.db.ExecContext(ctx, query, livestreamID, pq.Array(tagIDs)); err != nil {
		logger.Error("LivestreamRepository:InsertLivestreamTags:Error", "livestream_id", livestreamID, "error", err)
		return err
	}
	return nil
}

func (r *LivestreamRepository) GetLivestreamByID(ctx context.Context, id int64) (*entity.Livestream, error) {
	livestream := new(entity.Livestream)
	err := sqlx.GetContext(ctx, r.db, livestream, `SELECT `+livestreamColumns+` FROM livestreams WHERE id = $1`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("LivestreamRepository:GetLivestreamByID:Error", "livestream_id", id, "error", err)
		return nil, err
	}
	return livestream, nil
}

func (r *LivestreamRepository) ListLivestreams(ctx context.Context, limit int) ([]entity.Livestream, error) {
	livestreams := []entity.Livestream{}
	query := `SELECT ` + livestreamColumns + ` FROM livestreams ORDER BY id DESC LIMIT $1`
	if err := sqlx.SelectContext(ctx, r.db, &livestreams, query, limit); err != nil {
		logger.Error("LivestreamRepository:ListLivestreams:Error", "error", err)
		return nil, err
	}
	return livestreams, nil
}

func (r *LivestreamRepository) ListLivestreamsByTagIDs(ctx context.Context, tagIDs []int64, limit int) ([]entity.Livestream, error) {
	livestreams := []entity.Livestream{}
	if len(tagIDs) == 0 {
		return livestreams, nil
	}
	query := `
		SELECT ` + livestreamColumns + ` FROM livestreams
		WHERE id IN (SELECT livestream_id FROM livestream_tags WHERE tag_id = ANY($1))
		ORDER BY id DESC
		LIMIT $2
	`
	if err := sqlx.SelectContext(ctx, r.db, &livestreams, query, pq.Array(tagIDs), limit); err != nil {
		logger.Error("LivestreamRepository:ListLivestreamsByTagIDs:Error", "error", err)
		return nil, err
	}
	return livestreams, nil
}

func (r *LivestreamRepository) ListLivestreamsByUserID(ctx context.Context, userID int64) ([]entity.Livestream, error) {
	livestreams := []entity.Livestream{}
	query := `SELECT ` + livestreamColumns + ` FROM livestreams WHERE user_id = $1 ORDER BY id`
	if err := sqlx.SelectContext(ctx, r.db, &livestreams, query, userID); err != nil {
		logger.Error("LivestreamRepository:ListLivestreamsByUserID:Error", "user_id", userID, "error", err)
		return nil, err
	}
	return livestreams, nil
}

func (r *LivestreamRepository) GetLinkedTags(ctx context.Context, livestreamID int64) ([]entity.LinkedTag, error) {
	linked := []entity.LinkedTag{}
	query := `
		SELECT lt.tag_id, t.name
		FROM livestream_tags lt
		LEFT JOIN tags t ON t.id = lt.tag_id
		WHERE lt.livestream_id = $1
		ORDER BY lt.id
	`
	if err := sqlx.SelectContext(ctx, r.db, &linked, query, livestreamID); err != nil {
		logger.Error("LivestreamRepository:GetLinkedTags:Error", "livestream_id", livestreamID, "error", err)
		return nil, err
	}
	return linked, nil
}
