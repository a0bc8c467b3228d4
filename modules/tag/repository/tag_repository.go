package repository

import (
	"context"

	"livestream-api/core/logger"
	"livestream-api/modules/tag/entity"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type TagRepositoryInterface interface {
	ListTags(ctx context.Context) ([]entity.Tag, error)
	FindIDsByName(ctx context.Context, name string) ([]int64, error)
	FindKnownIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type TagRepository struct {
	db sqlx.QueryerContext
}

func NewTagRepository(db sqlx.QueryerContext) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) ListTags(ctx context.Context) ([]entity.Tag, error) {
	tags := []entity.Tag{}
	if err := sqlx.SelectContext(ctx, r.db, &tags, `SELECT id, name FROM tags ORDER BY id`); err != nil {
		logger.Error("TagRepository:ListTags:Error", "error", err)
		return nil, err
	}
	return tags, nil
}

func (r *TagRepository) FindIDsByName(ctx context.Context, name string) ([]int64, error) {
	ids := []int64{}
	if err := sqlx.SelectContext(ctx, r.db, &ids, `SELECT id FROM tags WHERE name = $1`, name); err != nil {
		logger.Error("TagRepository:FindIDsByName:Error", "name", name, "error", err)
		return nil, err
	}
	return ids, nil
}

func (r *TagRepository) FindKnownIDs(ctx context.Context, ids []int64) ([]int64, error) {
	known := []int64{}
	if len(ids) == 0 {
		return known, nil
	}
	if err := sqlx.SelectContext(ctx, r.db, &known, `SELECT id FROM tags WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		logger.Error("TagRepository:FindKnownIDs:Error", "error", err)
		return nil, err
	}
	return known, nil
}
