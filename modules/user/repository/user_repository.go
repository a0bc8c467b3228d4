package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"livestream-api/core/logger"
	"livestream-api/modules/user/entity"

	"github.com/jmoiron/sqlx"
)

// UserRepositoryInterface reads user profiles. Lookups that find nothing
// return a nil result and a nil error.
type UserRepositoryInterface interface {
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetUserByName(ctx context.Context, name string) (*entity.User, error)
	GetThemeByUserID(ctx context.Context, userID int64) (*entity.Theme, error)
	GetIconImage(ctx context.Context, userID int64) ([]byte, error)
}

type UserRepository struct {
	db sqlx.QueryerContext
}

// NewUserRepository binds to a pool or to an open transaction.
func NewUserRepository(db sqlx.QueryerContext) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*entity.User, error) {
	user := new(entity.User)
	err := sqlx.GetContext(ctx, r.db, user, `SELECT id, name, display_name, description, password FROM users WHERE id = $1`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("UserRepository:GetUserByID:Error", "user_id", id, "error", err)
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByName(ctx context.Context, name string) (*entity.User, error) {
	user := new(entity.User)
	err := sqlx.GetContext(ctx, r.db, user, `SELECT id, name, display_name, description, password FROM users WHERE name = $1`, name)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("UserRepository:GetUserByName:Error", "name", name, "error", err)
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetThemeByUserID(ctx context.Context, userID int64) (*entity.Theme, error) {
	theme := new(entity.Theme)
	err := sqlx.GetContext(ctx, r.db, theme, `SELECT id, user_id, dark_mode FROM themes WHERE user_id = $1`, userID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("UserRepository:GetThemeByUserID:Error", "user_id", userID, "error", err)
		return nil, err
	}
	return theme, nil
}

// GetIconImage returns the latest icon, or nil if the user never uploaded one.
func (r *UserRepository) GetIconImage(ctx context.Context, userID int64) ([]byte, error) {
	var image []byte
	err := sqlx.GetContext(ctx, r.db, &image, `SELECT image FROM icons WHERE user_id = $1 ORDER BY id DESC LIMIT 1`, userID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("UserRepository:GetIconImage:Error", "user_id", userID, "error", err)
		return nil, err
	}
	return image, nil
}
