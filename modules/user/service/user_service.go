package service

import (
	"context"

	"livestream-api/core/errors"
	"livestream-api/modules/user/dto"
	"livestream-api/modules/user/entity"
	"livestream-api/modules/user/repository"
)

type UserServiceInterface interface {
	GetUserByID(ctx context.Context, id int64) (*dto.UserResponse, *errors.AppError)
	GetUserByName(ctx context.Context, name string) (*dto.UserResponse, *errors.AppError)
}

type UserService struct {
	repo    repository.UserRepositoryInterface
	profile *ProfileFiller
}

func NewUserService(repo repository.UserRepositoryInterface, profile *ProfileFiller) *UserService {
	return &UserService{repo: repo, profile: profile}
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*dto.UserResponse, *errors.AppError) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
	}
	return s.fill(ctx, user)
}

func (s *UserService) GetUserByName(ctx context.Context, name string) (*dto.UserResponse, *errors.AppError) {
	user, err := s.repo.GetUserByName(ctx, name)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
	}
	return s.fill(ctx, user)
}

func (s *UserService) fill(ctx context.Context, user *entity.User) (*dto.UserResponse, *errors.AppError) {
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "user not found", nil)
	}
	resp, err := s.profile.Fill(ctx, s.repo, *user)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build user profile", err)
	}
	return &resp, nil
}
