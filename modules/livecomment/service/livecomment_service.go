package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"livestream-api/core/constants"
	"livestream-api/core/errors"
	"livestream-api/core/logger"
	"livestream-api/modules/livecomment/dto"
	"livestream-api/modules/livecomment/entity"
	"livestream-api/modules/livecomment/repository"
	lsdto "livestream-api/modules/livestream/dto"
	userdto "livestream-api/modules/user/dto"
	userrepo "livestream-api/modules/user/repository"
	userservice "livestream-api/modules/user/service"
)

type LivecommentServiceInterface interface {
	PostLivecomment(ctx context.Context, userID, livestreamID int64, req *dto.PostLivecommentRequest) (*dto.LivecommentResponse, *errors.AppError)
	ListLivecomments(ctx context.Context, livestreamID int64, limit int) ([]dto.LivecommentResponse, *errors.AppError)
}

// LivestreamReader returns the assembled view of a livestream, or NOT_FOUND.
type LivestreamReader interface {
	GetLivestream(ctx context.Context, id int64) (*lsdto.LivestreamResponse, *errors.AppError)
}

type LivecommentService struct {
	repo        repository.LivecommentRepositoryInterface
	users       userrepo.UserRepositoryInterface
	profiles    *userservice.ProfileFiller
	livestreams LivestreamReader
}

func NewLivecommentService(
	repo repository.LivecommentRepositoryInterface,
	users userrepo.UserRepositoryInterface,
	profiles *userservice.ProfileFiller,
	livestreams LivestreamReader,
) *LivecommentService {
	return &LivecommentService{repo: repo, users: users, profiles: profiles, livestreams: livestreams}
}

func (s *LivecommentService) PostLivecomment(ctx context.Context, userID, livestreamID int64, req *dto.PostLivecommentRequest) (*dto.LivecommentResponse, *errors.AppError) {
	if strings.TrimSpace(req.Comment) == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "comment must not be empty", nil)
	}
	if req.Tip < 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "tip must not be negative", nil)
	}

	livestream, appErr := s.livestreams.GetLivestream(ctx, livestreamID)
	if appErr != nil {
		return nil, appErr
	}

	now := time.Now().Unix()
	livecomment := &entity.Livecomment{
		UserID:       userID,
		LivestreamID: livestreamID,
		Comment:      req.Comment,
		Tip:          req.Tip,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertLivecomment(ctx, livecomment); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to post livecomment", err)
	}
	logger.Info("LivecommentService:PostLivecomment:Posted",
		"livecomment_id", livecomment.ID, "livestream_id", livestreamID, "user_id", userID, "tip", req.Tip)

	authors := map[int64]userdto.UserResponse{}
	resp, err := s.fill(ctx, authors, *livestream, *livecomment)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build livecomment", err)
	}
	return &resp, nil
}

func (s *LivecommentService) ListLivecomments(ctx context.Context, livestreamID int64, limit int) ([]dto.LivecommentResponse, *errors.AppError) {
	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}
	limit = min(limit, constants.MaxSearchLimit)

	livestream, appErr := s.livestreams.GetLivestream(ctx, livestreamID)
	if appErr != nil {
		return nil, appErr
	}
	livecomments, err := s.repo.ListByLivestreamID(ctx, livestreamID, limit)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get livecomments", err)
	}

	authors := map[int64]userdto.UserResponse{}
	out := make([]dto.LivecommentResponse, 0, len(livecomments))
	for _, lc := range livecomments {
		resp, err := s.fill(ctx, authors, *livestream, lc)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build livecomments", err)
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *LivecommentService) fill(ctx context.Context, authors map[int64]userdto.UserResponse, livestream lsdto.LivestreamResponse, lc entity.Livecomment) (dto.LivecommentResponse, error) {
	author, ok := authors[lc.UserID]
	if !ok {
		user, err := s.users.GetUserByID(ctx, lc.UserID)
		if err != nil {
			return dto.LivecommentResponse{}, fmt.Errorf("get author of livecomment %d: %w", lc.ID, err)
		}
		if user == nil {
			return dto.LivecommentResponse{}, fmt.Errorf("author %d of livecomment %d not found", lc.UserID, lc.ID)
		}
		if author, err = s.profiles.Fill(ctx, s.users, *user); err != nil {
			return dto.LivecommentResponse{}, err
		}
		authors[lc.UserID] = author
	}

	return dto.LivecommentResponse{
		ID:         lc.ID,
		User:       author,
		Livestream: livestream,
		Comment:    lc.Comment,
		Tip:        lc.Tip,
		CreatedAt:  lc.CreatedAt,
	}, nil
}
