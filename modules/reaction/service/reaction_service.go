package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"livestream-api/core/constants"
	"livestream-api/core/errors"
	"livestream-api/core/logger"
	lsdto "livestream-api/modules/livestream/dto"
	"livestream-api/modules/reaction/dto"
	"livestream-api/modules/reaction/entity"
	"livestream-api/modules/reaction/repository"
	userdto "livestream-api/modules/user/dto"
	userrepo "livestream-api/modules/user/repository"
	userservice "livestream-api/modules/user/service"
)

type ReactionServiceInterface interface {
	PostReaction(ctx context.Context, userID, livestreamID int64, req *dto.PostReactionRequest) (*dto.ReactionResponse, *errors.AppError)
	ListReactions(ctx context.Context, livestreamID int64, limit int) ([]dto.ReactionResponse, *errors.AppError)
}

type LivestreamReader interface {
	GetLivestream(ctx context.Context, id int64) (*lsdto.LivestreamResponse, *errors.AppError)
}

type ReactionService struct {
	repo        repository.ReactionRepositoryInterface
	users       userrepo.UserRepositoryInterface
	profiles    *userservice.ProfileFiller
	livestreams LivestreamReader
}

func NewReactionService(
	repo repository.ReactionRepositoryInterface,
	users userrepo.UserRepositoryInterface,
	profiles *userservice.ProfileFiller,
	livestreams LivestreamReader,
) *ReactionService {
	return &ReactionService{repo: repo, users: users, profiles: profiles, livestreams: livestreams}
}

func (s *ReactionService) PostReaction(ctx context.Context, userID, livestreamID int64, req *dto.PostReactionRequest) (*dto.ReactionResponse, *errors.AppError) {
	emoji := strings.TrimSpace(req.EmojiName)
	if emoji == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "emoji_name must not be empty", nil)
	}

	livestream, appErr := s.livestreams.GetLivestream(ctx, livestreamID)
	if appErr != nil {
		return nil, appErr
	}

	reaction := &entity.Reaction{
		UserID:       userID,
		LivestreamID: livestreamID,
		EmojiName:    emoji,
		CreatedAt:    time.Now().Unix(),
	}
	if err := s.repo.InsertReaction(ctx, reaction); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to post reaction", err)
	}
	logger.Info("ReactionService:PostReaction:Posted", "reaction_id", reaction.ID, "livestream_id", livestreamID, "user_id", userID)

	resp, err := s.fill(ctx, map[int64]userdto.UserResponse{}, *livestream, *reaction)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build reaction", err)
	}
	return &resp, nil
}

// ListReactions returns the newest reactions first. The livestream view is
// built once and shared by every entry.
func (s *ReactionService) ListReactions(ctx context.Context, livestreamID int64, limit int) ([]dto.ReactionResponse, *errors.AppError) {
	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}
	limit = min(limit, constants.MaxSearchLimit)

	livestream, appErr := s.livestreams.GetLivestream(ctx, livestreamID)
	if appErr != nil {
		return nil, appErr
	}
	reactions, err := s.repo.ListByLivestreamID(ctx, livestreamID, limit)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get reactions", err)
	}

	authors := make(map[int64]userdto.UserResponse)
	out := make([]dto.ReactionResponse, 0, len(reactions))
	for _, r := range reactions {
		resp, err := s.fill(ctx, authors, *livestream, r)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build reactions", err)
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *ReactionService) fill(ctx context.Context, authors map[int64]userdto.UserResponse, livestream lsdto.LivestreamResponse, r entity.Reaction) (dto.ReactionResponse, error) {
	author, ok := authors[r.UserID]
	if !ok {
		user, err := s.users.GetUserByID(ctx, r.UserID)
		if err != nil {
			return dto.ReactionResponse{}, fmt.Errorf("get author of reaction %d: %w", r.ID, err)
		}
		if user == nil {
			return dto.ReactionResponse{}, fmt.Errorf("author %d of reaction %d not found", r.UserID, r.ID)
		}
		if author, err = s.profiles.Fill(ctx, s.users, *user); err != nil {
			return dto.ReactionResponse{}, err
		}
		authors[r.UserID] = author
	}
	return dto.ReactionResponse{
		ID:         r.ID,
		EmojiName:  r.EmojiName,
		User:       author,
		Livestream: livestream,
		CreatedAt:  r.CreatedAt,
	}, nil
}
