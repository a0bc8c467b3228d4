package service

import (
	"context"
	"fmt"

	"livestream-api/core/logger"
	"livestream-api/modules/livestream/dto"
	"livestream-api/modules/livestream/entity"
	"livestream-api/modules/livestream/repository"
	tagdto "livestream-api/modules/tag/dto"
	userservice "livestream-api/modules/user/service"
)

// Assembler builds the public view of a livestream: owner profile plus tags.
// It only reads, and works the same on a transaction or the pool.
type Assembler struct {
	profiles *userservice.ProfileFiller
}

func NewAssembler(profiles *userservice.ProfileFiller) *Assembler {
	return &Assembler{profiles: profiles}
}

func (a *Assembler) Fill(ctx context.Context, repos repository.Repositories, livestream entity.Livestream) (dto.LivestreamResponse, error) {
	owner, err := repos.Users.GetUserByID(ctx, livestream.UserID)
	if err != nil {
		return dto.LivestreamResponse{}, fmt.Errorf("get owner of livestream %d: %w", livestream.ID, err)
	}
	if owner == nil {
		return dto.LivestreamResponse{}, fmt.Errorf("owner %d of livestream %d not found", livestream.UserID, livestream.ID)
	}
	ownerView, err := a.profiles.Fill(ctx, repos.Users, *owner)
	if err != nil {
		return dto.LivestreamResponse{}, err
	}

	linked, err := repos.Livestreams.GetLinkedTags(ctx, livestream.ID)
	if err != nil {
		return dto.LivestreamResponse{}, fmt.Errorf("get tags of livestream %d: %w", livestream.ID, err)
	}
	tags := make([]tagdto.TagResponse, 0, len(linked))
	for _, lt := range linked {
		if !lt.Name.Valid {
			logger.Warn("Assembler:Fill:UnknownTag", "livestream_id", livestream.ID, "tag_id", lt.TagID)
			continue
		}
		tags = append(tags, tagdto.TagResponse{ID: lt.TagID, Name: lt.Name.String})
	}

	return dto.LivestreamResponse{
		ID:           livestream.ID,
		Owner:        ownerView,
		Title:        livestream.Title,
		Description:  livestream.Description,
		PlaylistURL:  livestream.PlaylistURL,
		ThumbnailURL: livestream.ThumbnailURL,
		Tags:         tags,
		StartAt:      livestream.StartAt,
		EndAt:        livestream.EndAt,
	}, nil
}

// FillAll assembles each livestream in order.
func (a *Assembler) FillAll(ctx context.Context, repos repository.Repositories, livestreams []entity.Livestream) ([]dto.LivestreamResponse, error) {
	out := make([]dto.LivestreamResponse, 0, len(livestreams))
	for _, ls := range livestreams {
		resp, err := a.Fill(ctx, repos, ls)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}
