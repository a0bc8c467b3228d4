package service

import (
	"context"
	"fmt"

	"livestream-api/core/logger"
	"livestream-api/modules/livestream/dto"
	"livestream-api/modules/livestream/entity"
	"livestream-api/modules/livestream/repository"
	tagrepo "livestream-api/modules/tag/repository"
)

// ReservationWriter persists an accepted reservation and its tag links.
// Capacity has already been taken by the allocator, and every statement runs
// on the caller's transaction.
type ReservationWriter struct{}

func NewReservationWriter() *ReservationWriter {
	return &ReservationWriter{}
}

func (w *ReservationWriter) Write(ctx context.Context, repos repository.Repositories, ownerID int64, req *dto.ReserveLivestreamRequest) (*entity.Livestream, error) {
	livestream := &entity.Livestream{
		UserID:       ownerID,
		Title:        req.Title,
		Description:  req.Description,
		PlaylistURL:  req.PlaylistURL,
		ThumbnailURL: req.ThumbnailURL,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
	}
	if err := repos.Livestreams.InsertLivestream(ctx, livestream); err != nil {
		return nil, fmt.Errorf("insert livestream: %w", err)
	}

	if err := warnUnknownTags(ctx, repos.Tags, livestream.ID, req.Tags); err != nil {
		return nil, err
	}
	if err := repos.Livestreams.InsertLivestreamTags(ctx, livestream.ID, req.Tags); err != nil {
		return nil, fmt.Errorf("insert livestream tags: %w", err)
	}
	return livestream, nil
}

// Unknown tag ids are still linked; they are only logged. A failed lookup has
// already aborted the Postgres transaction, so it is returned.
func warnUnknownTags(ctx context.Context, tags tagrepo.TagRepositoryInterface, livestreamID int64, tagIDs []int64) error {
	if tags == nil || len(tagIDs) == 0 {
		return nil
	}
	known, err := tags.FindKnownIDs(ctx, tagIDs)
	if err != nil {
		return fmt.Errorf("check tags: %w", err)
	}

	seen := make(map[int64]struct{}, len(known))
	for _, id := range known {
		seen[id] = struct{}{}
	}
	var unknown []int64
	for _, id := range tagIDs {
		if _, ok := seen[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		logger.Warn("ReservationWriter:Write:UnknownTags", "livestream_id", livestreamID, "tag_ids", unknown)
	}
	return nil
}
