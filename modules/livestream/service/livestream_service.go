package service

import (
	"context"
	"time"

	"livestream-api/core/constants"
	"livestream-api/core/database"
	"livestream-api/core/errors"
	"livestream-api/core/logger"
	"livestream-api/core/worker"
	"livestream-api/modules/livestream/dto"
	"livestream-api/modules/livestream/entity"
	"livestream-api/modules/livestream/repository"
)

type LivestreamServiceInterface interface {
	ReserveLivestream(ctx context.Context, ownerID int64, req *dto.ReserveLivestreamRequest) (*dto.LivestreamResponse, *errors.AppError)
	GetLivestream(ctx context.Context, id int64) (*dto.LivestreamResponse, *errors.AppError)
	SearchLivestreams(ctx context.Context, query dto.SearchLivestreamsQuery) ([]dto.LivestreamResponse, *errors.AppError)
	ListUserLivestreams(ctx context.Context, userID int64) ([]dto.LivestreamResponse, *errors.AppError)
	ListLivestreamsByUsername(ctx context.Context, username string) ([]dto.LivestreamResponse, *errors.AppError)
	ListSlots(ctx context.Context, startAt, endAt int64) (*dto.SlotsResponse, *errors.AppError)
	EnterLivestream(ctx context.Context, userID, livestreamID int64) *errors.AppError
	LeaveLivestream(ctx context.Context, userID, livestreamID int64) *errors.AppError
}

// TagResolver maps a tag name to catalog ids.
type TagResolver interface {
	ResolveIDsByName(ctx context.Context, name string) ([]int64, *errors.AppError)
}

type LivestreamService struct {
	store     repository.Store
	validator *TermValidator
	allocator *CapacityAllocator
	writer    *ReservationWriter
	assembler *Assembler
	tags      TagResolver
	enqueuer  worker.Enqueuer
}

func NewLivestreamService(
	store repository.Store,
	validator *TermValidator,
	allocator *CapacityAllocator,
	writer *ReservationWriter,
	assembler *Assembler,
	tags TagResolver,
	enqueuer worker.Enqueuer,
) *LivestreamService {
	return &LivestreamService{
		store:     store,
		validator: validator,
		allocator: allocator,
		writer:    writer,
		assembler: assembler,
		tags:      tags,
		enqueuer:  enqueuer,
	}
}

// ReserveLivestream validates the window, takes capacity, writes the
// livestream and assembles its view in one transaction. Any failure leaves
// capacity untouched.
func (s *LivestreamService) ReserveLivestream(ctx context.Context, ownerID int64, req *dto.ReserveLivestreamRequest) (*dto.LivestreamResponse, *errors.AppError) {
	if appErr := s.validator.Validate(req.StartAt, req.EndAt); appErr != nil {
		logger.Info("LivestreamService:ReserveLivestream:Rejected",
			"user_id", ownerID, "code", appErr.Code, "start_at", req.StartAt, "end_at", req.EndAt)
		return nil, appErr
	}

	var resp dto.LivestreamResponse
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := s.allocator.Allocate(ctx, repos.Slots, req.StartAt, req.EndAt); err != nil {
			return err
		}

		livestream, err := s.writer.Write(ctx, repos, ownerID, req)
		if err != nil {
			return err
		}

		resp, err = s.assembler.Fill(ctx, repos, *livestream)
		return err
	})
	if err != nil {
		if appErr, ok := errors.As(err); ok {
			return nil, appErr
		}
		logger.Error("LivestreamService:ReserveLivestream:Error",
			"user_id", ownerID, "kind", database.Classify(err), "error", err)
		return nil, errors.NewAppError(errors.ErrStorageFailure, "reservation could not be completed, please retry", err)
	}

	logger.Info("LivestreamService:ReserveLivestream:Reserved",
		"user_id", ownerID, "livestream_id", resp.ID, "start_at", resp.StartAt, "end_at", resp.EndAt)
	s.publishReserved(ctx, resp)
	return &resp, nil
}

// publishReserved runs after commit. The reservation stands even if the
// notification cannot be queued.
func (s *LivestreamService) publishReserved(ctx context.Context, resp dto.LivestreamResponse) {
	if s.enqueuer == nil {
		return
	}
	payload := worker.LivestreamReservedPayload{
		LivestreamID: resp.ID,
		UserID:       resp.Owner.ID,
		Title:        resp.Title,
		StartAt:      resp.StartAt,
		EndAt:        resp.EndAt,
	}
	if err := s.enqueuer.Enqueue(context.WithoutCancel(ctx), worker.TypeLivestreamReserved, payload); err != nil {
		logger.Warn("LivestreamService:PublishReserved:Error", "livestream_id", resp.ID, "error", err)
	}
}

func (s *LivestreamService) GetLivestream(ctx context.Context, id int64) (*dto.LivestreamResponse, *errors.AppError) {
	repos := s.store.Reader()
	livestream, err := repos.Livestreams.GetLivestreamByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get livestream", err)
	}
	if livestream == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "livestream not found", nil)
	}

	resp, err := s.assembler.Fill(ctx, repos, *livestream)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build livestream", err)
	}
	return &resp, nil
}

func (s *LivestreamService) SearchLivestreams(ctx context.Context, query dto.SearchLivestreamsQuery) ([]dto.LivestreamResponse, *errors.AppError) {
	limit := query.Limit
	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}
	limit = min(limit, constants.MaxSearchLimit)

	repos := s.store.Reader()
	var (
		livestreams []entity.Livestream
		err         error
	)
	if query.Tag != "" {
		tagIDs, appErr := s.tags.ResolveIDsByName(ctx, query.Tag)
		if appErr != nil {
			return nil, appErr
		}
		livestreams, err = repos.Livestreams.ListLivestreamsByTagIDs(ctx, tagIDs, limit)
	} else {
		livestreams, err = repos.Livestreams.ListLivestreams(ctx, limit)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to search livestreams", err)
	}
	return s.fillAll(ctx, repos, livestreams)
}

func (s *LivestreamService) ListUserLivestreams(ctx context.Context, userID int64) ([]dto.LivestreamResponse, *errors.AppError) {
	repos := s.store.Reader()
	livestreams, err := repos.Livestreams.ListLivestreamsByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get livestreams", err)
	}
	return s.fillAll(ctx, repos, livestreams)
}

func (s *LivestreamService) ListLivestreamsByUsername(ctx context.Context, username string) ([]dto.LivestreamResponse, *errors.AppError) {
	repos := s.store.Reader()
	user, err := repos.Users.GetUserByName(ctx, username)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "user not found", nil)
	}
	return s.ListUserLivestreams(ctx, user.ID)
}

// ListSlots reports remaining capacity without taking locks, so the numbers
// are a snapshot and may be stale by the time a reservation runs.
func (s *LivestreamService) ListSlots(ctx context.Context, startAt, endAt int64) (*dto.SlotsResponse, *errors.AppError) {
	if startAt >= endAt {
		return nil, errors.NewAppError(errors.ErrInvalidReservationInterval, "start_at must be before end_at", nil)
	}
	slots, err := s.store.Reader().Slots.ListOverlapping(ctx, startAt, endAt)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to list slots", err)
	}
	resp := &dto.SlotsResponse{Slots: make([]dto.SlotResponse, 0, len(slots))}
	for _, slot := range slots {
		resp.Slots = append(resp.Slots, dto.SlotResponse{StartAt: slot.StartAt, EndAt: slot.EndAt, Remaining: slot.Slot})
	}
	return resp, nil
}

// EnterLivestream records userID as a viewer of an existing livestream.
func (s *LivestreamService) EnterLivestream(ctx context.Context, userID, livestreamID int64) *errors.AppError {
	repos := s.store.Reader()
	if appErr := s.mustExist(ctx, repos, livestreamID); appErr != nil {
		return appErr
	}
	if err := repos.Viewers.Enter(ctx, userID, livestreamID, time.Now().Unix()); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to enter livestream", err)
	}
	return nil
}

// LeaveLivestream is idempotent: leaving a livestream never entered succeeds.
func (s *LivestreamService) LeaveLivestream(ctx context.Context, userID, livestreamID int64) *errors.AppError {
	repos := s.store.Reader()
	if appErr := s.mustExist(ctx, repos, livestreamID); appErr != nil {
		return appErr
	}
	if _, err := repos.Viewers.Leave(ctx, userID, livestreamID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to leave livestream", err)
	}
	return nil
}

func (s *LivestreamService) mustExist(ctx context.Context, repos repository.Repositories, livestreamID int64) *errors.AppError {
	livestream, err := repos.Livestreams.GetLivestreamByID(ctx, livestreamID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to get livestream", err)
	}
	if livestream == nil {
		return errors.NewAppError(errors.ErrNotFound, "livestream not found", nil)
	}
	return nil
}

func (s *LivestreamService) fillAll(ctx context.Context, repos repository.Repositories, livestreams []entity.Livestream) ([]dto.LivestreamResponse, *errors.AppError) {
	out, err := s.assembler.FillAll(ctx, repos, livestreams)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build livestreams", err)
	}
	return out, nil
}
