package service

import (
	"context"
	"fmt"
	"time"

	"livestream-api/core/constants"
	coreentity "livestream-api/core/entity"
	"livestream-api/core/errors"
	"livestream-api/core/logger"
	"livestream-api/core/params"
	"livestream-api/core/worker"
	"livestream-api/modules/notification/dto"
	"livestream-api/modules/notification/entity"
	"livestream-api/modules/notification/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type NotificationService struct {
	repo repository.NotificationRepositoryInterface
	now  func() time.Time
}

func NewNotificationService(repo repository.NotificationRepositoryInterface) *NotificationService {
	return &NotificationService{repo: repo, now: time.Now}
}

func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) error {
	now := s.now()
	notif := &entity.Notification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
		Data:    entity.JSONB(req.Data),
		BaseEntity: coreentity.BaseEntity{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	return s.repo.Create(ctx, notif)
}

// HandleLivestreamReserved is the worker handler for TypeLivestreamReserved.
// It tells the owner their reservation went through.
func (s *NotificationService) HandleLivestreamReserved(ctx context.Context, task *asynq.Task) error {
	payload, err := worker.DecodePayload[worker.LivestreamReservedPayload](task)
	if err != nil {
		logger.Error("NotificationService:HandleLivestreamReserved:Decode:Error", "error", err)
		return err
	}

	start := time.Unix(payload.StartAt, 0).UTC()
	end := time.Unix(payload.EndAt, 0).UTC()
	err = s.Create(ctx, &dto.CreateNotificationRequest{
		UserID:  payload.UserID,
		Title:   "Livestream reserved",
		Message: fmt.Sprintf("%q is booked from %s to %s", payload.Title, start.Format(time.RFC3339), end.Format(time.RFC3339)),
		Type:    constants.NotificationTypeLivestreamReserved,
		Data: map[string]any{
			"livestream_id": payload.LivestreamID,
			"start_at":      payload.StartAt,
			"end_at":        payload.EndAt,
		},
	})
	if err != nil {
		logger.Error("NotificationService:HandleLivestreamReserved:Create:Error", "livestream_id", payload.LivestreamID, "error", err)
		return err
	}
	return nil
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, userID int64, queryParams params.QueryParams) (*entity.PaginatedNotificationEntity, *errors.AppError) {
	result, err := s.repo.GetByUserID(ctx, userID, queryParams)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get notifications", err)
	}
	return result, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID int64, rawIDs []string) *errors.AppError {
	ids := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return errors.NewAppError(errors.ErrInvalidInput, "invalid notification id", nil).WithDetails(map[string]string{"id": raw})
		}
		ids = append(ids, id)
	}
	if err := s.repo.MarkAsRead(ctx, userID, ids); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to mark as read", err)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID int64) *errors.AppError {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to mark all as read", err)
	}
	return nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID int64) (int, *errors.AppError) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrInternalServer, "failed to count unread", err)
	}
	return count, nil
}
