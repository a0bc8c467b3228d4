package livestream

import (
	"context"
	"time"

	"livestream-api/core/config"
	"livestream-api/core/database"
	"livestream-api/core/logger"
	"livestream-api/core/middleware"
	"livestream-api/core/worker"
	"livestream-api/modules/livestream/controller"
	"livestream-api/modules/livestream/repository"
	"livestream-api/modules/livestream/router"
	"livestream-api/modules/livestream/service"
	tagservice "livestream-api/modules/tag/service"
	userservice "livestream-api/modules/user/service"

	"github.com/labstack/echo/v4"
)

func Init(
	api *echo.Group,
	db *database.Database,
	mw *middleware.Middleware,
	cfg config.ReservationConfig,
	tags *tagservice.TagService,
	profiles *userservice.ProfileFiller,
	enqueuer worker.Enqueuer,
) *service.LivestreamService {
	store := repository.NewPostgresStore(db, cfg.LockTimeout)
	svc := service.NewLivestreamService(
		store,
		service.NewTermValidator(cfg.TermStart, cfg.TermEnd),
		service.NewCapacityAllocator(),
		service.NewReservationWriter(),
		service.NewAssembler(profiles),
		tags,
		enqueuer,
	)
	ctrl := controller.NewLivestreamController(svc)

	limiter := middleware.NewLimiterStore(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)
	router.NewLivestreamRouter(ctrl).Register(api, mw, limiter)

	return svc
}

// Provision lays out the slot grid for the configured term if it is missing.
func Provision(ctx context.Context, db *database.Database, cfg config.ReservationConfig) error {
	created, err := repository.NewSlotRepository(db.SQLx()).Provision(ctx, cfg.TermStart, cfg.TermEnd, cfg.SlotWidth, cfg.SlotCapacity)
	if err != nil {
		return err
	}
	logger.Info("Livestream:Provision:Done",
		"created", created,
		"term_start", cfg.TermStart,
		"term_end", cfg.TermEnd,
		"slot_width", cfg.SlotWidth,
		"slot_capacity", cfg.SlotCapacity,
	)
	return nil
}
