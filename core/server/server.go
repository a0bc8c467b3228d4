package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"livestream-api/core/cache"
	"livestream-api/core/config"
	"livestream-api/core/constants"
	"livestream-api/core/database"
	"livestream-api/core/logger"
	"livestream-api/core/middleware"
	"livestream-api/core/worker"
	"livestream-api/modules/auth"
	"livestream-api/modules/livecomment"
	"livestream-api/modules/livestream"
	"livestream-api/modules/notification"
	"livestream-api/modules/reaction"
	"livestream-api/modules/tag"
	"livestream-api/modules/user"
	userservice "livestream-api/modules/user/service"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Run loads configuration, wires every module and serves until SIGINT or
// SIGTERM.
func Run() error {
	cfg, err := config.Init()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, database.DatabaseConfig{
		Host:             cfg.Database.Host,
		Port:             cfg.Database.Port,
		User:             cfg.Database.User,
		Password:         cfg.Database.Password,
		DBName:           cfg.Database.DBName,
		SSLMode:          cfg.Database.SSLMode,
		MaxOpenConns:     cfg.Database.MaxOpenConns,
		MaxIdleConns:     cfg.Database.MaxIdleConns,
		ConnMaxLifetime:  cfg.Database.ConnMaxLifetime,
		StatementTimeout: cfg.Database.StatementTimeout,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer redisCache.Close()

	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	var enqueuer worker.Enqueuer
	if cfg.Worker.Enabled {
		client := worker.NewClient(redisOpt, cfg.Worker.Queue, cfg.Worker.MaxRetry)
		defer client.Close()
		enqueuer = client
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.AccessLog())
	e.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	e.GET("/healthz", healthz(db, redisCache))

	api := e.Group("/api")
	mw := middleware.NewMiddleware(cfg.JWT.Secret, redisCache)

	tagService := tag.Init(api, db, redisCache, cfg.Redis.TagCacheTTL)
	profiles := userservice.NewProfileFiller(userservice.LoadFallbackIcon(cfg.Assets.FallbackIconPath))
	user.Init(api, db, mw, profiles)
	auth.Init(api, db, redisCache, mw, cfg.JWT)
	notificationService := notification.Init(api, db, mw)
	livestreamService := livestream.Init(api, db, mw, cfg.Reservation, tagService, profiles, enqueuer)
	livecomment.Init(api, db, mw, profiles, livestreamService)
	reaction.Init(api, db, mw, profiles, livestreamService)

	if cfg.Reservation.ProvisionOnStart {
		if err := livestream.Provision(ctx, db, cfg.Reservation); err != nil {
			return fmt.Errorf("provision reservation slots: %w", err)
		}
	}

	var workerServer *worker.Server
	if cfg.Worker.Enabled {
		workerServer = worker.NewServer(redisOpt, cfg.Worker.Concurrency, cfg.Worker.Queue)
		workerServer.HandleFunc(worker.TypeLivestreamReserved, notificationService.HandleLivestreamReserved)
		if err := workerServer.Start(); err != nil {
			return fmt.Errorf("start worker: %w", err)
		}
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server:Run:Listening", "addr", addr)
		if err := e.Start(addr); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Server:Run:ShuttingDown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server:Run:Shutdown:Error", "error", err)
	}
	if workerServer != nil {
		workerServer.Shutdown()
	}
	return nil
}

func healthz(db *database.Database, redisCache *cache.RedisCache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultTimeout)
		defer cancel()

		status := map[string]string{"database": "ok", "redis": "ok"}
		code := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("Server:Healthz:Database:Error", "error", err)
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("Server:Healthz:Redis:Error", "error", err)
			status["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, status)
	}
}
