package notification

import (
	"livestream-api/core/database"
	"livestream-api/core/middleware"
	"livestream-api/modules/notification/controller"
	"livestream-api/modules/notification/repository"
	"livestream-api/modules/notification/router"
	"livestream-api/modules/notification/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.IDatabase, mw *middleware.Middleware) *service.NotificationService {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Register(e, mw)

	return svc
}
