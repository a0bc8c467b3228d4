package user

import (
	"livestream-api/core/database"
	"livestream-api/core/middleware"
	"livestream-api/modules/user/controller"
	"livestream-api/modules/user/repository"
	"livestream-api/modules/user/router"
	"livestream-api/modules/user/service"

	"github.com/labstack/echo/v4"
)

func Init(api *echo.Group, db *database.Database, mw *middleware.Middleware, profile *service.ProfileFiller) *service.UserService {
	repo := repository.NewUserRepository(db.SQLx())
	svc := service.NewUserService(repo, profile)
	ctrl := controller.NewUserController(svc)

	router.NewUserRouter(ctrl).Register(api, mw)

	return svc
}
