package auth

import (
	"livestream-api/core/cache"
	"livestream-api/core/config"
	"livestream-api/core/database"
	"livestream-api/core/middleware"
	"livestream-api/modules/auth/controller"
	"livestream-api/modules/auth/router"
	"livestream-api/modules/auth/service"
	userrepo "livestream-api/modules/user/repository"

	"github.com/labstack/echo/v4"
)

func Init(api *echo.Group, db *database.Database, c *cache.RedisCache, mw *middleware.Middleware, jwt config.JWTConfig) service.AuthServiceInterface {
	users := userrepo.NewUserRepository(db.SQLx())
	authService := service.NewAuthService(users, c, c, jwt)
	ctrl := controller.NewAuthController(authService)

	router.NewAuthRouter(*ctrl).Setup(api, mw)

	return authService
}
