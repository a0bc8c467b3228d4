package router

import (
	"livestream-api/core/middleware"
	"livestream-api/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

type AuthRouter struct {
	AuthController controller.AuthController
}

func NewAuthRouter(authController controller.AuthController) *AuthRouter {
	return &AuthRouter{AuthController: authController}
}

func (r *AuthRouter) Setup(api *echo.Group, mw *middleware.Middleware) {
	api.POST("/login", r.AuthController.Login)
	api.POST("/logout", r.AuthController.Logout, mw.AuthMiddleware())
}
