package router

import (
	"livestream-api/core/middleware"
	"livestream-api/modules/user/controller"

	"github.com/labstack/echo/v4"
)

type UserRouter struct {
	controller *controller.UserController
}

func NewUserRouter(controller *controller.UserController) *UserRouter {
	return &UserRouter{controller: controller}
}

func (r *UserRouter) Register(api *echo.Group, mw *middleware.Middleware) {
	api.GET("/user/me", r.controller.GetMe, mw.AuthMiddleware())
	api.GET("/user/:username", r.controller.GetUser)
}
