package router

import (
	"livestream-api/core/middleware"
	"livestream-api/modules/livecomment/controller"

	"github.com/labstack/echo/v4"
)

type LivecommentRouter struct {
	controller *controller.LivecommentController
}

func NewLivecommentRouter(controller *controller.LivecommentController) *LivecommentRouter {
	return &LivecommentRouter{controller: controller}
}

func (r *LivecommentRouter) Register(api *echo.Group, mw *middleware.Middleware) {
	livecomment := api.Group("/livestream/:livestream_id/livecomment", mw.AuthMiddleware())
	livecomment.GET("", r.controller.GetLivecomments)
	livecomment.POST("", r.controller.PostLivecomment)
}
