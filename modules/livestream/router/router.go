package router

import (
	"livestream-api/core/middleware"
	"livestream-api/modules/livestream/controller"

	"github.com/labstack/echo/v4"
)

type LivestreamRouter struct {
	controller *controller.LivestreamController
}

func NewLivestreamRouter(controller *controller.LivestreamController) *LivestreamRouter {
	return &LivestreamRouter{controller: controller}
}

func (r *LivestreamRouter) Register(api *echo.Group, mw *middleware.Middleware, limiter *middleware.LimiterStore) {
	auth := mw.AuthMiddleware()

	livestream := api.Group("/livestream")
	livestream.POST("/reservation", r.controller.ReserveLivestream, auth, middleware.RateLimit(limiter))
	livestream.GET("/reservation/slots", r.controller.GetReservationSlots)
	livestream.GET("/search", r.controller.SearchLivestreams)
	livestream.GET("", r.controller.GetMyLivestreams, auth)
	livestream.GET("/:livestream_id", r.controller.GetLivestream)
	livestream.POST("/:livestream_id/enter", r.controller.EnterLivestream, auth)
	livestream.DELETE("/:livestream_id/enter", r.controller.LeaveLivestream, auth)

	api.GET("/user/:username/livestream", r.controller.GetUserLivestreams)
}
