package router

import (
	"livestream-api/core/middleware"
	"livestream-api/modules/reaction/controller"

	"github.com/labstack/echo/v4"
)

type ReactionRouter struct {
	controller *controller.ReactionController
}

func NewReactionRouter(controller *controller.ReactionController) *ReactionRouter {
	return &ReactionRouter{controller: controller}
}

func (r *ReactionRouter) Register(api *echo.Group, mw *middleware.Middleware) {
	reaction := api.Group("/livestream/:livestream_id/reaction", mw.AuthMiddleware())
	reaction.GET("", r.controller.GetReactions)
	reaction.POST("", r.controller.PostReaction)
}
