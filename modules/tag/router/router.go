package router

import (
	"livestream-api/modules/tag/controller"

	"github.com/labstack/echo/v4"
)

type TagRouter struct {
	controller *controller.TagController
}

func NewTagRouter(controller *controller.TagController) *TagRouter {
	return &TagRouter{controller: controller}
}

func (r *TagRouter) Register(api *echo.Group) {
	api.GET("/tag", r.controller.GetTags)
}
