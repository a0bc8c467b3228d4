package controller

import (
	"livestream-api/core/controller"
	"livestream-api/modules/tag/service"

	"github.com/labstack/echo/v4"
)

type TagController struct {
	service service.TagServiceInterface
	controller.BaseController
}

func NewTagController(service service.TagServiceInterface) *TagController {
	return &TagController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// GetTags lists the tag catalog
// @Summary List tags
// @Tags Tag
// @Produce json
// @Success 200 {object} dto.TagsResponse
// @Failure 500 {object} controller.ErrorResponse
// @Router /tag [get]
func (c *TagController) GetTags(ctx echo.Context) error {
	result, appErr := c.service.ListTags(ctx.Request().Context())
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Tags retrieved successfully")
}
