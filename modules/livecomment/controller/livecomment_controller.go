package controller

import (
	"strconv"

	"livestream-api/core/controller"
	"livestream-api/core/errors"
	"livestream-api/core/middleware"
	"livestream-api/modules/livecomment/dto"
	"livestream-api/modules/livecomment/service"

	"github.com/labstack/echo/v4"
)

type LivecommentController struct {
	service service.LivecommentServiceInterface
	controller.BaseController
}

func NewLivecommentController(service service.LivecommentServiceInterface) *LivecommentController {
	return &LivecommentController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// PostLivecomment
// @Summary Comment on a livestream
// @Tags Livecomment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param livestream_id path int true "Livestream ID"
// @Param request body dto.PostLivecommentRequest true "Comment"
// @Success 201 {object} dto.LivecommentResponse
// @Failure 400 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /livestream/{livestream_id}/livecomment [post]
func (c *LivecommentController) PostLivecomment(ctx echo.Context) error {
	userID, appErr := middleware.CurrentPrincipal(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	livestreamID, err := strconv.ParseInt(ctx.Param("livestream_id"), 10, 64)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "livestream_id must be an integer", nil)
	}

	req := new(dto.PostLivecommentRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	result, appErr := c.service.PostLivecomment(ctx.Request().Context(), userID, livestreamID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "Livecomment posted")
}

// GetLivecomments
// @Summary List comments on a livestream, newest first
// @Tags Livecomment
// @Security BearerAuth
// @Produce json
// @Param livestream_id path int true "Livestream ID"
// @Param limit query int false "Maximum results"
// @Success 200 {array} dto.LivecommentResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /livestream/{livestream_id}/livecomment [get]
func (c *LivecommentController) GetLivecomments(ctx echo.Context) error {
	livestreamID, err := strconv.ParseInt(ctx.Param("livestream_id"), 10, 64)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "livestream_id must be an integer", nil)
	}
	var limit int
	if raw := ctx.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			return c.BadRequest(errors.ErrInvalidInput, "limit must be a positive integer", nil)
		}
	}

	result, appErr := c.service.ListLivecomments(ctx.Request().Context(), livestreamID, limit)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Livecomments retrieved successfully")
}
