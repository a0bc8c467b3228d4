package controller

import (
	"strconv"

	"livestream-api/core/controller"
	"livestream-api/core/errors"
	"livestream-api/core/middleware"
	"livestream-api/modules/reaction/dto"
	"livestream-api/modules/reaction/service"

	"github.com/labstack/echo/v4"
)

type ReactionController struct {
	service service.ReactionServiceInterface
	controller.BaseController
}

func NewReactionController(service service.ReactionServiceInterface) *ReactionController {
	return &ReactionController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// PostReaction
// @Summary React to a livestream
// @Tags Reaction
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param livestream_id path int true "Livestream ID"
// @Param request body dto.PostReactionRequest true "Reaction"
// @Success 201 {object} dto.ReactionResponse
// @Failure 400 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /livestream/{livestream_id}/reaction [post]
func (c *ReactionController) PostReaction(ctx echo.Context) error {
	userID, appErr := middleware.CurrentPrincipal(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	livestreamID, err := strconv.ParseInt(ctx.Param("livestream_id"), 10, 64)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "livestream_id must be an integer", nil)
	}

	req := new(dto.PostReactionRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	result, appErr := c.service.PostReaction(ctx.Request().Context(), userID, livestreamID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "Reaction posted")
}

// GetReactions
// @Summary List reactions on a livestream, newest first
// @Tags Reaction
// @Security BearerAuth
// @Produce json
// @Param livestream_id path int true "Livestream ID"
// @Param limit query int false "Maximum results"
// @Success 200 {array} dto.ReactionResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /livestream/{livestream_id}/reaction [get]
func (c *ReactionController) GetReactions(ctx echo.Context) error {
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

	result, appErr := c.service.ListReactions(ctx.Request().Context(), livestreamID, limit)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Reactions retrieved successfully")
}
