package controller

import (
	"context"
	"strconv"

	"livestream-api/core/controller"
	"livestream-api/core/errors"
	"livestream-api/core/middleware"
	"livestream-api/modules/livestream/dto"
	"livestream-api/modules/livestream/service"

	"github.com/labstack/echo/v4"
)

type LivestreamController struct {
	service service.LivestreamServiceInterface
	controller.BaseController
}

func NewLivestreamController(service service.LivestreamServiceInterface) *LivestreamController {
	return &LivestreamController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// ReserveLivestream reserves a broadcast window
// @Summary Reserve a livestream slot
// @Description Takes one unit of capacity from every slot the window overlaps, or rejects the request
// @Tags Livestream
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ReserveLivestreamRequest true "Reservation"
// @Success 201 {object} dto.LivestreamResponse
// @Failure 400 {object} controller.ErrorResponse
// @Failure 401 {object} controller.ErrorResponse
// @Failure 429 {object} controller.ErrorResponse
// @Failure 500 {object} controller.ErrorResponse
// @Router /livestream/reservation [post]
func (c *LivestreamController) ReserveLivestream(ctx echo.Context) error {
	userID, appErr := middleware.CurrentPrincipal(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	req := new(dto.ReserveLivestreamRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	result, appErr := c.service.ReserveLivestream(ctx.Request().Context(), userID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "Livestream reserved")
}

// GetReservationSlots lists slot capacity in a window
// @Summary Slot availability
// @Tags Livestream
// @Produce json
// @Param start_at query int true "Window start (epoch seconds)"
// @Param end_at query int true "Window end (epoch seconds)"
// @Success 200 {object} dto.SlotsResponse
// @Failure 400 {object} controller.ErrorResponse
// @Router /livestream/reservation/slots [get]
func (c *LivestreamController) GetReservationSlots(ctx echo.Context) error {
	startAt, err := strconv.ParseInt(ctx.QueryParam("start_at"), 10, 64)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "start_at must be an integer", nil)
	}
	endAt, err := strconv.ParseInt(ctx.QueryParam("end_at"), 10, 64)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "end_at must be an integer", nil)
	}

	result, appErr := c.service.ListSlots(ctx.Request().Context(), startAt, endAt)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Slots retrieved successfully")
}

// SearchLivestreams lists livestreams, newest first
// @Summary Search livestreams
// @Tags Livestream
// @Produce json
// @Param tag query string false "Tag name"
// @Param limit query int false "Maximum results"
// @Success 200 {array} dto.LivestreamResponse
// @Router /livestream/search [get]
func (c *LivestreamController) SearchLivestreams(ctx echo.Context) error {
	query := dto.SearchLivestreamsQuery{Tag: ctx.QueryParam("tag")}
	if raw := ctx.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return c.BadRequest(errors.ErrInvalidInput, "limit must be a positive integer", nil)
		}
		query.Limit = limit
	}

	result, appErr := c.service.SearchLivestreams(ctx.Request().Context(), query)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Livestreams retrieved successfully")
}

// GetMyLivestreams lists the caller's livestreams
// @Summary My livestreams
// @Tags Livestream
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.LivestreamResponse
// @Failure 401 {object} controller.ErrorResponse
// @Router /livestream [get]
func (c *LivestreamController) GetMyLivestreams(ctx echo.Context) error {
	userID, appErr := middleware.CurrentPrincipal(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	result, appErr := c.service.ListUserLivestreams(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Livestreams retrieved successfully")
}

// GetUserLivestreams lists a user's livestreams
// @Summary Livestreams of a user
// @Tags Livestream
// @Produce json
// @Param username path string true "User name"
// @Success 200 {array} dto.LivestreamResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /user/{username}/livestream [get]
func (c *LivestreamController) GetUserLivestreams(ctx echo.Context) error {
	result, appErr := c.service.ListLivestreamsByUsername(ctx.Request().Context(), ctx.Param("username"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Livestreams retrieved successfully")
}

// GetLivestream returns one livestream
// @Summary Livestream detail
// @Tags Livestream
// @Produce json
// @Param livestream_id path int true "Livestream ID"
// @Success 200 {object} dto.LivestreamResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /livestream/{livestream_id} [get]
func (c *LivestreamController) GetLivestream(ctx echo.Context) error {
	id, err := strconv.ParseInt(ctx.Param("livestream_id"), 10, 64)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "livestream_id must be an integer", nil)
	}

	result, appErr := c.service.GetLivestream(ctx.Request().Context(), id)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Livestream retrieved successfully")
}

// EnterLivestream
// @Summary Start watching a livestream
// @Tags Livestream
// @Security BearerAuth
// @Param livestream_id path int true "Livestream ID"
// @Success 200 {object} controller.SuccessResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /livestream/{livestream_id}/enter [post]
func (c *LivestreamController) EnterLivestream(ctx echo.Context) error {
	return c.viewer(ctx, c.service.EnterLivestream, "Entered livestream")
}

// LeaveLivestream
// @Summary Stop watching a livestream
// @Tags Livestream
// @Security BearerAuth
// @Param livestream_id path int true "Livestream ID"
// @Success 200 {object} controller.SuccessResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /livestream/{livestream_id}/enter [delete]
func (c *LivestreamController) LeaveLivestream(ctx echo.Context) error {
	return c.viewer(ctx, c.service.LeaveLivestream, "Left livestream")
}

func (c *LivestreamController) viewer(ctx echo.Context, action func(context.Context, int64, int64) *errors.AppError, message string) error {
	userID, appErr := middleware.CurrentPrincipal(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	id, err := strconv.ParseInt(ctx.Param("livestream_id"), 10, 64)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "livestream_id must be an integer", nil)
	}

	if appErr := action(ctx.Request().Context(), userID, id); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, message)
}
