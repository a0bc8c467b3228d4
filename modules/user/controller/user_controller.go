package controller

import (
	"livestream-api/core/controller"
	"livestream-api/core/middleware"
	"livestream-api/modules/user/service"

	"github.com/labstack/echo/v4"
)

type UserController struct {
	service service.UserServiceInterface
	controller.BaseController
}

func NewUserController(service service.UserServiceInterface) *UserController {
	return &UserController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// GetMe returns the authenticated user's profile
// @Summary Current user
// @Tags User
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} controller.ErrorResponse
// @Router /user/me [get]
func (c *UserController) GetMe(ctx echo.Context) error {
	userID, appErr := middleware.CurrentPrincipal(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	result, appErr := c.service.GetUserByID(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "User retrieved successfully")
}

// GetUser returns a user's public profile
// @Summary User profile
// @Tags User
// @Produce json
// @Param username path string true "User name"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /user/{username} [get]
func (c *UserController) GetUser(ctx echo.Context) error {
	result, appErr := c.service.GetUserByName(ctx.Request().Context(), ctx.Param("username"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "User retrieved successfully")
}
