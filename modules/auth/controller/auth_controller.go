package controller

import (
	"livestream-api/core/controller"
	"livestream-api/core/errors"
	"livestream-api/core/middleware"
	"livestream-api/modules/auth/dto"
	"livestream-api/modules/auth/service"

	"github.com/labstack/echo/v4"
)

type AuthController struct {
	AuthService service.AuthServiceInterface
	controller.BaseController
}

func NewAuthController(authService service.AuthServiceInterface) *AuthController {
	return &AuthController{
		AuthService:    authService,
		BaseController: controller.NewBaseController(),
	}
}

// Login
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} controller.ErrorResponse
// @Router /login [post]
func (controller *AuthController) Login(c echo.Context) error {
	ctx := c.Request().Context()

	requestData := new(dto.LoginRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data")
	}

	loginResponse, appErr := controller.AuthService.Login(ctx, requestData)
	if appErr != nil {
		return controller.ErrorResponse(c, appErr)
	}

	return controller.SuccessResponse(c, loginResponse, "Login success")
}

// Logout
// @Summary Log out
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} controller.SuccessResponse
// @Router /logout [post]
func (controller *AuthController) Logout(c echo.Context) error {
	claims := middleware.TokenData(c)
	if claims == nil {
		return controller.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	if appErr := controller.AuthService.Logout(c.Request().Context(), middleware.RawToken(c), claims); appErr != nil {
		return controller.ErrorResponse(c, appErr)
	}

	return controller.SuccessResponse(c, nil, "Logout success")
}
