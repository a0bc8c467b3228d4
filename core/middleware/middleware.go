package middleware

import (
	"context"
	"time"

	"livestream-api/core/cache"
	"livestream-api/core/constants"
	"livestream-api/core/controller"
	"livestream-api/core/errors"
	"livestream-api/core/logger"
	"livestream-api/core/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Middleware struct {
	secret string
	cache  cache.Cache
}

func NewMiddleware(secret string, c cache.Cache) *Middleware {
	return &Middleware{secret: secret, cache: c}
}

func authError(appErr *errors.AppError) *echo.HTTPError {
	return controller.NewErrorResponse(controller.HTTPStatus(appErr.Code), appErr.Code, appErr.Message)
}

// AuthMiddleware requires a valid, non-revoked bearer token and stores its
// claims on the context.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, appErr := utils.GetTokenFromHeader(c)
			if appErr != nil {
				return authError(appErr)
			}

			claims, appErr := utils.ValidateAndParseToken(token, m.secret)
			if appErr != nil {
				logger.Info("Middleware:AuthMiddleware:InvalidToken", "code", appErr.Code, "error", appErr.Err)
				return authError(appErr)
			}

			if m.cache != nil {
				blacklisted, err := m.cache.IsTokenBlacklisted(c.Request().Context(), token)
				if err != nil {
					logger.Error("Middleware:AuthMiddleware:IsTokenBlacklisted:Error", "error", err)
					return controller.NewErrorResponse(controller.HTTPStatus(errors.ErrInternalServer), errors.ErrInternalServer, "failed to verify session")
				}
				if blacklisted {
					return authError(errors.NewAppError(errors.ErrUnauthorized, "token has been revoked", nil))
				}
			}

			c.Set(constants.ContextTokenData, claims)
			c.Set(constants.ContextRawToken, token)
			return next(c)
		}
	}
}

// CurrentPrincipal returns the authenticated user id set by AuthMiddleware.
func CurrentPrincipal(c echo.Context) (int64, *errors.AppError) {
	claims := TokenData(c)
	if claims == nil || claims.UserID <= 0 {
		return 0, errors.NewAppError(errors.ErrUnauthorized, "unauthorized", nil)
	}
	return claims.UserID, nil
}

func TokenData(c echo.Context) *utils.TokenClaims {
	claims, _ := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	return claims
}

func RawToken(c echo.Context) string {
	token, _ := c.Get(constants.ContextRawToken).(string)
	return token
}

// RequestID reuses an incoming X-Request-Id or assigns a new one.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(constants.ContextRequestID, id)
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			return next(c)
		}
	}
}

// Timeout bounds the request context so storage calls give up with the client.
func Timeout(d time.Duration) echo.MiddlewareFunc {
	if d <= 0 {
		d = constants.DefaultRequestTimeout
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// AccessLog logs one line per request.
func AccessLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			fields := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"route", c.Path(),
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
				"request_id", c.Get(constants.ContextRequestID),
			}
			if claims := TokenData(c); claims != nil {
				fields = append(fields, "user_id", claims.UserID)
			}
			logger.Info("HTTP:Request", fields...)
			return nil
		}
	}
}
