package service

import (
	"context"
	"strings"
	"time"

	"livestream-api/core/cache"
	"livestream-api/core/config"
	"livestream-api/core/constants"
	"livestream-api/core/errors"
	"livestream-api/core/logger"
	"livestream-api/core/utils"
	"livestream-api/modules/auth/dto"
	userrepo "livestream-api/modules/user/repository"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, requestData *dto.LoginRequest) (*dto.LoginResponse, *errors.AppError)
	Logout(ctx context.Context, token string, claims *utils.TokenClaims) *errors.AppError
}

type AuthService struct {
	users    userrepo.UserRepositoryInterface
	cache    cache.Cache
	attempts cache.LoginAttemptTracker
	jwt      config.JWTConfig
}

func NewAuthService(users userrepo.UserRepositoryInterface, c cache.Cache, attempts cache.LoginAttemptTracker, jwt config.JWTConfig) *AuthService {
	return &AuthService{users: users, cache: c, attempts: attempts, jwt: jwt}
}

// Login checks a username and password and issues an access token. Repeated
// failures for one username lock it out for the attempt window.
func (service *AuthService) Login(ctx context.Context, requestData *dto.LoginRequest) (*dto.LoginResponse, *errors.AppError) {
	username := strings.TrimSpace(requestData.Username)
	if username == "" || requestData.Password == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "username and password are required", nil)
	}

	count, err := service.attempts.LoginAttempts(ctx, username)
	if err != nil {
		logger.Error("AuthService:Login:LoginAttempts:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get login attempts", err)
	}
	if count >= constants.MaxLoginAttempts {
		return nil, errors.NewAppError(errors.ErrTooManyRequests, "too many failed logins, try again later", nil)
	}

	user, err := service.users.GetUserByName(ctx, username)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
	}
	if user == nil || !utils.CheckPassword(user.Password, requestData.Password) {
		if _, err := service.attempts.IncrementLoginAttempt(ctx, username, constants.LoginAttemptWindow); err != nil {
			logger.Error("AuthService:Login:IncrementLoginAttempt:Error", "error", err)
		}
		return nil, errors.NewAppError(errors.ErrInvalidCredentials, "invalid username or password", nil)
	}

	if err := service.attempts.ResetLoginAttempts(ctx, username); err != nil {
		logger.Warn("AuthService:Login:ResetLoginAttempts:Error", "error", err)
	}

	token, expiresAt, err := utils.GenerateToken(user.ID, user.Name, service.jwt.Secret, service.jwt.Issuer, service.jwt.AccessTTL)
	if err != nil {
		logger.Error("AuthService:Login:GenerateToken:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to issue token", err)
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   constants.TokenTypeBearer,
		ExpiresAt:   expiresAt,
		UserID:      user.ID,
	}, nil
}

// Logout revokes token for the rest of its lifetime.
func (service *AuthService) Logout(ctx context.Context, token string, claims *utils.TokenClaims) *errors.AppError {
	ttl := service.jwt.AccessTTL
	if claims != nil && claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := service.cache.AddToTokenBlacklist(ctx, token, ttl); err != nil {
		logger.Error("AuthService:Logout:AddToBlacklist:Error", "error", err)
		return errors.NewAppError(errors.ErrInternalServer, "failed to add token to blacklist", err)
	}
	return nil
}
