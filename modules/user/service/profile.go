package service

import (
	"context"
	"fmt"
	"os"

	"livestream-api/core/logger"
	"livestream-api/core/utils"
	"livestream-api/modules/user/dto"
	"livestream-api/modules/user/entity"
	"livestream-api/modules/user/repository"
)

// ProfileFiller turns a stored user into the public owner view shared by
// every livestream response.
type ProfileFiller struct {
	fallbackIconHash string
}

func NewProfileFiller(fallbackIcon []byte) *ProfileFiller {
	return &ProfileFiller{fallbackIconHash: utils.IconHash(fallbackIcon)}
}

// LoadFallbackIcon reads the image served to users without an icon. A missing
// file degrades to an empty image.
func LoadFallbackIcon(path string) []byte {
	image, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("ProfileFiller:LoadFallbackIcon:Error", "path", path, "error", err)
		return nil
	}
	return image
}

func (p *ProfileFiller) Fill(ctx context.Context, repo repository.UserRepositoryInterface, user entity.User) (dto.UserResponse, error) {
	theme, err := repo.GetThemeByUserID(ctx, user.ID)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("get theme of user %d: %w", user.ID, err)
	}

	image, err := repo.GetIconImage(ctx, user.ID)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("get icon of user %d: %w", user.ID, err)
	}
	iconHash := p.fallbackIconHash
	if image != nil {
		iconHash = utils.IconHash(image)
	}

	resp := dto.UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		DisplayName: user.DisplayName,
		Description: user.Description,
		IconHash:    iconHash,
	}
	if theme != nil {
		resp.Theme = dto.ThemeResponse{ID: theme.ID, DarkMode: theme.DarkMode}
	}
	return resp, nil
}
