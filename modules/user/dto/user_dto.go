package dto

type ThemeResponse struct {
	ID       int64 `json:"id"`
	DarkMode bool  `json:"dark_mode"`
}

type UserResponse struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	DisplayName string        `json:"display_name"`
	Description string        `json:"description"`
	Theme       ThemeResponse `json:"theme"`
	IconHash    string        `json:"icon_hash"`
}
