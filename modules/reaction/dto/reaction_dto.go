package dto

import (
	lsdto "livestream-api/modules/livestream/dto"
	userdto "livestream-api/modules/user/dto"
)

type PostReactionRequest struct {
	EmojiName string `json:"emoji_name"`
}

type ReactionResponse struct {
	ID         int64                    `json:"id"`
	EmojiName  string                   `json:"emoji_name"`
	User       userdto.UserResponse     `json:"user"`
	Livestream lsdto.LivestreamResponse `json:"livestream"`
	CreatedAt  int64                    `json:"created_at"`
}
