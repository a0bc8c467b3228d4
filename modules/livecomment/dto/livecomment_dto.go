package dto

import (
	lsdto "livestream-api/modules/livestream/dto"
	userdto "livestream-api/modules/user/dto"
)

type PostLivecommentRequest struct {
	Comment string `json:"comment"`
	Tip     int64  `json:"tip"`
}

type LivecommentResponse struct {
	ID         int64                    `json:"id"`
	User       userdto.UserResponse     `json:"user"`
	Livestream lsdto.LivestreamResponse `json:"livestream"`
	Comment    string                   `json:"comment"`
	Tip        int64                    `json:"tip"`
	CreatedAt  int64                    `json:"created_at"`
}
