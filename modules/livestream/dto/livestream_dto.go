package dto

import (
	tagdto "livestream-api/modules/tag/dto"
	userdto "livestream-api/modules/user/dto"
)

type ReserveLivestreamRequest struct {
	Tags         []int64 `json:"tags"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	PlaylistURL  string  `json:"playlist_url"`
	ThumbnailURL string  `json:"thumbnail_url"`
	StartAt      int64   `json:"start_at"`
	EndAt        int64   `json:"end_at"`
}

type LivestreamResponse struct {
	ID           int64                `json:"id"`
	Owner        userdto.UserResponse `json:"owner"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	PlaylistURL  string               `json:"playlist_url"`
	ThumbnailURL string               `json:"thumbnail_url"`
	Tags         []tagdto.TagResponse `json:"tags"`
	StartAt      int64                `json:"start_at"`
	EndAt        int64                `json:"end_at"`
}

type SearchLivestreamsQuery struct {
	Tag   string
	Limit int
}

// Interval is a half-open window [StartAt, EndAt) in epoch seconds.
type Interval struct {
	StartAt int64 `json:"start_at"`
	EndAt   int64 `json:"end_at"`
}

type SlotResponse struct {
	StartAt   int64 `json:"start_at"`
	EndAt     int64 `json:"end_at"`
	Remaining int64 `json:"remaining"`
}

type SlotsResponse struct {
	Slots []SlotResponse `json:"slots"`
}

// SlotUnavailableDetails explains a capacity rejection to the client.
type SlotUnavailableDetails struct {
	Requested Interval   `json:"requested"`
	Conflicts []Interval `json:"conflicts"`
}

type OutOfTermDetails struct {
	Requested Interval `json:"requested"`
	Term      Interval `json:"term"`
}
