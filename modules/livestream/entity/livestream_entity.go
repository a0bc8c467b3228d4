package entity

import "database/sql"

// ReservationSlot is one fixed-width interval [StartAt, EndAt) of the
// bookable horizon. Slot is the remaining capacity and never goes negative.
type ReservationSlot struct {
	ID      int64 `db:"id"`
	Slot    int64 `db:"slot"`
	StartAt int64 `db:"start_at"`
	EndAt   int64 `db:"end_at"`
}

type Livestream struct {
	ID           int64  `db:"id"`
	UserID       int64  `db:"user_id"`
	Title        string `db:"title"`
	Description  string `db:"description"`
	PlaylistURL  string `db:"playlist_url"`
	ThumbnailURL string `db:"thumbnail_url"`
	StartAt      int64  `db:"start_at"`
	EndAt        int64  `db:"end_at"`
}

type LivestreamTag struct {
	ID           int64 `db:"id"`
	LivestreamID int64 `db:"livestream_id"`
	TagID        int64 `db:"tag_id"`
}

// LinkedTag is a livestream's tag link joined with the catalog. Name is
// invalid when the linked id is not in the catalog.
type LinkedTag struct {
	TagID int64          `db:"tag_id"`
	Name  sql.NullString `db:"name"`
}
