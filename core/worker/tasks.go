package worker

const TypeLivestreamReserved = "livestream:reserved"

// LivestreamReservedPayload is published after a reservation commits.
type LivestreamReservedPayload struct {
	LivestreamID int64  `json:"livestream_id"`
	UserID       int64  `json:"user_id"`
	Title        string `json:"title"`
	StartAt      int64  `json:"start_at"`
	EndAt        int64  `json:"end_at"`
}
