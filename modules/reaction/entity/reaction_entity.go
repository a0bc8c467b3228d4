package entity

type Reaction struct {
	ID           int64  `db:"id"`
	UserID       int64  `db:"user_id"`
	LivestreamID int64  `db:"livestream_id"`
	EmojiName    string `db:"emoji_name"`
	CreatedAt    int64  `db:"created_at"`
}
