package models

import "time"

// Subscriber is a Telegram chat that receives disclosure notifications.
// Never hard-deleted; Active is flipped on unsubscribe or when the chat
// becomes permanently unreachable.
type Subscriber struct {
	UserID       int64     `json:"user_id"       db:"user_id"`
	Username     string    `json:"username"      db:"username"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
	Active       bool      `json:"active"        db:"active"`
}
