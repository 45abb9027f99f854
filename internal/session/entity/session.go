package entity

import "time"

// Session is one finished timer run. Duration is in minutes.
type Session struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	SessionType string    `db:"session_type" json:"session_type"`
	Duration    int       `db:"duration" json:"duration"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}
