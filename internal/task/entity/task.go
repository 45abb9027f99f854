package entity

import "time"

// DateLayout is the wire format of deadlines.
const DateLayout = "2006-01-02"

// Task is a dated goal owned by a user. Deadline holds a calendar date at
// UTC midnight.
type Task struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Subject     string    `db:"subject"`
	Description string    `db:"description"`
	Completed   bool      `db:"completed"`
	Deadline    time.Time `db:"deadline"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	UserID      int64     `db:"user_id"`
}

// DeadlineString formats the deadline as YYYY-MM-DD.
func (t Task) DeadlineString() string {
	return t.Deadline.Format(DateLayout)
}
