package entity

type NotificationKind string

const (
	KindOverdue     NotificationKind = "overdue"
	KindDueToday    NotificationKind = "due_today"
	KindDueTomorrow NotificationKind = "due_tomorrow"
	KindUpcoming    NotificationKind = "upcoming"
)

// Rank orders kinds by urgency, most urgent first.
func (k NotificationKind) Rank() int {
	switch k {
	case KindOverdue:
		return 0
	case KindDueToday:
		return 1
	case KindDueTomorrow:
		return 2
	default:
		return 3
	}
}

// Notification is a deadline reminder derived from an incomplete task.
type Notification struct {
	TaskID        int64            `json:"task_id"`
	Type          NotificationKind `json:"type"`
	Title         string           `json:"title"`
	Subject       string           `json:"subject"`
	Deadline      string           `json:"deadline"`
	Message       string           `json:"message"`
	DaysOverdue   *int             `json:"days_overdue,omitempty"`
	DaysRemaining *int             `json:"days_remaining,omitempty"`
}

// DayCount is the count the notification is sorted by within its kind.
func (n Notification) DayCount() (int, bool) {
	switch {
	case n.DaysOverdue != nil:
		return *n.DaysOverdue, true
	case n.DaysRemaining != nil:
		return *n.DaysRemaining, true
	default:
		return 0, false
	}
}
