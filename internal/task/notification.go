package task

import (
	"fmt"
	"sort"
	"time"

	"github.com/ovaphlow/pitchfork/service-study/internal/task/entity"
)

// upcomingWindow is how many days ahead an open task starts producing
// notifications.
const upcomingWindow = 3

// DeriveNotifications classifies the open tasks against today and returns the
// reminders, most urgent first. Completed tasks and tasks due beyond the
// upcoming window produce nothing.
func DeriveNotifications(tasks []entity.Task, today time.Time) []entity.Notification {
	today = dateOf(today)
	out := make([]entity.Notification, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		n := entity.Notification{
			TaskID:   t.ID,
			Title:    t.Title,
			Subject:  t.Subject,
			Deadline: t.DeadlineString(),
		}
		diff := daysBetween(today, dateOf(t.Deadline))
		switch {
		case diff < 0:
			overdue := -diff
			n.Type = entity.KindOverdue
			n.DaysOverdue = &overdue
			n.Message = fmt.Sprintf("Overdue by %s: %s", pluralDays(overdue), t.Title)
		case diff == 0:
			n.Type = entity.KindDueToday
			n.Message = "Due today: " + t.Title
		case diff == 1:
			n.Type = entity.KindDueTomorrow
			n.Message = "Due tomorrow: " + t.Title
		case diff <= upcomingWindow:
			remaining := diff
			n.Type = entity.KindUpcoming
			n.DaysRemaining = &remaining
			n.Message = fmt.Sprintf("Due in %s: %s", pluralDays(remaining), t.Title)
		default:
			continue
		}
		out = append(out, n)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ra, rb := a.Type.Rank(), b.Type.Rank(); ra != rb {
			return ra < rb
		}
		da, okA := a.DayCount()
		db, okB := b.DayCount()
		switch {
		case okA && okB:
			return da < db
		case okA != okB:
			return okA
		default:
			return false
		}
	})
	return out
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
