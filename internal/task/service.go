package task

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-study/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-study/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-study/internal/task/entity"
	taskrepo "github.com/ovaphlow/pitchfork/service-study/internal/task/repo"
	"github.com/ovaphlow/pitchfork/service-study/pkg/database"
)

var (
	ErrBadDate  = apperr.Validation("Invalid date format. Use YYYY-MM-DD")
	ErrPastDate = apperr.Validation("Deadline cannot be in the past")
)

// Repository is the task store used by TaskService.
type Repository interface {
	Create(ctx context.Context, t *entity.Task) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]entity.Task, error)
	ListByDate(ctx context.Context, userID int64, day time.Time) ([]entity.Task, error)
	ListInRange(ctx context.Context, userID int64, start, end *time.Time) ([]entity.Task, error)
	ListIncomplete(ctx context.Context, userID int64) ([]entity.Task, error)
	Delete(ctx context.Context, userID, id int64) error
	Complete(ctx context.Context, userID, id int64) error
}

// NewTask is the input of CreateTask.
type NewTask struct {
	Title       string
	Subject     string
	Description string
	Deadline    string
}

// TaskService implements the task operations of a single authenticated user.
type TaskService struct {
	db      *sqlx.DB
	repoFor func(sqlx.ExtContext) Repository
	now     func() time.Time
}

func NewTaskService(db *sqlx.DB) *TaskService {
	return &TaskService{
		db:      db,
		repoFor: func(q sqlx.ExtContext) Repository { return taskrepo.NewTaskRepo(q) },
		now:     time.Now,
	}
}

// today is the current UTC calendar date.
func (s *TaskService) today() time.Time {
	return dateOf(s.now().UTC())
}

// CreateTask validates in and stores it as an open task of userID.
func (s *TaskService) CreateTask(ctx context.Context, userID int64, in NewTask) (int64, error) {
	t := entity.Task{
		Title:       strings.TrimSpace(in.Title),
		Subject:     strings.TrimSpace(in.Subject),
		Description: in.Description,
		UserID:      userID,
	}
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"title", t.Title}, {"subject", t.Subject}, {"deadline", strings.TrimSpace(in.Deadline)},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return 0, apperr.Validation("Missing required fields: " + strings.Join(missing, ", "))
	}

	deadline, err := ParseDate(in.Deadline)
	if err != nil {
		return 0, err
	}
	if deadline.Before(s.today()) {
		return 0, ErrPastDate
	}
	t.Deadline = deadline

	err = database.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := s.repoFor(tx).Create(ctx, &t)
		return err
	})
	if err != nil {
		return 0, err
	}
	metrics.TasksCreatedTotal.Inc()
	return t.ID, nil
}

// ListTasksForDate returns the tasks of userID due on the given day.
func (s *TaskService) ListTasksForDate(ctx context.Context, userID int64, day string) ([]entity.Task, error) {
	d, err := ParseDate(day)
	if err != nil {
		return nil, err
	}
	return s.repoFor(s.db).ListByDate(ctx, userID, d)
}

// ListTasksInRange returns the tasks of userID due within the inclusive
// bounds. Empty bounds are open.
func (s *TaskService) ListTasksInRange(ctx context.Context, userID int64, start, end string) ([]entity.Task, error) {
	from, err := parseBound(start)
	if err != nil {
		return nil, err
	}
	to, err := parseBound(end)
	if err != nil {
		return nil, err
	}
	return s.repoFor(s.db).ListInRange(ctx, userID, from, to)
}

func (s *TaskService) DeleteTask(ctx context.Context, userID, id int64) error {
	return database.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.repoFor(tx).Delete(ctx, userID, id)
	})
}

func (s *TaskService) CompleteTask(ctx context.Context, userID, id int64) error {
	return database.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.repoFor(tx).Complete(ctx, userID, id)
	})
}

// Dashboard returns every task of userID in insertion order.
func (s *TaskService) Dashboard(ctx context.Context, userID int64) ([]entity.Task, error) {
	return s.repoFor(s.db).ListByUser(ctx, userID)
}

// Notifications derives the deadline reminders of userID for today.
func (s *TaskService) Notifications(ctx context.Context, userID int64) ([]entity.Notification, error) {
	tasks, err := s.repoFor(s.db).ListIncomplete(ctx, userID)
	if err != nil {
		return nil, err
	}
	return DeriveNotifications(tasks, s.today()), nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(entity.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return d, nil
}

var boundLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"}

// parseBound accepts a date or an ISO-8601 timestamp, reduced to its UTC date.
func parseBound(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if d, err := ParseDate(s); err == nil {
		return &d, nil
	}
	for _, layout := range boundLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			d := dateOf(ts.UTC())
			return &d, nil
		}
	}
	return nil, ErrBadDate
}
