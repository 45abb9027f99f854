package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-study/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-study/internal/task/entity"
)

const taskColumns = `id, title, subject, description, completed, deadline, created_at, updated_at, user_id`

// ErrTaskNotFound is returned when no task with the id belongs to the caller.
var ErrTaskNotFound = apperr.NotFound("Task not found")

// TaskRepo provides data access for the tasks table. Every query is scoped to
// the owning user.
type TaskRepo struct {
	db sqlx.ExtContext
}

func NewTaskRepo(db sqlx.ExtContext) *TaskRepo { return &TaskRepo{db: db} }

// Create inserts t and fills in its id and timestamps.
func (r *TaskRepo) Create(ctx context.Context, t *entity.Task) (int64, error) {
	const q = `INSERT INTO tasks (title, subject, description, deadline, user_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, q, t.Title, t.Subject, t.Description, t.Deadline.Format(entity.DateLayout), t.UserID)
	if err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return 0, apperr.Internal("insert task", err)
	}
	return t.ID, nil
}

// ListByUser returns every task of userID in insertion order.
func (r *TaskRepo) ListByUser(ctx context.Context, userID int64) ([]entity.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id=$1 ORDER BY id`
	return r.selectTasks(ctx, q, userID)
}

// ListByDate returns the tasks of userID due on day.
func (r *TaskRepo) ListByDate(ctx context.Context, userID int64, day time.Time) ([]entity.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id=$1 AND deadline=$2 ORDER BY id`
	return r.selectTasks(ctx, q, userID, day.Format(entity.DateLayout))
}

// ListInRange returns the tasks of userID whose deadline lies within the
// inclusive bounds. A nil bound is open.
func (r *TaskRepo) ListInRange(ctx context.Context, userID int64, start, end *time.Time) ([]entity.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id=$1
		  AND ($2::date IS NULL OR deadline >= $2::date)
		  AND ($3::date IS NULL OR deadline <= $3::date)
		ORDER BY deadline, id`
	return r.selectTasks(ctx, q, userID, dateArg(start), dateArg(end))
}

// ListIncomplete returns the open tasks of userID.
func (r *TaskRepo) ListIncomplete(ctx context.Context, userID int64) ([]entity.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id=$1 AND completed=false ORDER BY deadline, id`
	return r.selectTasks(ctx, q, userID)
}

// Delete removes the task id owned by userID.
func (r *TaskRepo) Delete(ctx context.Context, userID, id int64) error {
	const q = `DELETE FROM tasks WHERE id=$1 AND user_id=$2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return apperr.Internal("delete task", err)
	}
	return expectOne(res.RowsAffected())
}

// Complete marks the task id owned by userID as completed. Completing an
// already completed task succeeds.
func (r *TaskRepo) Complete(ctx context.Context, userID, id int64) error {
	const q = `UPDATE tasks SET completed=true, updated_at=NOW() WHERE id=$1 AND user_id=$2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return apperr.Internal("complete task", err)
	}
	return expectOne(res.RowsAffected())
}

func (r *TaskRepo) selectTasks(ctx context.Context, q string, args ...any) ([]entity.Task, error) {
	tasks := []entity.Task{}
	if err := sqlx.SelectContext(ctx, r.db, &tasks, q, args...); err != nil {
		return nil, apperr.Internal("select tasks", err)
	}
	return tasks, nil
}

func expectOne(n int64, err error) error {
	if err != nil {
		return apperr.Internal("rows affected", err)
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(entity.DateLayout)
}
