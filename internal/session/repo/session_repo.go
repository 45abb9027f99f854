package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-study/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-study/internal/session/entity"
)

type SessionRepo struct {
	db sqlx.ExtContext
}

func NewSessionRepo(db sqlx.ExtContext) *SessionRepo { return &SessionRepo{db: db} }

// Create inserts s and fills in its id and completion time.
func (r *SessionRepo) Create(ctx context.Context, s *entity.Session) error {
	const q = `INSERT INTO study_sessions (user_id, session_type, duration)
		VALUES ($1, $2, $3) RETURNING id, completed_at`
	if err := r.db.QueryRowxContext(ctx, q, s.UserID, s.SessionType, s.Duration).Scan(&s.ID, &s.CompletedAt); err != nil {
		return apperr.Internal("insert session", err)
	}
	return nil
}

// ListByUser returns the sessions of userID, most recent first.
func (r *SessionRepo) ListByUser(ctx context.Context, userID int64) ([]entity.Session, error) {
	const q = `SELECT id, user_id, session_type, duration, completed_at FROM study_sessions
		WHERE user_id=$1 ORDER BY completed_at DESC, id DESC`
	out := []entity.Session{}
	if err := sqlx.SelectContext(ctx, r.db, &out, q, userID); err != nil {
		return nil, apperr.Internal("select sessions", err)
	}
	return out, nil
}
