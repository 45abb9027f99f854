package session

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-study/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-study/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-study/internal/session/entity"
	sessionrepo "github.com/ovaphlow/pitchfork/service-study/internal/session/repo"
	"github.com/ovaphlow/pitchfork/service-study/pkg/database"
)

type Repository interface {
	Create(ctx context.Context, s *entity.Session) error
	ListByUser(ctx context.Context, userID int64) ([]entity.Session, error)
}

// SessionService records and lists timer sessions.
type SessionService struct {
	db      *sqlx.DB
	repoFor func(sqlx.ExtContext) Repository
}

func NewSessionService(db *sqlx.DB) *SessionService {
	return &SessionService{
		db:      db,
		repoFor: func(q sqlx.ExtContext) Repository { return sessionrepo.NewSessionRepo(q) },
	}
}

// maxDurationMinutes caps a single session at one day.
const maxDurationMinutes = 1440

// RecordSession stores a finished session of userID and returns it with its
// assigned id and completion time.
func (s *SessionService) RecordSession(ctx context.Context, userID int64, sessionType string, duration int) (*entity.Session, error) {
	sessionType = strings.TrimSpace(sessionType)
	if sessionType == "" {
		return nil, apperr.Validation("Missing required fields: session_type")
	}
	if duration <= 0 {
		return nil, apperr.Validation("duration must be greater than 0")
	}
	if duration > maxDurationMinutes {
		return nil, apperr.Validation("duration must be at most 1440")
	}
	rec := &entity.Session{UserID: userID, SessionType: sessionType, Duration: duration}
	err := database.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.repoFor(tx).Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	metrics.SessionsRecordedTotal.WithLabelValues(sessionType).Inc()
	return rec, nil
}

func (s *SessionService) ListSessions(ctx context.Context, userID int64) ([]entity.Session, error) {
	return s.repoFor(s.db).ListByUser(ctx, userID)
}
