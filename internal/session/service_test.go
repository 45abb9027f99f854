package session

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-study/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-study/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-study/internal/session/entity"
)

var epoch = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type memRepo struct {
	rows []entity.Session
	err  error
}

func (m *memRepo) Create(_ context.Context, s *entity.Session) error {
	if m.err != nil {
		return m.err
	}
	s.ID = int64(len(m.rows) + 1)
	s.CompletedAt = epoch.Add(time.Duration(s.ID) * time.Minute)
	m.rows = append(m.rows, *s)
	return nil
}

func (m *memRepo) ListByUser(_ context.Context, uid int64) ([]entity.Session, error) {
	out := []entity.Session{}
	for _, s := range m.rows {
		if s.UserID == uid {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

func newService(t *testing.T, repo *memRepo) (*SessionService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	svc := NewSessionService(sqlx.NewDb(db, "sqlmock"))
	svc.repoFor = func(sqlx.ExtContext) Repository { return repo }
	return svc, mock
}

func TestRecordSession(t *testing.T) {
	repo := &memRepo{}
	svc, mock := newService(t, repo)
	mock.ExpectBegin()
	mock.ExpectCommit()
	before := testutil.ToFloat64(metrics.SessionsRecordedTotal.WithLabelValues("focus"))

	s, err := svc.RecordSession(context.Background(), 1, " focus ", 25)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.ID)
	assert.Equal(t, "focus", s.SessionType)
	assert.False(t, s.CompletedAt.IsZero())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SessionsRecordedTotal.WithLabelValues("focus")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSessionRejects(t *testing.T) {
	svc, mock := newService(t, &memRepo{})
	for _, tc := range []struct {
		kind     string
		duration int
	}{{"", 25}, {"focus", 0}, {"focus", -5}, {"focus", 1441}, {"focus", 1_000_000}} {
		_, err := svc.RecordSession(context.Background(), 1, tc.kind, tc.duration)
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSessionRollsBack(t *testing.T) {
	svc, mock := newService(t, &memRepo{err: errors.New("boom")})
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.RecordSession(context.Background(), 1, "focus", 25)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListSessionsNewestFirst(t *testing.T) {
	repo := &memRepo{}
	svc, mock := newService(t, repo)
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
	_, _ = svc.RecordSession(context.Background(), 1, "focus", 25)
	_, _ = svc.RecordSession(context.Background(), 2, "focus", 50)
	_, _ = svc.RecordSession(context.Background(), 1, "break", 5)

	got, err := svc.ListSessions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "break", got[0].SessionType)
	assert.Equal(t, "focus", got[1].SessionType)
}
