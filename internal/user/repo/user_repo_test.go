package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-study/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-study/internal/user/entity"
)

func newMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepo(sqlx.NewDb(db, "sqlmock")), mock
}

func TestCreate(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (email, username, password_hash) VALUES ($1, $2, $3) RETURNING id`)).
		WithArgs("a@b.c", "alice", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	u := &entity.User{Email: "a@b.c", Username: "alice", PasswordHash: "hash"}
	id, err := r.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.Equal(t, int64(11), u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUniqueViolation(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(&pq.Error{Code: "23505"})

	_, err := r.Create(context.Background(), &entity.User{Email: "a@b.c", Username: "alice", PasswordHash: "hash"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.Equal(t, "Email or username already exists", err.Error())
}

func TestCreateDriverError(t *testing.T) {
	r, mock := newMock(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(boom)

	_, err := r.Create(context.Background(), &entity.User{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.True(t, errors.Is(err, apperr.ErrInternal))
	assert.False(t, errors.Is(err, apperr.ErrConflict))
}

func TestGetByEmail(t *testing.T) {
	r, mock := newMock(t)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, username, password_hash, created_at FROM users WHERE email=$1`)).
		WithArgs("a@b.c").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "password_hash", "created_at"}).
			AddRow(int64(3), "a@b.c", "alice", "hash", created))

	u, err := r.GetByEmail(context.Background(), "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, &entity.User{ID: 3, Email: "a@b.c", Username: "alice", PasswordHash: "hash", CreatedAt: created}, u)
}

func TestGetByEmailNotFound(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(`SELECT id, email`).WithArgs("x@y.z").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "password_hash", "created_at"}))

	_, err := r.GetByEmail(context.Background(), "x@y.z")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestExists(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM users WHERE email=$1 OR username=$2)`)).
		WithArgs("a@b.c", "alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	found, err := r.Exists(context.Background(), "a@b.c", "alice")
	require.NoError(t, err)
	assert.True(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}
