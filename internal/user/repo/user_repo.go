package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-study/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-study/internal/user/entity"
)

const uniqueViolation = "23505"

// ErrDuplicate is returned when the email or username is already taken.
var ErrDuplicate = apperr.Conflict("Email or username already exists")

// UserRepo provides data access for the users table. It runs on either a
// *sqlx.DB or a *sqlx.Tx.
type UserRepo struct {
	db sqlx.ExtContext
}

func NewUserRepo(db sqlx.ExtContext) *UserRepo { return &UserRepo{db: db} }

// Create inserts u and returns its new id.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) (int64, error) {
	const q = `INSERT INTO users (email, username, password_hash) VALUES ($1, $2, $3) RETURNING id`
	if err := sqlx.GetContext(ctx, r.db, &u.ID, q, u.Email, u.Username, u.PasswordHash); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return 0, ErrDuplicate
		}
		return 0, apperr.Internal("insert user", err)
	}
	return u.ID, nil
}

// GetByEmail returns the user registered with email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT id, email, username, password_hash, created_at FROM users WHERE email=$1`
	var u entity.User
	if err := sqlx.GetContext(ctx, r.db, &u, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("get user by email", err)
	}
	return &u, nil
}

// Exists reports whether email or username is already registered.
func (r *UserRepo) Exists(ctx context.Context, email, username string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1 OR username=$2)`
	var found bool
	if err := sqlx.GetContext(ctx, r.db, &found, q, email, username); err != nil {
		return false, apperr.Internal("check user exists", err)
	}
	return found, nil
}
