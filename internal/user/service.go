package user

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-study/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-study/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-study/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-study/pkg/database"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Repository is the credential store used by UserService.
type Repository interface {
	Create(ctx context.Context, u *entity.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Exists(ctx context.Context, email, username string) (bool, error)
}

// TokenMinter issues session tokens.
type TokenMinter interface {
	MintToken(userID int64) (string, error)
}

// maxPasswordBytes is the bcrypt input limit. It counts bytes, not runes.
const maxPasswordBytes = 72

var (
	ErrBadCredentials  = apperr.Unauthorized("Invalid credentials")
	ErrPasswordTooLong = apperr.Validation("password must be at most 72 bytes")
)

// UserService implements registration and password login.
type UserService struct {
	db      *sqlx.DB
	repoFor func(sqlx.ExtContext) Repository
	hasher  PasswordHasher
	tokens  TokenMinter
}

func NewUserService(db *sqlx.DB, tokens TokenMinter, hasher PasswordHasher) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &UserService{
		db:      db,
		repoFor: func(q sqlx.ExtContext) Repository { return userrepo.NewUserRepo(q) },
		hasher:  hasher,
		tokens:  tokens,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns a token for it.
func (s *UserService) Register(ctx context.Context, email, username, password string) (string, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return "", apperr.Validation("Email, username, and password required")
	}
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}

	u := &entity.User{Email: email, Username: username, PasswordHash: hash}
	err = database.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		repo := s.repoFor(tx)
		taken, err := repo.Exists(ctx, email, username)
		if err != nil {
			return err
		}
		if taken {
			return userrepo.ErrDuplicate
		}
		_, err = repo.Create(ctx, u)
		return err
	})
	if err != nil {
		return "", err
	}
	return s.tokens.MintToken(u.ID)
}

// Login verifies the password of the account registered with email.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repoFor(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", ErrBadCredentials
		}
		return "", err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return "", ErrBadCredentials
	}
	return s.tokens.MintToken(u.ID)
}
