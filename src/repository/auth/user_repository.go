package auth_repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/drive-clone/api/src/database"
	domain "github.com/drive-clone/api/src/domain/auth"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const userColumns = "id, email, name, password_hash, auth_provider, created_at, updated_at"

// UserRepository handles user database operations
type UserRepository struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB, logger *logrus.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureTable creates the users table
func (r *UserRepository) EnsureTable(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		auth_provider TEXT NOT NULL DEFAULT 'email',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure users table: %w", err)
	}
	return nil
}

// FindByEmail finds a user by email. Returns nil, nil when no user matches.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email", strings.ToLower(email))
}

// FindByID finds a user by id. Returns nil, nil when no user matches.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *UserRepository) findOne(ctx context.Context, column, value string) (*domain.User, error) {
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE " + column + " = ?")

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithError(err).WithField(column, value).Error("Failed to find user")
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// CreateUser inserts a new account and returns the stored row
func (r *UserRepository) CreateUser(ctx context.Context, email, name, passwordHash string, provider domain.AuthProvider) (*domain.User, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	query := r.db.Rebind(`INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + userColumns)

	var user domain.User
	err := r.db.GetContext(ctx, &user, query,
		uuid.NewString(), strings.ToLower(email), name, passwordHash, string(provider), now, now)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		r.logger.WithError(err).WithField("email", email).Error("Failed to create user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"provider": user.Provider,
	}).Info("User created")

	return &user, nil
}

// UpdateProfile changes the display name and/or password hash of a user
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, name, passwordHash *string) (*domain.User, error) {
	sets := []string{}
	args := []any{}
	if name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *name)
	}
	if passwordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *passwordHash)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Truncate(time.Microsecond), id)

	query := r.db.Rebind("UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, domain.ErrUserNotFound
	}

	return r.FindByID(ctx, id)
}
