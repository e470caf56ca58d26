package auth_repo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/drive-clone/api/src/database"
	domain "github.com/drive-clone/api/src/domain/auth"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "email", "name", "password_hash", "auth_provider", "created_at", "updated_at"}

func setupRepoTest(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	repo := NewUserRepository(database.NewDB(sqlx.NewDb(db, "postgres"), logger), logger)
	return repo, mock
}

func TestUserRepository_FindByEmail(t *testing.T) {
	repo, mock := setupRepoTest(t)

	email := "test@example.com"
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("user-1", email, "Test", "hash", "email", time.Now(), time.Now())

	mock.ExpectQuery("SELECT id, email, name, password_hash, auth_provider, created_at, updated_at FROM users WHERE email = \\$1").
		WithArgs(email).
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "Test@Example.com")

	assert.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, email, user.Email)
	assert.Equal(t, domain.ProviderEmail, user.Provider)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	repo, mock := setupRepoTest(t)

	mock.ExpectQuery("SELECT .* FROM users WHERE email = \\$1").
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	user, err := repo.FindByEmail(context.Background(), "missing@example.com")

	assert.NoError(t, err) // nil, nil when absent
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateUser(t *testing.T) {
	repo, mock := setupRepoTest(t)

	rows := sqlmock.NewRows(userRowColumns).
		AddRow("user-new", "new@example.com", "New", "hashed", "email", time.Now(), time.Now())

	mock.ExpectQuery("INSERT INTO users .* VALUES .* RETURNING .*").
		WithArgs(sqlmock.AnyArg(), "new@example.com", "New", "hashed", "email", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	user, err := repo.CreateUser(context.Background(), "NEW@example.com", "New", "hashed", domain.ProviderEmail)

	assert.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "user-new", user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateUser_Duplicate(t *testing.T) {
	repo, mock := setupRepoTest(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	user, err := repo.CreateUser(context.Background(), "dup@example.com", "", "hashed", domain.ProviderEmail)

	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	repo, mock := setupRepoTest(t)

	name := "Renamed"
	mock.ExpectExec("UPDATE users SET name = \\$1, updated_at = \\$2 WHERE id = \\$3").
		WithArgs(name, sqlmock.AnyArg(), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM users WHERE id = \\$1").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("user-1", "a@example.com", name, "hash", "email", time.Now(), time.Now()))

	user, err := repo.UpdateProfile(context.Background(), "user-1", &name, nil)

	assert.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, name, user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile_Missing(t *testing.T) {
	repo, mock := setupRepoTest(t)

	hash := "new-hash"
	mock.ExpectExec("UPDATE users SET password_hash = \\$1, updated_at = \\$2 WHERE id = \\$3").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.UpdateProfile(context.Background(), "ghost", nil, &hash)

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
