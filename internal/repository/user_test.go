package repository

import (
	"context"
	"errors"
	"testing"

	"forum/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	const query = `SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		wantUsername string
		wantCode     string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "email"}).
					AddRow(1, "testuser", "test@example.com")
				mock.ExpectQuery(quote(query)).WithArgs(1, 1).WillReturnRows(rows)
			},
			wantUsername: "testuser",
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(quote(query)).WithArgs(99, 1).WillReturnError(gorm.ErrRecordNotFound)
			},
			wantCode: models.CodeNotFound,
		},
		{
			name:   "Database Error",
			userID: 2,
			mockBehavior: func() {
				mock.ExpectQuery(quote(query)).WithArgs(2, 1).WillReturnError(errors.New("connection reset"))
			},
			wantCode: models.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, models.ErrorCode(err))
				assert.Nil(t, user)
			} else if assert.NotNil(t, user) {
				assert.Equal(t, tt.wantUsername, user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	const query = `SELECT * FROM "users" WHERE email = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`

	mock.ExpectQuery(quote(query)).
		WithArgs("a@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}).AddRow(3, "a", "a@example.com"))
	user, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, uint(3), user.ID)

	mock.ExpectQuery(quote(query)).
		WithArgs("nobody@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	user, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, user)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(quote(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint \"idx_users_email\""})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{Username: "a", Email: "a@example.com", Password: "x"})
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SQLite(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &models.User{Username: "gopher", Email: "gopher@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)

	found, err := repo.GetByUsername(ctx, "gopher")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)

	err = repo.Create(ctx, &models.User{Username: "gopher", Email: "other@example.com", Password: "hash"})
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
}

func TestUserRepository_UpdateBio(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := createUser(t, db, "gopher")
	createUser(t, db, "taken")

	u.Bio = "I write Go"
	require.NoError(t, repo.Update(ctx, u))

	found, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "I write Go", found.Bio)

	u.Username = "taken"
	err = repo.Update(ctx, u)
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
}
