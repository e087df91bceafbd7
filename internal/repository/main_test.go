package repository

import (
	"regexp"
	"testing"

	"forum/internal/database"
	"forum/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB returns a migrated in-memory database pinned to one connection.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func quote(sql string) string {
	return regexp.QuoteMeta(sql)
}

func createCommunity(t *testing.T, db *gorm.DB, name string, owner *models.User) *models.Community {
	t.Helper()
	c := &models.Community{Name: name, UserID: owner.ID}
	require.NoError(t, db.Create(c).Error)
	return c
}

func createPost(t *testing.T, db *gorm.DB, title string, author *models.User, community *models.Community) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, UserID: author.ID, CommunityID: community.ID}
	require.NoError(t, db.Create(p).Error)
	return p
}
