package repository

import (
	"context"
	"testing"
	"time"

	"forum/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_CreateLoadsAuthorAndCommunity(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "author")
	golang := createCommunity(t, db, "golang", author)

	p := &models.Post{Title: "Generics", Content: "finally", UserID: author.ID, CommunityID: golang.ID}
	require.NoError(t, repo.Create(ctx, p))

	assert.NotZero(t, p.ID)
	require.NotNil(t, p.Author)
	assert.Equal(t, "author", p.Author.Username)
	require.NotNil(t, p.Community)
	assert.Equal(t, "golang", p.Community.Name)

	found, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Generics", found.Title)

	_, err = repo.GetByID(ctx, 999)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestPostRepository_ListsNewestFirstWithFilters(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	golang := createCommunity(t, db, "golang", alice)
	rust := createCommunity(t, db, "rust", bob)

	base := time.Now().Add(-time.Hour)
	seed := []struct {
		title     string
		author    *models.User
		community *models.Community
	}{
		{"first", alice, golang},
		{"second", bob, rust},
		{"third", bob, golang},
	}
	for i, s := range seed {
		p := &models.Post{Title: s.title, UserID: s.author.ID, CommunityID: s.community.ID, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, db.Create(p).Error)
	}

	titles := func(list []models.Post) []string {
		out := make([]string, 0, len(list))
		for _, p := range list {
			out = append(out, p.Title)
		}
		return out
	}

	all, err := repo.List(ctx, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second", "first"}, titles(all))
	assert.Equal(t, "bob", all[0].Author.Username)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, titles(page))

	inGolang, err := repo.ListByCommunity(ctx, golang.ID, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "first"}, titles(inGolang))

	byBob, err := repo.ListByAuthor(ctx, bob.ID, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second"}, titles(byBob))
}

func TestPostRepository_UpdateLeavesCountersAlone(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "author")
	p := createPost(t, db, "Draft", author, createCommunity(t, db, "golang", author))
	require.NoError(t, db.Model(p).Update("like_count", 4).Error)

	stale := *p
	stale.Title = "Final"
	stale.Content = "edited"
	stale.LikeCount = 0
	require.NoError(t, repo.Update(ctx, &stale))

	found, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", found.Title)
	assert.Equal(t, "edited", found.Content)
	assert.Equal(t, 4, found.LikeCount)
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "author")
	golang := createCommunity(t, db, "golang", author)
	doomed := createPost(t, db, "doomed", author, golang)
	kept := createPost(t, db, "kept", author, golang)

	c := &models.Comment{Content: "bye", UserID: author.ID, PostID: doomed.ID}
	require.NoError(t, db.Create(c).Error)
	keptComment := &models.Comment{Content: "stay", UserID: author.ID, PostID: kept.ID}
	require.NoError(t, db.Create(keptComment).Error)
	require.NoError(t, db.Create(&models.CommentLike{Type: models.VoteLike, UserID: author.ID, CommentID: c.ID}).Error)
	require.NoError(t, db.Create(&models.PostLike{Type: models.VoteLike, UserID: author.ID, PostID: doomed.ID}).Error)
	require.NoError(t, db.Create(&models.PostLike{Type: models.VoteLike, UserID: author.ID, PostID: kept.ID}).Error)

	require.NoError(t, repo.Delete(ctx, doomed.ID))

	count := func(model interface{}) int64 {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		return n
	}
	assert.Equal(t, int64(1), count(&models.Post{}))
	assert.Equal(t, int64(1), count(&models.Comment{}))
	assert.Equal(t, int64(0), count(&models.CommentLike{}))
	assert.Equal(t, int64(1), count(&models.PostLike{}))

	err := repo.Delete(ctx, doomed.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestPostRepository_ListQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(quote(`SELECT * FROM "posts" WHERE community_id = $1 ORDER BY created_at DESC,id DESC LIMIT $2`)).
		WithArgs(7, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "user_id", "community_id"}))

	list, err := repo.ListByCommunity(context.Background(), 7, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}
