package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"forum/internal/cache"
	"forum/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := cache.NewClient(mr.Addr())
	require.NoError(t, err)
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

func TestCommunityService_Create_Validation(t *testing.T) {
	cache.SetClient(nil)

	tests := []struct {
		name      string
		in        CreateCommunityInput
		wantCode  string
		wantField string
	}{
		{"anonymous", CreateCommunityInput{Name: "golang"}, models.CodeUnauthorized, ""},
		{"name too short", CreateCommunityInput{UserID: 1, Name: "ab"}, models.CodeValidation, "name"},
		{"name blank after trim", CreateCommunityInput{UserID: 1, Name: "     "}, models.CodeValidation, "name"},
		{"name too long", CreateCommunityInput{UserID: 1, Name: strings.Repeat("n", 101)}, models.CodeValidation, "name"},
		{"description too long", CreateCommunityInput{UserID: 1, Name: "golang", Description: strings.Repeat("d", 256)}, models.CodeValidation, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &communityRepoStub{}
			svc := NewCommunityService(repo, nil)

			c, err := svc.Create(context.Background(), tt.in)
			assert.Nil(t, c)
			assert.Equal(t, tt.wantCode, models.ErrorCode(err))
			assert.Zero(t, repo.createCalls, "invalid input must not reach storage")

			if tt.wantField != "" {
				var appErr *models.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Contains(t, appErr.Fields, tt.wantField)
			}
		})
	}
}

func TestCommunityService_Create_Success(t *testing.T) {
	mr := useMiniredis(t)
	require.NoError(t, mr.Set(cache.CommunityListKey, "[]"))

	repo := &communityRepoStub{
		createFn: func(_ context.Context, c *models.Community) error {
			c.ID = 7
			return nil
		},
	}
	pub := &publisherStub{}
	svc := NewCommunityService(repo, pub)

	c, err := svc.Create(context.Background(), CreateCommunityInput{
		UserID:      3,
		Name:        "  golang  ",
		Description: "Gophers",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), c.ID)
	assert.Equal(t, "golang", c.Name)
	assert.Equal(t, uint(3), c.UserID)

	require.Len(t, pub.published, 1)
	assert.Equal(t, c, pub.published[0])
	assert.False(t, mr.Exists(cache.CommunityListKey), "list cache must be invalidated")
}

func TestCommunityService_Create_ConflictIsReturned(t *testing.T) {
	cache.SetClient(nil)

	repo := &communityRepoStub{
		createFn: func(_ context.Context, c *models.Community) error {
			return models.NewConflictError(`a community named "golang" already exists`, nil)
		},
	}
	pub := &publisherStub{}
	svc := NewCommunityService(repo, pub)

	_, err := svc.Create(context.Background(), CreateCommunityInput{UserID: 1, Name: "golang"})
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
	assert.Empty(t, pub.published)
}

func TestCommunityService_Create_PublishFailureIsNotFatal(t *testing.T) {
	cache.SetClient(nil)

	svc := NewCommunityService(&communityRepoStub{}, &publisherStub{err: errors.New("redis down")})
	c, err := svc.Create(context.Background(), CreateCommunityInput{UserID: 1, Name: "golang"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestCommunityService_List_CachedUntilCreate(t *testing.T) {
	useMiniredis(t)

	repo := &communityRepoStub{
		listFn: func(context.Context) ([]models.Community, error) {
			return []models.Community{{ID: 2, Name: "Alpha"}, {ID: 1, Name: "Zeta"}}, nil
		},
	}
	svc := NewCommunityService(repo, nil)
	ctx := context.Background()

	first, err := svc.List(ctx)
	require.NoError(t, err)
	second, err := svc.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"Alpha", "Zeta"}, []string{first[0].Name, first[1].Name})
	assert.Equal(t, []string{"Alpha", "Zeta"}, []string{second[0].Name, second[1].Name})
	assert.Equal(t, 1, repo.listCalls)

	_, err = svc.Create(ctx, CreateCommunityInput{UserID: 1, Name: "Mu"})
	require.NoError(t, err)

	_, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestCommunityService_List_Error(t *testing.T) {
	cache.SetClient(nil)

	repo := &communityRepoStub{
		listFn: func(context.Context) ([]models.Community, error) {
			return nil, models.NewInternalError(errors.New("db down"))
		},
	}
	_, err := NewCommunityService(repo, nil).List(context.Background())
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
}

func TestCommunityService_GetByIdentifier(t *testing.T) {
	cache.SetClient(nil)

	var gotID uint
	var gotName string
	repo := &communityRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Community, error) {
			gotID = id
			return &models.Community{ID: id, Name: "golang"}, nil
		},
		getByNameFn: func(_ context.Context, name string) (*models.Community, error) {
			gotName = name
			return &models.Community{ID: 9, Name: name}, nil
		},
	}
	svc := NewCommunityService(repo, nil)
	ctx := context.Background()

	c, err := svc.GetByIdentifier(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), gotID)
	assert.Equal(t, "golang", c.Name)

	c, err = svc.GetByIdentifier(ctx, "rust-lang")
	require.NoError(t, err)
	assert.Equal(t, "rust-lang", gotName)
	assert.Equal(t, uint(9), c.ID)

	_, err = svc.GetByIdentifier(ctx, "")
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestCommunityService_GetByIdentifier_NotFoundNotCached(t *testing.T) {
	mr := useMiniredis(t)

	svc := NewCommunityService(&communityRepoStub{}, nil)
	_, err := svc.GetByIdentifier(context.Background(), "nope")
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.False(t, mr.Exists(cache.CommunityNameKey("nope")))
}
