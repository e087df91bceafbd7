package service

import (
	"context"
	"sync"

	"forum/internal/models"
)

type communityRepoStub struct {
	mu          sync.Mutex
	createFn    func(ctx context.Context, c *models.Community) error
	listFn      func(ctx context.Context) ([]models.Community, error)
	getByIDFn   func(ctx context.Context, id uint) (*models.Community, error)
	getByNameFn func(ctx context.Context, name string) (*models.Community, error)
	createCalls int
	listCalls   int
}

func (s *communityRepoStub) Create(ctx context.Context, c *models.Community) error {
	s.mu.Lock()
	s.createCalls++
	s.mu.Unlock()
	if s.createFn != nil {
		return s.createFn(ctx, c)
	}
	c.ID = 1
	return nil
}

func (s *communityRepoStub) ListByName(ctx context.Context) ([]models.Community, error) {
	s.mu.Lock()
	s.listCalls++
	s.mu.Unlock()
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *communityRepoStub) GetByID(ctx context.Context, id uint) (*models.Community, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("Community", id)
}

func (s *communityRepoStub) GetByName(ctx context.Context, name string) (*models.Community, error) {
	if s.getByNameFn != nil {
		return s.getByNameFn(ctx, name)
	}
	return nil, models.NewNotFoundError("Community", name)
}

func (s *communityRepoStub) Count(context.Context) (int64, error) {
	return 0, nil
}

type publisherStub struct {
	published []*models.Community
	err       error
}

func (p *publisherStub) PublishCommunityCreated(_ context.Context, c *models.Community) error {
	p.published = append(p.published, c)
	return p.err
}

type userRepoStub struct {
	byEmail    map[string]*models.User
	byUsername map[string]*models.User
	createFn   func(ctx context.Context, u *models.User) error
	updateFn   func(ctx context.Context, u *models.User) error
	nextID     uint
	updates    int
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{
		byEmail:    map[string]*models.User{},
		byUsername: map[string]*models.User{},
	}
}

func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *userRepoStub) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return s.byEmail[email], nil
}

func (s *userRepoStub) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return s.byUsername[username], nil
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, u)
	}
	s.nextID++
	u.ID = s.nextID
	s.byEmail[u.Email] = u
	s.byUsername[u.Username] = u
	return nil
}

func (s *userRepoStub) Update(ctx context.Context, u *models.User) error {
	s.updates++
	if s.updateFn != nil {
		return s.updateFn(ctx, u)
	}
	s.byEmail[u.Email] = u
	s.byUsername[u.Username] = u
	return nil
}
