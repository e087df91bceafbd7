// Package seed populates the database with demo users, communities, posts, comments and votes.
// It is intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"forum/internal/cache"
	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded user can log in with.
const DefaultPassword = "password123"

const batchSize = 100

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	NumCommunities int
	NumPosts       int
	NumComments    int
	// NumVotes is capped at one vote per user and post.
	NumVotes    int
	ShouldClean bool
	// Seed makes the generated data reproducible. Zero picks a random seed.
	Seed int64
}

// Result reports what was written.
type Result struct {
	Users       []models.User
	Communities []models.Community
	Posts       []models.Post
	Comments    []models.Comment
	Votes       []models.PostLike
}

// Seeder builds fake rows with gofakeit and persists them through GORM.
type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	cost  int
}

// NewSeeder creates a Seeder. A zero seed produces different data on every run.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	return &Seeder{db: db, faker: gofakeit.New(seed), cost: bcrypt.DefaultCost}
}

// Run clears (optionally) and fills the database according to opts.
func Run(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	s := NewSeeder(db, opts.Seed)
	if opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	users, err := s.SeedUsers(ctx, opts.NumUsers)
	if err != nil {
		return nil, err
	}
	communities, err := s.SeedCommunities(ctx, users, opts.NumCommunities)
	if err != nil {
		return nil, err
	}
	posts, err := s.SeedPosts(ctx, users, communities, opts.NumPosts)
	if err != nil {
		return nil, err
	}
	comments, err := s.SeedComments(ctx, users, posts, opts.NumComments)
	if err != nil {
		return nil, err
	}
	votes, err := s.SeedVotes(ctx, users, posts, opts.NumVotes)
	if err != nil {
		return nil, err
	}

	cache.InvalidateCommunityList(ctx)

	middleware.Logger.InfoContext(ctx, "seed complete",
		"users", len(users), "communities", len(communities),
		"posts", len(posts), "comments", len(comments), "votes", len(votes))
	return &Result{Users: users, Communities: communities, Posts: posts, Comments: comments, Votes: votes}, nil
}

// ClearAll removes every row, children first, and drops cached community lookups.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped()
	for _, step := range []struct {
		name  string
		model interface{}
	}{
		{"comment likes", &models.CommentLike{}},
		{"post likes", &models.PostLike{}},
		{"comments", &models.Comment{}},
		{"posts", &models.Post{}},
		{"communities", &models.Community{}},
		{"users", &models.User{}},
	} {
		if err := tx.Delete(step.model).Error; err != nil {
			return fmt.Errorf("clear %s: %w", step.name, err)
		}
	}
	cache.InvalidateAllCommunities(ctx)
	return nil
}

// SeedUsers creates n users sharing DefaultPassword.
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]models.User, error) {
	if n <= 0 {
		return nil, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		username := s.username(i)
		users = append(users, models.User{
			Username: username,
			Email:    strings.ToLower(username) + "@example.com",
			Password: string(hash),
		})
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&users, batchSize).Error; err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	return users, nil
}

// SeedCommunities creates n uniquely named communities owned by random users.
func (s *Seeder) SeedCommunities(ctx context.Context, users []models.User, n int) ([]models.Community, error) {
	if n <= 0 {
		return nil, nil
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("seed communities: no users to own them")
	}

	seen := make(map[string]struct{}, n)
	communities := make([]models.Community, 0, n)
	for len(communities) < n {
		name := s.communityName(len(communities), seen)
		owner := users[s.faker.Number(0, len(users)-1)]

		form := validation.CommunityForm{Name: name, Description: s.description()}
		form.Normalize()
		if fieldErrs := validation.Struct(&form); fieldErrs != nil {
			continue
		}

		communities = append(communities, models.Community{
			Name:        form.Name,
			Description: form.Description,
			UserID:      owner.ID,
		})
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&communities, batchSize).Error; err != nil {
		return nil, fmt.Errorf("create communities: %w", err)
	}
	return communities, nil
}

// SeedPosts creates n posts by random users in random communities.
func (s *Seeder) SeedPosts(ctx context.Context, users []models.User, communities []models.Community, n int) ([]models.Post, error) {
	if n <= 0 {
		return nil, nil
	}
	if len(users) == 0 || len(communities) == 0 {
		return nil, fmt.Errorf("seed posts: need users and communities")
	}

	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		title := strings.TrimSuffix(s.faker.Sentence(s.faker.Number(3, 9)), ".")
		if len(title) > 300 {
			title = strings.TrimSpace(title[:300])
		}
		posts = append(posts, models.Post{
			Title:       title,
			Content:     s.faker.Paragraph(1, 3, 12, " "),
			UserID:      users[s.faker.Number(0, len(users)-1)].ID,
			CommunityID: communities[s.faker.Number(0, len(communities)-1)].ID,
		})
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&posts, batchSize).Error; err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	return posts, nil
}

// SeedComments creates n comments by random users on random posts.
func (s *Seeder) SeedComments(ctx context.Context, users []models.User, posts []models.Post, n int) ([]models.Comment, error) {
	if n <= 0 {
		return nil, nil
	}
	if len(users) == 0 || len(posts) == 0 {
		return nil, fmt.Errorf("seed comments: need users and posts")
	}

	comments := make([]models.Comment, 0, n)
	for i := 0; i < n; i++ {
		comments = append(comments, models.Comment{
			Content: s.faker.Sentence(s.faker.Number(4, 20)),
			UserID:  users[s.faker.Number(0, len(users)-1)].ID,
			PostID:  posts[s.faker.Number(0, len(posts)-1)].ID,
		})
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&comments, batchSize).Error; err != nil {
		return nil, fmt.Errorf("create comments: %w", err)
	}
	return comments, nil
}

// SeedVotes casts up to n distinct (user, post) votes, roughly three likes to one
// dislike, and writes the resulting counters onto the posts.
func (s *Seeder) SeedVotes(ctx context.Context, users []models.User, posts []models.Post, n int) ([]models.PostLike, error) {
	if n <= 0 || len(users) == 0 || len(posts) == 0 {
		return nil, nil
	}
	if limit := len(users) * len(posts); n > limit {
		n = limit
	}

	type pair struct{ user, post int }
	seen := make(map[pair]struct{}, n)
	votes := make([]models.PostLike, 0, n)
	for len(votes) < n {
		p := pair{s.faker.Number(0, len(users)-1), s.faker.Number(0, len(posts)-1)}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}

		voteType := models.VoteLike
		if s.faker.Number(1, 4) == 1 {
			voteType = models.VoteDislike
		}
		votes = append(votes, models.PostLike{Type: voteType, UserID: users[p.user].ID, PostID: posts[p.post].ID})
		if voteType == models.VoteLike {
			posts[p.post].LikeCount++
		} else {
			posts[p.post].DislikeCount++
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&votes, batchSize).Error; err != nil {
			return fmt.Errorf("create votes: %w", err)
		}
		for i := range posts {
			if posts[i].LikeCount == 0 && posts[i].DislikeCount == 0 {
				continue
			}
			if err := tx.Model(&posts[i]).UpdateColumns(map[string]interface{}{
				"like_count":    posts[i].LikeCount,
				"dislike_count": posts[i].DislikeCount,
			}).Error; err != nil {
				return fmt.Errorf("update vote counts: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return votes, nil
}

// username returns a valid, unique handle. The index suffix guarantees uniqueness.
func (s *Seeder) username(i int) string {
	base := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-') {
			return r
		}
		return -1
	}, s.faker.Username())
	if len(base) > 48 {
		base = base[:48]
	}
	if base == "" {
		base = "user"
	}
	return fmt.Sprintf("%s_%d", base, i+1)
}

func (s *Seeder) communityName(i int, seen map[string]struct{}) string {
	name := capitalize(s.faker.Adjective()) + capitalize(s.faker.Noun())
	if len(name) > 90 {
		name = name[:90]
	}
	if _, dup := seen[name]; dup || len(name) < 3 {
		name = fmt.Sprintf("%s%d", name, i+1)
	}
	seen[name] = struct{}{}
	return name
}

func (s *Seeder) description() string {
	d := s.faker.Sentence(12)
	if len(d) > 255 {
		d = strings.TrimSpace(d[:255])
	}
	return d
}

func capitalize(w string) string {
	w = strings.TrimSpace(w)
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
