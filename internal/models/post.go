package models

import "time"

// Vote types stored on PostLike and CommentLike rows.
const (
	VoteLike    = "like"
	VoteDislike = "dislike"
	// VoteNone clears the caller's vote. It is never stored.
	VoteNone = "none"
)

// Post is a titled submission inside a community.
// LikeCount and DislikeCount are recomputed from the vote rows on every vote.
type Post struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"size:300;not null" json:"title"`
	Content      string     `gorm:"type:text" json:"content"`
	LikeCount    int        `gorm:"not null;default:0" json:"like_count"`
	DislikeCount int        `gorm:"not null;default:0" json:"dislike_count"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	Author       *User      `gorm:"foreignKey:UserID" json:"author,omitempty"`
	CommunityID  uint       `gorm:"not null;index" json:"community_id"`
	Community    *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// Score is likes minus dislikes.
func (p *Post) Score() int {
	return p.LikeCount - p.DislikeCount
}

// Comment is a reply to a post.
type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	LikeCount    int       `gorm:"not null;default:0" json:"like_count"`
	DislikeCount int       `gorm:"not null;default:0" json:"dislike_count"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Author       *User     `gorm:"foreignKey:UserID" json:"author,omitempty"`
	PostID       uint      `gorm:"not null;index" json:"post_id"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}

// Score is likes minus dislikes.
func (c *Comment) Score() int {
	return c.LikeCount - c.DislikeCount
}

// PostLike is one user's vote on one post.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"size:10;not null" json:"type"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PostLike) TableName() string {
	return "post_likes"
}

// CommentLike is one user's vote on one comment.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"size:10;not null" json:"type"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_likes_user_comment" json:"user_id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_likes_user_comment;index" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CommentLike) TableName() string {
	return "comment_likes"
}

// PostView is the public JSON shape of a post.
type PostView struct {
	ID           uint              `json:"id"`
	Title        string            `json:"title"`
	Content      string            `json:"content"`
	LikeCount    int               `json:"like_count"`
	DislikeCount int               `json:"dislike_count"`
	Score        int               `json:"score"`
	UserID       uint              `json:"user_id"`
	CommunityID  uint              `json:"community_id"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Author       *UserSummary      `json:"author,omitempty"`
	Community    *CommunitySummary `json:"community,omitempty"`
}

// NewPostView converts p to its public shape.
func NewPostView(p *Post) PostView {
	v := PostView{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		LikeCount:    p.LikeCount,
		DislikeCount: p.DislikeCount,
		Score:        p.Score(),
		UserID:       p.UserID,
		CommunityID:  p.CommunityID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Author:       summarize(p.Author),
	}
	if p.Community != nil {
		v.Community = &CommunitySummary{ID: p.Community.ID, Name: p.Community.Name}
	}
	return v
}

// NewPostViews converts a list, preserving order.
func NewPostViews(list []Post) []PostView {
	out := make([]PostView, 0, len(list))
	for i := range list {
		out = append(out, NewPostView(&list[i]))
	}
	return out
}

// CommentView is the public JSON shape of a comment.
type CommentView struct {
	ID           uint         `json:"id"`
	Content      string       `json:"content"`
	LikeCount    int          `json:"like_count"`
	DislikeCount int          `json:"dislike_count"`
	Score        int          `json:"score"`
	UserID       uint         `json:"user_id"`
	PostID       uint         `json:"post_id"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Author       *UserSummary `json:"author,omitempty"`
}

// NewCommentView converts c to its public shape.
func NewCommentView(c *Comment) CommentView {
	return CommentView{
		ID:           c.ID,
		Content:      c.Content,
		LikeCount:    c.LikeCount,
		DislikeCount: c.DislikeCount,
		Score:        c.Score(),
		UserID:       c.UserID,
		PostID:       c.PostID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Author:       summarize(c.Author),
	}
}

// NewCommentViews converts a list, preserving order.
func NewCommentViews(list []Comment) []CommentView {
	out := make([]CommentView, 0, len(list))
	for i := range list {
		out = append(out, NewCommentView(&list[i]))
	}
	return out
}
