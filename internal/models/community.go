package models

import "time"

// Community is a named discussion group owned by the user who created it.
// Names are unique; rows are only ever inserted.
type Community struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Creator     *User     `gorm:"foreignKey:UserID" json:"creator,omitempty"`
}

// TableName specifies the table name for GORM.
func (Community) TableName() string {
	return "communities"
}

// CreatorSummary returns the creator's public fields, or nil if the relation was not loaded.
func (c *Community) CreatorSummary() *UserSummary {
	return summarize(c.Creator)
}

// CommunitySummary is the community reference embedded in post responses.
type CommunitySummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// CommunityView is the public JSON shape of a community.
type CommunityView struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
	UserID      uint         `json:"user_id"`
	Creator     *UserSummary `json:"creator,omitempty"`
}

// NewCommunityView converts c to its public shape.
func NewCommunityView(c *Community) CommunityView {
	return CommunityView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UserID:      c.UserID,
		Creator:     c.CreatorSummary(),
	}
}

// NewCommunityViews converts a list, preserving order.
func NewCommunityViews(list []Community) []CommunityView {
	out := make([]CommunityView, 0, len(list))
	for i := range list {
		out = append(out, NewCommunityView(&list[i]))
	}
	return out
}
