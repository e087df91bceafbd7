package validation

import "strings"

// CommunityForm is the input for creating a community, shared by the HTML form and the JSON API.
type CommunityForm struct {
	Name        string `form:"name" json:"name" validate:"required,min=3,max=100"`
	Description string `form:"description" json:"description" validate:"max=255"`
}

// Normalize trims surrounding whitespace before validation.
func (f *CommunityForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
}

// RegisterForm is the input for creating an account.
type RegisterForm struct {
	Username string `form:"username" json:"username" validate:"required,min=3,max=64,username"`
	Email    string `form:"email" json:"email" validate:"required,email,max=255"`
	Password string `form:"password" json:"password" validate:"required,min=8,max=128"`
}

// Normalize trims the username and lowercases the email.
func (f *RegisterForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
}

// LoginForm is the input for signing in.
type LoginForm struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

// Normalize lowercases the email.
func (f *LoginForm) Normalize() {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
}

// PostForm is the input for creating a post in a community.
type PostForm struct {
	Title       string `form:"title" json:"title" validate:"required,max=300"`
	Content     string `form:"content" json:"content" validate:"max=50000"`
	CommunityID uint   `form:"community_id" json:"community_id" validate:"required"`
}

// Normalize trims the title and content.
func (f *PostForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Content = strings.TrimSpace(f.Content)
}

// PostUpdateForm replaces only the fields that are present.
type PostUpdateForm struct {
	Title   *string `form:"title" json:"title" validate:"omitnil,min=1,max=300"`
	Content *string `form:"content" json:"content" validate:"omitnil,max=50000"`
}

// Normalize trims whichever fields were sent.
func (f *PostUpdateForm) Normalize() {
	trimPtr(f.Title)
	trimPtr(f.Content)
}

// CommentForm is the input for replying to a post.
type CommentForm struct {
	Content string `form:"content" json:"content" validate:"required,max=10000"`
	PostID  uint   `form:"post_id" json:"post_id" validate:"required"`
}

// Normalize trims the content.
func (f *CommentForm) Normalize() {
	f.Content = strings.TrimSpace(f.Content)
}

// VoteForm casts, switches or clears a vote. "remove" is accepted as an alias of "none".
type VoteForm struct {
	Type string `form:"type" json:"type" validate:"required,oneof=like dislike none remove"`
}

// Normalize lowercases the type and folds "remove" into "none".
func (f *VoteForm) Normalize() {
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	if f.Type == "remove" {
		f.Type = "none"
	}
}

// ProfileForm updates the caller's profile. A nil Bio leaves it untouched.
type ProfileForm struct {
	Bio *string `form:"bio" json:"bio" validate:"omitnil,max=500"`
}

// Normalize trims the bio when present.
func (f *ProfileForm) Normalize() {
	trimPtr(f.Bio)
}

// ChangePasswordForm replaces the caller's password after re-checking the current one.
type ChangePasswordForm struct {
	CurrentPassword    string `form:"current_password" json:"current_password" validate:"required"`
	NewPassword        string `form:"new_password" json:"new_password" validate:"required,min=8,max=128"`
	ConfirmNewPassword string `form:"confirm_new_password" json:"confirm_new_password" validate:"required,eqfield=NewPassword"`
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
