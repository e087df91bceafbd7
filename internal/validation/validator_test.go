package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommunityForm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		form      CommunityForm
		wantField string
		wantMsg   string
	}{
		{name: "valid", form: CommunityForm{Name: "golang", Description: "gophers"}},
		{name: "minimum length", form: CommunityForm{Name: "abc"}},
		{name: "maximum length", form: CommunityForm{Name: strings.Repeat("a", 100)}},
		{name: "multibyte counts runes", form: CommunityForm{Name: strings.Repeat("é", 100)}},
		{name: "description at limit", form: CommunityForm{Name: "abc", Description: strings.Repeat("d", 255)}},
		{
			name:      "missing name",
			form:      CommunityForm{},
			wantField: "name",
			wantMsg:   "This field is required.",
		},
		{
			name:      "too short",
			form:      CommunityForm{Name: "ab"},
			wantField: "name",
			wantMsg:   "Field must be between 3 and 100 characters long.",
		},
		{
			name:      "too long",
			form:      CommunityForm{Name: strings.Repeat("a", 101)},
			wantField: "name",
			wantMsg:   "Field must be between 3 and 100 characters long.",
		},
		{
			name:      "description too long",
			form:      CommunityForm{Name: "abc", Description: strings.Repeat("d", 256)},
			wantField: "description",
			wantMsg:   "Field cannot be longer than 255 characters.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := Struct(&tc.form)
			if tc.wantField == "" {
				assert.Nil(t, errs)
				return
			}
			assert.Equal(t, tc.wantMsg, errs[tc.wantField])
		})
	}
}

func TestCommunityForm_NormalizeTrimsBeforeLength(t *testing.T) {
	form := CommunityForm{Name: "   ab   "}
	form.Normalize()
	assert.Equal(t, "ab", form.Name)
	assert.Contains(t, Struct(&form), "name")
}

func TestRegisterForm(t *testing.T) {
	t.Parallel()

	valid := RegisterForm{Username: "gopher_1", Email: "gopher@example.com", Password: "supersecret"}
	assert.Nil(t, Struct(&valid))

	bad := RegisterForm{Username: "bad name!", Email: "not-an-email", Password: "short"}
	errs := Struct(&bad)
	assert.Equal(t, "Only letters, numbers, underscores and hyphens are allowed.", errs["username"])
	assert.Equal(t, "Invalid email address.", errs["email"])
	assert.Equal(t, "Field must be between 8 and 128 characters long.", errs["password"])
	assert.NotEmpty(t, errs.Error())
}

func TestLoginForm_Normalize(t *testing.T) {
	form := LoginForm{Email: "  Gopher@Example.COM ", Password: "x"}
	form.Normalize()
	assert.Equal(t, "gopher@example.com", form.Email)
	assert.Nil(t, Struct(&form))
}

func TestPostForm(t *testing.T) {
	t.Parallel()

	ok := PostForm{Title: "  Hello  ", CommunityID: 1}
	ok.Normalize()
	assert.Equal(t, "Hello", ok.Title)
	assert.Nil(t, Struct(&ok))

	errs := Struct(&PostForm{Title: strings.Repeat("t", 301)})
	assert.Equal(t, "Field cannot be longer than 300 characters.", errs["title"])
	assert.Equal(t, "This field is required.", errs["community_id"])

	blank := PostForm{Title: "   ", CommunityID: 1}
	blank.Normalize()
	assert.Equal(t, "This field is required.", Struct(&blank)["title"])
}

func TestPostUpdateForm_OnlyChecksPresentFields(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Struct(&PostUpdateForm{}))

	empty := ""
	long := strings.Repeat("t", 301)
	assert.Contains(t, Struct(&PostUpdateForm{Title: &empty}), "title")
	assert.Equal(t, "Field must be between 1 and 300 characters long.", Struct(&PostUpdateForm{Title: &long})["title"])

	content := "  body  "
	form := PostUpdateForm{Content: &content}
	form.Normalize()
	assert.Equal(t, "body", *form.Content)
	assert.Nil(t, Struct(&form))
}

func TestCommentForm(t *testing.T) {
	t.Parallel()

	errs := Struct(&CommentForm{})
	assert.Equal(t, "This field is required.", errs["content"])
	assert.Equal(t, "This field is required.", errs["post_id"])
	assert.Nil(t, Struct(&CommentForm{Content: "nice", PostID: 3}))
}

func TestVoteForm(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"like", "dislike", "none"} {
		f := VoteForm{Type: in}
		f.Normalize()
		assert.Nil(t, Struct(&f), in)
	}

	remove := VoteForm{Type: " Remove "}
	remove.Normalize()
	assert.Equal(t, "none", remove.Type)

	errs := Struct(&VoteForm{Type: "upvote"})
	assert.Equal(t, "Must be one of: like, dislike, none, remove.", errs["type"])
}

func TestProfileAndPasswordForms(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Struct(&ProfileForm{}))
	long := strings.Repeat("b", 501)
	assert.Equal(t, "Field cannot be longer than 500 characters.", Struct(&ProfileForm{Bio: &long})["bio"])

	errs := Struct(&ChangePasswordForm{CurrentPassword: "old", NewPassword: "newpassword", ConfirmNewPassword: "different"})
	assert.Equal(t, "Passwords do not match.", errs["confirm_new_password"])

	errs = Struct(&ChangePasswordForm{CurrentPassword: "old", NewPassword: "short", ConfirmNewPassword: "short"})
	assert.Equal(t, "Field must be between 8 and 128 characters long.", errs["new_password"])
}
