package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/utils"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	user, err := f.svc.Register(f.ctx, RegisterInput{
		Username:  "new.user",
		Email:     "new@example.com",
		Password1: "correct-horse",
		Password2: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	assert.True(t, utils.CheckPassword(user.PasswordHash, "correct-horse"))

	logged, err := f.svc.Authenticate(f.ctx, "new.user", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	f.fx.User("taken", false)

	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing username", RegisterInput{Password1: "abcdefgh1", Password2: "abcdefgh1"}, "username"},
		{"bad characters", RegisterInput{Username: "no spaces!", Password1: "abcdefgh1", Password2: "abcdefgh1"}, "username"},
		{"too long", RegisterInput{Username: strings.Repeat("a", 151), Password1: "abcdefgh1", Password2: "abcdefgh1"}, "username"},
		{"duplicate", RegisterInput{Username: "Taken", Password1: "abcdefgh1", Password2: "abcdefgh1"}, "username"},
		{"mismatch", RegisterInput{Username: "fresh", Password1: "abcdefgh1", Password2: "abcdefgh2"}, "password2"},
		{"too short", RegisterInput{Username: "fresh", Password1: "abc1", Password2: "abc1"}, "password2"},
		{"numeric", RegisterInput{Username: "fresh", Password1: "1234567890", Password2: "1234567890"}, "password2"},
		{"same as username", RegisterInput{Username: "freshuser", Password1: "FreshUser", Password2: "FreshUser"}, "password2"},
		{"bad email", RegisterInput{Username: "fresh", Email: "nope", Password1: "abcdefgh1", Password2: "abcdefgh1"}, "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Register(f.ctx, tc.in)
			assert.Contains(t, FieldErrors(err), tc.field)
		})
	}

	var count int64
	require.NoError(t, f.svc.DB().Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.fx.User("alice", false)

	_, err := f.svc.Authenticate(f.ctx, "alice", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Authenticate(f.ctx, "nobody", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Authenticate(f.ctx, "alice", "s3cret-pass")
	assert.NoError(t, err)
}

func TestEditProfileTargetsViewerOnly(t *testing.T) {
	f := newFixture(t)
	alice := f.fx.User("alice", false)
	f.fx.User("bob", false)

	updated, err := f.svc.EditProfile(f.ctx, viewerOf(alice), ProfileInput{
		FirstName: "Alice",
		LastName:  "Liddell",
		Username:  "alice_l",
		Email:     "alice@wonder.land",
		Bio:       "Down the rabbit hole",
	})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, updated.ID)
	assert.Equal(t, "Alice Liddell", updated.FullName())

	stored, err := f.svc.User(f.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice_l", stored.Username)
	assert.Equal(t, "Down the rabbit hole", stored.Bio)

	_, err = f.svc.EditProfile(f.ctx, viewerOf(alice), ProfileInput{Username: "bob"})
	assert.Contains(t, FieldErrors(err), "username")

	_, err = f.svc.EditProfile(f.ctx, viewerOf(alice), ProfileInput{Username: "alice_l", Email: "broken"})
	assert.Contains(t, FieldErrors(err), "email")

	_, err = f.svc.EditProfile(f.ctx, Anonymous, ProfileInput{Username: "ghost"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestFindOrCreateOAuthUser(t *testing.T) {
	f := newFixture(t)
	f.fx.User("octocat", false)

	identity := OAuthIdentity{Provider: "github", ID: "42", Username: "OctoCat", DisplayName: "Mona Lisa", Email: "mona@example.com"}
	user, err := f.svc.FindOrCreateOAuthUser(f.ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, "octocat_1", user.Username)
	assert.Equal(t, "Mona", user.FirstName)
	assert.Equal(t, "Lisa", user.LastName)

	identity.Email = "new@example.com"
	again, err := f.svc.FindOrCreateOAuthUser(f.ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	stored, err := f.svc.User(f.ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", stored.Email)

	_, err = f.svc.Authenticate(f.ctx, "octocat_1", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "jane.doe", sanitizeUsername("Jane.Doe@gmail.com"))
	assert.Equal(t, "mona_lisa", sanitizeUsername(" Mona Lisa "))
	assert.Equal(t, "", sanitizeUsername("！！"))
}
