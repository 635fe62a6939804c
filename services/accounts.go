package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const minPasswordLength = 8

// Register creates a local account from the sign-up form.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	trimAll(&in.Username, &in.Email)
	verr := validateStruct(in)

	if in.Password1 != "" && in.Password2 != "" && in.Password1 != in.Password2 {
		verr.Add("password2", "The two password fields didn’t match.")
	}
	if in.Password1 != "" {
		if msg := checkPassword(in.Password1, in.Username); msg != "" {
			verr.Add("password2", msg)
		}
	}
	if _, ok := verr.Fields["username"]; !ok {
		taken, err := s.usernameTaken(ctx, in.Username, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			verr.Add("username", "A user with that username already exists.")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password1)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// checkPassword applies the password strength rules and returns the first complaint.
func checkPassword(password, username string) string {
	switch {
	case len([]rune(password)) < minPasswordLength:
		return fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength)
	case strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0:
		return "This password is entirely numeric."
	case username != "" && strings.EqualFold(password, username):
		return "The password is too similar to the username."
	}
	return ""
}

// usernameTaken reports whether another user (not exceptID) already uses username.
func (s *Service) usernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().Model(&models.User{}).
		Where("LOWER(username) = LOWER(?) AND id <> ?", username, exceptID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return count > 0, nil
}

// Authenticate checks a username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := FindOrFail[models.User](ctx, s.db, "username = ?", strings.TrimSpace(username))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// User loads a user by id.
func (s *Service) User(ctx context.Context, id uint) (*models.User, error) {
	return FindOrFail[models.User](ctx, s.db, id)
}

// EditProfile updates the profile of the viewer. There is no way to address another user.
func (s *Service) EditProfile(ctx context.Context, viewer Viewer, in ProfileInput) (*models.User, error) {
	if !viewer.IsAuthenticated() {
		return nil, ErrForbidden
	}
	user, err := s.User(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}

	trimAll(&in.FirstName, &in.LastName, &in.Username, &in.Email, &in.Bio)
	verr := validateStruct(in)
	if _, ok := verr.Fields["username"]; !ok {
		taken, err := s.usernameTaken(ctx, in.Username, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			verr.Add("username", "A user with that username already exists.")
		}
	}
	if err := verr.OrNil(); err != nil {
		return user, err
	}

	err = s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"first_name": in.FirstName,
		"last_name":  in.LastName,
		"username":   in.Username,
		"email":      in.Email,
		"bio":        in.Bio,
	}).Error
	if err != nil {
		return user, fmt.Errorf("update profile: %w", err)
	}
	user.FirstName, user.LastName, user.Username, user.Email, user.Bio = in.FirstName, in.LastName, in.Username, in.Email, in.Bio
	s.invalidate()
	return user, nil
}

// OAuthIdentity is what a provider tells us about a signed-in account.
type OAuthIdentity struct {
	Provider    string
	ID          string
	Username    string
	DisplayName string
	Email       string
}

// FindOrCreateOAuthUser returns the local user linked to identity, creating it on first login.
func (s *Service) FindOrCreateOAuthUser(ctx context.Context, identity OAuthIdentity) (*models.User, error) {
	if identity.Provider == "" || identity.ID == "" {
		return nil, errors.New("oauth identity without provider id")
	}
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("provider = ? AND provider_id = ?", identity.Provider, identity.ID).First(&user).Error
	switch {
	case err == nil:
		if email := strings.TrimSpace(identity.Email); email != "" && email != user.Email {
			if err := db.Model(&user).Update("email", email).Error; err != nil {
				return nil, fmt.Errorf("refresh oauth user: %w", err)
			}
		}
		return &user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("find oauth user: %w", err)
	}

	username, err := s.uniqueUsername(ctx, identity)
	if err != nil {
		return nil, err
	}
	first, last, _ := strings.Cut(strings.TrimSpace(identity.DisplayName), " ")
	user = models.User{
		Username:   username,
		FirstName:  first,
		LastName:   strings.TrimSpace(last),
		Email:      strings.TrimSpace(identity.Email),
		Provider:   identity.Provider,
		ProviderID: identity.ID,
	}
	if err := db.Omit(clause.Associations).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create oauth user: %w", err)
	}
	return &user, nil
}

// uniqueUsername derives a free username from the provider's suggestion.
func (s *Service) uniqueUsername(ctx context.Context, identity OAuthIdentity) (string, error) {
	base := sanitizeUsername(identity.Username)
	if base == "" {
		base = sanitizeUsername(identity.Provider + "_" + identity.ID)
	}
	if base == "" {
		base = "user"
	}
	if len(base) > 140 {
		base = base[:140]
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		taken, err := s.usernameTaken(ctx, candidate, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d", base, suffix)
	}
}

// sanitizeUsername keeps only characters allowed in usernames.
func sanitizeUsername(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if at := strings.IndexByte(input, '@'); at > 0 {
		input = input[:at]
	}
	var builder strings.Builder
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '+', r == '-':
			builder.WriteRune(r)
		case r == '_' || r == ' ':
			builder.WriteRune('_')
		}
	}
	return strings.Trim(builder.String(), "_.")
}
