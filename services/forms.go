package services

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validation = validator.New(validator.WithRequiredStructEnabled())

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

func init() {
	if err := validation.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := validation.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// fieldMessages are the human readable texts for validator tags.
var fieldMessages = map[string]string{
	"required": "This field is required.",
	"max":      "Ensure this value has fewer characters.",
	"email":    "Enter a valid email address.",
	"slug":     "Enter a valid slug consisting of letters, numbers, underscores or hyphens.",
	"username": "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.",
}

// validateStruct runs struct tag validation and converts failures into a ValidationError
// keyed by the form field names.
func validateStruct(v interface{}) *ValidationError {
	verr := &ValidationError{}
	err := validation.Struct(v)
	if err == nil {
		return verr
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		verr.Add("__all__", err.Error())
		return verr
	}
	for _, fe := range errs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "Enter a valid value."
		}
		verr.Add(formName(fe.StructField()), msg)
	}
	return verr
}

// formName maps Go field names onto snake_case form keys, e.g. PubDate -> pub_date.
func formName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// PostInput is the submitted post form.
type PostInput struct {
	Title       string `form:"title" validate:"required,max=256"`
	Text        string `form:"text" validate:"required"`
	PubDate     string `form:"pub_date" validate:"required"`
	IsPublished bool   `form:"is_published"`
	Category    string `form:"category"`
	Location    string `form:"location"`
}

// CommentInput is the submitted comment form.
type CommentInput struct {
	Text string `form:"text" validate:"required"`
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required"`
}

// ProfileInput is the edit-profile form.
type ProfileInput struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
	Bio       string `form:"bio" validate:"max=2000"`
}

// pubDateLayouts are accepted for pub_date; values are read as UTC.
var pubDateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// PubDateLayout formats dates for the datetime-local input.
const PubDateLayout = "2006-01-02T15:04"

func parsePubDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range pubDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseOptionalID reads a select box value; empty means no selection.
func parseOptionalID(raw string) (*uint, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return nil, false
	}
	id := uint(n)
	return &id, true
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

// CategoryInput is the staff category form.
type CategoryInput struct {
	Title       string `form:"title" validate:"required,max=256"`
	Description string `form:"description" validate:"required"`
	Slug        string `form:"slug" validate:"required,max=64,slug"`
	IsPublished bool   `form:"is_published"`
}

// LocationInput is the staff location form.
type LocationInput struct {
	Name        string `form:"name" validate:"required,max=256"`
	IsPublished bool   `form:"is_published"`
}
