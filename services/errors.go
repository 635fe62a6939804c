package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound covers both missing records and records the viewer may not see.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the viewer may not mutate the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned by Authenticate for unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("please enter a correct username and password")
)

// ValidationError carries per-field messages for re-rendering a form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has a message.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns e as an error only when it holds messages.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// FieldErrors extracts the field messages from err, if it is a validation failure.
func FieldErrors(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
