package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLeadNotFound is matched by every NotFoundError.
var ErrLeadNotFound = errors.New("lead not found")

type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("lead %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrLeadNotFound
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every failed intake field.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Fields maps field names to messages for JSON responses.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		out[e.Field] = e.Message
	}
	return out
}

func IsValidationError(err error) bool {
	var v ValidationErrors
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrLeadNotFound)
}
