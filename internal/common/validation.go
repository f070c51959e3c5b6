package common

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidationError represents one failed rule
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ValidationRule checks a single string value and returns "" when it passes.
type ValidationRule func(value string) string

// Validator collects failures across fields
type Validator struct {
	errors []ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field applies rules to value; every failing rule is recorded.
func (v *Validator) Field(name, value string, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if msg := rule(value); msg != "" {
			v.errors = append(v.errors, ValidationError{Field: name, Message: msg})
		}
	}
	return v
}

func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Err returns an INVALID_INPUT AppError joining every failure, or nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	messages := make([]string, 0, len(v.errors))
	for _, e := range v.errors {
		messages = append(messages, e.Error())
	}
	return InvalidInput(strings.Join(messages, "; "))
}

func Required(value string) string {
	if strings.TrimSpace(value) == "" {
		return "is required"
	}
	return ""
}

func MaxLength(max int) ValidationRule {
	return func(value string) string {
		if utf8.RuneCountInString(value) > max {
			return fmt.Sprintf("must be at most %d characters", max)
		}
		return ""
	}
}

func UUID(value string) string {
	if _, err := uuid.Parse(value); err != nil {
		return "must be a valid UUID"
	}
	return ""
}
