package model

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrValidation matches every error produced by a Rule.
var ErrValidation = errors.New("validation failed")

// ValidationError reports one failed rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Rule checks one aspect of a record's fields.
type Rule func(fields map[string]interface{}) error

// Required fails when field is missing, nil or an empty string.
func Required(field string) Rule {
	return func(fields map[string]interface{}) error {
		v, ok := fields[field]
		if !ok || v == nil {
			return &ValidationError{Field: field, Message: "is required"}
		}
		if s, isString := v.(string); isString && s == "" {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
}

// Length bounds the number of characters in a string field. A maxLen of 0
// leaves the length unbounded above. Missing or nil values pass; combine
// with Required to reject them.
func Length(field string, minLen, maxLen int) Rule {
	return func(fields map[string]interface{}) error {
		v, ok := fields[field]
		if !ok || v == nil {
			return nil
		}
		s, isString := v.(string)
		if !isString {
			return &ValidationError{Field: field, Message: fmt.Sprintf("must be a string, got %T", v)}
		}
		n := utf8.RuneCountInString(s)
		if n < minLen {
			return &ValidationError{Field: field, Message: fmt.Sprintf("is too short (minimum is %d characters)", minLen)}
		}
		if maxLen > 0 && n > maxLen {
			return &ValidationError{Field: field, Message: fmt.Sprintf("is too long (maximum is %d characters)", maxLen)}
		}
		return nil
	}
}

// Validate runs every rule of the schema against rec and joins the failures.
func (s *Schema) Validate(rec *Record) error {
	var errs []error
	for _, rule := range s.rules {
		if err := rule(rec.Fields); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
