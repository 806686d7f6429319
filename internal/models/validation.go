package models

import (
	"fmt"
	"strings"
)

// Column lengths of the persisted text fields
const (
	AdditionalValueMaxLength   = 2048
	AdditionalInfoMaxLength    = 2048
	AdditionalInfoURIMaxLength = 64
	IDLength                   = 32
)

// FieldError describes a single invalid field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of a record
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) merge(prefix string, other error) {
	if other == nil {
		return
	}
	if v, ok := other.(*ValidationError); ok {
		for _, f := range v.Fields {
			e.Fields = append(e.Fields, FieldError{Field: prefix + f.Field, Message: f.Message})
		}
		return
	}
	e.add(prefix, "%v", other)
}

// orNil returns nil when nothing was collected, so callers can return it as an error
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func checkLength(errs *ValidationError, field, value string, max int) {
	if n := len([]rune(value)); n > max {
		errs.add(field, "must be at most %d characters, got %d", max, n)
	}
}
