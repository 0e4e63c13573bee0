package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryInUse      = errors.New("category still has recipes")
	ErrInvalidIngredients = errors.New("invalid ingredients format")
	ErrImageNotFound      = errors.New("image not found")
)

// ValidationError collects field level validation failures.
// It is surfaced to clients verbatim.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError with a single failing field
func NewValidationError(field, reason string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, reason)
	return v
}

// Add records reason for field, keeping the first reason reported per field
func (v *ValidationError) Add(field, reason string) {
	if v.Fields == nil {
		v.Fields = make(map[string]string)
	}
	if _, exists := v.Fields[field]; !exists {
		v.Fields[field] = reason
	}
}

// HasErrors reports whether any field failed
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}

// Err returns v as an error when it holds failures, nil otherwise
func (v *ValidationError) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Fields))
	for field := range v.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, v.Fields[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
