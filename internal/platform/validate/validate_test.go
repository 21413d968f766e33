// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/forkful/internal/platform/apperr"
	"github.com/forkful/forkful/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "name", "Forkful", false},
		{"empty_string", "name", "", true},
		{"whitespace_only", "name", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_Lengths covers the MinLen/MaxLen rules, including multi-byte
runes counted as single characters.
*/
func TestValidator_Lengths(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		min      int
		max      int
		hasError bool
	}{
		{"within_bounds", "banh mi", 3, 20, false},
		{"too_short", "ab", 3, 20, true},
		{"too_long", "a very long recipe title", 3, 10, true},
		{"unicode_counted_as_runes", "phở bò", 3, 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.MinLen("title", tt.value, tt.min).MaxLen("title", tt.value, tt.max)

			assert.Equal(t, tt.hasError, v.HasErrors())
		})
	}
}

/*
TestValidator_OneOf checks the enumeration rule used for categories and
difficulties.
*/
func TestValidator_OneOf(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		hasError bool
	}{
		{"allowed_value", "dinner", false},
		{"unknown_value", "brunch", true},
		{"empty_value", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.OneOf("category", tt.value, "breakfast", "lunch", "dinner")

			assert.Equal(t, tt.hasError, v.HasErrors())
		})
	}
}

/*
TestValidator_Chaining verifies that multiple failures accumulate into one
VALIDATION_ERROR with per-field details.
*/
func TestValidator_Chaining(t *testing.T) {
	v := &validate.Validator{}
	v.Required("email", "").
		Required("password", "").
		MinLen("password", "", 8)

	err := v.Err()
	require.NotNil(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 3)
}
