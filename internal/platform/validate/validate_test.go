// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikhilrai1/lms/internal/platform/apperr"
	"github.com/Nikhilrai1/lms/internal/platform/validate"
)

type registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

/*
TestStruct_ReportsJSONFieldNames checks tag failures surface under their JSON names.
*/
func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := validate.Struct(registration{Name: "Ada", Email: "not-an-email", Password: "123"})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.KindValidation, ae.Kind)

	fields := map[string]string{}
	for _, detail := range ae.Details {
		fields[detail.Field] = detail.Message
	}
	assert.Equal(t, "Must be a valid email address", fields["email"])
	assert.Equal(t, "Minimum 6 characters", fields["password"])
	assert.NotContains(t, fields, "name")

	assert.NoError(t, validate.Struct(registration{Name: "Ada", Email: "ada@example.com", Password: "secret"}))
}

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		hasError bool
	}{
		{"valid_string", "Go basics", false},
		{"empty_string", "", true},
		{"whitespace_only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required("name", tt.value)

			if !tt.hasError {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
				return
			}
			ae := apperr.As(v.Err())
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			assert.Equal(t, "name", ae.Details[0].Field)
		})
	}
}

/*
TestValidator_Chain collects several failures in order.
*/
func TestValidator_Chain(t *testing.T) {
	err := (&validate.Validator{}).
		Email("email", "nope").
		MinLen("password", "abc", 6).
		MaxLen("name", "abcdef", 3).
		NonNegative("price", -1).
		Custom("level", true, "Unknown level").
		Err()

	ae := apperr.As(err)
	require.NotNil(t, ae)
	require.Len(t, ae.Details, 5)
	assert.Equal(t, "email", ae.Details[0].Field)
	assert.Equal(t, "Unknown level", ae.Details[4].Message)
}
