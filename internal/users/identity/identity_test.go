// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package identity_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikhilrai1/lms/internal/platform/sec"
	"github.com/Nikhilrai1/lms/internal/users/identity"
)

/*
TestUser_EnrolledIn checks membership against the ordered course list.
*/
func TestUser_EnrolledIn(t *testing.T) {
	user := &identity.User{Courses: []identity.CourseRef{{CourseID: "c1"}, {CourseID: "c2"}}}

	assert.True(t, user.EnrolledIn("c2"))
	assert.False(t, user.EnrolledIn("c3"))
	assert.False(t, (&identity.User{}).EnrolledIn("c1"))
}

/*
TestUser_JSONNeverLeaksPassword guards the session snapshot shape.
*/
func TestUser_JSONNeverLeaksPassword(t *testing.T) {
	user := &identity.User{
		ID:           "u1",
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$secret",
		Role:         sec.RoleUser,
	}

	raw, err := json.Marshal(user.Public())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "u1", fields["_id"])
	assert.Equal(t, []any{}, fields["courses"])
	assert.NotContains(t, string(raw), "secret")
	assert.True(t, user.HasPassword())
	assert.False(t, user.Public().HasPassword())
}
