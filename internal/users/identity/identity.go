// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

/*
Package identity holds the user entity shared by the auth gate, the session
lifecycle and the course read path.

# Architecture

This package is a leaf: it depends only on platform primitives so that
middleware and every domain package can import it without cycles. The JSON
shape of [User] is the session snapshot stored in the cache and the body of
the profile endpoints.
*/
package identity

import (
	"errors"
	"slices"
	"time"

	"github.com/Nikhilrai1/lms/internal/platform/imagehost"
	"github.com/Nikhilrai1/lms/internal/platform/sec"
)

// ErrSessionNotFound is returned by session caches when no snapshot exists.
var ErrSessionNotFound = errors.New("identity: session not found")

// # Domain Entities

// User represents a registered account.
type User struct {
	ID           string           `json:"_id"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	PasswordHash string           `json:"-"` // Loaded only by the WithPassword lookups.
	Role         sec.UserRole     `json:"role"`
	IsVerified   bool             `json:"isVerified"`
	Avatar       *imagehost.Image `json:"avatar,omitempty"`
	Courses      []CourseRef      `json:"courses"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// CourseRef is one entry of a user's ordered enrollment list.
type CourseRef struct {
	CourseID string `json:"courseId"`
}

// HasPassword reports whether the account can log in with a password.
// Social accounts are created without one.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// EnrolledIn reports whether courseID is in the user's enrollment list.
func (u *User) EnrolledIn(courseID string) bool {
	return slices.ContainsFunc(u.Courses, func(ref CourseRef) bool {
		return ref.CourseID == courseID
	})
}

// Public returns a copy without the password hash.
func (u *User) Public() *User {
	clone := *u
	clone.PasswordHash = ""
	clone.Courses = slices.Clone(u.Courses)
	if clone.Courses == nil {
		clone.Courses = []CourseRef{}
	}
	return &clone
}
