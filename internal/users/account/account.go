// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

/*
Package account handles profile reads and mutations of the authenticated user.

# Architecture

  - Domain: This package reuses the auth stores for the User entity and its
    session snapshot instead of owning a table of its own.
  - Consistency: Every mutation writes the store first and then rewrites the
    snapshot so the auth gate sees the change on the next request.
*/
package account

import (
	"context"
	"time"

	"github.com/Nikhilrai1/lms/internal/users/identity"
)

// # Client Messages

const (
	MsgInvalidUser        = "Invalid user"
	MsgInvalidOldPassword = "Invalid old password"
	MsgAvatarUploadFailed = "Could not upload the avatar"
	MsgInvalidImage       = "Image must be a base64 payload"
	MsgPasswordUpdated    = "Password updated successfully"
)

// # Error Codes

const (
	CodeInvalidUser        = "INVALID_USER"
	CodeInvalidOldPassword = "INVALID_OLD_PASSWORD"
)

// # Repository Contracts

// AccountRepository is the subset of the user store the profile flows need.
// [auth.PostgresUserRepository] satisfies it.
type AccountRepository interface {
	FindByID(context context.Context, id string) (*identity.User, error)
	FindByIDWithPassword(context context.Context, id string) (*identity.User, error)
	ExistsByEmail(context context.Context, email string) (bool, error)
	Update(context context.Context, user *identity.User) error
	UpdatePassword(context context.Context, userID, newHash string) error
}

// SnapshotStore is the subset of the session cache the profile flows need.
// [auth.RedisSessionStore] satisfies it.
type SnapshotStore interface {
	Get(context context.Context, userID string) (*identity.User, error)
	Save(context context.Context, user *identity.User, ttl time.Duration) error
	Replace(context context.Context, user *identity.User) error
}
