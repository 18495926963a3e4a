// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package auth

import (
	"context"
	"time"

	"github.com/Nikhilrai1/lms/internal/users/identity"
)

//go:generate mockgen -source=store.go -destination=mocks/store_mocks.go -package=mocks

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Lookups report a missing account as an [apperr.KindNotFound] error and
// unique email collisions as [apperr.KindConflict].
type UserRepository interface {

	/*
		FindByID returns the account with the given ID, without its password hash.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *identity.User: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*identity.User, error)

	/*
		FindByIDWithPassword returns the account including its password hash.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *identity.User: Hydrated entity with PasswordHash set
		  - error: NotFound or database retrieval failures
	*/
	FindByIDWithPassword(context context.Context, id string) (*identity.User, error)

	/*
		FindByEmail returns the account with the given email, without its password hash.

		Parameters:
		  - context: context.Context
		  - email: string (normalized lower-case)

		Returns:
		  - *identity.User: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*identity.User, error)

	/*
		FindByEmailWithPassword returns the account including its password hash.

		Parameters:
		  - context: context.Context
		  - email: string (normalized lower-case)

		Returns:
		  - *identity.User: Hydrated entity with PasswordHash set
		  - error: NotFound or database retrieval failures
	*/
	FindByEmailWithPassword(context context.Context, email string) (*identity.User, error)

	/*
		ExistsByEmail reports whether an account already owns the email.

		Parameters:
		  - context: context.Context
		  - email: string (normalized lower-case)

		Returns:
		  - bool: true when taken
		  - error: Database retrieval failures
	*/
	ExistsByEmail(context context.Context, email string) (bool, error)

	/*
		Create persists a brand-new user account.

		Parameters:
		  - context: context.Context
		  - user: *identity.User

		Returns:
		  - error: Conflict on duplicate email, or persistence failures
	*/
	Create(context context.Context, user *identity.User) error

	/*
		Update persists name, email, role, avatar and enrollments.

		Parameters:
		  - context: context.Context
		  - user: *identity.User

		Returns:
		  - error: NotFound, Conflict on duplicate email, or persistence failures
	*/
	Update(context context.Context, user *identity.User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: NotFound or persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error
}

// # Session Cache

// SessionStore caches the user snapshot of every logged-in account.
//
// A missing snapshot is reported as [identity.ErrSessionNotFound].
type SessionStore interface {

	/*
		Save writes the snapshot and (re)starts its expiry window.

		Parameters:
		  - context: context.Context
		  - user: *identity.User (password hash is never stored)
		  - ttl: time.Duration

		Returns:
		  - error: Cache failures
	*/
	Save(context context.Context, user *identity.User, ttl time.Duration) error

	/*
		Replace overwrites a live snapshot and keeps its remaining expiry.

		Parameters:
		  - context: context.Context
		  - user: *identity.User

		Returns:
		  - error: identity.ErrSessionNotFound when no session is live, or cache failures
	*/
	Replace(context context.Context, user *identity.User) error

	/*
		Get returns the snapshot for userID.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *identity.User: Cached snapshot
		  - error: identity.ErrSessionNotFound or cache failures
	*/
	Get(context context.Context, userID string) (*identity.User, error)

	/*
		Delete removes the snapshot. Deleting a missing snapshot is not an error.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Cache failures
	*/
	Delete(context context.Context, userID string) error
}
