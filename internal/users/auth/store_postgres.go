// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nikhilrai1/lms/internal/platform/apperr"
	"github.com/Nikhilrai1/lms/internal/platform/dberr"
	"github.com/Nikhilrai1/lms/internal/users/identity"
)

// # User Repository

// PostgresUserRepository implements [UserRepository] using pgx.
//
// Avatar and enrollments live in JSONB columns and are decoded by the pgx
// JSON codec straight into their Go types.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userResource = "User"

const selectUser = `
	SELECT id, name, email, password_hash, role, is_verified, avatar, courses, created_at, updated_at
	FROM users`

func scanUser(row pgx.Row, withPassword bool) (*identity.User, error) {
	user := &identity.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsVerified,
		&user.Avatar,
		&user.Courses,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if !withPassword {
		user.PasswordHash = ""
	}
	if user.Courses == nil {
		user.Courses = []identity.CourseRef{}
	}
	return user, nil
}

func (repository *PostgresUserRepository) findOne(context context.Context, where string, arg any, withPassword bool, op string) (*identity.User, error) {
	user, err := scanUser(repository.pool.QueryRow(context, selectUser+" WHERE "+where, arg), withPassword)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.NotFound(userResource).WithCause(err)
		}
		return nil, fmt.Errorf("postgres_user_repo_%s_failed: %w", op, err)
	}
	return user, nil
}

// FindByID resolves an account by primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*identity.User, error) {
	return repository.findOne(context, "id = $1", id, false, "find_by_id")
}

// FindByIDWithPassword resolves an account by primary key, hash included.
func (repository *PostgresUserRepository) FindByIDWithPassword(context context.Context, id string) (*identity.User, error) {
	return repository.findOne(context, "id = $1", id, true, "find_by_id")
}

// FindByEmail resolves an account by its case-insensitive email.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*identity.User, error) {
	return repository.findOne(context, "lower(email) = lower($1)", email, false, "find_by_email")
}

// FindByEmailWithPassword resolves an account by email, hash included.
func (repository *PostgresUserRepository) FindByEmailWithPassword(context context.Context, email string) (*identity.User, error) {
	return repository.findOne(context, "lower(email) = lower($1)", email, true, "find_by_email")
}

/*
ExistsByEmail reports whether the email is already taken.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - bool: true when taken
  - error: Database errors
*/
func (repository *PostgresUserRepository) ExistsByEmail(context context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`

	var exists bool
	if err := repository.pool.QueryRow(context, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_user_repo_exists_by_email_failed: %w", err)
	}
	return exists, nil
}

/*
Create persists a new user record into the users table.

Description: Initializes timestamps if not provided. A collision on the
lower(email) unique index is reported as Conflict.

Parameters:
  - context: context.Context
  - user: *identity.User (Entity to persist)

Returns:
  - error: Conflict or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *identity.User) error {
	const query = `
		INSERT INTO users (
			id, name, email, password_hash, role, is_verified, avatar, courses, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Courses == nil {
		user.Courses = []identity.CourseRef{}
	}

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsVerified,
		user.Avatar,
		user.Courses,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict(MsgEmailExists).WithCode(CodeEmailExists).WithCause(err)
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
Update persists changes to a user's mutable fields.

Description: Refreshes updated_at. The password hash is not touched; use
[PostgresUserRepository.UpdatePassword].

Parameters:
  - context: context.Context
  - user: *identity.User

Returns:
  - error: NotFound, Conflict or update failures
*/
func (repository *PostgresUserRepository) Update(context context.Context, user *identity.User) error {
	const query = `
		UPDATE users
		SET name = $2, email = $3, role = $4, avatar = $5, courses = $6, updated_at = $7
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	if user.Courses == nil {
		user.Courses = []identity.CourseRef{}
	}

	tag, err := repository.pool.Exec(context, query,
		user.ID,
		user.Name,
		user.Email,
		user.Role,
		user.Avatar,
		user.Courses,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict(MsgEmailExists).WithCode(CodeEmailExists).WithCause(err)
		}
		return fmt.Errorf("postgres_user_repo_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(userResource)
	}

	return nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: NotFound or execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(userResource)
	}

	return nil
}
