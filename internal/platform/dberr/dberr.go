// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Nikhilrai1/lms/internal/platform/apperr"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique index collision.
const uniqueViolation = "23505"

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == uniqueViolation
}

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// # Parameters
//   - err: The raw driver error.
//   - resource: Name used in the NotFound message (e.g. "Course").
//   - conflictMessage: Client message for unique violations.
func Wrap(err error, resource, conflictMessage string) error {
	if err == nil {
		return nil
	}

	if IsNotFound(err) {
		return apperr.NotFound(resource).WithCause(err)
	}

	if IsUniqueViolation(err) {
		return apperr.Conflict(conflictMessage).WithCause(err)
	}

	return apperr.Upstream("Database operation failed", fmt.Errorf("dberr: %w", err))
}
