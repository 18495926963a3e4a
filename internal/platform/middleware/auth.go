// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Nikhilrai1/lms/internal/platform/apperr"
	"github.com/Nikhilrai1/lms/internal/platform/constants"
	"github.com/Nikhilrai1/lms/internal/platform/ctxutil"
	"github.com/Nikhilrai1/lms/internal/platform/respond"
	"github.com/Nikhilrai1/lms/internal/platform/sec"
	"github.com/Nikhilrai1/lms/internal/users/identity"
)

// Auth gate messages.
const (
	MsgLoginRequired   = "Please login to access this resource"
	MsgInvalidToken    = "Access token is invalid or expired"
	MsgSessionNotFound = "Session not found, please login again"
)

// AccessVerifier verifies access tokens.
//
// # Why an interface?
//
// Defining AccessVerifier here decouples the middleware from [sec.TokenService],
// allowing us to easily inject fakes during unit testing.
type AccessVerifier interface {
	VerifyAccessToken(tokenString string) (*sec.SessionClaims, error)
}

// SessionReader loads the cached user snapshot of a session.
// A missing snapshot is reported as [identity.ErrSessionNotFound].
type SessionReader interface {
	Get(context context.Context, userID string) (*identity.User, error)
}

// Authenticate requires a valid access-token cookie backed by a live session.
//
// # Flow
//  1. Read the 'access_token' cookie. Missing means the caller is anonymous.
//  2. Verify the token via [AccessVerifier].
//  3. Load the session snapshot for the token's user id via [SessionReader].
//  4. Attach the snapshot with [ctxutil.WithUser]. The store is never read.
//
// # Parameters
//   - verifier: The access-token verifier.
//   - sessions: The session snapshot cache.
//
// # Returns
//   - An [http.Handler] middleware.
func Authenticate(verifier AccessVerifier, sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Cookie Extraction ──────────────────────────────────────────
			cookie, err := request.Cookie(constants.AccessTokenCookieName)
			if err != nil || cookie.Value == "" {
				respond.Error(writer, request, apperr.Unauthenticated(MsgLoginRequired))
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyAccessToken(cookie.Value)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthenticated(MsgInvalidToken).WithCause(err))
				return
			}

			// ── 3. Session Lookup ─────────────────────────────────────────────
			user, err := sessions.Get(request.Context(), claims.UserID)
			if errors.Is(err, identity.ErrSessionNotFound) {
				respond.Error(writer, request, apperr.Unauthenticated(MsgSessionNotFound))
				return
			}
			if err != nil {
				respond.Error(writer, request, apperr.Upstream("Session cache unavailable",
					fmt.Errorf("middleware_authenticate_session_failed: %w", err)))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithUser(request.Context(), user)
			ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.String("user_id", user.ID)))
			reportUser(ctx, user.ID)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// AuthorizeRoles blocks requests whose user role is not in allowed.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func AuthorizeRoles(allowed ...sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			user := ctxutil.GetUser(request.Context())
			if user == nil {
				respond.Error(writer, request, apperr.Unauthenticated(MsgLoginRequired))
				return
			}

			if !user.Role.In(allowed...) {
				respond.Error(writer, request, apperr.Forbidden(
					fmt.Sprintf("Role %s is not allowed to access this resource", user.Role)))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
