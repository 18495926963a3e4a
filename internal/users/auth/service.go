// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

/*
Package auth implements the session lifecycle of the LMS: registration with
an emailed activation code, activation, login, token refresh, logout and
social sign-in.

Architecture:

  - Service: Orchestrates the lifecycle against the user store, the session
    cache, the token service and the mail sender.
  - Repository: Abstracted interfaces for Postgres (users) and Redis (sessions).
  - Handler: Cookie-based HTTP delivery.

A session is the cached snapshot of the user under its id. The auth gate
trusts that snapshot, so every path that changes a user must rewrite it.
*/
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Nikhilrai1/lms/internal/platform/apperr"
	"github.com/Nikhilrai1/lms/internal/platform/ctxutil"
	"github.com/Nikhilrai1/lms/internal/platform/imagehost"
	"github.com/Nikhilrai1/lms/internal/platform/mail"
	"github.com/Nikhilrai1/lms/internal/platform/metrics"
	"github.com/Nikhilrai1/lms/internal/platform/sec"
	"github.com/Nikhilrai1/lms/internal/users/identity"
	"github.com/Nikhilrai1/lms/pkg/uuid"
)

//go:generate mockgen -source=service.go -destination=mocks/service_mocks.go -package=mocks

// # Contracts & Types

// TokenProvider defines the contract for issuing and verifying security tokens.
// [sec.TokenService] is the production implementation.
type TokenProvider interface {
	IssueActivationToken(subject sec.ActivationSubject) (token string, code string, err error)
	VerifyActivationToken(token string) (*sec.ActivationClaims, error)
	IssueAccessToken(userID string) (string, error)
	IssueRefreshToken(userID string) (string, error)
	VerifyRefreshToken(token string) (*sec.SessionClaims, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
	Now() time.Time
}

// Service implements the session lifecycle use cases.
type Service struct {
	users    UserRepository
	sessions SessionStore
	tokens   TokenProvider
	mailer   mail.Sender
	metrics  *metrics.Metrics

	identities IdentityVerifier
}

// NewService constructs a new [Service] with necessary dependencies.
// collector may be nil.
func NewService(users UserRepository, sessions SessionStore, tokens TokenProvider, mailer mail.Sender, collector *metrics.Metrics) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		mailer:   mailer,
		metrics:  collector,
	}
}

// Session is an established login: tokens plus the user they were issued for.
type Session struct {
	User             *identity.User
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
}

// NormalizeEmail is the canonical form under which emails are stored and compared.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// # Registration Flow

// RegisterInput holds the data required to start a registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

/*
Register issues an activation ticket and mails its code.

Description: Nothing is persisted. The pending account travels inside the
signed ticket and is created by [Service.Activate]. A failed mail fails the
whole registration.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - string: The opaque activation token
  - error: Conflict (email taken), Upstream (mail failure) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (string, error) {
	email := NormalizeEmail(input.Email)

	exists, err := service.users.ExistsByEmail(context, email)
	if err != nil {
		return "", fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}
	if exists {
		return "", apperr.Conflict(MsgEmailExists).WithCode(CodeEmailExists)
	}

	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("auth_service_hash_failed: %w", err))
	}

	token, code, err := service.tokens.IssueActivationToken(sec.ActivationSubject{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("auth_service_activation_token_failed: %w", err))
	}

	err = service.mailer.Send(context, mail.Message{
		To:       email,
		Subject:  activationSubject,
		Template: mail.TemplateActivation,
		Data: map[string]any{
			"name":           strings.TrimSpace(input.Name),
			"activationCode": code,
		},
	})
	if err != nil {
		return "", apperr.Upstream(MsgMailFailed, fmt.Errorf("auth_service_activation_mail_failed: %w", err))
	}

	service.metrics.IncrementRegistrations()
	ctxutil.GetLogger(context).InfoContext(context, "user_registration_started", slog.String("email", email))

	return token, nil
}

// ActivateInput carries the ticket and the code the user received by mail.
type ActivateInput struct {
	ActivationToken string
	ActivationCode  string
}

/*
Activate verifies the ticket and code and creates the verified account.

Parameters:
  - context: context.Context
  - input: ActivateInput

Returns:
  - *identity.User: The created account
  - error: Validation (bad ticket or code), Conflict (email taken) or storage errors
*/
func (service *Service) Activate(context context.Context, input ActivateInput) (*identity.User, error) {
	claims, err := service.tokens.VerifyActivationToken(input.ActivationToken)
	if err != nil {
		return nil, apperr.ValidationError(MsgInvalidActivationToken).
			WithCode(CodeInvalidActivationToken).
			WithCause(err)
	}

	if subtle.ConstantTimeCompare([]byte(claims.ActivationCode), []byte(strings.TrimSpace(input.ActivationCode))) != 1 {
		return nil, apperr.ValidationError(MsgInvalidActivationCode).WithCode(CodeInvalidActivationCode)
	}

	email := NormalizeEmail(claims.User.Email)
	exists, err := service.users.ExistsByEmail(context, email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_activate_lookup_failed: %w", err)
	}
	if exists {
		return nil, apperr.Conflict(MsgEmailExists).WithCode(CodeEmailExists)
	}

	user := &identity.User{
		ID:           uuid.New(),
		Name:         claims.User.Name,
		Email:        email,
		PasswordHash: claims.User.PasswordHash,
		Role:         sec.RoleUser,
		IsVerified:   true,
		Courses:      []identity.CourseRef{},
	}

	// The unique index is the source of truth when two activations race.
	if err := service.users.Create(context, user); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return nil, apperr.Conflict(MsgEmailExists).WithCode(CodeEmailExists).WithCause(err)
		}
		return nil, fmt.Errorf("auth_service_activate_create_failed: %w", err)
	}

	service.metrics.IncrementActivations()
	ctxutil.GetLogger(context).InfoContext(context, "user_activated", slog.String("user_id", user.ID))

	return user.Public(), nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login validates credentials and establishes a session.

Description: Unknown emails and wrong passwords fail identically so the
response never reveals whether an account exists.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Issued tokens and the user snapshot
  - error: Unauthenticated or infrastructure failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {
	invalid := apperr.Unauthenticated(MsgInvalidCredentials).WithCode(CodeInvalidCredentials)

	user, err := service.users.FindByEmailWithPassword(context, NormalizeEmail(input.Email))
	if apperr.IsKind(err, apperr.KindNotFound) {
		service.metrics.ObserveLogin(false)
		return nil, invalid
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// Accounts created by social sign-in have no password and never match.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		service.metrics.ObserveLogin(false)
		return nil, invalid
	}

	session, err := service.establish(context, user)
	if err != nil {
		return nil, err
	}

	service.metrics.ObserveLogin(true)
	ctxutil.GetLogger(context).InfoContext(context, "login_succeeded", slog.String("user_id", user.ID))

	return session, nil
}

// IdentityVerifier checks ID tokens issued by an external provider.
// [sec.IdentityVerifier] is the production implementation.
type IdentityVerifier interface {
	VerifyIdentityToken(token string) (*sec.ExternalIdentity, error)
}

// WithIdentityVerifier enables [Service.SocialAuth].
func (service *Service) WithIdentityVerifier(verifier IdentityVerifier) *Service {
	service.identities = verifier
	return service
}

// SocialAuthEnabled reports whether a provider is configured.
func (service *Service) SocialAuthEnabled() bool {
	return service.identities != nil
}

/*
SocialAuth signs in the owner of a provider-verified email, creating a
verified password-less account on first use.

Description: The email is taken from the verified ID token only. An
existing password account is never signed into this way.

Parameters:
  - context: context.Context
  - idToken: string

Returns:
  - *Session: Issued tokens and the user snapshot
  - error: Unauthenticated (bad token), Conflict (password account),
    Forbidden (not configured) or storage failures
*/
func (service *Service) SocialAuth(context context.Context, idToken string) (*Session, error) {
	if service.identities == nil {
		return nil, apperr.Forbidden(MsgSocialAuthDisabled).WithCode(CodeSocialAuthDisabled)
	}

	external, err := service.identities.VerifyIdentityToken(idToken)
	if err != nil {
		return nil, apperr.Unauthenticated(MsgInvalidIdentityToken).
			WithCode(CodeInvalidIdentityToken).
			WithCause(err)
	}

	email := NormalizeEmail(external.Email)
	user, err := service.users.FindByEmailWithPassword(context, email)
	if apperr.IsKind(err, apperr.KindNotFound) {
		user, err = service.createSocialUser(context, email, external)
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_social_auth_failed: %w", err)
	}

	if user.HasPassword() {
		ctxutil.GetLogger(context).WarnContext(context, "social_auth_password_account_refused",
			slog.String("user_id", user.ID))
		return nil, apperr.Conflict(MsgPasswordAccount).WithCode(CodePasswordAccount)
	}

	return service.establish(context, user)
}

func (service *Service) createSocialUser(context context.Context, email string, external *sec.ExternalIdentity) (*identity.User, error) {
	user := &identity.User{
		ID:         uuid.New(),
		Name:       external.Name,
		Email:      email,
		Role:       sec.RoleUser,
		IsVerified: true,
		Courses:    []identity.CourseRef{},
	}
	if user.Name == "" {
		user.Name = email
	}
	if external.Picture != "" {
		user.Avatar = &imagehost.Image{URL: external.Picture}
	}

	err := service.users.Create(context, user)
	if apperr.IsKind(err, apperr.KindConflict) {
		// Lost a race with a concurrent sign-up: the caller re-checks the winner.
		return service.users.FindByEmailWithPassword(context, email)
	}
	if err != nil {
		return nil, err
	}

	service.metrics.IncrementActivations()
	ctxutil.GetLogger(context).InfoContext(context, "user_created_by_social_auth", slog.String("user_id", user.ID))

	return user, nil
}

// # Session Management

/*
Refresh issues a new token pair from a valid refresh token and a live session.

Description: The new pair is issued for the cached snapshot, not the store,
and the session window restarts.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *Session: New tokens
  - error: Unauthenticated (CANNOT_REFRESH) or cache failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*Session, error) {
	cannotRefresh := apperr.Unauthenticated(MsgCannotRefresh).WithCode(CodeCannotRefresh)

	if refreshToken == "" {
		return nil, cannotRefresh
	}

	claims, err := service.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, cannotRefresh.WithCause(err)
	}

	snapshot, err := service.sessions.Get(context, claims.UserID)
	if errors.Is(err, identity.ErrSessionNotFound) {
		return nil, cannotRefresh.WithCause(err)
	}
	if err != nil {
		return nil, apperr.Upstream(MsgSessionCacheUnavailable, fmt.Errorf("auth_service_refresh_session_failed: %w", err))
	}

	return service.establish(context, snapshot)
}

/*
Logout ends the session of userID. Ending a missing session succeeds.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Cache failures
*/
func (service *Service) Logout(context context.Context, userID string) error {
	if err := service.sessions.Delete(context, userID); err != nil {
		return apperr.Upstream(MsgSessionCacheUnavailable, fmt.Errorf("auth_service_logout_failed: %w", err))
	}

	ctxutil.GetLogger(context).InfoContext(context, "logout_succeeded", slog.String("user_id", userID))
	return nil
}

// establish issues both tokens and writes the session snapshot.
func (service *Service) establish(context context.Context, user *identity.User) (*Session, error) {
	accessToken, err := service.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_access_token_failed: %w", err))
	}

	refreshToken, err := service.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_refresh_token_failed: %w", err))
	}

	snapshot := user.Public()
	if err := service.sessions.Save(context, snapshot, service.tokens.RefreshTTL()); err != nil {
		return nil, apperr.Upstream(MsgSessionCacheUnavailable, fmt.Errorf("auth_service_session_save_failed: %w", err))
	}

	now := service.tokens.Now()
	accessTTL, refreshTTL := service.tokens.AccessTTL(), service.tokens.RefreshTTL()
	return &Session{
		User:             snapshot,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  now.Add(accessTTL),
		RefreshExpiresAt: now.Add(refreshTTL),
		AccessTTL:        accessTTL,
		RefreshTTL:       refreshTTL,
	}, nil
}
