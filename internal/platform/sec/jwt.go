// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the auth package's TokenProvider interface.
//
// Three token kinds exist, each signed with its own HS256 secret:
//
//   - Activation ticket: carries the pending registration and its 4-digit code.
//   - Access token: short-lived, carries the user id.
//   - Refresh token: long-lived, carries the user id.
package sec

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
// Expired tokens additionally match [jwt.ErrTokenExpired].
var ErrInvalidToken = errors.New("sec: invalid token")

// # Claims

// ActivationSubject is the pending registration embedded in an activation ticket.
// PasswordHash is already bcrypt-hashed: the ticket is signed, not encrypted.
type ActivationSubject struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// ActivationClaims is the payload of an activation ticket.
type ActivationClaims struct {
	jwt.RegisteredClaims

	User           ActivationSubject `json:"user"`
	ActivationCode string            `json:"activationCode"`
}

// SessionClaims is the payload of access and refresh tokens.
type SessionClaims struct {
	jwt.RegisteredClaims

	UserID string `json:"id"`
}

// # Token Service

// TokenConfig holds the secrets and lifetimes of every token kind.
type TokenConfig struct {
	Issuer string

	ActivationSecret string
	AccessSecret     string
	RefreshSecret    string

	ActivationTTL time.Duration
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenService handles generation and verification of JWT tokens using HS256.
type TokenService struct {
	cfg   TokenConfig
	clock func() time.Time
}

// Option customises a [TokenService].
type Option func(*TokenService)

// WithClock replaces the wall clock used for issuing and verifying tokens.
func WithClock(clock func() time.Time) Option {
	return func(service *TokenService) {
		service.clock = clock
	}
}

// NewTokenService creates a new TokenService. Every secret must be non-empty.
func NewTokenService(cfg TokenConfig, opts ...Option) (*TokenService, error) {
	if cfg.ActivationSecret == "" || cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("sec: token secrets must not be empty")
	}

	service := &TokenService{cfg: cfg, clock: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// AccessTTL is the lifetime of access tokens.
func (service *TokenService) AccessTTL() time.Duration { return service.cfg.AccessTTL }

// RefreshTTL is the lifetime of refresh tokens.
func (service *TokenService) RefreshTTL() time.Duration { return service.cfg.RefreshTTL }

// Now returns the service clock's current time.
func (service *TokenService) Now() time.Time { return service.clock() }

// IssueActivationToken signs a ticket for subject and returns it with the
// freshly drawn activation code.
func (service *TokenService) IssueActivationToken(subject ActivationSubject) (string, string, error) {
	code, err := NewActivationCode()
	if err != nil {
		return "", "", err
	}

	claims := ActivationClaims{
		RegisteredClaims: service.registered(subject.Email, service.cfg.ActivationTTL),
		User:             subject,
		ActivationCode:   code,
	}

	token, err := sign(claims, service.cfg.ActivationSecret)
	if err != nil {
		return "", "", err
	}
	return token, code, nil
}

// VerifyActivationToken checks the signature and expiry of an activation ticket.
func (service *TokenService) VerifyActivationToken(tokenString string) (*ActivationClaims, error) {
	claims := &ActivationClaims{}
	if err := service.parse(tokenString, claims, service.cfg.ActivationSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// IssueAccessToken signs an access token for userID.
func (service *TokenService) IssueAccessToken(userID string) (string, error) {
	return sign(SessionClaims{
		RegisteredClaims: service.registered(userID, service.cfg.AccessTTL),
		UserID:           userID,
	}, service.cfg.AccessSecret)
}

// IssueRefreshToken signs a refresh token for userID.
func (service *TokenService) IssueRefreshToken(userID string) (string, error) {
	return sign(SessionClaims{
		RegisteredClaims: service.registered(userID, service.cfg.RefreshTTL),
		UserID:           userID,
	}, service.cfg.RefreshSecret)
}

// VerifyAccessToken checks an access token and returns its claims.
func (service *TokenService) VerifyAccessToken(tokenString string) (*SessionClaims, error) {
	return service.verifySession(tokenString, service.cfg.AccessSecret)
}

// VerifyRefreshToken checks a refresh token and returns its claims.
func (service *TokenService) VerifyRefreshToken(tokenString string) (*SessionClaims, error) {
	return service.verifySession(tokenString, service.cfg.RefreshSecret)
}

func (service *TokenService) verifySession(tokenString, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := service.parse(tokenString, claims, secret); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing id claim", ErrInvalidToken)
	}
	return claims, nil
}

func (service *TokenService) registered(subject string, timeToLive time.Duration) jwt.RegisteredClaims {
	currentTime := service.clock()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    service.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
	}
}

func (service *TokenService) parse(tokenString string, claims jwt.Claims, secret string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(service.clock),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

func sign(claims jwt.Claims, secret string) (string, error) {
	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signedToken, nil
}

// # Activation Codes

// NewActivationCode draws a 4-digit code uniformly from 1000-9999.
func NewActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("sec: failed to draw activation code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}
