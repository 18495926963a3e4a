// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # External Identity

// ExternalIdentity is the subject of a verified provider ID token.
type ExternalIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// IdentityConfig pins the provider an ID token must come from.
type IdentityConfig struct {
	Issuer       string
	Audience     string
	PublicKeyPEM string
}

type identityClaims struct {
	jwt.RegisteredClaims

	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// IdentityVerifier checks RS256 ID tokens against one provider key.
type IdentityVerifier struct {
	cfg   IdentityConfig
	key   *rsa.PublicKey
	clock func() time.Time
}

// IdentityOption customises an [IdentityVerifier].
type IdentityOption func(*IdentityVerifier)

// NewIdentityVerifier parses the provider key. Issuer and audience are required.
func NewIdentityVerifier(cfg IdentityConfig, opts ...IdentityOption) (*IdentityVerifier, error) {
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("sec: identity issuer and audience must not be empty")
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("sec: invalid identity provider key: %w", err)
	}

	verifier := &IdentityVerifier{cfg: cfg, key: key, clock: time.Now}
	for _, opt := range opts {
		opt(verifier)
	}
	return verifier, nil
}

// WithIdentityClock replaces the wall clock used for expiry checks.
func WithIdentityClock(clock func() time.Time) IdentityOption {
	return func(verifier *IdentityVerifier) {
		verifier.clock = clock
	}
}

// VerifyIdentityToken accepts only signed, unexpired tokens for the pinned
// issuer and audience whose email the provider has verified.
func (verifier *IdentityVerifier) VerifyIdentityToken(token string) (*ExternalIdentity, error) {
	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return verifier.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(verifier.cfg.Issuer),
		jwt.WithAudience(verifier.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(verifier.clock),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	email := strings.TrimSpace(claims.Email)
	if email == "" || !claims.EmailVerified {
		return nil, fmt.Errorf("%w: provider email is not verified", ErrInvalidToken)
	}

	return &ExternalIdentity{
		Subject: claims.Subject,
		Email:   email,
		Name:    strings.TrimSpace(claims.Name),
		Picture: claims.Picture,
	}, nil
}
