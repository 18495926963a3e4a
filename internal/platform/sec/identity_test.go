// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikhilrai1/lms/internal/platform/sec"
)

func rsaKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func providerClaims(now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            "https://accounts.example",
		"aud":            "lms-web",
		"sub":            "provider-user-1",
		"exp":            now.Add(time.Minute).Unix(),
		"email":          "grace@example.com",
		"email_verified": true,
		"name":           " Grace ",
		"picture":        "https://cdn.example/g.png",
	}
}

/*
TestIdentityVerifier checks signature, issuer, audience, expiry and email verification.
*/
func TestIdentityVerifier(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	key, publicPEM := rsaKey(t)
	otherKey, _ := rsaKey(t)

	verifier, err := sec.NewIdentityVerifier(sec.IdentityConfig{
		Issuer:       "https://accounts.example",
		Audience:     "lms-web",
		PublicKeyPEM: publicPEM,
	}, sec.WithIdentityClock(func() time.Time { return now }))
	require.NoError(t, err)

	sign := func(claims jwt.MapClaims, signer *rsa.PrivateKey) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(signer)
		require.NoError(t, err)
		return token
	}

	identity, err := verifier.VerifyIdentityToken(sign(providerClaims(now), key))
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", identity.Email)
	assert.Equal(t, "Grace", identity.Name)
	assert.Equal(t, "provider-user-1", identity.Subject)

	tests := map[string]func() string{
		"foreign key": func() string { return sign(providerClaims(now), otherKey) },
		"wrong audience": func() string {
			claims := providerClaims(now)
			claims["aud"] = "someone-else"
			return sign(claims, key)
		},
		"wrong issuer": func() string {
			claims := providerClaims(now)
			claims["iss"] = "https://evil.example"
			return sign(claims, key)
		},
		"expired": func() string {
			claims := providerClaims(now)
			claims["exp"] = now.Add(-time.Second).Unix()
			return sign(claims, key)
		},
		"no expiry": func() string {
			claims := providerClaims(now)
			delete(claims, "exp")
			return sign(claims, key)
		},
		"unverified email": func() string {
			claims := providerClaims(now)
			claims["email_verified"] = false
			return sign(claims, key)
		},
		"hmac": func() string {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, providerClaims(now)).SignedString([]byte(publicPEM))
			require.NoError(t, err)
			return token
		},
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.VerifyIdentityToken(token())
			assert.ErrorIs(t, err, sec.ErrInvalidToken)
		})
	}
}

/*
TestNewIdentityVerifier_RequiresProvider rejects incomplete configuration.
*/
func TestNewIdentityVerifier_RequiresProvider(t *testing.T) {
	_, publicPEM := rsaKey(t)

	_, err := sec.NewIdentityVerifier(sec.IdentityConfig{Audience: "lms-web", PublicKeyPEM: publicPEM})
	assert.Error(t, err)

	_, err = sec.NewIdentityVerifier(sec.IdentityConfig{Issuer: "iss", Audience: "lms-web", PublicKeyPEM: "not a key"})
	assert.Error(t, err)
}
