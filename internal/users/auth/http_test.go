// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package auth_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikhilrai1/lms/internal/platform/constants"
	"github.com/Nikhilrai1/lms/internal/platform/mail"
	"github.com/Nikhilrai1/lms/internal/platform/middleware"
	"github.com/Nikhilrai1/lms/internal/platform/sec"
	"github.com/Nikhilrai1/lms/internal/users/auth"
)

// # Fixtures

type captureSender struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (c *captureSender) Send(_ context.Context, message mail.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
	return nil
}

func (c *captureSender) lastCode(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.messages)
	return c.messages[len(c.messages)-1].Data["activationCode"].(string)
}

const (
	providerIssuer   = "https://accounts.example"
	providerAudience = "lms-web"
)

type provider struct {
	key *rsa.PrivateKey
}

func newProvider(t *testing.T) *provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &provider{key: key}
}

func (p *provider) publicPEM(t *testing.T) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&p.key.PublicKey)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func (p *provider) idToken(t *testing.T, email string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":            providerIssuer,
		"aud":            providerAudience,
		"sub":            "sub-" + email,
		"exp":            time.Now().Add(time.Minute).Unix(),
		"email":          email,
		"email_verified": true,
		"name":           "Grace",
		"picture":        "https://cdn.example/g.png",
	}).SignedString(p.key)
	require.NoError(t, err)
	return token
}

type harness struct {
	router   chi.Router
	provider *provider
	mailer   *captureSender
	sessions *auth.MemorySessionStore
	users    *auth.MemoryUserRepository
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sec.UseMinPasswordCost()

	tokens, err := sec.NewTokenService(sec.TokenConfig{
		Issuer:           constants.AuthIssuer,
		ActivationSecret: "activation-secret",
		AccessSecret:     "access-secret",
		RefreshSecret:    "refresh-secret",
		ActivationTTL:    5 * time.Minute,
		AccessTTL:        5 * time.Minute,
		RefreshTTL:       72 * time.Hour,
	})
	require.NoError(t, err)

	h := &harness{
		provider: newProvider(t),
		mailer:   &captureSender{},
		sessions: auth.NewMemorySessionStore(nil),
		users:    auth.NewMemoryUserRepository(),
	}
	identities, err := sec.NewIdentityVerifier(sec.IdentityConfig{
		Issuer:       providerIssuer,
		Audience:     providerAudience,
		PublicKeyPEM: h.provider.publicPEM(t),
	})
	require.NoError(t, err)
	service := auth.NewService(h.users, h.sessions, tokens, h.mailer, nil).WithIdentityVerifier(identities)

	router := chi.NewRouter()
	auth.NewHandler(service, auth.CookiePolicy{}).
		RegisterRoutes(router, middleware.Authenticate(tokens, h.sessions))
	h.router = router
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	request := httptest.NewRequest(method, path, &payload)
	request.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, request)

	decoded := map[string]any{}
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	}
	return recorder, decoded
}

func cookieNamed(recorder *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func (h *harness) registerAndActivate(t *testing.T, email, password string) {
	t.Helper()

	recorder, body := h.do(t, http.MethodPost, "/registration", map[string]string{
		"name": "Ada", "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, recorder.Code, body)
	token := body[auth.FieldActivationToken].(string)

	recorder, body = h.do(t, http.MethodPost, "/activate-user", map[string]string{
		"activation_token": token, "activation_code": h.mailer.lastCode(t),
	})
	require.Equal(t, http.StatusCreated, recorder.Code, body)
}

// # Flows

/*
TestSessionLifecycle walks registration, activation, login, refresh and logout end to end.
*/
func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t)
	h.registerAndActivate(t, "ada@example.com", "secret123")

	recorder, body := h.do(t, http.MethodPost, "/login", map[string]string{
		"email": "ada@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, recorder.Code, body)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body[auth.FieldAccessToken])

	user := body[auth.FieldUser].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	access := cookieNamed(recorder, constants.AccessTokenCookieName)
	refresh := cookieNamed(recorder, constants.RefreshTokenCookieName)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.Equal(t, http.SameSiteLaxMode, refresh.SameSite)
	assert.True(t, refresh.HttpOnly)
	assert.False(t, access.HttpOnly, "access cookie is script-readable outside production")
	assert.Equal(t, int((72 * time.Hour).Seconds()), refresh.MaxAge)
	assert.Equal(t, int((5 * time.Minute).Seconds()), access.MaxAge)

	recorder, body = h.do(t, http.MethodGet, "/refresh", nil, refresh)
	require.Equal(t, http.StatusOK, recorder.Code, body)
	assert.NotEmpty(t, body[auth.FieldAccessToken])
	require.NotNil(t, cookieNamed(recorder, constants.AccessTokenCookieName))

	recorder, body = h.do(t, http.MethodGet, "/logout", nil, access)
	require.Equal(t, http.StatusOK, recorder.Code, body)
	assert.Equal(t, auth.MsgLoggedOut, body["message"])
	cleared := cookieNamed(recorder, constants.AccessTokenCookieName)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	recorder, body = h.do(t, http.MethodGet, "/refresh", nil, refresh)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, auth.CodeCannotRefresh, body["code"])

	recorder, body = h.do(t, http.MethodGet, "/logout", nil, access)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, middleware.MsgSessionNotFound, body["message"])
}

/*
TestRegistration_Responses covers the body contract and validation of the registration step.
*/
func TestRegistration_Responses(t *testing.T) {
	h := newHarness(t)

	recorder, body := h.do(t, http.MethodPost, "/registration", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, body["message"], "ada@example.com")
	assert.NotContains(t, body, "activationCode", "the numeric code travels by mail only")

	recorder, body = h.do(t, http.MethodPost, "/registration", map[string]string{
		"name": "Ada", "email": "not-an-email", "password": "1",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Len(t, body["details"], 2)

	h.registerAndActivate(t, "grace@example.com", "secret123")
	recorder, body = h.do(t, http.MethodPost, "/registration", map[string]string{
		"name": "Grace", "email": "GRACE@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, auth.CodeEmailExists, body["code"])
}

/*
TestActivation_WrongCode keeps the account uncreated.
*/
func TestActivation_WrongCode(t *testing.T) {
	h := newHarness(t)

	_, body := h.do(t, http.MethodPost, "/registration", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret123",
	})
	code := "1000"
	if h.mailer.lastCode(t) == code {
		code = "1001"
	}

	recorder, body := h.do(t, http.MethodPost, "/activate-user", map[string]string{
		"activation_token": body[auth.FieldActivationToken].(string), "activation_code": code,
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, auth.MsgInvalidActivationCode, body["message"])

	exists, err := h.users.ExistsByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

/*
TestLogin_Throttled rejects credential attempts past the per-IP budget.
*/
func TestLogin_Throttled(t *testing.T) {
	h := newHarness(t)

	var last int
	for range constants.AuthRateLimitRequests + 1 {
		recorder, _ := h.do(t, http.MethodPost, "/login", map[string]string{
			"email": "ada@example.com", "password": "wrong",
		})
		last = recorder.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

/*
TestActivation_ThrottledDespiteSpoofedHeaders keeps code guessing within the per-IP budget.
*/
func TestActivation_ThrottledDespiteSpoofedHeaders(t *testing.T) {
	h := newHarness(t)

	_, body := h.do(t, http.MethodPost, "/registration", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret123",
	})
	ticket := body[auth.FieldActivationToken].(string)

	var last int
	for i := range constants.AuthRateLimitRequests + 1 {
		var payload bytes.Buffer
		require.NoError(t, json.NewEncoder(&payload).Encode(map[string]string{
			"activation_token": ticket, "activation_code": "0000",
		}))
		request := httptest.NewRequest(http.MethodPost, "/activate-user", &payload)
		request.Header.Set(constants.HeaderXRealIP, fmt.Sprintf("198.51.100.%d", i+1))
		request.Header.Set(constants.HeaderXForwardedFor, fmt.Sprintf("203.0.113.%d", i+1))

		recorder := httptest.NewRecorder()
		h.router.ServeHTTP(recorder, request)
		last = recorder.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

/*
TestSocialAuth_SignsIn creates a password-less account from a provider token.
*/
func TestSocialAuth_SignsIn(t *testing.T) {
	h := newHarness(t)

	recorder, body := h.do(t, http.MethodPost, "/social-auth", map[string]string{
		"idToken": h.provider.idToken(t, "grace@example.com"),
	})
	require.Equal(t, http.StatusOK, recorder.Code, body)
	assert.NotNil(t, cookieNamed(recorder, constants.AccessTokenCookieName))

	user := body[auth.FieldUser].(map[string]any)
	assert.Equal(t, "grace@example.com", user["email"])
	assert.Equal(t, true, user["isVerified"])

	recorder, _ = h.do(t, http.MethodPost, "/login", map[string]string{
		"email": "grace@example.com", "password": "",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

/*
TestSocialAuth_CannotTakeOverPasswordAccount rejects bare emails, foreign signatures and
valid tokens for an account that signs in with a password.
*/
func TestSocialAuth_CannotTakeOverPasswordAccount(t *testing.T) {
	h := newHarness(t)
	h.registerAndActivate(t, "victim@example.com", "secret123")

	recorder, body := h.do(t, http.MethodPost, "/social-auth", map[string]string{
		"email": "victim@example.com", "name": "x",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Nil(t, cookieNamed(recorder, constants.AccessTokenCookieName))

	forged := newProvider(t).idToken(t, "victim@example.com")
	recorder, body = h.do(t, http.MethodPost, "/social-auth", map[string]string{"idToken": forged})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, auth.CodeInvalidIdentityToken, body["code"])
	assert.Nil(t, cookieNamed(recorder, constants.AccessTokenCookieName))

	recorder, body = h.do(t, http.MethodPost, "/social-auth", map[string]string{
		"idToken": h.provider.idToken(t, "victim@example.com"),
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, auth.CodePasswordAccount, body["code"])
	assert.Nil(t, cookieNamed(recorder, constants.AccessTokenCookieName))
}

/*
TestCookiePolicy_Production hardens both cookies.
*/
func TestCookiePolicy_Production(t *testing.T) {
	recorder := httptest.NewRecorder()
	auth.CookiePolicy{Production: true}.SetSession(recorder, &auth.Session{
		AccessToken: "a", RefreshToken: "r", AccessTTL: time.Minute, RefreshTTL: time.Hour,
	})

	for _, cookie := range recorder.Result().Cookies() {
		assert.True(t, cookie.Secure, cookie.Name)
		assert.True(t, cookie.HttpOnly, cookie.Name)
		assert.Equal(t, constants.TokenCookiePath, cookie.Path)
	}
}
