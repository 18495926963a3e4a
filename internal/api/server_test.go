// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikhilrai1/lms/internal/api"
	"github.com/Nikhilrai1/lms/internal/core/course"
	"github.com/Nikhilrai1/lms/internal/platform/config"
	"github.com/Nikhilrai1/lms/internal/platform/constants"
	"github.com/Nikhilrai1/lms/internal/platform/imagehost"
	"github.com/Nikhilrai1/lms/internal/platform/mail"
	"github.com/Nikhilrai1/lms/internal/platform/metrics"
	"github.com/Nikhilrai1/lms/internal/platform/middleware"
	"github.com/Nikhilrai1/lms/internal/platform/sec"
	"github.com/Nikhilrai1/lms/internal/users/account"
	"github.com/Nikhilrai1/lms/internal/users/auth"
)

// # Fixtures

type inbox struct {
	mu    sync.Mutex
	codes []string
}

func (i *inbox) Send(_ context.Context, message mail.Message) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.codes = append(i.codes, message.Data["activationCode"].(string))
	return nil
}

func (i *inbox) last() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.codes[len(i.codes)-1]
}

type app struct {
	handler http.Handler
	inbox   *inbox
}

func newApp(t *testing.T, deps api.HealthDependencies) *app {
	t.Helper()
	sec.UseMinPasswordCost()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	collector := metrics.New()
	cfg := &config.Config{ServerPort: "0", Origins: []string{"http://localhost:3000"}}

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

	users := auth.NewMemoryUserRepository()
	sessions := auth.NewMemorySessionStore(nil)
	images := imagehost.NewMemoryHost("https://cdn.test")
	box := &inbox{}

	liveness, readiness := api.NewHealthHandlers(deps, logger)
	server := api.NewServer(ctx, cfg, logger, collector, api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Authenticate: middleware.Authenticate(tokens, sessions),
		Auth:         auth.NewHandler(auth.NewService(users, sessions, tokens, box, collector), auth.CookiePolicy{}),
		Account:      account.NewHandler(account.NewService(users, sessions, images, tokens.RefreshTTL())),
		Course: course.NewHandler(course.NewService(
			course.NewMemoryCourseRepository(), course.NewMemoryCourseCache(), images, collector)),
	})

	return &app{handler: server.Handler(), inbox: box}
}

func (a *app) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	request := httptest.NewRequest(method, path, &payload)
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	a.handler.ServeHTTP(recorder, request)
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body), recorder.Body.String())
	return body
}

// # Routing

/*
TestServer_UnknownRoute checks unmatched paths and methods share the 404 envelope.
*/
func TestServer_UnknownRoute(t *testing.T) {
	a := newApp(t, api.HealthDependencies{})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/nope"},
		{http.MethodDelete, "/api/v1/login"},
	} {
		recorder := a.do(t, tc.method, tc.path, nil)
		require.Equal(t, http.StatusNotFound, recorder.Code)

		body := decode(t, recorder)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Route "+tc.path+" not found", body["message"])
	}
}

/*
TestServer_RequestIDEchoed checks every response carries a correlation id.
*/
func TestServer_RequestIDEchoed(t *testing.T) {
	a := newApp(t, api.HealthDependencies{})

	recorder := a.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get(constants.HeaderXRequestID))
	assert.Equal(t, constants.AppName, decode(t, recorder)["app"])
}

// # Health Checks

/*
TestServer_Readiness checks a failing dependency degrades readiness to 503.
*/
func TestServer_Readiness(t *testing.T) {
	healthy := newApp(t, api.HealthDependencies{
		CheckDatabase: func(context.Context) error { return nil },
		CheckCache:    func(context.Context) error { return nil },
	})
	assert.Equal(t, http.StatusOK, healthy.do(t, http.MethodGet, "/ready", nil).Code)

	degraded := newApp(t, api.HealthDependencies{
		CheckDatabase: func(context.Context) error { return nil },
		CheckCache:    func(context.Context) error { return errors.New("redis down") },
	})
	recorder := degraded.do(t, http.MethodGet, "/ready", nil)

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	body := decode(t, recorder)
	assert.Equal(t, "degraded", body["status"])
	assert.Len(t, body["checks"], 2)
}

/*
TestServer_MetricsUseRoutePatterns checks request metrics are labelled by pattern, not raw path.
*/
func TestServer_MetricsUseRoutePatterns(t *testing.T) {
	a := newApp(t, api.HealthDependencies{})
	a.do(t, http.MethodGet, "/api/v1/get-course/0195a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b", nil)

	recorder := a.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	exposition := recorder.Body.String()
	assert.Contains(t, exposition, `route="/api/v1/get-course/{id}"`)
	assert.NotContains(t, exposition, "0195a1b2-c3d4")
}

// # End To End

/*
TestServer_RegistrationToContentGate walks registration, activation, login, profile and the content gate.
*/
func TestServer_RegistrationToContentGate(t *testing.T) {
	a := newApp(t, api.HealthDependencies{})

	registration := a.do(t, http.MethodPost, "/api/v1/registration", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, registration.Code, registration.Body.String())
	ticket := decode(t, registration)["activationToken"].(string)

	activation := a.do(t, http.MethodPost, "/api/v1/activate-user", map[string]string{
		"activation_token": ticket, "activation_code": a.inbox.last(),
	})
	require.Equal(t, http.StatusCreated, activation.Code, activation.Body.String())

	login := a.do(t, http.MethodPost, "/api/v1/login", map[string]string{
		"email": "ada@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())

	var access *http.Cookie
	for _, cookie := range login.Result().Cookies() {
		if cookie.Name == constants.AccessTokenCookieName {
			access = cookie
		}
	}
	require.NotNil(t, access)

	me := a.do(t, http.MethodGet, "/api/v1/me", nil, access)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "ada@example.com", decode(t, me)["user"].(map[string]any)["email"])

	content := a.do(t, http.MethodGet, "/api/v1/get-course-content/0195a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b", nil, access)
	assert.Equal(t, http.StatusForbidden, content.Code)
	assert.Equal(t, course.CodeNotEnrolled, decode(t, content)["code"])

	create := a.do(t, http.MethodPost, "/api/v1/create-course", map[string]any{"name": "Go"}, access)
	assert.Equal(t, http.StatusForbidden, create.Code)
}

/*
TestServer_BodyLimit checks oversized bodies are cut off at the server limit.
*/
func TestServer_BodyLimit(t *testing.T) {
	a := newApp(t, api.HealthDependencies{})

	oversized := `{"email":"` + strings.Repeat("a", constants.MaxBodyBytes) + `"}`
	request := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(oversized))
	recorder := httptest.NewRecorder()
	a.handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Request body too large", decode(t, recorder)["message"])
}
