// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikhilrai1/lms/internal/platform/constants"
	"github.com/Nikhilrai1/lms/internal/platform/ctxutil"
	"github.com/Nikhilrai1/lms/internal/platform/metrics"
	"github.com/Nikhilrai1/lms/internal/platform/middleware"
	"github.com/Nikhilrai1/lms/internal/platform/sec"
	"github.com/Nikhilrai1/lms/internal/users/identity"
)

// # Fakes

type fakeVerifier struct {
	tokens map[string]string
}

func (f *fakeVerifier) VerifyAccessToken(token string) (*sec.SessionClaims, error) {
	if id, ok := f.tokens[token]; ok {
		return &sec.SessionClaims{UserID: id}, nil
	}
	return nil, sec.ErrInvalidToken
}

type fakeSessions struct {
	users map[string]*identity.User
	err   error
}

func (f *fakeSessions) Get(_ context.Context, userID string) (*identity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if user, ok := f.users[userID]; ok {
		return user, nil
	}
	return nil, identity.ErrSessionNotFound
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// # Auth Gate

/*
TestAuthenticate covers every gate outcome and confirms the store is never consulted.
*/
func TestAuthenticate(t *testing.T) {
	verifier := &fakeVerifier{tokens: map[string]string{"good": "u1", "orphan": "u2"}}
	sessions := &fakeSessions{users: map[string]*identity.User{
		"u1": {ID: "u1", Name: "Ada", Role: sec.RoleUser},
	}}

	var seen *identity.User
	handler := middleware.Authenticate(verifier, sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxutil.GetUser(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name    string
		cookie  string
		status  int
		message string
	}{
		{"missing cookie", "", http.StatusBadRequest, middleware.MsgLoginRequired},
		{"invalid token", "forged", http.StatusBadRequest, middleware.MsgInvalidToken},
		{"no session", "orphan", http.StatusBadRequest, middleware.MsgSessionNotFound},
		{"authenticated", "good", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.message != "" {
				body := decodeBody(t, rec)
				assert.Equal(t, tt.message, body["message"])
				assert.Equal(t, false, body["success"])
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, "Ada", seen.Name)
		})
	}
}

/*
TestAuthenticate_CacheOutage maps a failing cache to a server error.
*/
func TestAuthenticate_CacheOutage(t *testing.T) {
	verifier := &fakeVerifier{tokens: map[string]string{"good": "u1"}}
	sessions := &fakeSessions{err: errors.New("dial tcp: connection refused")}

	handler := middleware.Authenticate(verifier, sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "good"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

/*
TestAuthorizeRoles checks exact role membership and the Forbidden message.
*/
func TestAuthorizeRoles(t *testing.T) {
	handler := middleware.AuthorizeRoles(sec.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/create-course", nil)
		req = req.WithContext(ctxutil.WithUser(req.Context(), &identity.User{ID: "a", Role: sec.RoleAdmin}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("user rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/create-course", nil)
		req = req.WithContext(ctxutil.WithUser(req.Context(), &identity.User{ID: "u", Role: sec.RoleUser}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Role user is not allowed to access this resource", decodeBody(t, rec)["message"])
	})

	t.Run("anonymous rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/create-course", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// # Chain

/*
TestRequestID_GeneratesAndPropagates verifies the correlation header.
*/
func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var inner string
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = ctxutil.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, inner)
	assert.Equal(t, inner, rec.Header().Get(constants.HeaderXRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constants.HeaderXRequestID, "client-id")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "client-id", inner)
}

/*
TestStructuredLogger_RecordsUser checks that the gate's user id reaches the access log.
*/
func TestStructuredLogger_RecordsUser(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	verifier := &fakeVerifier{tokens: map[string]string{"good": "u1"}}
	sessions := &fakeSessions{users: map[string]*identity.User{"u1": {ID: "u1"}}}

	handler := middleware.StructuredLogger(logger)(
		middleware.Authenticate(verifier, sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "good"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http_request_finished", entry["msg"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
}

/*
TestPanicRecovery converts a panic into a JSON 500.
*/
func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeBody(t, rec)["code"])
}

/*
TestRateLimit rejects requests past the burst.
*/
func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 0.001, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

/*
TestCORS allows configured origins with credentials.
*/
func TestCORS(t *testing.T) {
	handler := middleware.CORS([]string{"https://app.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

/*
TestInstrument labels requests by route pattern.
*/
func TestInstrument(t *testing.T) {
	collector := metrics.New()
	router := chi.NewRouter()
	router.Use(middleware.Instrument(collector))
	router.Get("/get-course/{id}", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get-course/42", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("/get-course/{id}", "GET", "200")))
}

/*
TestClientIP ignores proxy headers unless they are trusted.
*/
func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set(constants.HeaderXForwardedFor, "203.0.113.9, 10.0.0.1")
	req.Header.Set(constants.HeaderXRealIP, "198.51.100.7")
	assert.Equal(t, "10.0.0.1", middleware.ClientIP(req))

	var seen string
	middleware.TrustProxyHeaders(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = middleware.ClientIP(r)
	})).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "198.51.100.7", seen)
}

/*
TestRateLimit_IgnoresSpoofedHeaders keys the budget on the socket address.
*/
func TestRateLimit_IgnoresSpoofedHeaders(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 0.001, 1)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constants.HeaderXRealIP, fmt.Sprintf("198.51.100.%d", i+1))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}
