// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Global and per-route throttling budgets.
  - Security: Cookie names and the JWT issuer.
  - Cache Taxonomy: Redis key prefixes for sessions and courses.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "lms-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Avatar and thumbnail payloads travel inline, so this is generous.
	DefaultReadTimeout = 30 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 60 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// MaxBodyBytes caps JSON request bodies (50 MB).
	MaxBodyBytes = 50 << 20
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// AuthRateLimitRequests is the per-IP budget for credential endpoints.
	AuthRateLimitRequests = 10

	// AuthRateLimitWindow is the window of [AuthRateLimitRequests].
	AuthRateLimitWindow = 1 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "lms.api"

	// AccessTokenCookieName is the cookie that carries the access token.
	AccessTokenCookieName = "access_token"

	// RefreshTokenCookieName is the cookie that carries the refresh token.
	RefreshTokenCookieName = "refresh_token"

	// TokenCookiePath scopes both token cookies.
	TokenCookiePath = "/"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
)

// # JSON Field Identifiers

const (
	FieldSuccess = "success"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixSession = "auth:session:"
	RedisPrefixCourse  = "course:"

	// RedisKeyAllCourses holds the trimmed list of every course.
	RedisKeyAllCourses = "course:all"
)

// # Image Host Folders

const (
	FolderAvatars = "avatars"
	FolderCourses = "courses"
)
