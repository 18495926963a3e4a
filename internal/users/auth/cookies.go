// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package auth

import (
	"net/http"
	"time"

	"github.com/Nikhilrai1/lms/internal/platform/constants"
)

// CookiePolicy decides the transport flags of the token cookies.
//
// Outside production the access cookie stays readable by scripts so a local
// frontend can forward it; the refresh cookie is always HttpOnly.
type CookiePolicy struct {
	Production bool
}

func (policy CookiePolicy) tokenCookie(name, value string, expiresAt time.Time, ttl time.Duration, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     constants.TokenCookiePath,
		Expires:  expiresAt,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: httpOnly,
		Secure:   policy.Production,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetSession writes both token cookies for session.
func (policy CookiePolicy) SetSession(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, policy.tokenCookie(
		constants.AccessTokenCookieName, session.AccessToken,
		session.AccessExpiresAt, session.AccessTTL, policy.Production,
	))
	http.SetCookie(writer, policy.tokenCookie(
		constants.RefreshTokenCookieName, session.RefreshToken,
		session.RefreshExpiresAt, session.RefreshTTL, true,
	))
}

// Clear expires both token cookies immediately.
func (policy CookiePolicy) Clear(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		cookie := policy.tokenCookie(name, "", time.Unix(0, 0), 0, name == constants.RefreshTokenCookieName || policy.Production)
		cookie.MaxAge = -1
		http.SetCookie(writer, cookie)
	}
}
