// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/taibuivan/tuber/internal/platform/constants"
)

// CookieWriter renders session tokens as HTTP-only cookies.
//
// The cookies carry no Max-Age, so browsers drop them at the end of the
// session; token expiry is enforced server-side on every verify. Clear must
// repeat the exact attributes used by Write or browsers keep the cookie.
type CookieWriter struct {
	Secure bool
}

// NewCookieWriter creates a writer. secure is false only for local HTTP.
func NewCookieWriter(secure bool) CookieWriter {
	return CookieWriter{Secure: secure}
}

// Write sets the accessToken and refreshToken cookies.
func (cookies CookieWriter) Write(writer http.ResponseWriter, session SessionIssued) {
	http.SetCookie(writer, cookies.cookie(constants.AccessTokenCookieName, session.AccessToken))
	http.SetCookie(writer, cookies.cookie(constants.RefreshTokenCookieName, session.RefreshToken))
}

// Clear expires both cookies.
func (cookies CookieWriter) Clear(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		cookie := cookies.cookie(name, "")
		cookie.MaxAge = -1
		http.SetCookie(writer, cookie)
	}
}

func (cookies CookieWriter) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     constants.SessionCookiePath,
		HttpOnly: true,
		Secure:   cookies.Secure,
	}
}
