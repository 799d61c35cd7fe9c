// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/taibuivan/tuber/internal/platform/apperr"
	"github.com/taibuivan/tuber/internal/platform/constants"
	"github.com/taibuivan/tuber/internal/platform/ctxutil"
	"github.com/taibuivan/tuber/internal/platform/respond"
	"github.com/taibuivan/tuber/internal/platform/sec"
)

// TokenVerifier is the slice of [sec.TokenService] the middleware needs.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*sec.AccessClaims, error)
}

type callerSlotKey struct{}

func withCallerSlot(ctx context.Context, slot *string) context.Context {
	return context.WithValue(ctx, callerSlotKey{}, slot)
}

func recordCaller(ctx context.Context, accountID string) {
	if slot, ok := ctx.Value(callerSlotKey{}).(*string); ok {
		*slot = accountID
	}
}

type rejectionKey struct{}

// Authenticate resolves the caller from the access token.
//
// # Flow
//  1. Read 'Authorization: Bearer <token>', falling back to the accessToken cookie.
//  2. No token at all: the request proceeds as anonymous.
//  3. A token that fails verification also proceeds as anonymous; the failure
//     is kept in the context and reported by [RequireAuth].
//  4. Valid claims are stored in the context for [RequireAuth] and handlers.
//
// Public routes (login, refresh-token) stay reachable with a stale cookie attached.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			tokenString, err := accessToken(request)
			if err != nil {
				next.ServeHTTP(writer, withRejection(request, err))
				return
			}

			if tokenString == "" {
				next.ServeHTTP(writer, request)
				return
			}

			claims, err := verifier.VerifyToken(tokenString)
			if err != nil {
				if errors.Is(err, sec.ErrTokenExpired) {
					next.ServeHTTP(writer, withRejection(request, apperr.TokenExpired("Access token has expired")))
					return
				}
				next.ServeHTTP(writer, withRejection(request, apperr.TokenInvalid("Invalid access token")))
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			recordCaller(ctx, claims.Identity.ID)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

func withRejection(request *http.Request, err error) *http.Request {
	return request.WithContext(context.WithValue(request.Context(), rejectionKey{}, err))
}

// accessToken returns the bearer token or the cookie value, whichever is present.
func accessToken(request *http.Request) (string, error) {
	if header := request.Header.Get(constants.HeaderAuthorization); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			return "", apperr.Unauthorized("Invalid authorization format")
		}
		return strings.TrimSpace(token), nil
	}

	if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", nil
}

// RequireAuth blocks requests that are not authenticated, answering with the
// token failure recorded by [Authenticate] when there was one.
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if GetUser(request.Context()) == nil {
			if rejection, ok := request.Context().Value(rejectionKey{}).(error); ok {
				respond.Error(writer, request, rejection)
				return
			}
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// GetUser returns the authenticated claims, or nil for anonymous requests.
func GetUser(ctx context.Context) *sec.AccessClaims {
	return ctxutil.GetAuthUser(ctx)
}
