// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/tuber/internal/api"
	"github.com/taibuivan/tuber/internal/platform/apperr"
	"github.com/taibuivan/tuber/internal/platform/config"
	"github.com/taibuivan/tuber/internal/platform/sec"
	"github.com/taibuivan/tuber/internal/users/account"
	"github.com/taibuivan/tuber/internal/users/auth"
)

// singleAccount is an AccountStore holding at most one account.
type singleAccount struct {
	account *auth.Account
}

func (store *singleAccount) Create(ctx context.Context, account *auth.Account) error {
	store.account = account
	return nil
}

func (store *singleAccount) FindByID(ctx context.Context, id string, projection auth.Projection) (*auth.Account, error) {
	if store.account == nil || store.account.ID != id {
		return nil, apperr.NotFound("Account")
	}
	if projection == auth.ProjectionPublic {
		return store.account.Sanitized(), nil
	}
	found := *store.account
	return &found, nil
}

func (store *singleAccount) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	if store.account == nil || store.account.Email != email {
		return nil, apperr.NotFound("Account")
	}
	found := *store.account
	return &found, nil
}

func (store *singleAccount) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	return store.account != nil && (store.account.Username == username || store.account.Email == email), nil
}

func (store *singleAccount) Update(ctx context.Context, id string, update auth.AccountUpdate) (*auth.Account, error) {
	if update.FullName != nil {
		store.account.FullName = *update.FullName
	}
	if update.Email != nil {
		store.account.Email = *update.Email
	}
	if update.PasswordHash != nil {
		store.account.PasswordHash = *update.PasswordHash
	}
	return store.FindByID(ctx, id, auth.ProjectionPublic)
}

// testClock drives token issuing and validation.
type testClock struct {
	now time.Time
}

func (clock *testClock) Now() time.Time { return clock.now }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	router, _ := newClockedRouter(t)
	return router
}

func newClockedRouter(t *testing.T) (http.Handler, *testClock) {
	t.Helper()

	clock := &testClock{now: time.Now()}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  "a",
		RefreshSecret: "r",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		Issuer:        "tuber.test",
		Now:           clock.Now,
	})
	require.NoError(t, err)

	store := &singleAccount{}
	authService := auth.NewService(auth.ServiceDeps{
		Accounts: store,
		Sessions: auth.NewRedisSessionStore(client, tokens.RefreshTTL()),
		Tokens:   tokens,
		Hasher:   &sec.BcryptHasher{Cost: bcrypt.MinCost},
		Logger:   logger,
	})

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return nil },
		CheckSessions: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}, logger)

	cfg := &config.Config{ServerPort: "0", CORSAllowedOrigin: "https://tuber.app"}
	router := api.NewRouter(cfg, logger, tokens, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, auth.NewCookieWriter(false)),
		Account:   account.NewHandler(account.NewService(store, nil, logger)),
	})
	return router, clock
}

func serve(router http.Handler, method, path, body, bearer string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestRouter_EndToEnd drives register, login and /account/me through the full chain.
*/
func TestRouter_EndToEnd(t *testing.T) {
	router := newTestRouter(t)

	recorder := serve(router, http.MethodPost, "/api/v1/users/register",
		`{"username":"alice","fullName":"Alice A","email":"a@x.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))

	recorder = serve(router, http.MethodPost, "/api/v1/users/login", `{"email":"a@x.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var login struct {
		Data auth.SessionIssued `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &login))
	require.NotEmpty(t, login.Data.AccessToken)

	recorder = serve(router, http.MethodGet, "/api/v1/account/me", "", login.Data.AccessToken)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"username":"alice"`)

	recorder = serve(router, http.MethodGet, "/api/v1/account/me", "", "forged")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

// browser replays cookies the way a browser would, with no body and no header.
func browser(router http.Handler, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, nil)
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func signUpAndLogin(t *testing.T, router http.Handler) []*http.Cookie {
	t.Helper()

	recorder := serve(router, http.MethodPost, "/api/v1/users/register",
		`{"username":"alice","fullName":"Alice A","email":"a@x.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	recorder = serve(router, http.MethodPost, "/api/v1/users/login", `{"email":"a@x.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 2)
	return cookies
}

/*
TestRouter_CookieRefreshAfterAccessExpiry verifies a browser holding an
expired access cookie can still rotate its session and log in again.
*/
func TestRouter_CookieRefreshAfterAccessExpiry(t *testing.T) {
	router, clock := newClockedRouter(t)
	cookies := signUpAndLogin(t, router)

	clock.now = clock.now.Add(2 * time.Minute)

	recorder := browser(router, http.MethodGet, "/api/v1/account/me", cookies)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "TOKEN_EXPIRED")

	recorder = browser(router, http.MethodPost, "/api/v1/users/refresh-token", cookies)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	rotated := recorder.Result().Cookies()
	require.Len(t, rotated, 2)

	recorder = browser(router, http.MethodGet, "/api/v1/account/me", rotated)
	assert.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	request := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"email":"a@x.com","password":"pw123"}`))
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
}

/*
TestRouter_CookieRotationAndLogout drives refresh and logout with cookies only.
*/
func TestRouter_CookieRotationAndLogout(t *testing.T) {
	router, _ := newClockedRouter(t)
	cookies := signUpAndLogin(t, router)

	recorder := browser(router, http.MethodPost, "/api/v1/users/refresh-token", cookies)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	rotated := recorder.Result().Cookies()

	recorder = browser(router, http.MethodPost, "/api/v1/users/refresh-token", cookies)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "TOKEN_STALE")

	recorder = browser(router, http.MethodPost, "/api/v1/users/logout", rotated)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	for _, cleared := range recorder.Result().Cookies() {
		assert.Empty(t, cleared.Value)
		assert.Negative(t, cleared.MaxAge)
	}

	recorder = browser(router, http.MethodPost, "/api/v1/users/refresh-token", rotated)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "TOKEN_STALE")
}

/*
TestHealth verifies liveness and readiness probes.
*/
func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	recorder := serve(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = serve(router, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"redis"`)
}

/*
TestReadiness_Degraded verifies a failing dependency yields 503 without leaking the cause.
*/
func TestReadiness_Degraded(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return errors.New("password authentication failed") },
	}, logger)

	recorder := httptest.NewRecorder()
	readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "degraded")
	assert.NotContains(t, recorder.Body.String(), "password authentication")
}
