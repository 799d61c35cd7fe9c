// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/tuber/internal/platform/apperr"
	"github.com/taibuivan/tuber/internal/platform/blob"
	"github.com/taibuivan/tuber/internal/platform/sec"
	"github.com/taibuivan/tuber/internal/users/auth"
)

// memStore is an in-memory AccountStore and SessionStore.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]auth.Account
	sessions map[string]string

	// failWith, when set, is returned by every call.
	failWith error
}

func newMemStore() *memStore {
	return &memStore{accounts: map[string]auth.Account{}, sessions: map[string]string{}}
}

func (store *memStore) Create(ctx context.Context, account *auth.Account) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failWith != nil {
		return store.failWith
	}
	for _, existing := range store.accounts {
		if existing.Email == account.Email || existing.Username == account.Username {
			return apperr.Conflict("User with email or username already exists")
		}
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	store.accounts[account.ID] = *account
	return nil
}

func (store *memStore) FindByID(ctx context.Context, id string, projection auth.Projection) (*auth.Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failWith != nil {
		return nil, store.failWith
	}
	account, ok := store.accounts[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	if projection == auth.ProjectionPublic {
		return account.Sanitized(), nil
	}
	return &account, nil
}

func (store *memStore) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failWith != nil {
		return nil, store.failWith
	}
	for _, account := range store.accounts {
		if account.Email == email {
			found := account
			return &found, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (store *memStore) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failWith != nil {
		return false, store.failWith
	}
	for _, account := range store.accounts {
		if account.Username == username || account.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (store *memStore) Update(ctx context.Context, id string, update auth.AccountUpdate) (*auth.Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failWith != nil {
		return nil, store.failWith
	}
	account, ok := store.accounts[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	if update.Email != nil {
		for otherID, other := range store.accounts {
			if otherID != id && other.Email == *update.Email {
				return nil, apperr.Conflict("Email is already registered")
			}
		}
		account.Email = *update.Email
	}
	if update.FullName != nil {
		account.FullName = *update.FullName
	}
	if update.PasswordHash != nil {
		account.PasswordHash = *update.PasswordHash
	}
	if update.AvatarURL != nil {
		account.AvatarURL = *update.AvatarURL
	}
	if update.CoverImageURL != nil {
		account.CoverImageURL = *update.CoverImageURL
	}
	account.UpdatedAt = time.Now()
	store.accounts[id] = account
	return account.Sanitized(), nil
}

func (store *memStore) PersistRefreshToken(ctx context.Context, accountID, token string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failWith != nil {
		return store.failWith
	}
	store.sessions[accountID] = token
	return nil
}

func (store *memStore) ClearRefreshToken(ctx context.Context, accountID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failWith != nil {
		return store.failWith
	}
	delete(store.sessions, accountID)
	return nil
}

func (store *memStore) RefreshToken(ctx context.Context, accountID string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failWith != nil {
		return "", store.failWith
	}
	return store.sessions[accountID], nil
}

func (store *memStore) storedHash(t *testing.T, email string) string {
	t.Helper()
	account, err := store.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return account.PasswordHash
}

// fakeMedia records uploads and returns deterministic URLs.
type fakeMedia struct {
	calls []string
	empty bool
	err   error
}

func (media *fakeMedia) Put(ctx context.Context, folder, ownerID string, object blob.Object) (string, error) {
	media.calls = append(media.calls, folder+"/"+ownerID+"/"+object.Filename)
	if media.err != nil {
		return "", media.err
	}
	if media.empty {
		return "", nil
	}
	return "https://cdn.test/" + folder + "/" + ownerID + "/" + object.Filename, nil
}

type fixture struct {
	service *auth.Service
	store   *memStore
	tokens  *sec.TokenService
	media   *fakeMedia
	clock   *time.Time
}

func newFixture(t *testing.T, policy auth.Policy) *fixture {
	t.Helper()

	now := time.Now()
	clock := &now
	tokens, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    10 * 24 * time.Hour,
		Issuer:        "tuber.test",
		Now:           func() time.Time { return *clock },
	})
	require.NoError(t, err)

	store := newMemStore()
	media := &fakeMedia{}
	service := auth.NewService(auth.ServiceDeps{
		Accounts: store,
		Sessions: store,
		Tokens:   tokens,
		Hasher:   &sec.BcryptHasher{Cost: bcrypt.MinCost},
		Media:    media,
		Policy:   policy,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return &fixture{service: service, store: store, tokens: tokens, media: media, clock: clock}
}

func (f *fixture) registerAlice(t *testing.T) *auth.Account {
	t.Helper()
	account, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: "alice",
		FullName: "Alice A",
		Email:    "a@x.com",
		Password: "pw123",
	})
	require.NoError(t, err)
	return account
}
