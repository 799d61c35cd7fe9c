// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"errors"

	"github.com/taibuivan/tuber/internal/platform/apperr"
	"github.com/taibuivan/tuber/internal/platform/blob"
	"github.com/taibuivan/tuber/internal/users/auth"
)

// accountMap is a minimal auth.AccountStore keyed by id.
type accountMap map[string]*auth.Account

func (accounts accountMap) Create(ctx context.Context, account *auth.Account) error {
	accounts[account.ID] = account
	return nil
}

func (accounts accountMap) FindByID(ctx context.Context, id string, projection auth.Projection) (*auth.Account, error) {
	account, ok := accounts[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	return account.Sanitized(), nil
}

func (accounts accountMap) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return nil, errors.New("not used")
}

func (accounts accountMap) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	return false, errors.New("not used")
}

func (accounts accountMap) Update(ctx context.Context, id string, update auth.AccountUpdate) (*auth.Account, error) {
	account, ok := accounts[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	if update.Email != nil {
		for otherID, other := range accounts {
			if otherID != id && other.Email == *update.Email {
				return nil, apperr.Conflict("Email is already registered")
			}
		}
		account.Email = *update.Email
	}
	if update.FullName != nil {
		account.FullName = *update.FullName
	}
	if update.AvatarURL != nil {
		account.AvatarURL = *update.AvatarURL
	}
	if update.CoverImageURL != nil {
		account.CoverImageURL = *update.CoverImageURL
	}
	return account.Sanitized(), nil
}

func seedAccounts() accountMap {
	return accountMap{
		"acc-alice": {ID: "acc-alice", Username: "alice", Email: "a@x.com", FullName: "Alice A", PasswordHash: "digest", RefreshToken: "rt"},
		"acc-bob":   {ID: "acc-bob", Username: "bob", Email: "b@x.com", FullName: "Bob"},
	}
}

type stubMedia struct {
	folders []string
	url     string
	err     error
}

func (media *stubMedia) Put(ctx context.Context, folder, ownerID string, object blob.Object) (string, error) {
	media.folders = append(media.folders, folder)
	return media.url, media.err
}
