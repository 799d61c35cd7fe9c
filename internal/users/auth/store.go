// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # Account Data Access

// AccountStore defines the data access contract for accounts.
type AccountStore interface {

	/*
		Create persists a brand-new account.

		Returns:
		  - error: apperr.Conflict on a username or email unique violation
	*/
	Create(ctx context.Context, account *Account) error

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - id: string
		  - projection: Projection (ProjectionPublic for anything returned to clients)

		Returns:
		  - error: apperr.NotFound when absent
	*/
	FindByID(ctx context.Context, id string, projection Projection) (*Account, error)

	// FindByEmail returns the account with its password hash, or apperr.NotFound.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// ExistsByUsernameOrEmail reports whether either value is already taken.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// Update applies the non-nil fields of update and returns the public view.
	Update(ctx context.Context, id string, update AccountUpdate) (*Account, error)
}

// # Session Data Access

// SessionStore holds the single active refresh token of each account.
//
// Every write overwrites the previous value, so issuing a new token revokes
// the old one. Concurrent logins race and the last write wins.
type SessionStore interface {

	// PersistRefreshToken replaces the stored token.
	PersistRefreshToken(ctx context.Context, accountID, token string) error

	// ClearRefreshToken removes the stored token. Clearing twice is not an error.
	ClearRefreshToken(ctx context.Context, accountID string) error

	// RefreshToken returns the stored token, or "" when none is stored.
	RefreshToken(ctx context.Context, accountID string) (string, error)
}
