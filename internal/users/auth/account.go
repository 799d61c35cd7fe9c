// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account registration and the session lifecycle.

It owns the Account entity, the single active refresh token per account, and
the rules for issuing, rotating and clearing session token pairs.

# Architecture

  - Service: registration, login, logout, refresh and password change.
  - AccountStore / SessionStore: persistence contracts, with PostgreSQL and
    Redis implementations.
  - CookieWriter: renders a [SessionIssued] into HTTP-only cookies.
*/
package auth

import (
	"time"

	"github.com/taibuivan/tuber/internal/platform/sec"
)

// # Domain Entities

// Account is a registered member of Tuber.
type Account struct {
	ID            string    `json:"_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar,omitempty"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Loaded only with ProjectionCredentials; never serialized.
	PasswordHash string `json:"-"`
	RefreshToken string `json:"-"`
}

// Sanitized returns a copy without credential fields.
func (account *Account) Sanitized() *Account {
	clean := *account
	clean.PasswordHash = ""
	clean.RefreshToken = ""
	return &clean
}

// Identity returns the claims embedded in access tokens for this account.
func (account *Account) Identity() sec.Identity {
	return sec.Identity{
		ID:       account.ID,
		Email:    account.Email,
		Name:     account.FullName,
		Username: account.Username,
	}
}

// Projection selects which columns a read loads.
type Projection int

const (
	// ProjectionPublic excludes the password hash and refresh token.
	ProjectionPublic Projection = iota

	// ProjectionCredentials also loads the password hash.
	ProjectionCredentials
)

// AccountUpdate lists the mutable columns. Nil fields are left untouched.
//
// PasswordHash carries an already computed digest: the store never hashes,
// so a re-hash happens only when the service sets this field.
type AccountUpdate struct {
	FullName      *string
	Email         *string
	PasswordHash  *string
	AvatarURL     *string
	CoverImageURL *string
}

// IsEmpty reports whether the update changes nothing.
func (update AccountUpdate) IsEmpty() bool {
	return update.FullName == nil &&
		update.Email == nil &&
		update.PasswordHash == nil &&
		update.AvatarURL == nil &&
		update.CoverImageURL == nil
}

// SessionIssued is a freshly issued token pair. The HTTP layer renders it
// twice: as cookies through [CookieWriter] and as the JSON body.
type SessionIssued struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// # Field Identifiers

// JSON and multipart field names of the auth endpoints.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldFullName        = "fullName"
	FieldAvatar          = "avatar"
	FieldCoverImage      = "coverImage"
	FieldOldPassword     = "oldPassword"
	FieldNewPassword     = "newPassword"
	FieldConfirmPassword = "confirmPassword"
	FieldRefreshToken    = "refreshToken"
)
