// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/taibuivan/tuber/internal/platform/apperr"
	"github.com/taibuivan/tuber/internal/platform/blob"
	"github.com/taibuivan/tuber/internal/platform/constants"
	"github.com/taibuivan/tuber/internal/platform/sec"
	"github.com/taibuivan/tuber/internal/platform/validate"
	"github.com/taibuivan/tuber/pkg/uuid"
)

// # Contracts & Types

const passwordTooLong = "Maximum 72 bytes"

// TokenIssuer signs and verifies session tokens. Satisfied by [sec.TokenService].
type TokenIssuer interface {
	IssueAccess(identity sec.Identity) (string, error)
	IssueRefresh(accountID string) (string, error)
	VerifyRefresh(tokenString string) (*sec.RefreshClaims, error)
}

// PasswordHasher is satisfied by [sec.BcryptHasher].
type PasswordHasher interface {
	Hash(plainTextPassword string) (string, error)
	Verify(plainTextPassword, existingHash string) bool
}

// MediaStore uploads account media. Satisfied by [blob.S3Store].
type MediaStore interface {
	Put(ctx context.Context, folder, ownerID string, object blob.Object) (string, error)
}

// Policy holds deployment choices for account rules.
type Policy struct {
	// AvatarRequired rejects registrations without an avatar.
	AvatarRequired bool

	// RevokeSessionsOnPasswordChange clears the stored refresh token after a
	// successful password change.
	RevokeSessionsOnPasswordChange bool
}

// Service implements registration and the session lifecycle.
//
// # Review Process
//
// This service is critical for security. Any change to hashing, token
// rotation or the stale-token check must be reviewed with the session tests.
type Service struct {
	accounts AccountStore
	sessions SessionStore
	tokens   TokenIssuer
	hasher   PasswordHasher
	media    MediaStore
	policy   Policy
	logger   *slog.Logger
}

// ServiceDeps groups the collaborators of [Service]. Media may be nil when
// no bucket is configured; uploads then fail with an upstream error.
type ServiceDeps struct {
	Accounts AccountStore
	Sessions SessionStore
	Tokens   TokenIssuer
	Hasher   PasswordHasher
	Media    MediaStore
	Policy   Policy
	Logger   *slog.Logger
}

// NewService constructs a new [Service].
func NewService(deps ServiceDeps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accounts: deps.Accounts,
		sessions: deps.Sessions,
		tokens:   deps.Tokens,
		hasher:   deps.Hasher,
		media:    deps.Media,
		policy:   deps.Policy,
		logger:   logger,
	}
}

// normalizeIdentifier trims and lower-cases a username or email.
// A Caser is stateful, so one is built per call.
func normalizeIdentifier(value string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(value))
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Username   string
	FullName   string
	Email      string
	Password   string
	Avatar     *blob.Object
	CoverImage *blob.Object
}

/*
Register validates, hashes, and persists a brand new account.

Description: Required fields are checked after trimming. Username and email
are lower-cased. The existence pre-check gives a friendly Conflict; the unique
indexes catch the race between pre-check and insert. Media is uploaded only
after both checks pass.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *Account: Sanitized entity
  - error: ValidationError, Conflict or UpstreamFailure
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Account, error) {
	username := normalizeIdentifier(input.Username)
	email := normalizeIdentifier(input.Email)
	fullName := strings.TrimSpace(input.FullName)

	validator := &validate.Validator{}
	validator.
		Required(FieldFullName, fullName).
		Required(FieldEmail, email).
		Required(FieldUsername, username).
		Required(FieldPassword, input.Password).
		MaxLen(FieldUsername, username, constants.MaxUsernameLength).
		MaxLen(FieldFullName, fullName, constants.MaxFullNameLength).
		MaxLen(FieldEmail, email, constants.MaxEmailLength).
		Custom(FieldPassword, len(input.Password) > constants.MaxPasswordBytes, passwordTooLong).
		Custom(FieldAvatar, service.policy.AvatarRequired && input.Avatar == nil, "Avatar file is required")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	exists, err := service.accounts.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, apperr.Boundary(err)
	}
	if exists {
		return nil, apperr.Conflict("User with email or username already exists")
	}

	account := &Account{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		FullName: fullName,
	}

	// No uploads before the hash succeeds.
	if account.PasswordHash, err = service.hasher.Hash(input.Password); err != nil {
		return nil, apperr.Upstream(err)
	}

	if account.AvatarURL, err = service.upload(ctx, blob.FolderAvatars, account.ID, input.Avatar); err != nil {
		return nil, err
	}
	if account.CoverImageURL, err = service.upload(ctx, blob.FolderCovers, account.ID, input.CoverImage); err != nil {
		return nil, err
	}

	if err := service.accounts.Create(ctx, account); err != nil {
		return nil, apperr.Boundary(err)
	}

	service.logger.InfoContext(ctx, "auth_account_registered", slog.String("account_id", account.ID))

	return account.Sanitized(), nil
}

// upload returns "" for a nil object.
func (service *Service) upload(ctx context.Context, folder, accountID string, object *blob.Object) (string, error) {
	if object == nil {
		return "", nil
	}
	if service.media == nil {
		return "", apperr.Upstream(errors.New("auth: media storage is not configured"))
	}

	url, err := service.media.Put(ctx, folder, accountID, *object)
	if err != nil {
		return "", apperr.Upstream(err)
	}
	if url == "" {
		return "", apperr.Upstream(errors.New("auth: blob store returned an empty url"))
	}

	return url, nil
}

// # Session Lifecycle

/*
Login authenticates by email and starts a session.

Description: Issuing a new pair overwrites the stored refresh token, so the
most recent login wins and earlier refresh tokens become stale.

Returns:
  - *Account: Sanitized entity
  - SessionIssued: Fresh token pair
  - error: ValidationError, NotFound, InvalidCredential or UpstreamFailure
*/
func (service *Service) Login(ctx context.Context, email, password string) (*Account, SessionIssued, error) {
	email = normalizeIdentifier(email)
	if email == "" || password == "" {
		return nil, SessionIssued{}, apperr.ValidationError("Email and password are required")
	}

	account, err := service.accounts.FindByEmail(ctx, email)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, SessionIssued{}, apperr.NotFound("User")
		}
		return nil, SessionIssued{}, apperr.Boundary(err)
	}

	if !service.hasher.Verify(password, account.PasswordHash) {
		return nil, SessionIssued{}, apperr.InvalidCredential("Invalid user credentials")
	}

	session, err := service.issue(ctx, account)
	if err != nil {
		return nil, SessionIssued{}, err
	}

	service.logger.InfoContext(ctx, "auth_login_succeeded", slog.String("account_id", account.ID))

	return account.Sanitized(), session, nil
}

/*
Logout clears the stored refresh token.

Returns:
  - error: NotFound if the account vanished (callers treat it as already
    logged out), or UpstreamFailure
*/
func (service *Service) Logout(ctx context.Context, accountID string) error {
	if _, err := service.accounts.FindByID(ctx, accountID, ProjectionPublic); err != nil {
		return apperr.Boundary(err)
	}

	if err := service.sessions.ClearRefreshToken(ctx, accountID); err != nil {
		return apperr.Upstream(err)
	}

	service.logger.InfoContext(ctx, "auth_logout_succeeded", slog.String("account_id", accountID))
	return nil
}

/*
Refresh redeems a refresh token for a new pair.

Description:
 1. Verify signature, audience and expiry.
 2. Load the account; a missing account is reported exactly like a bad token.
 3. Compare with the stored token in constant time; a mismatch means the token
    was rotated out or the session was logged out.
 4. Issue and persist a new pair.

Returns:
  - SessionIssued: Rotated token pair
  - error: TokenInvalid, TokenExpired, TokenStale or UpstreamFailure
*/
func (service *Service) Refresh(ctx context.Context, presented string) (SessionIssued, error) {
	if presented == "" {
		return SessionIssued{}, apperr.Unauthorized("Unauthorized request")
	}

	claims, err := service.tokens.VerifyRefresh(presented)
	if err != nil {
		if errors.Is(err, sec.ErrTokenExpired) {
			return SessionIssued{}, apperr.TokenExpired("Refresh token has expired")
		}
		return SessionIssued{}, apperr.TokenInvalid("Invalid refresh token")
	}

	account, err := service.accounts.FindByID(ctx, claims.ID, ProjectionPublic)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return SessionIssued{}, apperr.TokenInvalid("Invalid refresh token")
		}
		return SessionIssued{}, apperr.Boundary(err)
	}

	stored, err := service.sessions.RefreshToken(ctx, account.ID)
	if err != nil {
		return SessionIssued{}, apperr.Boundary(err)
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		service.logger.WarnContext(ctx, "auth_refresh_token_stale", slog.String("account_id", account.ID))
		return SessionIssued{}, apperr.TokenStale("Refresh token is expired or used")
	}

	session, err := service.issue(ctx, account)
	if err != nil {
		return SessionIssued{}, err
	}

	service.logger.InfoContext(ctx, "auth_session_rotated", slog.String("account_id", account.ID))
	return session, nil
}

// issue signs a pair and stores the refresh half.
func (service *Service) issue(ctx context.Context, account *Account) (SessionIssued, error) {
	accessToken, err := service.tokens.IssueAccess(account.Identity())
	if err != nil {
		return SessionIssued{}, apperr.Upstream(err)
	}

	refreshToken, err := service.tokens.IssueRefresh(account.ID)
	if err != nil {
		return SessionIssued{}, apperr.Upstream(err)
	}

	if err := service.sessions.PersistRefreshToken(ctx, account.ID, refreshToken); err != nil {
		return SessionIssued{}, apperr.Boundary(err)
	}

	return SessionIssued{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// # Credential Management

// ChangePasswordInput holds the three password fields of the form.
type ChangePasswordInput struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

/*
ChangePassword replaces the password after verifying the current one.

Description: The new digest is computed here and passed explicitly in
AccountUpdate.PasswordHash. The stored refresh token survives unless
Policy.RevokeSessionsOnPasswordChange is set.

Returns:
  - error: ValidationError, NotFound, InvalidCredential or UpstreamFailure
*/
func (service *Service) ChangePassword(ctx context.Context, accountID string, input ChangePasswordInput) error {
	validator := &validate.Validator{}
	validator.
		Required(FieldOldPassword, input.OldPassword).
		Required(FieldNewPassword, input.NewPassword).
		Custom(FieldNewPassword, len(input.NewPassword) > constants.MaxPasswordBytes, passwordTooLong).
		Custom(FieldConfirmPassword, input.NewPassword != input.ConfirmPassword, "Passwords do not match")
	if err := validator.Err(); err != nil {
		return err
	}

	account, err := service.accounts.FindByID(ctx, accountID, ProjectionCredentials)
	if err != nil {
		return apperr.Boundary(err)
	}

	if !service.hasher.Verify(input.OldPassword, account.PasswordHash) {
		return apperr.InvalidCredential("Invalid old password")
	}

	hash, err := service.hasher.Hash(input.NewPassword)
	if err != nil {
		return apperr.Upstream(err)
	}

	if _, err := service.accounts.Update(ctx, accountID, AccountUpdate{PasswordHash: &hash}); err != nil {
		return apperr.Boundary(err)
	}

	if service.policy.RevokeSessionsOnPasswordChange {
		if err := service.sessions.ClearRefreshToken(ctx, accountID); err != nil {
			return apperr.Upstream(err)
		}
	}

	service.logger.InfoContext(ctx, "auth_password_changed",
		slog.String("account_id", accountID),
		slog.Bool("sessions_revoked", service.policy.RevokeSessionsOnPasswordChange),
	)
	return nil
}
