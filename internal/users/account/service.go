// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/taibuivan/tuber/internal/platform/apperr"
	"github.com/taibuivan/tuber/internal/platform/blob"
	"github.com/taibuivan/tuber/internal/platform/constants"
	"github.com/taibuivan/tuber/internal/platform/validate"
	"github.com/taibuivan/tuber/internal/users/auth"
	"github.com/taibuivan/tuber/pkg/pointer"
)

// # Service Layer

// Service manages the profile of the signed-in account.
//
// It shares [auth.AccountStore] with the auth service; session state is never
// touched here.
type Service struct {
	accounts auth.AccountStore
	media    auth.MediaStore
	logger   *slog.Logger
}

// NewService constructs a new [Service]. media may be nil when no bucket is configured.
func NewService(accounts auth.AccountStore, media auth.MediaStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{accounts: accounts, media: media, logger: logger}
}

// # Profile Management

// GetCurrent returns the sanitized account of the caller.
func (service *Service) GetCurrent(ctx context.Context, accountID string) (*auth.Account, error) {
	account, err := service.accounts.FindByID(ctx, accountID, auth.ProjectionPublic)
	if err != nil {
		return nil, apperr.Boundary(err)
	}
	return account, nil
}

// UpdateDetailsInput holds the editable profile fields. Both are required.
type UpdateDetailsInput struct {
	FullName string
	Email    string
}

/*
UpdateDetails replaces the full name and email.

Description: The email is normalized like at registration. Taking another
account's email fails with Conflict, reported by the store's unique index.

Parameters:
  - ctx: context.Context
  - accountID: string
  - input: UpdateDetailsInput

Returns:
  - *auth.Account: Sanitized account after the update
  - error: ValidationError, Conflict, NotFound or UpstreamFailure
*/
func (service *Service) UpdateDetails(ctx context.Context, accountID string, input UpdateDetailsInput) (*auth.Account, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := cases.Lower(language.Und).String(strings.TrimSpace(input.Email))

	validator := &validate.Validator{}
	validator.
		Required(auth.FieldFullName, fullName).
		Required(auth.FieldEmail, email).
		MaxLen(auth.FieldFullName, fullName, constants.MaxFullNameLength).
		MaxLen(auth.FieldEmail, email, constants.MaxEmailLength)
	if email != "" {
		validator.Email(auth.FieldEmail, email)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	account, err := service.accounts.Update(ctx, accountID, auth.AccountUpdate{FullName: pointer.To(fullName), Email: pointer.To(email)})
	if err != nil {
		return nil, apperr.Boundary(err)
	}

	service.logger.InfoContext(ctx, "account_details_updated", slog.String("account_id", accountID))
	return account, nil
}

// # Media

// UpdateAvatar uploads a new avatar and stores its URL.
func (service *Service) UpdateAvatar(ctx context.Context, accountID string, object *blob.Object) (*auth.Account, error) {
	return service.replaceMedia(ctx, accountID, blob.FolderAvatars, auth.FieldAvatar, object)
}

// UpdateCoverImage uploads a new cover image and stores its URL.
func (service *Service) UpdateCoverImage(ctx context.Context, accountID string, object *blob.Object) (*auth.Account, error) {
	return service.replaceMedia(ctx, accountID, blob.FolderCovers, auth.FieldCoverImage, object)
}

func (service *Service) replaceMedia(ctx context.Context, accountID, folder, field string, object *blob.Object) (*auth.Account, error) {
	if object == nil {
		return nil, validate.RequiredError(field, "File is missing")
	}
	if service.media == nil {
		return nil, apperr.Upstream(errors.New("account: media storage is not configured"))
	}

	// Fail before uploading when the account is gone.
	if _, err := service.accounts.FindByID(ctx, accountID, auth.ProjectionPublic); err != nil {
		return nil, apperr.Boundary(err)
	}

	url, err := service.media.Put(ctx, folder, accountID, *object)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	if url == "" {
		return nil, apperr.Upstream(errors.New("account: blob store returned an empty url"))
	}

	update := auth.AccountUpdate{AvatarURL: pointer.To(url)}
	if folder == blob.FolderCovers {
		update = auth.AccountUpdate{CoverImageURL: pointer.To(url)}
	}

	account, err := service.accounts.Update(ctx, accountID, update)
	if err != nil {
		return nil, apperr.Boundary(err)
	}

	service.logger.InfoContext(ctx, "account_media_updated",
		slog.String("account_id", accountID),
		slog.String("folder", folder),
	)
	return account, nil
}
