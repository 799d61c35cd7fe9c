// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account provides profile management for the signed-in account.

# Security

All endpoints in this package require an active authentication session provided
by the RequireAuth middleware.
*/
package account

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/tuber/internal/platform/blob"
	"github.com/taibuivan/tuber/internal/platform/middleware"
	requestutil "github.com/taibuivan/tuber/internal/platform/request"
	"github.com/taibuivan/tuber/internal/platform/respond"
	"github.com/taibuivan/tuber/internal/platform/validate"
	"github.com/taibuivan/tuber/internal/users/auth"
)

// Handler implements the HTTP layer for account management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] with the account endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/me", handler.getMe)
	router.Patch("/me", handler.updateMe)
	router.Post("/avatar", handler.uploadMedia(auth.FieldAvatar, handler.accountService.UpdateAvatar))
	router.Post("/cover-image", handler.uploadMedia(auth.FieldCoverImage, handler.accountService.UpdateCoverImage))

	return router
}

type updateMeRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

/*
GetMe returns the caller's account.

GET /api/v1/account/me
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.GetCurrent(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Current user fetched successfully", account)
}

/*
UpdateMe replaces the full name and email.

PATCH /api/v1/account/me

Response:
  - 200: Account
  - 400: VALIDATION_ERROR
  - 409: CONFLICT: Email belongs to another account
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	account, err := handler.accountService.UpdateDetails(request.Context(), accountID, UpdateDetailsInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Account details updated successfully", account)
}

type mediaUpdater func(ctx context.Context, accountID string, object *blob.Object) (*auth.Account, error)

// uploadMedia handles POST /avatar and POST /cover-image (multipart, one file in field).
func (handler *Handler) uploadMedia(field string, update mediaUpdater) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		accountID, err := requestutil.RequiredAccountID(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		if !requestutil.IsMultipart(request) {
			respond.Error(writer, request, validate.RequiredError(field, "Expected multipart/form-data"))
			return
		}
		if err := requestutil.ParseMultipart(writer, request); err != nil {
			respond.Error(writer, request, err)
			return
		}

		object, err := requestutil.OptionalObject(request, field)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		if object != nil {
			defer object.Close()
		}

		account, err := update(request.Context(), accountID, object)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.OK(writer, "Media updated successfully", account)
	}
}
