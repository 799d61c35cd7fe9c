// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/tuber/internal/platform/apperr"
	"github.com/taibuivan/tuber/internal/platform/blob"
	"github.com/taibuivan/tuber/internal/platform/constants"
	"github.com/taibuivan/tuber/internal/platform/middleware"
	requestutil "github.com/taibuivan/tuber/internal/platform/request"
	"github.com/taibuivan/tuber/internal/platform/respond"
	"github.com/taibuivan/tuber/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the session endpoints mounted under /users.
//
// # Scope
//
// Every response that starts or rotates a session goes through the same
// [SessionIssued] value, rendered once as cookies and once in the JSON body.
type Handler struct {
	authService *Service
	cookies     CookieWriter
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, cookies CookieWriter) *Handler {
	return &Handler{authService: service, cookies: cookies}
}

// Routes returns a [chi.Router] with the session endpoints.
//
// # Endpoints
//   - POST /register        : Creates an account (JSON or multipart).
//   - POST /login           : Starts a session.
//   - POST /refresh-token   : Rotates the session.
//   - POST /logout          : Ends the session (auth).
//   - POST /update/password : Changes the password (auth).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh-token", handler.refresh)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Post("/update/password", handler.changePassword)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginResponse struct {
	User *Account `json:"user"`
	SessionIssued
}

/*
Register handles the creation of a new account.

POST /api/v1/users/register

Request:
  - Body: JSON registerRequest, or multipart form with the same fields plus
    optional "avatar" and "coverImage" files

Response:
  - 201: Account: Sanitized account
  - 400: VALIDATION_ERROR
  - 409: CONFLICT: Username or email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var (
		input  registerRequest
		avatar *blob.Object
		cover  *blob.Object
	)

	if requestutil.IsMultipart(request) {
		if err := requestutil.ParseMultipart(writer, request); err != nil {
			respond.Error(writer, request, err)
			return
		}

		input = registerRequest{
			Username: request.FormValue(FieldUsername),
			FullName: request.FormValue(FieldFullName),
			Email:    request.FormValue(FieldEmail),
			Password: request.FormValue(FieldPassword),
		}

		var err error
		if avatar, err = requestutil.OptionalObject(request, FieldAvatar); err != nil {
			respond.Error(writer, request, err)
			return
		}
		if avatar != nil {
			defer avatar.Close()
		}

		if cover, err = requestutil.OptionalObject(request, FieldCoverImage); err != nil {
			respond.Error(writer, request, err)
			return
		}
		if cover != nil {
			defer cover.Close()
		}
	} else if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Email != "" {
		validator := &validate.Validator{}
		if err := validator.Email(FieldEmail, input.Email).Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	account, err := handler.authService.Register(request.Context(), RegisterInput{
		Username:   input.Username,
		FullName:   input.FullName,
		Email:      input.Email,
		Password:   input.Password,
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "User registered successfully", account)
}

/*
Login authenticates by email and starts a session.

POST /api/v1/users/login

Response:
  - 200: loginResponse: Account plus accessToken/refreshToken, also set as cookies
  - 400: INVALID_CREDENTIAL: Wrong password
  - 404: NOT_FOUND: No account with this email
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	account, session, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookies.Write(writer, session)
	respond.OK(writer, "User logged in successfully", loginResponse{User: account, SessionIssued: session})
}

/*
Logout ends the caller's session.

POST /api/v1/users/logout

Description: A vanished account counts as already logged out. Cookies are
cleared in both cases.
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), accountID); err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
		respond.Error(writer, request, err)
		return
	}

	handler.cookies.Clear(writer)
	respond.OK(writer, "User logged out", nil)
}

/*
Refresh rotates the session.

POST /api/v1/users/refresh-token

Request:
  - Cookie: refreshToken, or Body: {"refreshToken": "..."} for non-browser clients

Response:
  - 200: SessionIssued: New pair, also set as cookies
  - 401: UNAUTHORIZED, TOKEN_INVALID, TOKEN_EXPIRED or TOKEN_STALE
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	presented := ""
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		presented = cookie.Value
	}

	if presented == "" {
		var body refreshRequest
		if err := requestutil.DecodeOptionalJSON(request, &body); err != nil {
			respond.Error(writer, request, err)
			return
		}
		presented = body.RefreshToken
	}

	session, err := handler.authService.Refresh(request.Context(), presented)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookies.Write(writer, session)
	respond.OK(writer, "Access token refreshed", session)
}

/*
ChangePassword replaces the caller's password.

POST /api/v1/users/update/password

Response:
  - 200: Password changed
  - 400: VALIDATION_ERROR or INVALID_CREDENTIAL
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	err = handler.authService.ChangePassword(request.Context(), accountID, ChangePasswordInput{
		OldPassword:     input.OldPassword,
		NewPassword:     input.NewPassword,
		ConfirmPassword: input.ConfirmPassword,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Password changed successfully", nil)
}
