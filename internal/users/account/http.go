// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nikhilrai1/lms/internal/platform/constants"
	requestutil "github.com/Nikhilrai1/lms/internal/platform/request"
	"github.com/Nikhilrai1/lms/internal/platform/respond"
	"github.com/Nikhilrai1/lms/internal/platform/validate"
)

// Handler implements the HTTP layer for profile management.
//
// # Security
//
// Every endpoint requires the access-token gate.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// RegisterRoutes mounts the profile endpoints behind authenticate.
func (handler *Handler) RegisterRoutes(router chi.Router, authenticate func(http.Handler) http.Handler) {
	router.Group(func(protected chi.Router) {
		protected.Use(authenticate)

		protected.Get("/me", handler.getMe)
		protected.Put("/update-user-info", handler.updateInfo)
		protected.Put("/update-user-password", handler.updatePassword)
		protected.Put("/update-profile-picture", handler.updateAvatar)
	})
}

const fieldUser = "user"

/*
GET /api/v1/me.

Response:
  - 200: user: The authenticated profile
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), user.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Body{fieldUser: profile})
}

type updateInfoRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

/*
PUT /api/v1/update-user-info.

Request:
  - body: updateInfoRequest (both fields optional)

Response:
  - 201: user: The updated profile
  - 400: Validation failure or EMAIL_EXISTS
*/
func (handler *Handler) updateInfo(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateInfoRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	if input.Name != nil {
		v.Required("name", *input.Name).MaxLen("name", *input.Name, 100)
	}
	if input.Email != nil {
		v.Email("email", *input.Email)
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.accountService.UpdateInfo(request.Context(), user.ID, UpdateInfoInput{
		Name:  input.Name,
		Email: input.Email,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, respond.Body{fieldUser: updated})
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

/*
PUT /api/v1/update-user-password.

Response:
  - 201: Password replaced
  - 400: INVALID_OLD_PASSWORD, INVALID_USER or validation failure
*/
func (handler *Handler) updatePassword(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updatePasswordRequest
	if err := requestutil.Bind(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.UpdatePassword(request.Context(), user.ID, input.OldPassword, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, respond.Body{constants.FieldMessage: MsgPasswordUpdated})
}

type updateAvatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}

/*
PUT /api/v1/update-profile-picture.

Response:
  - 201: user: The profile with its new avatar
  - 400: Missing or undecodable image
*/
func (handler *Handler) updateAvatar(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateAvatarRequest
	if err := requestutil.Bind(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.accountService.UpdateAvatar(request.Context(), user.ID, input.Avatar)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, respond.Body{fieldUser: updated})
}
