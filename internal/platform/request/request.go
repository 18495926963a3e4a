// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nikhilrai1/lms/internal/platform/apperr"
	"github.com/Nikhilrai1/lms/internal/platform/ctxutil"
	"github.com/Nikhilrai1/lms/internal/platform/validate"
	"github.com/Nikhilrai1/lms/internal/users/identity"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, a validation error when
    the body exceeds the server limit, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.ValidationError("Request body too large")
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Bind decodes the JSON body into target and runs its `validate` tags.
*/
func Bind(request *http.Request, target any) error {
	if err := DecodeJSON(request, target); err != nil {
		return err
	}
	return validate.Struct(target)
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
RequiredUser returns the user attached by the auth gate.

Returns:
  - *identity.User: The session snapshot
  - error: apperr.Unauthenticated if the gate did not run
*/
func RequiredUser(request *http.Request) (*identity.User, error) {
	user := ctxutil.GetUser(request.Context())
	if user == nil {
		return nil, apperr.Unauthenticated("Please login to access this resource")
	}
	return user, nil
}
