// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// Success bodies are flat objects carrying "success": true next to the
// handler's own fields; error bodies carry "success": false, the client-safe
// message and the machine-readable code. Handlers never write status codes
// for failures themselves, they hand the error to [Error].
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Nikhilrai1/lms/internal/platform/apperr"
	"github.com/Nikhilrai1/lms/internal/platform/constants"
	"github.com/Nikhilrai1/lms/internal/platform/ctxutil"
)

// Body is the set of top-level fields of a success response.
type Body map[string]any

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with "success": true merged into body.
func OK(writer http.ResponseWriter, body Body) {
	JSON(writer, http.StatusOK, withSuccess(body))
}

// Created writes a 201 Created response with "success": true merged into body.
func Created(writer http.ResponseWriter, body Body) {
	JSON(writer, http.StatusCreated, withSuccess(body))
}

func withSuccess(body Body) Body {
	out := make(Body, len(body)+1)
	for key, value := range body {
		out[key] = value
	}
	out[constants.FieldSuccess] = true
	return out
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	logger := ctxutil.GetLogger(request.Context())

	appError := apperr.As(err)
	if appError == nil {
		// Unexpected internal error: full details are logged, the client sees a generic message.
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	status := appError.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("kind", appError.Kind.String()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, status, ErrorEnvelope{
		Success: false,
		Message: appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	})
}
