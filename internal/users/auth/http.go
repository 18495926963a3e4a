// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/Nikhilrai1/lms/internal/platform/apperr"
	"github.com/Nikhilrai1/lms/internal/platform/constants"
	"github.com/Nikhilrai1/lms/internal/platform/middleware"
	requestutil "github.com/Nikhilrai1/lms/internal/platform/request"
	"github.com/Nikhilrai1/lms/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements the session lifecycle HTTP endpoints.
//
// The handler acts as a thin mediation layer: it decodes and validates
// bodies, calls [Service] and translates sessions into token cookies.
type Handler struct {
	authService *Service
	cookies     CookiePolicy
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service, cookies CookiePolicy) *Handler {
	return &Handler{authService: service, cookies: cookies}
}

/*
RegisterRoutes mounts the auth endpoints on router.

# Endpoints
  - POST /registration  : Starts a registration (throttled per IP).
  - POST /activate-user : Completes a registration (throttled per IP).
  - POST /login         : Establishes a session (throttled per IP).
  - POST /social-auth   : Sign-in from a verified provider ID token (throttled per IP).
  - GET  /refresh       : Rotates the token pair from the refresh cookie.
  - GET  /logout        : Ends the session (requires an access token).
*/
func (handler *Handler) RegisterRoutes(router chi.Router, authenticate func(http.Handler) http.Handler) {
	// One budget per route, so failed logins never block an activation.
	throttle := func() func(http.Handler) http.Handler {
		return credentialThrottle(constants.AuthRateLimitRequests, constants.AuthRateLimitWindow)
	}

	router.With(throttle()).Post("/registration", handler.register)
	router.With(throttle()).Post("/activate-user", handler.activate)
	router.With(throttle()).Post("/login", handler.login)
	router.With(throttle()).Post("/social-auth", handler.socialAuth)
	router.Get("/refresh", handler.refresh)

	router.With(authenticate).Get("/logout", handler.logout)
}

// credentialThrottle bounds brute force attempts on credential endpoints.
func credentialThrottle(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(func(request *http.Request) (string, error) {
			return middleware.ClientIP(request), nil
		}),
		httprate.WithLimitHandler(func(writer http.ResponseWriter, request *http.Request) {
			respond.Error(writer, request, apperr.RateLimited(int(window/time.Second)))
		}),
	)
}

// # Request Payloads

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type activateRequest struct {
	ActivationToken string `json:"activation_token" validate:"required"`
	ActivationCode  string `json:"activation_code" validate:"required,len=4,numeric"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type socialAuthRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

/*
Register starts a registration and mails the activation code.

POST /api/v1/registration

Response:
  - 201: message and activationToken
  - 400: Validation failure or EMAIL_EXISTS
  - 500: UPSTREAM_FAILURE when the mail cannot be sent
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.Bind(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.authService.Register(request.Context(), RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, respond.Body{
		FieldMessage:         fmt.Sprintf("%s: %s", MsgActivationMailSent, NormalizeEmail(input.Email)),
		FieldActivationToken: token,
	})
}

/*
Activate creates the account from a ticket and its emailed code.

POST /api/v1/activate-user

Response:
  - 201: Account created
  - 400: Invalid ticket, wrong code or EMAIL_EXISTS
*/
func (handler *Handler) activate(writer http.ResponseWriter, request *http.Request) {
	var input activateRequest
	if err := requestutil.Bind(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.authService.Activate(request.Context(), ActivateInput{
		ActivationToken: input.ActivationToken,
		ActivationCode:  input.ActivationCode,
	}); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, respond.Body{FieldMessage: MsgAccountActivated})
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/login

Response:
  - 200: user and accessToken, token cookies set
  - 400: INVALID_CREDENTIALS
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.Bind(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.writeSession(writer, session)
}

/*
SocialAuth signs in the subject of a provider ID token.

POST /api/v1/social-auth

Response:
  - 200: user and accessToken, token cookies set
  - 400: Missing or unverifiable idToken, PASSWORD_ACCOUNT
  - 403: SOCIAL_AUTH_DISABLED
*/
func (handler *Handler) socialAuth(writer http.ResponseWriter, request *http.Request) {
	var input socialAuthRequest
	if err := requestutil.Bind(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.SocialAuth(request.Context(), input.IDToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.writeSession(writer, session)
}

/*
Refresh rotates the token pair.

GET /api/v1/refresh

Response:
  - 200: accessToken, token cookies reset
  - 400: CANNOT_REFRESH
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var refreshToken string
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		refreshToken = cookie.Value
	}

	session, err := handler.authService.Refresh(request.Context(), refreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookies.SetSession(writer, session)
	respond.OK(writer, respond.Body{FieldAccessToken: session.AccessToken})
}

/*
Logout terminates the current session.

GET /api/v1/logout

Response:
  - 200: Cookies expired, session deleted
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookies.Clear(writer)

	if err := handler.authService.Logout(request.Context(), user.ID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Body{FieldMessage: MsgLoggedOut})
}

func (handler *Handler) writeSession(writer http.ResponseWriter, session *Session) {
	handler.cookies.SetSession(writer, session)
	respond.OK(writer, respond.Body{
		FieldUser:        session.User,
		FieldAccessToken: session.AccessToken,
	})
}
