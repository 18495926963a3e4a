// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package auth

// # Client Messages

const (
	MsgEmailExists             = "Email already exists"
	MsgInvalidCredentials      = "Invalid email or password"
	MsgInvalidActivationToken  = "Activation token is invalid or expired"
	MsgInvalidActivationCode   = "Activation code invalid"
	MsgCannotRefresh           = "Could not refresh token"
	MsgMailFailed              = "Could not send the activation email"
	MsgSessionCacheUnavailable = "Session cache unavailable"
	MsgActivationMailSent      = "Please check your email to activate your account"
	MsgLoggedOut               = "Logged out successfully"
	MsgInvalidIdentityToken    = "Identity token is invalid or expired"
	MsgPasswordAccount         = "This account signs in with a password"
	MsgSocialAuthDisabled      = "Social sign-in is not enabled"
)

// # Error Codes

const (
	CodeEmailExists            = "EMAIL_EXISTS"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeInvalidActivationToken = "INVALID_ACTIVATION_TOKEN"
	CodeInvalidActivationCode  = "INVALID_ACTIVATION_CODE"
	CodeCannotRefresh          = "CANNOT_REFRESH"
	CodeInvalidIdentityToken   = "INVALID_IDENTITY_TOKEN"
	CodePasswordAccount        = "PASSWORD_ACCOUNT"
	CodeSocialAuthDisabled     = "SOCIAL_AUTH_DISABLED"
)

// # Mail

const activationSubject = "Activate your account"

// # Field Identifiers

// JSON field names of request and response bodies.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldAvatar          = "avatar"
	FieldActivationToken = "activationToken"
	FieldActivationCode  = "activation_code"
	FieldAccessToken     = "accessToken"
	FieldUser            = "user"
	FieldMessage         = "message"
)

// MsgAccountActivated confirms a successful activation.
const MsgAccountActivated = "Account activated successfully"
