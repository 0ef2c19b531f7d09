// Package service contains the business logic of the identity server:
// account registration, credential verification and the access/refresh
// session lifecycle. A Users instance is safe for concurrent use as long as
// the injected stores are.
//
// Errors returned from this package are sentinel values so the transport
// layer can map them to status codes without inspecting messages.
package service

import "errors"

var (
	// ErrFieldsRequired — a required text field is missing or blank after
	// trimming. Transport: 400.
	ErrFieldsRequired = errors.New("all fields are required")

	// ErrAvatarRequired — the avatar file is missing. Transport: 400.
	ErrAvatarRequired = errors.New("avatar file is required")

	// ErrAvatarUpload — the avatar upload failed; the avatar is mandatory so
	// registration is aborted. Transport: 400.
	ErrAvatarUpload = errors.New("avatar upload failed")

	// ErrMissingLogin — neither username nor email was supplied.
	// Transport: 400.
	ErrMissingLogin = errors.New("username or email is required")

	// ErrUserExists — username or email already taken. Transport: 409.
	ErrUserExists = errors.New("user with email or username already exists")

	// ErrUserNotFound — the referenced account does not exist.
	// Transport: 404.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials — the password does not match. Transport: 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — the refresh token is missing, malformed, expired,
	// or does not match the stored one (rotation reuse). Transport: 401.
	ErrInvalidToken = errors.New("refresh token invalid or expired")
)

// TokenPair bundles a short-lived access token and a long-lived refresh
// token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
