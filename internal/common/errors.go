// Package common defines shared constants and sentinel errors used across
// the todokeeper server and client. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Identity errors.
	ErrDuplicateIdentity = errors.New("identity already exists")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrAccountLocked     = errors.New("account is locked")
	ErrIdentityNotFound  = errors.New("identity not found")

	// Authorization errors. ErrAccessDenied is reserved for rules other than
	// ownership; a foreign task is always reported as ErrTaskNotFound.
	ErrAccessDenied = errors.New("access denied")

	// Task errors.
	ErrTaskNotFound = errors.New("task not found")

	// Token errors.
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrRefreshTokenExpired   = errors.New("refresh token expired")
)
