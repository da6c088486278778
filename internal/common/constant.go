package common

// AuthorizationHeaderName is the HTTP header carrying the access token,
// prefixed with BearerPrefix.
const (
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "
)

// Error codes carried in the "code" field of API error bodies.
const (
	CodeValidationFailed      = "validation_failed"
	CodeDuplicateIdentity     = "duplicate_identity"
	CodeInvalidCredential     = "invalid_credentials"
	CodeAccountLocked         = "account_locked"
	CodeUnauthorized          = "unauthorized"
	CodeInvalidToken          = "invalid_token"
	CodeTokenSignatureInvalid = "token_signature_invalid"
	CodeTokenExpired          = "token_expired"
	CodeRefreshTokenExpired   = "refresh_token_expired"
	CodeIdentityNotFound      = "identity_not_found"
	CodeTaskNotFound          = "task_not_found"
	CodeAccessDenied          = "access_denied"
	CodeRateLimited           = "rate_limited"
	CodeInternal              = "internal_error"
)
