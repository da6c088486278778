package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

type errorMapping struct {
	err    error
	status int
	code   string
	msg    string
}

// errorMappings is matched in order with errors.Is.
var errorMappings = []errorMapping{
	{common.ErrDuplicateIdentity, http.StatusConflict, common.CodeDuplicateIdentity, "A user with this email already exists."},
	{common.ErrInvalidCredential, http.StatusUnauthorized, common.CodeInvalidCredential, "The username or password is incorrect."},
	{common.ErrAccountLocked, http.StatusForbidden, common.CodeAccountLocked, "The account is locked."},
	{common.ErrTokenSignatureInvalid, http.StatusForbidden, common.CodeTokenSignatureInvalid, "The JWT signature is invalid."},
	{common.ErrTokenExpired, http.StatusForbidden, common.CodeTokenExpired, "The JWT token has expired."},
	{common.ErrRefreshTokenExpired, http.StatusUnauthorized, common.CodeRefreshTokenExpired, "The refresh token has expired."},
	{common.ErrInvalidToken, http.StatusUnauthorized, common.CodeInvalidToken, "The token is invalid."},
	{common.ErrIdentityNotFound, http.StatusNotFound, common.CodeIdentityNotFound, "User not found."},
	{common.ErrTaskNotFound, http.StatusNotFound, common.CodeTaskNotFound, "Todo not found."},
	{common.ErrAccessDenied, http.StatusForbidden, common.CodeAccessDenied, "You are not authorized to access this resource."},
}

const internalErrorMessage = "Unknown internal server error."

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorBody{Error: msg, Code: code})
}

// writeError renders err with the fixed status and code for its kind.
// Anything unrecognised is logged and reported as a 500 without details.
func writeError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, ErrorBody{
			Error:  "Validation failed.",
			Code:   common.CodeValidationFailed,
			Fields: verr.Fields,
		})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			log.Debug(r.Context(), "request failed", "request_id", chimid.GetReqID(r.Context()), "code", m.code)
			writeErr(w, m.status, m.code, m.msg)
			return
		}
	}

	log.Error(r.Context(), "unexpected error", "request_id", chimid.GetReqID(r.Context()), "error", err)
	writeErr(w, http.StatusInternalServerError, common.CodeInternal, internalErrorMessage)
}
