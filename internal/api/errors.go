package api

import "net/http"

// BadRequest writes a 400 validation error response.
func BadRequest(w http.ResponseWriter, msg string) {
	Fail(w, http.StatusBadRequest, CodeValidation, msg)
}

// Unauthorized writes a 401 error response.
func Unauthorized(w http.ResponseWriter) {
	Fail(w, http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
}

// Forbidden writes a 403 error response.
func Forbidden(w http.ResponseWriter, msg string) {
	Fail(w, http.StatusForbidden, CodeForbidden, msg)
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, msg string) {
	Fail(w, http.StatusNotFound, CodeNotFound, msg)
}

// Conflict writes a 409 error response with the given code.
func Conflict(w http.ResponseWriter, code ErrorCode, msg string) {
	Fail(w, http.StatusConflict, code, msg)
}

// Internal writes a 500 error response.
func Internal(w http.ResponseWriter, msg string) {
	Fail(w, http.StatusInternalServerError, CodeInternal, msg)
}

// Upstream writes a 502 error response for failed external calls.
func Upstream(w http.ResponseWriter, msg string) {
	Fail(w, http.StatusBadGateway, CodeUpstream, msg)
}
