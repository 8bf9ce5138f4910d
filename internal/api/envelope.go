package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the uniform response wrapper every handler returns:
// {success:true, data} on success, {success:false, error:{...}} on failure.
// No other shape crosses the boundary.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// ErrorCode is the machine-readable error kind. Clients branch on this,
// never on message text.
type ErrorCode string

const (
	CodeValidation    ErrorCode = "validation"
	CodeUnauthorized  ErrorCode = "unauthorized"
	CodeForbidden     ErrorCode = "forbidden"
	CodeNotFound      ErrorCode = "not_found"
	CodeQuotaExceeded ErrorCode = "quota_exceeded"
	CodeDuplicate     ErrorCode = "duplicate"
	CodeUpstream      ErrorCode = "upstream"
	CodeInternal      ErrorCode = "internal"
)

// Error is the error half of the envelope. Fields is populated for
// validation failures only and lists every violated field.
type Error struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Success writes a success envelope with the given HTTP status.
func Success(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// Fail writes an error envelope.
func Fail(w http.ResponseWriter, status int, code ErrorCode, message string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}})
}

// FailFields writes a validation error envelope carrying every failing field.
func FailFields(w http.ResponseWriter, message string, fields map[string]string) {
	WriteJSON(w, http.StatusBadRequest, Envelope{
		Success: false,
		Error:   &Error{Code: CodeValidation, Message: message, Fields: fields},
	})
}

// WriteJSON serialises resp as JSON and writes it to w with the given HTTP status code.
func WriteJSON(w http.ResponseWriter, status int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("WriteJSON: failed to encode response: %v", err)
	}
}
