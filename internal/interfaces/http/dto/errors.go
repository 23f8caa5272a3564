package dto

import "net/http"

// Error codes mirror the domain error codes plus transport-only ones.
const (
	ErrCodeInternal     = "INTERNAL"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeInvalidState = "INVALID_STATE"
	ErrCodeMutation     = "MUTATION_IN_FLIGHT"
	ErrCodeRemoteWrite  = "REMOTE_WRITE_FAILURE"
	ErrCodeRemoteRead   = "REMOTE_READ_FAILURE"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeMutation:     http.StatusConflict,
	ErrCodeRemoteWrite:  http.StatusBadGateway,
	ErrCodeRemoteRead:   http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
