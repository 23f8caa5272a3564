package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound         = NewDomainError("NOT_FOUND", "Resource not found")
	ErrUnauthorized     = NewDomainError("UNAUTHORIZED", "No operator identity present")
	ErrValidation       = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrRemoteWrite      = NewDomainError("REMOTE_WRITE_FAILURE", "Write to the remote store failed")
	ErrRemoteRead       = NewDomainError("REMOTE_READ_FAILURE", "Read from the remote store failed")
	ErrInvalidState     = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrMutationInFlight = NewDomainError("MUTATION_IN_FLIGHT", "Another mutation is still pending")
)
