package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Broadcast errors
const (
	// ErrCodeInvalidCapacity indicates a broadcast was built with a cache capacity below one.
	ErrCodeInvalidCapacity ErrorCode = "INVALID_CAPACITY"
	// ErrCodeClosed indicates an operation on a handle or component that was already closed.
	ErrCodeClosed ErrorCode = "CLOSED"
	// ErrCodeNotFound indicates the requested broadcast no longer exists.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Source errors
const (
	// ErrCodeSourceFailed indicates the wrapped source reported an error and was ended.
	ErrCodeSourceFailed ErrorCode = "SOURCE_FAILED"
	// ErrCodeTimeout indicates a wait on the source timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeContractViolation indicates a broken internal invariant.
	ErrCodeContractViolation ErrorCode = "CONTRACT_VIOLATION"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeSourceFailed: true,
	ErrCodeTimeout:      true,
	ErrCodeInternal:     false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
