// Package errors provides the structured error type used across streamcast.
//
// Errors carry a machine-readable code, a human-readable message, a
// retryable flag and the HTTP status the SSE endpoint answers with. End of
// stream is never an error: only construction mistakes, closed handles and
// failing sources surface here.
package errors
