package interactions

import (
	"errors"
	"net/http"
)

var (
	ErrMalformedInput     = errors.New("payload is neither JSON nor a URL-encoded form")
	ErrMissingCredential  = errors.New("application public key is not configured")
	ErrMissingAuthHeaders = errors.New("missing signature headers")
	ErrInvalidSignature   = errors.New("signature verification failed")
)

// StatusCode maps errors returned by this package to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMalformedInput), errors.Is(err, ErrMissingCredential):
		return http.StatusBadRequest
	case errors.Is(err, ErrMissingAuthHeaders), errors.Is(err, ErrInvalidSignature):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
