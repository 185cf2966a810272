// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ads

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidRequest marks input validation failures detected before any
// network call. Test for it with errors.Is.
var ErrInvalidRequest = errors.New("invalid request")

// StatusError reports a non-200 response from the ADS API. Test for it
// with errors.As to read the status code.
type StatusError struct {
	// StatusCode is the HTTP status the API returned.
	StatusCode int

	// Message is the error text from the response body, when present.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ADS API returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("ADS API returned HTTP %d: %s", e.StatusCode, e.Message)
}

// RateLimited reports whether the response was an HTTP 429: the daily
// query quota is exhausted or requests are arriving too fast.
func (e *StatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// AuthFailed reports whether the response was an HTTP 401: the API key
// was rejected.
func (e *StatusError) AuthFailed() bool {
	return e.StatusCode == http.StatusUnauthorized
}
