// SPDX-License-Identifier: MPL-2.0

package playstore

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

var (
	// ErrAuthorization is the sentinel error wrapped by AuthorizationError.
	ErrAuthorization = errors.New("authorization failed")

	// ErrTransport is the sentinel error wrapped by TransportError.
	ErrTransport = errors.New("publishing API call failed")
)

type (
	// AuthorizationError is returned when the service-account credentials
	// cannot be parsed or exchanged for an access token.
	AuthorizationError struct {
		Err error
	}

	// TransportError is returned when a publishing API call fails at the
	// transport level: network errors, non-2xx statuses, quota rejections.
	// The cause is kept as-is so callers can inspect a *googleapi.Error.
	TransportError struct {
		Op  string
		Err error
	}
)

// Error implements the error interface.
func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrAuthorization, e.Err)
}

// Unwrap exposes both ErrAuthorization and the cause.
func (e *AuthorizationError) Unwrap() []error { return []error{ErrAuthorization, e.Err} }

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both ErrTransport and the cause.
func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// StatusCode returns the HTTP status reported by the API, or 0 when the
// failure happened before a response was received.
func (e *TransportError) StatusCode() int {
	var apiErr *googleapi.Error
	if errors.As(e.Err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
