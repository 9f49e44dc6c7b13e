// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"errors"
	"fmt"
)

var (
	// ErrRemoteProtocol is the sentinel error wrapped by RemoteProtocolError.
	ErrRemoteProtocol = errors.New("unexpected response from publishing API")

	// ErrSessionUsed is returned when Publish is called on a Session that
	// already ran.
	ErrSessionUsed = errors.New("publish session already used")
)

type (
	// RemoteProtocolError is returned when a call succeeded at the transport
	// level but the response lacks a required field.
	RemoteProtocolError struct {
		Op  string
		Msg string
	}

	// StepError reports which transition of the edit transaction failed.
	// EditID is set when an edit had already been created, i.e. when the
	// failure left an open edit behind on the server.
	StepError struct {
		Target State
		EditID string
		Err    error
	}
)

// Error implements the error interface.
func (e *RemoteProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *RemoteProtocolError) Unwrap() error { return ErrRemoteProtocol }

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.EditID == "" {
		return fmt.Sprintf("%s: %v", e.Target.step(), e.Err)
	}
	return fmt.Sprintf("%s (edit %s): %v", e.Target.step(), e.EditID, e.Err)
}

// Unwrap returns the cause, which is propagated unchanged.
func (e *StepError) Unwrap() error { return e.Err }

// Step returns the name of the failed transition, e.g. "upload apk".
func (e *StepError) Step() string { return e.Target.step() }
