// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"errors"
	"fmt"
)

const (
	// TrackAlpha is the closed testing track.
	TrackAlpha Track = "alpha"
	// TrackBeta is the open testing track.
	TrackBeta Track = "beta"
	// TrackProduction releases to all users.
	TrackProduction Track = "production"
	// TrackRollout is the staged rollout track. Rollout fractions are not supported.
	TrackRollout Track = "rollout"

	// DefaultTrack is used when no track is selected.
	DefaultTrack = TrackAlpha
)

// ErrInvalidTrack is the sentinel error wrapped by InvalidTrackError.
var ErrInvalidTrack = errors.New("invalid track")

type (
	// Track is a Play release track. Only the four declared values are valid;
	// build one from untrusted input with ParseTrack.
	Track string

	// InvalidTrackError is returned when a Track value is not recognized.
	// It wraps ErrInvalidTrack for errors.Is() compatibility.
	InvalidTrackError struct {
		Value Track
	}
)

// Error implements the error interface for InvalidTrackError.
func (e *InvalidTrackError) Error() string {
	return fmt.Sprintf("invalid track %q (valid: alpha, beta, production, rollout)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidTrackError) Unwrap() error { return ErrInvalidTrack }

// String returns the string representation of the Track.
func (t Track) String() string { return string(t) }

// IsValid returns whether the Track is one of the four release tracks,
// and a list of validation errors if it is not.
func (t Track) IsValid() (bool, []error) {
	switch t {
	case TrackAlpha, TrackBeta, TrackProduction, TrackRollout:
		return true, nil
	default:
		return false, []error{&InvalidTrackError{Value: t}}
	}
}

// ParseTrack converts s into a Track. Matching is exact: "Alpha" is rejected.
func ParseTrack(s string) (Track, error) {
	t := Track(s)
	if ok, errs := t.IsValid(); !ok {
		return "", errs[0]
	}
	return t, nil
}

// Tracks returns every valid track in display order.
func Tracks() []Track {
	return []Track{TrackAlpha, TrackBeta, TrackProduction, TrackRollout}
}
