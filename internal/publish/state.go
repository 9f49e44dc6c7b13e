// SPDX-License-Identifier: MPL-2.0

package publish

const (
	// StateIdle is the initial state: nothing has been sent to the server.
	StateIdle State = iota
	// StateEditOpen indicates an edit was created and its id is known.
	StateEditOpen
	// StateUploaded indicates the APK was uploaded into the edit.
	StateUploaded
	// StateTrackAssigned indicates the uploaded version code was attached to the track.
	StateTrackAssigned
	// StateCommitted indicates the edit was committed (terminal state).
	StateCommitted
	// StateFailed indicates a step failed and the sequence was aborted (terminal state).
	StateFailed
)

// State represents the progress of a Session through the edit transaction.
type State int32

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditOpen:
		return "edit-open"
	case StateUploaded:
		return "uploaded"
	case StateTrackAssigned:
		return "track-assigned"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition can leave s.
func (s State) IsTerminal() bool {
	return s == StateCommitted || s == StateFailed
}

// step names the transition that enters s.
func (s State) step() string {
	switch s {
	case StateEditOpen:
		return "create edit"
	case StateUploaded:
		return "upload apk"
	case StateTrackAssigned:
		return "assign track"
	case StateCommitted:
		return "commit edit"
	default:
		return s.String()
	}
}
