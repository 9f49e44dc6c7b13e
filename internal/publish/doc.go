// SPDX-License-Identifier: MPL-2.0

// Package publish drives the four-step edit transaction that releases an
// APK to a Play track: create an edit, upload the binary, assign it to a
// track, commit the edit.
//
// A Session is an explicit state machine. Each step is a transition that
// takes the previous step's result value and returns the next one, so the
// edit id and the authorized client never live on the Session itself. The
// first failure moves the Session to Failed and no further remote call is
// made. An edit that was created before a failure is left open on the server.
package publish
