// SPDX-License-Identifier: MPL-2.0

// Package playstore talks to the Google Play Developer Publishing API.
//
// The package is organized into two concerns:
//   - auth.go: service-account credential exchange (ServiceAccount.Authorize)
//   - client.go: the edit-scoped publishing calls (insert, upload, track, commit)
//
// Every call is a single attempt; retry policy, if any, belongs to the caller.
package playstore
