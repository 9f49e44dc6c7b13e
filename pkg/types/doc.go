// SPDX-License-Identifier: MPL-2.0

// Package types defines small value types shared by the playpub packages.
// It imports only the standard library; domain packages import it, never the
// other way around.
package types
