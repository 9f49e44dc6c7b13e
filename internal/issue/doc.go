// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing errors for playpub.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The catalog in issue.go holds longer Markdown guidance
// per failure class, rendered with glamour when the user asks for detail.
package issue
