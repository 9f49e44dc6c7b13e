// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the playpub command tree.
//
// The root command carries the global --verbose and --config flags and loads
// configuration before any subcommand runs. "publish" drives a
// publish.Session; "config" inspects and writes the configuration file.
// Commands report failures through ExitError so Execute can map them to
// process exit codes.
package cmd
