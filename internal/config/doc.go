// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from $XDG_CONFIG_HOME/playpub/config.cue on Linux,
// ~/Library/Application Support/playpub/config.cue on macOS and
// %APPDATA%\playpub\config.cue on Windows, falling back to ./config.cue.
// Files are validated against the embedded config_schema.cue. PLAYPUB_*
// environment variables override file values; command-line flags are applied
// on top by the caller.
package config
