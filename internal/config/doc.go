// SPDX-License-Identifier: MPL-2.0

// Package config handles user configuration using Viper with CUE as the file format.
//
// Configuration is loaded from config.cue in the satchel configuration directory
// ($XDG_CONFIG_HOME/satchel on Linux, ~/Library/Application Support/satchel on
// macOS, %APPDATA%\satchel on Windows), falling back to ./config.cue. Files are
// validated against the embedded #Config schema (config_schema.cue) and every
// key can be overridden with a SATCHEL_ environment variable, e.g.
// SATCHEL_VERBOSITY=2 or SATCHEL_UI_COLOR_SCHEME=dark.
package config
