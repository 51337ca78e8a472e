// SPDX-License-Identifier: MPL-2.0

// Package platform knows the target platforms satchel packages for, the output
// formats of each, and the host conditions a build needs.
//
// It also holds small host utilities: GOOS names, Windows reserved file names
// and sandbox detection.
package platform
