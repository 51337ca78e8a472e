// SPDX-License-Identifier: MPL-2.0

// Package subprocess is the single point through which satchel executes
// external processes.
//
// A Runner wraps os/exec with three entry points: Run (run to completion),
// CheckOutput (run and capture standard output) and Spawn (start and hand back
// a live handle). Arguments of any type are coerced to text, caller-supplied
// environment variables are merged onto an inherited baseline, and diagnostics
// are emitted before and after every blocking call.
//
// Failures from os/exec are returned exactly as os/exec produced them. Callers
// translate them into issue entries.
package subprocess
