// SPDX-License-Identifier: MPL-2.0

// Package diag provides the tiered diagnostic logger used by satchel.
//
// Above the base informational tier there are three diagnostic tiers:
//
//   - Tier1: the command line of every external process, shell-quoted.
//   - Tier2: output captured from external processes.
//   - Tier3: the full environment handed to external processes.
//
// Enabling a tier enables every tier below it. Each lifecycle stage of an
// invocation is collected into a Block and emitted with a single write, so
// output from concurrent invocations never interleaves within a stage.
//
// Every emitted line is also recorded in an in-memory transcript that the CLI
// persists as a log file when a run fails.
package diag
