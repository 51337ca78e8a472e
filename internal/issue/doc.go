// SPDX-License-Identifier: MPL-2.0

// Package issue defines the closed set of failures and warnings that satchel
// reports to users.
//
// Every entry is an *Error carrying one payload struct. The payload type
// selects the Kind, and the Kind fixes the numeric code, the class and the
// default skip-logfile flag. Messages are rendered from the payload alone, so
// two errors built from equal payloads always render identically.
//
// Raw failures (from os/exec, the filesystem, decoders) are translated into
// entries by the code that knows what was being attempted; anything that
// reaches the CLI untranslated is treated as an internal fault.
package issue
