// SPDX-License-Identifier: MPL-2.0

// Package testutil lets tests run the test binary itself as a child process
// with predictable behavior, so process handling can be exercised without
// depending on host tools.
//
// Each test package declares a TestHelperProcess that calls RunHelperProcess
// and builds argv with HelperArgs.
package testutil
