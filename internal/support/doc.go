// SPDX-License-Identifier: MPL-2.0

// Package support downloads, verifies and unpacks the support packages an app
// bundle is built on.
//
// Downloads are cached per URL under the user cache directory. Network and
// archive failures are reported as issue entries: a 404 is a missing network
// resource, other failure statuses a bad network resource, transport errors a
// network failure and anything wrong with the archive an invalid support
// package.
package support
