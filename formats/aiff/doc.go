// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
// 8, 16, 24 and 32 bit PCM are accepted. The decoder needs to seek, so a
// plain io.Reader is read into memory first.
package aiff
