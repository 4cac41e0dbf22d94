// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) block decoding.
//
// This package uses github.com/go-audio/aiff. Samples keep the file's
// native bit depth; mono is duplicated on both output channels and
// channels past the second are dropped.
//
//	dec, err := aiff.Decoder{}.Decode(file)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    ...
//	}
//
// go-audio needs an io.ReadSeeker. Other readers are loaded into memory
// before decoding.
package aiff
