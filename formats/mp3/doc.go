// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files block by block with
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit stereo, so mono files come out with both
// channels equal. A block defaults to one MPEG frame of 1152 samples.
// The total length is reported only when the input can seek.
package mp3
