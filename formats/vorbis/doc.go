// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files block by block with
// github.com/jfreymuth/oggvorbis.
//
// Vorbis decodes to float samples; they are clamped to [-1, 1] and scaled
// to 16 bits, so the stream always reports a bit depth of 16.
package vorbis
