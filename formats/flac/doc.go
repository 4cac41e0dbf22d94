// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC files with github.com/mewkiz/flac. Every FLAC
// frame is one block, so block sizes follow the encoder (typically 4096
// or 4608 samples) and samples keep the stream's bit depth.
package flac
