// SPDX-License-Identifier: EPL-2.0

// Package dac drives a pair of PCM56 serial-input DACs, one per stereo
// channel, by bit-banging four general-purpose output lines.
//
// The two chips share the clock and latch-enable lines and each has its
// own data line. A stereo sample is shifted in most significant bit first,
// one bit per clock pulse, and becomes the analog output when latch-enable
// is cleared after the sixteenth bit. Latch-enable is raised together with
// the data of bit 14 and held for the rest of the frame.
//
// Pin writes go through a Port, which models a write-1-to-set /
// write-1-to-clear output register so that several lines change in a
// single write.
package dac
