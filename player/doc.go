// SPDX-License-Identifier: EPL-2.0

// Package player runs tracks through the sample pipeline.
//
// A Player owns the sample buffer and the GPIO port. PlayTrack opens one
// file, picks a decoder by extension and plays it: the buffer is reset, a
// stream whose rate differs from the target is wrapped in an
// audio.Resampler, a dac.Driver and a clock.SampleClock are created for the session and a
// feed.Loop pushes samples until the track ends or a command interrupts
// it. Teardown always stops the clock before the pins are released.
//
// Run is the long-lived state machine around PlayTrack. It waits for a
// play command, plays the selected track and then applies the play mode:
//
//	once   back to ready
//	loop   the same track again
//	album  the next file of the track's directory, ready after the last
//
// Failures end the track, set the status back to ready and pause for the
// configured backoff before the next command is accepted.
package player
