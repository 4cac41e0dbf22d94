// SPDX-License-Identifier: EPL-2.0

// Package pcm56play drives a PCM56 stereo DAC by bit-banging its serial
// interface from a timer interrupt, fed by a decoder running in task context.
//
// The moving parts live in sub packages:
//   - buffer: the ping-pong sample buffer shared by the ISR and the feed task
//   - dac: the bit-bang driver clocking one stereo sample into the DAC
//   - clock: the sample clock arming a periodic hardware (or soft) timer
//   - feed: the loop moving decoded blocks into the buffer
//   - player: track lifecycle and the play/stop/mode state machine
//   - formats: FLAC, WAV, AIFF, MP3 and Ogg Vorbis block decoders
//   - control: shared atomic state for the web UI and the player
//   - web: the HTTP control surface
//
// # Quick Start
//
// Render renders a whole stream the way the DAC would receive it, without
// any timing. It is handy for checking volume and format handling offline:
//
//	f, _ := os.Open("track.flac")
//	dec, _ := flac.Decoder{}.Decode(f)
//	samples, _ := pcm56play.Render(dec, 0)
//
// RenderWAV writes the same samples to a 16-bit stereo WAV file.
package pcm56play
