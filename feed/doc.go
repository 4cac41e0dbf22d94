// SPDX-License-Identifier: EPL-2.0

// Package feed moves decoded blocks into the sample buffer.
//
// A Loop runs in task context for one track. It alternates between
// decoding one block and draining it into the buffer's producer side,
// converting each raw sample to the 16-bit output width with the current
// volume applied as a shift:
//
//	shift = (decoderBits - outputBits) - volume
//
// A positive shift is an arithmetic right shift, a negative one a left
// shift. Left shifts are not clipped and wrap like any fixed-width integer.
//
// The loop yields whenever the buffer refuses more samples and between
// decode and drain, and polls the stop and play commands at every
// iteration, so a command takes effect at the next poll point.
package feed
