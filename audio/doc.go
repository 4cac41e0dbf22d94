// SPDX-License-Identifier: EPL-2.0

// Package audio defines the data model shared by the playback pipeline.
//
//   - StereoSample is one output frame, a signed 16-bit value per DAC
//     channel. Pack and UnpackStereo convert it to the single word the
//     sample buffer stores.
//   - BlockDecoder is the per-block interface every format decoder
//     implements. StreamInfo carries the metadata available once the
//     stream header was parsed.
//   - Registry maps file extensions to Decoder values.
//
// # Block Decoders
//
// A decoder produces one block per DecodeBlock call. Channel data is raw,
// at the stream's own bit depth, and stays valid until the next call.
// After the final block State reports StateComplete and further calls
// return ErrNoMoreBlocks:
//
//	for dec.State() != audio.StateComplete {
//	    if err := dec.DecodeBlock(); err != nil {
//	        return err
//	    }
//	    left, right := dec.Channel(0), dec.Channel(1)
//	    ...
//	}
//
// Mono streams return the same data for both channels. Decoders embed
// Block and fill it with Deinterleave or SetChannels.
//
// # Registry
//
//	reg := audio.NewRegistry()
//	reg.Register("flac", flac.Decoder{})
//	d, err := reg.ForPath("/music/album/01.flac")
//
// Keys are case-insensitive. The Registry is safe for concurrent use.
package audio
