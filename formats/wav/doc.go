// SPDX-License-Identifier: EPL-2.0

// Package wav decodes PCM WAV files block by block and records 16-bit
// stereo WAV files.
//
// Decoding uses github.com/go-audio/wav. Samples keep their native bit
// depth (8, 16, 24 or 32 bits) and are signed, 8-bit data is shifted
// down from its unsigned storage. Mono is duplicated on both output
// channels. Inputs that cannot seek are read into memory first.
//
//	dec, err := wav.Decoder{}.Decode(file)
//	for dec.State() != audio.StateComplete {
//	    if err := dec.DecodeBlock(); err != nil {
//	        return err
//	    }
//	    left, right := dec.Channel(0), dec.Channel(1)
//	    ...
//	}
//
// Recorder streams 16-bit stereo samples of unknown length into a
// seekable writer.
package wav
