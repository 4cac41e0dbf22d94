// SPDX-License-Identifier: EPL-2.0

package pcm56play

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/pcm56play/audio"
	"github.com/ik5/pcm56play/feed"
	"github.com/ik5/pcm56play/formats/wav"
)

// Render decodes dec to the end and returns every frame as it would be
// written to the DAC at the given volume. dec is not closed.
func Render(dec audio.BlockDecoder, volume int) ([]audio.StereoSample, error) {
	var out []audio.StereoSample

	err := render(dec, volume, func(block []audio.StereoSample) error {
		out = append(out, block...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// RenderWAV renders dec into ws as a 16-bit stereo WAV file and returns the
// number of frames written.
func RenderWAV(ws io.WriteSeeker, dec audio.BlockDecoder, volume int) (uint64, error) {
	rec := wav.NewRecorder(ws, dec.Info().SampleRate)

	err := render(dec, volume, rec.Write)
	if cerr := rec.Close(); err == nil {
		err = cerr
	}

	return rec.Frames(), err
}

func render(dec audio.BlockDecoder, volume int, emit func([]audio.StereoSample) error) error {
	info := dec.Info()
	if info.Channels < 1 || info.Channels > 2 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedStream, info.Channels)
	}
	if info.BitDepth < 1 || info.BitDepth > 32 {
		return fmt.Errorf("%w: %d bits", ErrUnsupportedStream, info.BitDepth)
	}

	shift := feed.Shift(info.BitDepth, feed.OutputBits, volume)
	var block []audio.StereoSample

	for dec.State() == audio.StateMoreBlocks {
		if err := dec.DecodeBlock(); err != nil {
			if errors.Is(err, audio.ErrNoMoreBlocks) {
				break
			}
			return fmt.Errorf("decode: %w", err)
		}

		ch1, ch2 := dec.Channel(0), dec.Channel(1)
		block = block[:0]
		for i := range dec.BlockSize() {
			block = append(block, audio.StereoSample{
				Ch1: feed.Apply(ch1[i], shift),
				Ch2: feed.Apply(ch2[i], shift),
			})
		}

		if len(block) == 0 {
			continue
		}
		if err := emit(block); err != nil {
			return err
		}
	}

	return nil
}
