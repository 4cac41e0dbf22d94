// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"

	"github.com/ik5/pcm56play/audio"
)

// frameReader is an interface for flac.Stream to allow testing
type frameReader interface {
	ParseNext() (*frame.Frame, error)
	Close() error
}

type blockDecoder struct {
	audio.Block

	stream frameReader
	info   audio.StreamInfo
	read   uint64
	done   bool
}

func newBlockDecoder(stream frameReader, info audio.StreamInfo) *blockDecoder {
	return &blockDecoder{stream: stream, info: info}
}

func (d *blockDecoder) Info() audio.StreamInfo { return d.info }

// Close releases the stream. The underlying reader stays open.
func (d *blockDecoder) Close() error { return d.stream.Close() }

func (d *blockDecoder) State() audio.DecoderState {
	if d.done {
		return audio.StateComplete
	}

	return audio.StateMoreBlocks
}

func (d *blockDecoder) DecodeBlock() error {
	if d.done {
		return audio.ErrNoMoreBlocks
	}

	f, err := d.stream.ParseNext()
	if errors.Is(err, io.EOF) {
		d.done = true
		d.SetChannels(nil, nil)

		return nil
	}
	if err != nil {
		return fmt.Errorf("flac: frame %d: %w", d.read, err)
	}

	if len(f.Subframes) == 0 {
		return ErrNoSubframes
	}
	if int(f.Channels.Count()) != d.info.Channels {
		return fmt.Errorf("%w: %d channels", ErrBadFrame, f.Channels.Count())
	}

	ch1 := f.Subframes[0].Samples
	var ch2 []int32
	if len(f.Subframes) > 1 {
		ch2 = f.Subframes[1].Samples
	}
	d.SetChannels(ch1, ch2)

	d.read += uint64(d.BlockSize())
	if d.info.TotalFrames > 0 && d.read >= d.info.TotalFrames {
		d.done = true
	}

	return nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.BlockDecoder, error) {
	// hide any Close method, the caller owns r
	stream, err := flac.New(struct{ io.Reader }{r})
	if err != nil {
		return nil, fmt.Errorf("flac: %w", err)
	}

	si := stream.Info
	info := audio.StreamInfo{
		SampleRate:  int(si.SampleRate),
		BitDepth:    int(si.BitsPerSample),
		Channels:    int(si.NChannels),
		TotalFrames: si.NSamples,
	}

	return newBlockDecoder(stream, info), nil
}

// StreamInfo parses only the metadata of a FLAC stream.
func StreamInfo(r io.Reader) (audio.StreamInfo, error) {
	d, err := Decoder{}.Decode(r)
	if err != nil {
		return audio.StreamInfo{}, err
	}
	defer d.Close()

	return d.Info(), nil
}
