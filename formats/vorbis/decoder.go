// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/pcm56play/audio"
	"github.com/ik5/pcm56play/utils"
)

// DefaultBlockFrames is the block size used when Decoder.BlockFrames is 0.
const DefaultBlockFrames = 4096

// oggReader is an interface for oggvorbis.Reader to allow testing.
// Read returns the number of interleaved values, not frames.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type blockDecoder struct {
	audio.Block

	dec  oggReader
	info audio.StreamInfo
	buf  []float32
	pcm  []int16
	done bool
}

func newBlockDecoder(dec oggReader, frames int, total uint64) *blockDecoder {
	ch := dec.Channels()

	return &blockDecoder{
		dec: dec,
		info: audio.StreamInfo{
			SampleRate:  dec.SampleRate(),
			BitDepth:    16,
			Channels:    ch,
			TotalFrames: total,
		},
		buf: make([]float32, frames*ch),
		pcm: make([]int16, frames*ch),
	}
}

func (d *blockDecoder) Info() audio.StreamInfo { return d.info }
func (d *blockDecoder) Close() error           { return nil }

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

	n := 0
	for n < len(d.buf) {
		m, err := d.dec.Read(d.buf[n:])
		n += m
		if errors.Is(err, io.EOF) {
			d.done = true
			break
		}
		if err != nil {
			return fmt.Errorf("vorbis: %w", err)
		}
		if m == 0 {
			break
		}
	}

	n -= n % d.info.Channels
	utils.Float32ToInt16Slice(d.pcm[:n], d.buf[:n])

	audio.Deinterleave(&d.Block, d.pcm[:n], d.info.Channels)

	return nil
}

type Decoder struct {
	// BlockFrames is the number of frames per block.
	BlockFrames int
}

func (d Decoder) Decode(r io.Reader) (audio.BlockDecoder, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if dec.Channels() <= 0 {
		return nil, ErrNoChannels
	}

	frames := d.BlockFrames
	if frames <= 0 {
		frames = DefaultBlockFrames
	}

	var total uint64
	if l := dec.Length(); l > 0 {
		total = uint64(l)
	}

	return newBlockDecoder(dec, frames, total), nil
}
