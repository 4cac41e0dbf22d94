// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/pcm56play/audio"
)

// DefaultBlockFrames is the block size used when Decoder.BlockFrames is 0.
// It is one MPEG-1 Layer III frame.
const DefaultBlockFrames = 1152

const (
	channels      = 2
	bytesPerFrame = 4
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type blockDecoder struct {
	audio.Block

	dec  mp3Reader
	info audio.StreamInfo
	buf  []byte
	pcm  []int16
	done bool
}

func newBlockDecoder(dec mp3Reader, frames int, total uint64) *blockDecoder {
	return &blockDecoder{
		dec: dec,
		info: audio.StreamInfo{
			SampleRate:  dec.SampleRate(),
			BitDepth:    16,
			Channels:    channels,
			TotalFrames: total,
		},
		buf: make([]byte, frames*bytesPerFrame),
		pcm: make([]int16, frames*channels),
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

	// go-mp3 returns 16-bit little-endian stereo PCM bytes
	n, err := io.ReadFull(d.dec, d.buf)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		d.done = true
	case err != nil:
		return fmt.Errorf("mp3: %w", err)
	}

	n -= n % bytesPerFrame
	samples := n / 2
	for i := range samples {
		d.pcm[i] = int16(binary.LittleEndian.Uint16(d.buf[2*i:]))
	}

	audio.Deinterleave(&d.Block, d.pcm[:samples], channels)

	return nil
}

type Decoder struct {
	// BlockFrames is the number of frames per block.
	BlockFrames int
}

func (d Decoder) Decode(r io.Reader) (audio.BlockDecoder, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	frames := d.BlockFrames
	if frames <= 0 {
		frames = DefaultBlockFrames
	}

	// Length is known only for seekable inputs
	var total uint64
	if l := dec.Length(); l > 0 {
		total = uint64(l / bytesPerFrame)
	}

	return newBlockDecoder(dec, frames, total), nil
}
