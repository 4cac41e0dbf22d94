// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/pcm56play/audio"
)

// DefaultBlockFrames is the block size used when Decoder.BlockFrames is 0.
const DefaultBlockFrames = 4096

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// blockDecoder wraps go-audio aiff.Decoder to implement audio.BlockDecoder
type blockDecoder struct {
	audio.Block

	dec    aiffReader
	info   audio.StreamInfo
	intBuf *goaudio.IntBuffer
	read   uint64
	done   bool
}

func newBlockDecoder(dec aiffReader, info audio.StreamInfo, frames int) *blockDecoder {
	return &blockDecoder{
		dec:  dec,
		info: info,
		intBuf: &goaudio.IntBuffer{
			Data:           make([]int, frames*info.Channels),
			Format:         &goaudio.Format{NumChannels: info.Channels, SampleRate: info.SampleRate},
			SourceBitDepth: info.BitDepth,
		},
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

	n, err := d.dec.PCMBuffer(d.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("aiff: %w", err)
	}

	// whole frames only
	n -= n % d.info.Channels
	if n < len(d.intBuf.Data) || err != nil {
		d.done = true
	}

	audio.Deinterleave(&d.Block, d.intBuf.Data[:n], d.info.Channels)

	d.read += uint64(d.BlockSize())
	if d.info.TotalFrames > 0 && d.read >= d.info.TotalFrames {
		d.done = true
	}

	return nil
}

type Decoder struct {
	// BlockFrames is the number of frames per block.
	BlockFrames int
}

func (d Decoder) Decode(r io.Reader) (audio.BlockDecoder, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()

	if dec.BitDepth == 0 || dec.BitDepth > 32 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 || format.SampleRate <= 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	info := audio.StreamInfo{
		SampleRate:  format.SampleRate,
		BitDepth:    int(dec.BitDepth),
		Channels:    format.NumChannels,
		TotalFrames: uint64(dec.NumSampleFrames),
	}

	frames := d.BlockFrames
	if frames <= 0 {
		frames = DefaultBlockFrames
	}

	return newBlockDecoder(dec, info, frames), nil
}
