// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/pcm56play/audio"
)

// DefaultBlockFrames is the block size used when Decoder.BlockFrames is 0.
const DefaultBlockFrames = 4096

const formatPCM = 1

// pcmReader is an interface for wav.Decoder to allow testing
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type blockDecoder struct {
	audio.Block

	dec  pcmReader
	info audio.StreamInfo
	buf  *goaudio.IntBuffer
	read uint64
	done bool
}

func newBlockDecoder(dec pcmReader, info audio.StreamInfo, frames int) *blockDecoder {
	return &blockDecoder{
		dec:  dec,
		info: info,
		buf: &goaudio.IntBuffer{
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

// DecodeBlock reads the next block. A short read ends the stream, so a
// stream that is a whole number of blocks long ends with an empty block.
func (d *blockDecoder) DecodeBlock() error {
	if d.done {
		return audio.ErrNoMoreBlocks
	}

	n, err := d.dec.PCMBuffer(d.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("wav: %w", err)
	}

	n -= n % d.info.Channels
	if n < len(d.buf.Data) || err != nil {
		d.done = true
	}

	// 8-bit PCM is unsigned
	if d.info.BitDepth == 8 {
		for i := range d.buf.Data[:n] {
			d.buf.Data[i] -= 128
		}
	}

	audio.Deinterleave(&d.Block, d.buf.Data[:n], d.info.Channels)

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
	rs, err := asReadSeeker(r)
	if err != nil {
		return nil, err
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	dec.ReadInfo()
	if dec.WavAudioFormat != formatPCM {
		return nil, fmt.Errorf("%w: format tag %d", ErrOnlyPCMSupported, dec.WavAudioFormat)
	}

	format := dec.Format()
	if format == nil || format.SampleRate <= 0 || dec.BitDepth == 0 {
		return nil, ErrUnsupportedWavLayout
	}
	if format.NumChannels <= 0 {
		return nil, ErrInvalidChannels
	}

	info := audio.StreamInfo{
		SampleRate: format.SampleRate,
		BitDepth:   int(dec.BitDepth),
		Channels:   format.NumChannels,
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}
	if frameBytes := int64(info.Channels * ((info.BitDepth + 7) / 8)); frameBytes > 0 {
		info.TotalFrames = uint64(dec.PCMLen() / frameBytes)
	}

	frames := d.BlockFrames
	if frames <= 0 {
		frames = DefaultBlockFrames
	}

	return newBlockDecoder(dec, info, frames), nil
}

// asReadSeeker returns r itself when it can seek, otherwise an in-memory
// copy; go-audio needs to seek between chunks.
func asReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading wav data: %w", err)
	}

	return bytes.NewReader(data), nil
}
