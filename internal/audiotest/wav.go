// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const formatPCM = 1

var ErrNegativeOffset = errors.New("audiotest: negative seek offset")

// Buffer is an in-memory io.WriteSeeker, enough for encoders that patch
// their header on Close.
type Buffer struct {
	data []byte
	pos  int
}

func (b *Buffer) Write(p []byte) (int, error) {
	if end := b.pos + len(p); end > len(b.data) {
		b.data = append(b.data, make([]byte, end-len(b.data))...)
	}
	n := copy(b.data[b.pos:], p)
	b.pos += n

	return n, nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(b.pos)
	case io.SeekEnd:
		base = int64(len(b.data))
	default:
		return 0, fmt.Errorf("audiotest: whence %d", whence)
	}

	pos := base + offset
	if pos < 0 {
		return 0, ErrNegativeOffset
	}
	b.pos = int(pos)

	return pos, nil
}

// Bytes returns the written data.
func (b *Buffer) Bytes() []byte { return b.data }

// WAV encodes interleaved PCM samples into a WAV file held in memory.
// 8-bit samples are written as stored, unsigned around 128.
func WAV(sampleRate, bitDepth, channels int, samples []int) ([]byte, error) {
	buf := &Buffer{}
	enc := wav.NewEncoder(buf, sampleRate, bitDepth, channels, formatPCM)

	err := enc.Write(&goaudio.IntBuffer{
		Data:           samples,
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("audiotest: wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("audiotest: wav: %w", err)
	}

	return buf.Bytes(), nil
}

// WAV16 is WAV for 16-bit samples.
func WAV16(sampleRate, channels int, samples []int16) ([]byte, error) {
	pcm := make([]int, len(samples))
	for i, s := range samples {
		pcm[i] = int(s)
	}

	return WAV(sampleRate, 16, channels, pcm)
}
