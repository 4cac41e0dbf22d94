// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/pcm56play/audio"
)

// Recorder streams stereo samples into a 16-bit WAV file of unknown
// length. The header sizes are patched on Close.
type Recorder struct {
	mu      sync.Mutex
	enc     *wav.Encoder
	buf     *goaudio.IntBuffer
	written uint64
	closed  bool
}

func NewRecorder(w io.WriteSeeker, sampleRate int) *Recorder {
	return &Recorder{
		enc: wav.NewEncoder(w, sampleRate, 16, 2, formatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 2, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}
}

func (r *Recorder) Write(samples []audio.StereoSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return io.ErrClosedPipe
	}
	if len(samples) == 0 {
		return nil
	}

	r.buf.Data = r.buf.Data[:0]
	for _, s := range samples {
		r.buf.Data = append(r.buf.Data, int(s.Ch1), int(s.Ch2))
	}

	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("wav: record: %w", err)
	}
	r.written += uint64(len(samples))

	return nil
}

// Frames is the number of stereo frames written so far.
func (r *Recorder) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.written
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	return r.enc.Close()
}
