// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"strings"
	"sync"
)

// StereoSample is one output frame: a signed 16-bit value per DAC channel.
type StereoSample struct {
	Ch1 int16
	Ch2 int16
}

// Pack returns the sample as a single word, Ch1 in the high half.
func (s StereoSample) Pack() uint32 {
	return uint32(uint16(s.Ch1))<<16 | uint32(uint16(s.Ch2))
}

// UnpackStereo is the inverse of StereoSample.Pack.
func UnpackStereo(w uint32) StereoSample {
	return StereoSample{Ch1: int16(uint16(w >> 16)), Ch2: int16(uint16(w))}
}

// StreamInfo is the stream metadata a decoder exposes once its header was parsed.
type StreamInfo struct {
	// SampleRate of the PCM stream in Hz.
	SampleRate int
	// BitDepth of the raw decoded samples (e.g. 16 or 24).
	BitDepth int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels int
	// TotalFrames per channel, 0 when the container does not say.
	TotalFrames uint64
}

// DecoderState tells whether more blocks can be decoded.
type DecoderState uint8

const (
	StateMoreBlocks DecoderState = iota
	StateComplete
)

func (s DecoderState) String() string {
	switch s {
	case StateMoreBlocks:
		return "more_blocks"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// BlockDecoder decodes a stream one block at a time. Channel data stays
// valid until the next DecodeBlock call.
type BlockDecoder interface {
	// Info returns the stream metadata.
	Info() StreamInfo
	// DecodeBlock decodes exactly one block. After the final block State
	// reports StateComplete; calling it again returns ErrNoMoreBlocks.
	DecodeBlock() error
	// BlockSize is the number of frames in the current block.
	BlockSize() int
	// Channel returns the raw samples of channel ch for the current block,
	// or nil when ch is out of range. Mono streams return the same data for
	// channel 1.
	Channel(ch int) []int32
	// State reports whether more blocks remain.
	State() DecoderState

	// Close releases any resources.
	Close() error
}

// Decoder constructs a BlockDecoder from an input reader.
type Decoder interface {
	Decode(r io.Reader) (BlockDecoder, error)
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// ForPath looks up the decoder registered for the extension of path.
func (r *Registry) ForPath(path string) (Decoder, error) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 || i == len(path)-1 {
		return nil, ErrUnknownFormat
	}

	d, ok := r.Get(path[i+1:])
	if !ok {
		return nil, ErrUnknownFormat
	}

	return d, nil
}

// Formats lists the registered format keys.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	out := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		out = append(out, k)
	}

	return out
}
