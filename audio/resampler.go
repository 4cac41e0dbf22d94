// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"

	"github.com/ik5/pcm56play/utils"
)

// DefaultResampleFrames is the output block size of a Resampler.
const DefaultResampleFrames = 1024

// Resampler converts a BlockDecoder to another sample rate using cubic
// interpolation. It is itself a BlockDecoder with the source's bit depth
// and channel count. Downsampling runs the source through a one-pole
// low-pass first.
//
// The final block may be empty.
type Resampler struct {
	Block

	// BlockFrames is the number of output frames per block. Zero means
	// DefaultResampleFrames. Set it before the first DecodeBlock.
	BlockFrames int

	src   BlockDecoder
	info  StreamInfo
	ratio float64 // source frames per output frame

	// frames[1] and frames[2] bracket the output position, frames[0] and
	// frames[3] are their outer neighbours
	frames [4][2]float64
	valid  [4]bool
	pos    float64
	next   int // next frame of the current source block

	primed bool
	state  DecoderState
	out    [2][]int32

	lowpass bool
	alpha   float64
	lp      [2]float64

	lo, hi float64
}

// NewResampler wraps src so it yields frames at dstRate.
func NewResampler(src BlockDecoder, dstRate int) (*Resampler, error) {
	info := src.Info()
	if info.SampleRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("%w: %d Hz to %d Hz", ErrInvalidRate, info.SampleRate, dstRate)
	}
	if info.BitDepth < 1 || info.BitDepth > 32 {
		return nil, fmt.Errorf("%w: %d bits", ErrInvalidDepth, info.BitDepth)
	}

	ratio := float64(info.SampleRate) / float64(dstRate)
	full := math.Ldexp(1, info.BitDepth-1)

	r := &Resampler{
		src:   src,
		info:  info,
		ratio: ratio,
		// simplified filter, cut off around the destination Nyquist rate
		lowpass: ratio > 1.0,
		alpha:   0.5,
		lo:      -full,
		hi:      full - 1,
	}
	r.info.SampleRate = dstRate
	if info.TotalFrames > 0 {
		r.info.TotalFrames = info.TotalFrames * uint64(dstRate) / uint64(info.SampleRate)
	}

	return r, nil
}

func (r *Resampler) Info() StreamInfo    { return r.info }
func (r *Resampler) State() DecoderState { return r.state }

// Close closes the source decoder.
func (r *Resampler) Close() error { return r.src.Close() }

// Source returns the wrapped decoder.
func (r *Resampler) Source() BlockDecoder { return r.src }

// nextFrame reads one frame from the source, decoding blocks as needed.
// ok is false once the source is exhausted.
func (r *Resampler) nextFrame() (f [2]float64, ok bool, err error) {
	for r.next >= r.src.BlockSize() {
		if r.src.State() == StateComplete {
			return f, false, nil
		}
		if err := r.src.DecodeBlock(); err != nil {
			return f, false, fmt.Errorf("resampler: %w", err)
		}
		r.next = 0
	}

	ch1, ch2 := r.src.Channel(0), r.src.Channel(1)
	f = [2]float64{float64(ch1[r.next]), float64(ch2[r.next])}
	r.next++

	if r.lowpass {
		for c := range f {
			// y[n] = alpha * x[n] + (1-alpha) * y[n-1]
			r.lp[c] = r.alpha*f[c] + (1-r.alpha)*r.lp[c]
			f[c] = r.lp[c]
		}
	}

	return f, true, nil
}

// prime loads the first frames. The first source frame doubles as its
// own left neighbour.
func (r *Resampler) prime() error {
	r.primed = true

	// start the filter on the first frame to avoid a warm-up transient
	lowpass := r.lowpass
	r.lowpass = false
	first, ok, err := r.nextFrame()
	r.lowpass = lowpass
	if err != nil || !ok {
		return err
	}
	r.lp = first

	r.frames[0], r.frames[1] = first, first
	r.valid[0], r.valid[1] = true, true

	for i := 2; i < len(r.frames); i++ {
		r.frames[i], r.valid[i], err = r.nextFrame()
		if err != nil {
			return err
		}
		if !r.valid[i] {
			break
		}
	}

	return nil
}

// advance shifts the window by one source frame.
func (r *Resampler) advance() error {
	copy(r.frames[:3], r.frames[1:])
	copy(r.valid[:3], r.valid[1:])

	if !r.valid[2] {
		r.valid[3] = false
		return nil
	}

	var err error
	r.frames[3], r.valid[3], err = r.nextFrame()

	return err
}

func (r *Resampler) sample(v float64) int32 {
	v = math.Round(v)
	if v < r.lo {
		v = r.lo
	} else if v > r.hi {
		v = r.hi
	}

	return int32(v)
}

// DecodeBlock produces up to BlockFrames output frames.
func (r *Resampler) DecodeBlock() error {
	if r.state == StateComplete {
		return ErrNoMoreBlocks
	}

	if r.out[0] == nil {
		size := r.BlockFrames
		if size <= 0 {
			size = DefaultResampleFrames
		}
		r.out = [2][]int32{make([]int32, size), make([]int32, size)}
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return err
		}
	}

	n := 0
	for n < len(r.out[0]) {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				r.SetChannels(r.out[0][:n], r.out[1][:n])
				return err
			}
		}

		// past the last source frame
		if !r.valid[1] {
			r.state = StateComplete
			break
		}

		for c := range r.out {
			y1 := r.frames[1][c]
			y0, y2 := r.frames[0][c], y1
			if r.valid[2] {
				y2 = r.frames[2][c]
			}
			y3 := y2
			if r.valid[3] {
				y3 = r.frames[3][c]
			}

			r.out[c][n] = r.sample(utils.CubicInterpolate(y0, y1, y2, y3, r.pos))
		}

		n++
		r.pos += r.ratio
	}

	r.SetChannels(r.out[0][:n], r.out[1][:n])

	return nil
}
