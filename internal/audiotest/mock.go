// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"math"

	"github.com/ik5/pcm56play/audio"
)

// MockDecoder is a test helper that serves predefined blocks.
// It implements audio.BlockDecoder.
type MockDecoder struct {
	info   audio.StreamInfo
	blocks [][2][]int32
	next   int
	block  audio.Block
	closed bool

	// FailAt makes the DecodeBlock call for block index FailAt return Err.
	FailAt int
	Err    error

	// Decoded counts DecodeBlock calls that produced a block.
	Decoded int
}

// NewMockDecoder creates a decoder serving blocks, each a pair of channel
// slices of equal length.
func NewMockDecoder(info audio.StreamInfo, blocks ...[2][]int32) *MockDecoder {
	return &MockDecoder{info: info, blocks: blocks, FailAt: -1}
}

// NewRampDecoder creates a stereo decoder with n blocks of size frames. The
// sample at absolute frame f is f+1 on channel 1 and -(f+1) on channel 2.
func NewRampDecoder(bitDepth, n, size int) *MockDecoder {
	blocks := make([][2][]int32, n)
	for b := range n {
		ch1 := make([]int32, size)
		ch2 := make([]int32, size)
		for i := range size {
			v := int32(b*size + i + 1)
			ch1[i], ch2[i] = v, -v
		}
		blocks[b] = [2][]int32{ch1, ch2}
	}

	return NewMockDecoder(audio.StreamInfo{SampleRate: 44100, BitDepth: bitDepth, Channels: 2}, blocks...)
}

// NewSineDecoder creates a stereo decoder producing a sine at frequency Hz
// with full scale amplitude for bitDepth.
func NewSineDecoder(sampleRate, bitDepth, n, size int, frequency float64) *MockDecoder {
	amp := float64(int64(1)<<(bitDepth-1) - 1)
	blocks := make([][2][]int32, n)
	for b := range n {
		ch := make([]int32, size)
		for i := range size {
			tm := float64(b*size+i) / float64(sampleRate)
			ch[i] = int32(amp * math.Sin(2*math.Pi*frequency*tm))
		}
		blocks[b] = [2][]int32{ch, ch}
	}

	return NewMockDecoder(audio.StreamInfo{SampleRate: sampleRate, BitDepth: bitDepth, Channels: 2}, blocks...)
}

var ErrMockClosed = errors.New("audiotest: decoder closed")

func (m *MockDecoder) Info() audio.StreamInfo { return m.info }

func (m *MockDecoder) DecodeBlock() error {
	if m.closed {
		return ErrMockClosed
	}
	if m.next == m.FailAt && m.Err != nil {
		return m.Err
	}
	if m.next >= len(m.blocks) {
		return audio.ErrNoMoreBlocks
	}

	b := m.blocks[m.next]
	m.block.SetChannels(b[0], b[1])
	m.next++
	m.Decoded++

	return nil
}

func (m *MockDecoder) BlockSize() int         { return m.block.BlockSize() }
func (m *MockDecoder) Channel(ch int) []int32 { return m.block.Channel(ch) }

func (m *MockDecoder) State() audio.DecoderState {
	if m.next >= len(m.blocks) {
		return audio.StateComplete
	}

	return audio.StateMoreBlocks
}

func (m *MockDecoder) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDecoder) Closed() bool { return m.closed }
