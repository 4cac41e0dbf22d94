// SPDX-License-Identifier: EPL-2.0

package audio

// Block holds the de-interleaved samples of one decoded block for up to
// two output channels. Decoders embed it to implement BlockSize and Channel.
type Block struct {
	data [2][]int32
	n    int
}

// Deinterleave fills the block from interleaved src holding channels
// samples per frame. Mono is duplicated on both channels, channels past the
// second are dropped. The backing arrays are reused across calls.
func Deinterleave[T ~int | ~int16 | ~int32](b *Block, src []T, channels int) {
	if channels <= 0 {
		b.n = 0
		return
	}

	frames := len(src) / channels
	for ch := range b.data {
		if cap(b.data[ch]) < frames {
			b.data[ch] = make([]int32, frames)
		}
		b.data[ch] = b.data[ch][:frames]
	}

	second := 1
	if channels == 1 {
		second = 0
	}

	for f := range frames {
		base := f * channels
		b.data[0][f] = int32(src[base])
		b.data[1][f] = int32(src[base+second])
	}

	b.n = frames
}

// SetChannels installs already split channel data without copying.
// A nil ch2 repeats ch1.
func (b *Block) SetChannels(ch1, ch2 []int32) {
	if ch2 == nil {
		ch2 = ch1
	}

	n := min(len(ch1), len(ch2))
	b.data[0] = ch1[:n]
	b.data[1] = ch2[:n]
	b.n = n
}

func (b *Block) BlockSize() int { return b.n }

func (b *Block) Channel(ch int) []int32 {
	if ch < 0 || ch >= len(b.data) {
		return nil
	}

	return b.data[ch][:b.n]
}
