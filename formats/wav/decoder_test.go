// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/pcm56play/audio"
	"github.com/ik5/pcm56play/internal/audiotest"
)

func wavBytes(t testing.TB, sampleRate, channels int, samples []int16) []byte {
	t.Helper()

	data, err := audiotest.WAV16(sampleRate, channels, samples)
	if err != nil {
		t.Fatalf("WAV16() error = %v", err)
	}

	return data
}

// decodeAll collects every block of d.
func decodeAll(t *testing.T, d audio.BlockDecoder) (sizes []int, ch1, ch2 []int32) {
	t.Helper()

	for d.State() != audio.StateComplete {
		if err := d.DecodeBlock(); err != nil {
			t.Fatalf("DecodeBlock() error = %v", err)
		}
		sizes = append(sizes, d.BlockSize())
		ch1 = append(ch1, d.Channel(0)...)
		ch2 = append(ch2, d.Channel(1)...)

		if len(sizes) > 1000 {
			t.Fatal("decoder never completed")
		}
	}

	return sizes, ch1, ch2
}

func TestDecoder_Stereo16(t *testing.T) {
	t.Parallel()

	var pcm []int16
	for i := range 10 {
		pcm = append(pcm, int16(i*100), int16(-i*100))
	}

	d, err := Decoder{BlockFrames: 4}.Decode(bytes.NewReader(wavBytes(t, 8000, 2, pcm)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := audio.StreamInfo{SampleRate: 8000, BitDepth: 16, Channels: 2, TotalFrames: 10}
	if got := d.Info(); got != want {
		t.Errorf("Info() = %+v, want %+v", got, want)
	}

	sizes, ch1, ch2 := decodeAll(t, d)
	if len(sizes) != 3 || sizes[0] != 4 || sizes[1] != 4 || sizes[2] != 2 {
		t.Errorf("block sizes = %v, want [4 4 2]", sizes)
	}

	for i := range 10 {
		if ch1[i] != int32(i*100) || ch2[i] != int32(-i*100) {
			t.Fatalf("frame %d = (%d, %d), want (%d, %d)", i, ch1[i], ch2[i], i*100, -i*100)
		}
	}

	if err := d.DecodeBlock(); !errors.Is(err, audio.ErrNoMoreBlocks) {
		t.Errorf("DecodeBlock() after end error = %v, want ErrNoMoreBlocks", err)
	}
}

func TestDecoder_MonoDuplicates(t *testing.T) {
	t.Parallel()

	d, err := Decoder{}.Decode(bytes.NewReader(wavBytes(t, 22050, 1, []int16{1, 2, 3})))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	_, ch1, ch2 := decodeAll(t, d)
	if len(ch1) != 3 {
		t.Fatalf("decoded %d frames, want 3", len(ch1))
	}
	for i := range ch1 {
		if ch1[i] != ch2[i] {
			t.Errorf("frame %d: ch1 = %d, ch2 = %d, want equal", i, ch1[i], ch2[i])
		}
	}
}

func TestDecoder_NonSeekableReader(t *testing.T) {
	t.Parallel()

	data := wavBytes(t, 8000, 2, []int16{5, -5, 6, -6})

	d, err := Decoder{}.Decode(struct{ io.Reader }{bytes.NewReader(data)})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	_, ch1, _ := decodeAll(t, d)
	if len(ch1) != 2 || ch1[0] != 5 || ch1[1] != 6 {
		t.Errorf("ch1 = %v, want [5 6]", ch1)
	}
}

func TestDecoder_NotWAVFile(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("this is clearly not a RIFF file at all, not even close")))
	if !errors.Is(err, ErrNotWavFile) {
		t.Errorf("Decode() error = %v, want ErrNotWavFile", err)
	}
}

func TestDecoder_NonPCMFormat(t *testing.T) {
	t.Parallel()

	data := wavBytes(t, 8000, 1, []int16{1, 2})
	binary.LittleEndian.PutUint16(data[20:22], 3) // IEEE float

	_, err := Decoder{}.Decode(bytes.NewReader(data))
	if !errors.Is(err, ErrOnlyPCMSupported) {
		t.Errorf("Decode() error = %v, want ErrOnlyPCMSupported", err)
	}
}

func TestDecoder_24Bit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hires.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	enc := wav.NewEncoder(f, 44100, 24, 2, formatPCM)
	samples := []int{0x123456, -0x123456, 0x7FFFFF, -0x800000}
	err = enc.Write(&goaudio.IntBuffer{
		Data:           samples,
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: 44100},
		SourceBitDepth: 24,
	})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	f.Close()

	f, err = os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	d, err := Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if d.Info().BitDepth != 24 {
		t.Errorf("BitDepth = %d, want 24", d.Info().BitDepth)
	}

	_, ch1, ch2 := decodeAll(t, d)
	if len(ch1) != 2 || ch1[0] != 0x123456 || ch2[0] != -0x123456 || ch1[1] != 0x7FFFFF || ch2[1] != -0x800000 {
		t.Errorf("decoded (%v, %v), want ([%d %d], [%d %d])", ch1, ch2, 0x123456, 0x7FFFFF, -0x123456, -0x800000)
	}
}

func TestDecoder_8BitIsSigned(t *testing.T) {
	t.Parallel()

	// 8-bit WAV stores unsigned samples centred on 128
	data, err := audiotest.WAV(8000, 8, 2, []int{128, 128, 255, 0, 129, 127})
	if err != nil {
		t.Fatal(err)
	}

	d, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if d.Info().BitDepth != 8 {
		t.Errorf("BitDepth = %d, want 8", d.Info().BitDepth)
	}

	_, ch1, ch2 := decodeAll(t, d)
	want1, want2 := []int32{0, 127, 1}, []int32{0, -128, -1}
	for i := range want1 {
		if ch1[i] != want1[i] || ch2[i] != want2[i] {
			t.Errorf("frame %d = (%d, %d), want (%d, %d)", i, ch1[i], ch2[i], want1[i], want2[i])
		}
	}
}

// mockPCMReader serves interleaved samples, n values per call at most.
type mockPCMReader struct {
	data []int
	err  error
}

func (m *mockPCMReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}

	n := copy(buf.Data, m.data)
	m.data = m.data[n:]

	return n, nil
}

func TestBlockDecoder_ExactMultipleEndsWithEmptyBlock(t *testing.T) {
	t.Parallel()

	info := audio.StreamInfo{SampleRate: 8000, BitDepth: 16, Channels: 2}
	d := newBlockDecoder(&mockPCMReader{data: []int{1, -1, 2, -2, 3, -3, 4, -4}}, info, 2)

	sizes, ch1, _ := decodeAll(t, d)
	if len(sizes) != 3 || sizes[2] != 0 {
		t.Errorf("block sizes = %v, want [2 2 0]", sizes)
	}
	if len(ch1) != 4 || ch1[3] != 4 {
		t.Errorf("ch1 = %v, want [1 2 3 4]", ch1)
	}
}

func TestBlockDecoder_DropsPartialFrame(t *testing.T) {
	t.Parallel()

	info := audio.StreamInfo{SampleRate: 8000, BitDepth: 16, Channels: 2}
	d := newBlockDecoder(&mockPCMReader{data: []int{1, -1, 2}}, info, 4)

	if err := d.DecodeBlock(); err != nil {
		t.Fatalf("DecodeBlock() error = %v", err)
	}
	if d.BlockSize() != 1 {
		t.Errorf("BlockSize() = %d, want 1", d.BlockSize())
	}
	if d.State() != audio.StateComplete {
		t.Errorf("State() = %v, want complete", d.State())
	}
}

func TestBlockDecoder_ReadError(t *testing.T) {
	t.Parallel()

	errDisk := errors.New("disk error")
	info := audio.StreamInfo{SampleRate: 8000, BitDepth: 16, Channels: 1}
	d := newBlockDecoder(&mockPCMReader{err: errDisk}, info, 4)

	if err := d.DecodeBlock(); !errors.Is(err, errDisk) {
		t.Errorf("DecodeBlock() error = %v, want %v", err, errDisk)
	}
}

func BenchmarkBlockDecoder_DecodeBlock(b *testing.B) {
	pcm := make([]int16, 2*DefaultBlockFrames*16)
	data := wavBytes(b, 44100, 2, pcm)

	b.ReportAllocs()
	for b.Loop() {
		d, err := Decoder{}.Decode(bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
		for d.State() != audio.StateComplete {
			if err := d.DecodeBlock(); err != nil {
				b.Fatal(err)
			}
		}
	}
}
