// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"bytes"
	"fmt"

	"github.com/ik5/pcm56play/audio"
	"github.com/ik5/pcm56play/formats/wav"
	"github.com/ik5/pcm56play/internal/audiotest"
)

// Example_decoding decodes a short stereo file block by block.
func Example_decoding() {
	samples := []audio.StereoSample{{Ch1: 100, Ch2: -100}, {Ch1: 200, Ch2: -200}, {Ch1: 300, Ch2: -300}}
	data := &audiotest.Buffer{}
	rec := wav.NewRecorder(data, 16000)
	if err := rec.Write(samples); err != nil {
		fmt.Println(err)
		return
	}
	if err := rec.Close(); err != nil {
		fmt.Println(err)
		return
	}

	dec, err := wav.Decoder{BlockFrames: 2}.Decode(bytes.NewReader(data.Bytes()))
	if err != nil {
		fmt.Println(err)
		return
	}

	info := dec.Info()
	fmt.Printf("%d Hz, %d bit, %d channels\n", info.SampleRate, info.BitDepth, info.Channels)

	for dec.State() != audio.StateComplete {
		if err := dec.DecodeBlock(); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(dec.Channel(0), dec.Channel(1))
	}
	// Output:
	// 16000 Hz, 16 bit, 2 channels
	// [100 200] [-100 -200]
	// [300] [-300]
}

// Example_registry looks a decoder up by file extension.
func Example_registry() {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})

	_, err := reg.ForPath("/music/track.WAV")
	fmt.Println(err)

	_, err = reg.ForPath("/music/track.xyz")
	fmt.Println(err)
	// Output:
	// <nil>
	// no decoder registered for format
}
