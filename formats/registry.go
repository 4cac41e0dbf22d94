// SPDX-License-Identifier: EPL-2.0

// Package formats registers every block decoder of this module.
package formats

import (
	"github.com/ik5/pcm56play/audio"
	"github.com/ik5/pcm56play/formats/aiff"
	"github.com/ik5/pcm56play/formats/flac"
	"github.com/ik5/pcm56play/formats/mp3"
	"github.com/ik5/pcm56play/formats/vorbis"
	"github.com/ik5/pcm56play/formats/wav"
)

// Register adds the decoders to r under their file extensions.
func Register(r *audio.Registry) {
	r.Register("flac", flac.Decoder{})
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
}

// NewRegistry returns a registry with every decoder registered.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	Register(r)

	return r
}
