// SPDX-License-Identifier: EPL-2.0

package player

import "errors"

var (
	ErrUnsupportedChannels = errors.New("player: more than two channels")
	ErrUnsupportedRate     = errors.New("player: unsupported sample rate")
	ErrUnsupportedDepth    = errors.New("player: unsupported bit depth")
	ErrNoTrack             = errors.New("player: no track selected")
	ErrAlbumEnd            = errors.New("player: last track of album")
)
