// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

var (
	ErrNoSubframes = errors.New("flac frame without subframes")
	ErrBadFrame    = errors.New("flac frame does not match stream info")
)
