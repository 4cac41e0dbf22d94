// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrUnknownFormat = errors.New("no decoder registered for format")
	ErrNoMoreBlocks  = errors.New("decoder has no more blocks")
	ErrInvalidRate   = errors.New("invalid sample rate")
	ErrInvalidDepth  = errors.New("invalid bit depth")
)
