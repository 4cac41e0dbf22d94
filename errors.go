// SPDX-License-Identifier: EPL-2.0

package pcm56play

import "errors"

var ErrUnsupportedStream = errors.New("pcm56play: unsupported stream")
