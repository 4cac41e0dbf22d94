// SPDX-License-Identifier: EPL-2.0

package control

import "errors"

var ErrUnknownMode = errors.New("unknown play mode")
