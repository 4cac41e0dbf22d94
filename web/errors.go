// SPDX-License-Identifier: EPL-2.0

package web

import "errors"

var (
	ErrNoStorage  = errors.New("no storage")
	ErrBadPath    = errors.New("bad path")
	ErrBadRequest = errors.New("bad request")
)
