// SPDX-License-Identifier: EPL-2.0

package feed

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/ik5/pcm56play/audio"
	"github.com/ik5/pcm56play/control"
	"github.com/ik5/pcm56play/internal/log"
)

// OutputBits is the width of a DAC word.
const OutputBits = 16

const yieldPause = time.Millisecond

// Result tells why Run returned without error.
type Result uint8

const (
	// ResultCompleted means the final block was drained into the buffer.
	ResultCompleted Result = iota
	// ResultStopped means a stop command ended the track.
	ResultStopped
	// ResultReplay means a play command arrived; the caller restarts with
	// the new target.
	ResultReplay
)

func (r Result) String() string {
	switch r {
	case ResultCompleted:
		return "completed"
	case ResultStopped:
		return "stopped"
	case ResultReplay:
		return "replay"
	default:
		return "unknown"
	}
}

// Producer is the task-context side of the sample buffer.
type Producer interface {
	Put(s audio.StereoSample) bool
	NeedsData() bool
}

// Loop feeds one track. Decoder, Buffer and State are required.
type Loop struct {
	Decoder audio.BlockDecoder
	Buffer  Producer
	State   *control.State

	// OutputBits defaults to OutputBits.
	OutputBits int
	// Yield gives up the processor. It defaults to a scheduler yield
	// followed by a short sleep.
	Yield func()
	// Logger defaults to the global logger.
	Logger *slog.Logger
}

func defaultYield() {
	runtime.Gosched()
	time.Sleep(yieldPause)
}

// Run feeds blocks until the decoder completes, a command interrupts the
// track, ctx is done or decoding fails.
func (l *Loop) Run(ctx context.Context) (Result, error) {
	yield := l.Yield
	if yield == nil {
		yield = defaultYield
	}
	logger := l.Logger
	if logger == nil {
		logger = log.L()
	}
	outBits := l.OutputBits
	if outBits == 0 {
		outBits = OutputBits
	}

	info := l.Decoder.Info()
	base := info.BitDepth - outBits
	logger.Debug("feed: start", "bit_depth", info.BitDepth, "base_shift", base)

	var (
		haveBlock bool
		ch1, ch2  []int32
		pos       int
		shift     int
	)

	for {
		if err := ctx.Err(); err != nil {
			return ResultStopped, err
		}

		if l.State.Consume(control.CmdStop) {
			l.State.SetStatus(control.StatusReady)
			logger.Info("feed: cmd=stop")

			return ResultStopped, nil
		}

		if l.State.Consume(control.CmdPlay) {
			l.State.SetStatus(control.StatusPlaying)
			logger.Info("feed: cmd=play")

			return ResultReplay, nil
		}

		if !haveBlock {
			if l.Decoder.State() == audio.StateComplete {
				return ResultCompleted, nil
			}

			if err := l.Decoder.DecodeBlock(); err != nil {
				return ResultStopped, fmt.Errorf("feed: decode block: %w", err)
			}

			ch1, ch2 = l.Decoder.Channel(0), l.Decoder.Channel(1)
			if n := min(len(ch1), len(ch2)); n < len(ch1) {
				ch1 = ch1[:n]
			}
			pos = 0
			shift = Shift(info.BitDepth, outBits, l.State.Volume())
			haveBlock = true

			yield()
			continue
		}

		pos = l.drain(ch1, ch2, pos, shift)
		if pos < len(ch1) {
			// write slot is full: wait for the consumer to swap
			if !l.Buffer.NeedsData() {
				yield()
			}
			continue
		}

		haveBlock = false
		if l.Decoder.State() == audio.StateComplete {
			logger.Debug("feed: decoder complete")
			return ResultCompleted, nil
		}

		yield()
	}
}

// drain puts samples starting at pos until the block ends or the buffer
// refuses one, and returns the next position to put.
func (l *Loop) drain(ch1, ch2 []int32, pos, shift int) int {
	for ; pos < len(ch1); pos++ {
		s := audio.StereoSample{
			Ch1: Apply(ch1[pos], shift),
			Ch2: Apply(ch2[pos], shift),
		}
		if !l.Buffer.Put(s) {
			break
		}
	}

	return pos
}
