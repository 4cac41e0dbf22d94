// SPDX-License-Identifier: EPL-2.0

// Package control holds the state shared between the control surface and
// the playback loop.
//
// Every field but the track has a single writer. The control surface
// requests commands and sets volume and play mode; the player consumes
// commands and publishes status. The control surface selects the track
// with SetTrack and the player only moves it along an album with
// AdvanceTrack, which never overwrites a newer selection. Values are
// plain atomics so neither side ever blocks on the other.
package control

import (
	"encoding/json"
	"fmt"
	"path"
	"sync/atomic"
)

// Command is the latest request from the control surface.
type Command uint32

const (
	CmdIdle Command = iota
	CmdPlay
	CmdStop
)

func (c Command) String() string {
	switch c {
	case CmdIdle:
		return "idle"
	case CmdPlay:
		return "play"
	case CmdStop:
		return "stop"
	default:
		return fmt.Sprintf("command(%d)", uint32(c))
	}
}

// Status is the player's lifecycle state.
type Status uint32

const (
	StatusInit Status = iota
	StatusNoStorage
	StatusReady
	StatusPlaying
)

func (s Status) String() string {
	switch s {
	case StatusInit:
		return "starting..."
	case StatusNoStorage:
		return "no storage"
	case StatusReady:
		return "ready"
	case StatusPlaying:
		return "playing"
	default:
		return fmt.Sprintf("status(%d)", uint32(s))
	}
}

// Mode selects what happens after a track completes.
type Mode uint32

const (
	ModeOnce Mode = iota
	ModeLoop
	ModeAlbum
)

func (m Mode) String() string {
	switch m {
	case ModeOnce:
		return "once"
	case ModeLoop:
		return "loop"
	case ModeAlbum:
		return "album"
	default:
		return fmt.Sprintf("mode(%d)", uint32(m))
	}
}

// ParseMode maps "once", "loop" and "album" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "once":
		return ModeOnce, nil
	case "loop":
		return ModeLoop, nil
	case "album":
		return ModeAlbum, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Volume limits, in 6 dB steps relative to the native bit depth.
const (
	VolumeMin = -6
	VolumeMax = 1
)

// State is the shared handle. The zero value is idle, status init, mode
// once, volume 0.
type State struct {
	cmd    atomic.Uint32
	status atomic.Uint32
	mode   atomic.Uint32
	volume atomic.Int32
	track  atomic.Pointer[string]
	browse atomic.Pointer[string]
}

// New returns a State in album mode, the power-on mode of the player.
func New() *State {
	s := &State{}
	s.SetMode(ModeAlbum)

	return s
}

// Request publishes cmd, replacing any unconsumed command.
func (s *State) Request(cmd Command) {
	s.cmd.Store(uint32(cmd))
}

// Command peeks at the pending command.
func (s *State) Command() Command {
	return Command(s.cmd.Load())
}

// Consume clears cmd if it is still the pending command and reports
// whether it did.
func (s *State) Consume(cmd Command) bool {
	return s.cmd.CompareAndSwap(uint32(cmd), uint32(CmdIdle))
}

func (s *State) Status() Status { return Status(s.status.Load()) }

func (s *State) SetStatus(st Status) { s.status.Store(uint32(st)) }

func (s *State) Mode() Mode { return Mode(s.mode.Load()) }

func (s *State) SetMode(m Mode) { s.mode.Store(uint32(m)) }

func (s *State) Volume() int { return int(s.volume.Load()) }

// SetVolume stores v clamped to [VolumeMin, VolumeMax] and returns the
// stored value.
func (s *State) SetVolume(v int) int {
	v = min(max(v, VolumeMin), VolumeMax)
	s.volume.Store(int32(v))

	return v
}

// VolumeUp raises the volume one step, saturating at VolumeMax.
func (s *State) VolumeUp() int {
	for {
		cur := s.volume.Load()
		if cur >= VolumeMax {
			return int(cur)
		}
		if s.volume.CompareAndSwap(cur, cur+1) {
			return int(cur + 1)
		}
	}
}

// VolumeDown lowers the volume one step, saturating at VolumeMin.
func (s *State) VolumeDown() int {
	for {
		cur := s.volume.Load()
		if cur <= VolumeMin {
			return int(cur)
		}
		if s.volume.CompareAndSwap(cur, cur-1) {
			return int(cur - 1)
		}
	}
}

// Track is the path of the selected track, empty when none.
func (s *State) Track() string {
	if p := s.track.Load(); p != nil {
		return *p
	}

	return ""
}

// SetTrack selects path. It is called by the control surface.
func (s *State) SetTrack(path string) {
	s.track.Store(&path)
}

// AdvanceTrack replaces the track with next only while from is still the
// selected track, and reports whether it did.
func (s *State) AdvanceTrack(from, next string) bool {
	cur := s.track.Load()
	if cur == nil || *cur != from {
		return false
	}

	return s.track.CompareAndSwap(cur, &next)
}

// BrowseDir is the directory last listed by the control surface, "/" by
// default.
func (s *State) BrowseDir() string {
	if p := s.browse.Load(); p != nil {
		return *p
	}

	return "/"
}

func (s *State) SetBrowseDir(dir string) {
	s.browse.Store(&dir)
}

// Snapshot is a point-in-time copy of State for reporting.
type Snapshot struct {
	Status  string `json:"status"`
	Command string `json:"command"`
	Mode    string `json:"mode"`
	Volume  int    `json:"volume"`
	Track   string `json:"track"`
	Dir     string `json:"dir"`
	File    string `json:"file"`
}

// Snapshot reports the playing track's directory and file name while
// playing, and the browse directory otherwise.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Status:  s.Status().String(),
		Command: s.Command().String(),
		Mode:    s.Mode().String(),
		Volume:  s.Volume(),
		Track:   s.Track(),
		Dir:     s.BrowseDir(),
	}
	if s.Status() == StatusPlaying && snap.Track != "" {
		snap.Dir, snap.File = path.Split(snap.Track)
		snap.Dir = path.Clean(snap.Dir)
	}

	return snap
}

// MarshalJSON encodes the current snapshot.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}
