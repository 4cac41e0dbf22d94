// SPDX-License-Identifier: EPL-2.0

package web

import (
	"cmp"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ik5/pcm56play/audio"
	"github.com/ik5/pcm56play/control"
	"github.com/ik5/pcm56play/player"
)

// Entry is one directory listing item. T is "d" for directories and "f"
// for files.
type Entry struct {
	T string `json:"t"`
	N string `json:"n"`
}

// handleError writes every error as {"error": ...}.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	s.logger.Debug("request failed", "path", c.Path(), "status", code, "error", err)

	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// pathParam reads query parameter key as a rooted, cleaned path. With
// enc=b64 the value is standard base64, as sent by the browser UI.
func pathParam(c *fiber.Ctx, key string) (string, error) {
	raw := c.Query(key, "/")
	if c.Query("enc") == "b64" {
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return "", fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s: %v", ErrBadPath, err))
		}
		raw = string(b)
	}

	return path.Clean("/" + raw), nil
}

// fsName maps a rooted path to an fs.FS name.
func fsName(p string) string {
	if p = strings.TrimPrefix(p, "/"); p == "" {
		return "."
	}

	return p
}

func (s *Server) checkStorage() error {
	if _, err := fs.Stat(s.fsys, "."); err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, ErrNoStorage.Error())
	}

	return nil
}

func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.state.Snapshot())
}

// handleList lists a directory of the library and remembers it as the
// browse directory.
func (s *Server) handleList(c *fiber.Ctx) error {
	dir, err := pathParam(c, "dir")
	if err != nil {
		return err
	}
	if err := s.checkStorage(); err != nil {
		return err
	}

	des, err := fs.ReadDir(s.fsys, fsName(dir))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	out := make([]Entry, 0, len(des))
	for _, de := range des {
		e := Entry{T: "f", N: de.Name()}
		if de.IsDir() {
			e.T = "d"
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b Entry) int {
		return cmp.Or(cmp.Compare(a.T, b.T), cmp.Compare(a.N, b.N))
	})

	s.state.SetBrowseDir(dir)

	return c.JSON(out)
}

// handlePlay validates the track and requests playback.
func (s *Server) handlePlay(c *fiber.Ctx) error {
	p, err := pathParam(c, "path")
	if err != nil {
		return err
	}
	if p == "/" {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s: missing path", ErrBadRequest))
	}
	if err := s.checkStorage(); err != nil {
		return err
	}

	info, err := s.tracks.Validate(p)
	if err != nil {
		s.logger.Info("play rejected", "track", p, "error", err)
		return fiber.NewError(playStatus(err), err.Error())
	}

	s.state.SetTrack(p)
	s.state.Request(control.CmdPlay)
	s.logger.Info("play requested", "track", p, "rate", info.SampleRate, "bits", info.BitDepth)

	return c.JSON(fiber.Map{"play": p})
}

func playStatus(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fiber.StatusNotFound
	case errors.Is(err, audio.ErrUnknownFormat):
		return fiber.StatusUnsupportedMediaType
	default:
		// unsupported channels, rate or depth, or an unreadable header
		return fiber.StatusUnprocessableEntity
	}
}

func (s *Server) handleStop(c *fiber.Ctx) error {
	s.state.Request(control.CmdStop)
	s.logger.Info("stop requested")

	return c.JSON(fiber.Map{"command": control.CmdStop.String()})
}

func (s *Server) handleVolume(c *fiber.Ctx) error {
	var v int
	switch c.Params("dir") {
	case "up":
		v = s.state.VolumeUp()
	case "down":
		v = s.state.VolumeDown()
	default:
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s: volume %q", ErrBadRequest, c.Params("dir")))
	}

	return c.JSON(fiber.Map{"volume": v})
}

func (s *Server) handleMode(c *fiber.Ctx) error {
	m, err := control.ParseMode(c.Params("mode"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s.state.SetMode(m)

	return c.JSON(fiber.Map{"mode": m.String()})
}

var _ Validator = (*player.Player)(nil)
