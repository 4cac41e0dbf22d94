// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"time"

	"github.com/ik5/pcm56play/control"
	"github.com/ik5/pcm56play/feed"
)

// Run is the playback state machine. It returns when ctx is done.
func (p *Player) Run(ctx context.Context) error {
	p.state.SetStatus(control.StatusReady)
	p.logger.Info("player: ready")

	tick := time.NewTicker(p.cfg.IdlePoll)
	defer tick.Stop()
	defer p.setRelay(false)

	for {
		if p.storageReady() {
			if p.state.Status() == control.StatusReady && p.state.Consume(control.CmdPlay) {
				p.state.SetStatus(control.StatusPlaying)
			}

			if p.state.Status() == control.StatusPlaying {
				p.setRelay(true)
				p.playOnce(ctx)
			}
		}

		if p.state.Status() != control.StatusPlaying {
			p.setRelay(false)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

// storageReady reports whether the track file system can be read and
// keeps the status in line with it.
func (p *Player) storageReady() bool {
	_, err := fs.Stat(p.fsys, ".")
	switch st := p.state.Status(); {
	case err != nil && st != control.StatusNoStorage:
		p.logger.Warn("player: storage unavailable", "error", err)
		p.state.SetStatus(control.StatusNoStorage)
	case err == nil && st == control.StatusNoStorage:
		p.logger.Info("player: storage available")
		p.state.SetStatus(control.StatusReady)
	}

	return err == nil
}

func (p *Player) setRelay(on bool) {
	if p.relay == nil {
		return
	}
	if err := p.relay.Set(on); err != nil {
		p.logger.Error("player: relay", "on", on, "error", err)
	}
}

// playOnce plays the selected track and prepares the next one.
func (p *Player) playOnce(ctx context.Context) {
	name := p.state.Track()
	if name == "" {
		p.fail(ctx, ErrNoTrack)
		return
	}

	res, err := p.PlayTrack(ctx, name, p.cfg.SampleRate, p.cfg.Calibration)
	if err != nil {
		if ctx.Err() == nil {
			p.fail(ctx, err)
		}
		return
	}

	if res == feed.ResultCompleted && p.state.Status() == control.StatusPlaying {
		p.prepareNext(ctx, name)
	}
}

func (p *Player) fail(ctx context.Context, err error) {
	p.logger.Error("player: failure", "error", err)
	p.state.SetStatus(control.StatusReady)
	sleep(ctx, p.cfg.Backoff)
}

// prepareNext applies the play mode after a completed track.
func (p *Player) prepareNext(ctx context.Context, name string) {
	switch p.state.Mode() {
	case control.ModeOnce:
		p.state.SetStatus(control.StatusReady)
	case control.ModeLoop:
	case control.ModeAlbum:
		next, err := p.NextInAlbum(name)
		if err != nil {
			if !errors.Is(err, ErrAlbumEnd) {
				p.logger.Error("player: mode=album", "error", err)
			}
			p.state.SetStatus(control.StatusReady)
			return
		}

		if !p.state.AdvanceTrack(name, next) {
			p.logger.Info("player: track changed, album advance skipped", "track", p.state.Track())
			return
		}

		p.logger.Info("player: next track", "track", next)
		sleep(ctx, p.cfg.Backoff)
	}
}

// NextInAlbum returns the playable file that sorts after name in its
// directory. Files without a registered decoder are skipped.
func (p *Player) NextInAlbum(name string) (string, error) {
	dir, file := path.Split(path.Clean("/" + name))

	entries, err := fs.ReadDir(p.fsys, fsPath(dir))
	if err != nil {
		return "", err
	}

	// ReadDir sorts by name
	for _, e := range entries {
		if e.IsDir() || e.Name() <= file {
			continue
		}
		if _, err := p.registry.ForPath(e.Name()); err != nil {
			continue
		}

		return path.Join(dir, e.Name()), nil
	}

	return "", ErrAlbumEnd
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
