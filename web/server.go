// SPDX-License-Identifier: EPL-2.0

// Package web is the HTTP control surface of the player.
//
// Handlers only write to control.State; the player picks the requests up
// on its next poll.
package web

import (
	_ "embed"
	"io/fs"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ik5/pcm56play/audio"
	"github.com/ik5/pcm56play/control"
	"github.com/ik5/pcm56play/internal/log"
)

//go:embed index.html
var indexPage []byte

// Validator checks a track before it is queued.
type Validator interface {
	Validate(name string) (audio.StreamInfo, error)
}

// Server is the control surface server.
type Server struct {
	app    *fiber.App
	addr   string
	fsys   fs.FS
	state  *control.State
	tracks Validator
	logger *slog.Logger

	accessLog bool
}

type Option func(*Server)

// WithAccessLog logs every request with fiber's logger middleware.
func WithAccessLog() Option {
	return func(s *Server) { s.accessLog = true }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer builds the server. fsys is the music library, addr the listen
// address (":8080").
func NewServer(addr string, fsys fs.FS, state *control.State, tracks Validator, opts ...Option) *Server {
	s := &Server{
		addr:   addr,
		fsys:   fsys,
		state:  state,
		tracks: tracks,
		logger: log.With("component", "web"),
	}
	for _, opt := range opts {
		opt(s)
	}

	app := fiber.New(fiber.Config{
		AppName:               "PCM56 player",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if s.accessLog {
		app.Use(logger.New())
	}

	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html")
		return c.Send(indexPage)
	})

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/list", s.handleList)
	api.Get("/play", s.handlePlay)
	api.Post("/play", s.handlePlay)
	api.Get("/stop", s.handleStop)
	api.Post("/stop", s.handleStop)
	api.Get("/volume/:dir", s.handleVolume)
	api.Post("/volume/:dir", s.handleVolume)
	api.Get("/mode/:mode", s.handleMode)
	api.Post("/mode/:mode", s.handleMode)

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Start serves until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("web ui listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
