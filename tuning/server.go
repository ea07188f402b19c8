// Package tuning exposes the parallax tunables and the coordinate readout
// over HTTP so they can be adjusted while the window is running.
package tuning

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/smasonuk/parallax3d"
)

const RequestIDKey = "X-Request-ID"

// ReadoutFunc returns the latest coordinate readout.
type ReadoutFunc func() parallax3d.Readout

type Config struct {
	Addr    string `env:"PARALLAX_TUNING_ADDR" envDefault:"127.0.0.1:7070" validate:"required"`
	Enabled bool   `env:"PARALLAX_TUNING_ENABLED" envDefault:"true"`
}

type Server struct {
	app       *fiber.App
	log       logrus.FieldLogger
	validator *validator.Validate
	tunables  *parallax3d.Tunables
	readout   ReadoutFunc
	file      string
}

func NewFiber() *fiber.App {
	return fiber.New(
		fiber.Config{
			AppName:               "parallax3d tuning",
			BodyLimit:             64 * 1024,
			CaseSensitive:         true,
			DisableStartupMessage: true,
			JSONEncoder:           jsoniter.Marshal,
			JSONDecoder:           jsoniter.Unmarshal,
		})
}

// New builds the tuning server. file is where POST /api/tunables/save
// writes; an empty file disables saving. readout may be nil.
func New(t *parallax3d.Tunables, readout ReadoutFunc, file string, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		app:       NewFiber(),
		log:       log,
		validator: validator.New(),
		tunables:  t,
		readout:   readout,
		file:      file,
	}
	s.app.Use(requestIDMiddleware(), s.loggingMiddleware())
	s.Start(s.app.Group("/api"))
	return s
}

// App returns the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start(srv fiber.Router) {
	srv.Get("/tunables", s.ListTunables)
	srv.Patch("/tunables", s.ApplyTunables)
	srv.Post("/tunables/save", s.SaveTunables)
	srv.Get("/tunables/:name", s.GetTunable)
	srv.Put("/tunables/:name", s.SetTunable)

	srv.Get("/readout", s.GetReadout)
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("tuning server listening")
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func requestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDKey)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)
		return c.Next()
	}
}

func (s *Server) loggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := logrus.Fields{
			"request_id": requestID(c),
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"latency_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			fields["error"] = err.Error()
			s.log.WithFields(fields).Warn("request failed")
			return err
		}
		s.log.WithFields(fields).Debug("request")
		return nil
	}
}

func requestID(c *fiber.Ctx) string {
	id, ok := c.Locals(RequestIDKey).(string)
	if !ok || id == "" {
		return "unknown"
	}
	return id
}

// errorStatus maps tunables errors onto HTTP codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, parallax3d.ErrUnknownTunable):
		return fiber.StatusNotFound
	case errors.Is(err, parallax3d.ErrInvalidTunable):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) fail(c *fiber.Ctx, status int, err error) error {
	s.log.WithFields(logrus.Fields{
		"request_id": requestID(c),
		"path":       c.Path(),
		"error":      err.Error(),
	}).Warn("tuning request rejected")
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
