package tuning

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/smasonuk/parallax3d"
)

var errNoTunablesFile = errors.New("no tunables file configured")

type SetTunableRequest struct {
	Value *float64 `json:"value" validate:"required"`
}

type TunableResponse struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type ReadoutResponse struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	HeadX float64 `json:"headX"`
	HeadY float64 `json:"headY"`
	HeadZ float64 `json:"headZ"`
	Valid bool    `json:"valid"`
}

func (s *Server) ListTunables(c *fiber.Ctx) error {
	return c.JSON(s.tunables.Snapshot())
}

func (s *Server) GetTunable(c *fiber.Ctx) error {
	name := c.Params("name")
	v, ok := s.tunables.Lookup(name)
	if !ok {
		return s.fail(c, fiber.StatusNotFound, fmt.Errorf("%w: %q", parallax3d.ErrUnknownTunable, name))
	}
	return c.JSON(TunableResponse{Name: name, Value: v})
}

func (s *Server) SetTunable(c *fiber.Ctx) error {
	name := c.Params("name")

	var req SetTunableRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, fiber.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
	}
	if err := s.validator.Struct(req); err != nil {
		return s.fail(c, fiber.StatusBadRequest, err)
	}

	if err := s.tunables.Set(name, *req.Value); err != nil {
		return s.fail(c, errorStatus(err), err)
	}

	s.log.WithField("request_id", requestID(c)).Infof("tunable %s set to %v", name, *req.Value)
	return c.JSON(TunableResponse{Name: name, Value: *req.Value})
}

// ApplyTunables sets several values at once. Nothing changes if any entry
// is rejected.
func (s *Server) ApplyTunables(c *fiber.Ctx) error {
	var req map[string]float64
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, fiber.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
	}
	if err := s.tunables.Apply(req); err != nil {
		return s.fail(c, errorStatus(err), err)
	}
	return c.JSON(s.tunables.Snapshot())
}

func (s *Server) SaveTunables(c *fiber.Ctx) error {
	if s.file == "" {
		return s.fail(c, fiber.StatusConflict, errNoTunablesFile)
	}
	if err := parallax3d.SaveTunablesFile(s.tunables, s.file); err != nil {
		return s.fail(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"file": s.file})
}

func (s *Server) GetReadout(c *fiber.Ctx) error {
	if s.readout == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	r := s.readout()
	return c.JSON(ReadoutResponse{
		X:     r.X,
		Y:     r.Y,
		Z:     r.Z,
		Yaw:   r.Yaw,
		Pitch: r.Pitch,
		HeadX: r.HeadX,
		HeadY: r.HeadY,
		HeadZ: r.HeadZ,
		Valid: r.Valid,
	})
}
