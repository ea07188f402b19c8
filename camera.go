package parallax3d

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Start-up perspective used until the first off-axis projection is
// installed.
const (
	defaultFOV  = 40.0
	defaultNear = 0.1
	defaultFar  = 1000.0
)

// RenderCamera is what the renderer consumes: a projection matrix, a world
// position and a look direction. The projection is only replaced when a
// valid frustum is installed.
type RenderCamera struct {
	projection mgl64.Mat4
	frustum    Frustum
	installed  bool
	position   mgl64.Vec3
	direction  mgl64.Vec3
}

func NewRenderCamera(aspect float64) *RenderCamera {
	if aspect <= 0 {
		aspect = 1
	}
	return &RenderCamera{
		projection: mgl64.Perspective(mgl64.DegToRad(defaultFOV), aspect, defaultNear, defaultFar),
		frustum:    Frustum{Near: defaultNear, Far: defaultFar},
		direction:  mgl64.Vec3{0, 0, -1},
	}
}

// Install replaces the projection with the one built from f and moves the
// camera to eye. An invalid frustum is ignored and false is returned.
func (c *RenderCamera) Install(f Frustum, eye mgl64.Vec3) bool {
	if !f.Valid() {
		return false
	}
	c.projection = f.Matrix()
	c.frustum = f
	c.installed = true
	c.position = eye
	return true
}

// LookAlong points the camera along dir.
func (c *RenderCamera) LookAlong(dir mgl64.Vec3) {
	if dir.Len() == 0 {
		return
	}
	c.direction = dir.Normalize()
}

func (c *RenderCamera) SetPosition(p mgl64.Vec3) {
	c.position = p
}

func (c *RenderCamera) GetPosition() mgl64.Vec3 {
	return c.position
}

func (c *RenderCamera) Direction() mgl64.Vec3 {
	return c.direction
}

// Frustum returns the last installed frustum.
func (c *RenderCamera) Frustum() Frustum {
	return c.frustum
}

// Installed reports whether an off-axis projection has been installed yet.
func (c *RenderCamera) Installed() bool {
	return c.installed
}

func (c *RenderCamera) ProjectionMatrix() mgl64.Mat4 {
	return c.projection
}

// ViewMatrix is the world to camera transform.
func (c *RenderCamera) ViewMatrix() mgl64.Mat4 {
	target := c.position.Add(c.direction)
	return mgl64.LookAtV(c.position, target, worldUp)
}

// NearDistance is the near clip distance of the current projection.
func (c *RenderCamera) NearDistance() float64 {
	return c.frustum.Near
}
