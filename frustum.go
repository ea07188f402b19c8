package parallax3d

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidFrustum means no usable projection could be built this frame.
// The caller keeps whatever projection it installed last.
var ErrInvalidFrustum = errors.New("invalid frustum")

// Frustum holds asymmetric clipping planes in camera space. Left/Right/
// Top/Bottom are measured on the near plane.
type Frustum struct {
	Left, Right float64
	Top, Bottom float64
	Near, Far   float64
}

// Valid reports whether the frustum can be handed to a projection builder.
func (f Frustum) Valid() bool {
	for _, v := range []float64{f.Left, f.Right, f.Top, f.Bottom, f.Near, f.Far} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return f.Left < f.Right && f.Bottom < f.Top && f.Near > 0 && f.Near < f.Far
}

// Width and Height are the extents of the near-plane rectangle.
func (f Frustum) Width() float64  { return f.Right - f.Left }
func (f Frustum) Height() float64 { return f.Top - f.Bottom }

// Matrix builds the OpenGL style perspective matrix for f.
func (f Frustum) Matrix() mgl64.Mat4 {
	return mgl64.Frustum(f.Left, f.Right, f.Bottom, f.Top, f.Near, f.Far)
}

// NearPlaneDistance is how far behind the display plane the eye sits for
// the given screen height, field of view (degrees) and head depth.
func NearPlaneDistance(screenHeight, fovDeg, headZ float64) (float64, error) {
	if fovDeg <= 0 || fovDeg >= 180 {
		return 0, fmt.Errorf("%w: fov %.2f out of range", ErrInvalidFrustum, fovDeg)
	}
	t := math.Tan(mgl64.DegToRad(fovDeg) / 2)
	if t == 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, fmt.Errorf("%w: tan(fov/2) is %v", ErrInvalidFrustum, t)
	}
	return screenHeight/(2*t) + headZ, nil
}

// ComputeFrustum solves the off-axis projection for a head position in
// front of a display plane. It returns the frustum and the eye position the
// render camera must be placed at.
//
// The visible window corners are shifted opposite to the lateral head
// offset, so moving the head right reveals more of the scene on the left
// just like a real window. When the eye ends up on or in front of the
// plane (near <= 0) ErrInvalidFrustum is returned.
func ComputeFrustum(head HeadPosition, pose WindowPose, geom DisplayGeometry, screenHeight, fovDeg, far float64) (Frustum, mgl64.Vec3, error) {
	dir, right, up := pose.Basis()

	nearDistance, err := NearPlaneDistance(screenHeight, fovDeg, head.Z)
	if err != nil {
		return Frustum{}, mgl64.Vec3{}, err
	}

	eye := pose.Position.Sub(dir.Mul(nearDistance))

	headOffset := right.Mul(head.X).Add(up.Mul(head.Y))

	halfUp := up.Mul(geom.HalfHeight)
	halfRight := right.Mul(geom.HalfWidth)

	topLeft := pose.Position.Add(halfUp).Sub(halfRight).Sub(headOffset)
	topRight := pose.Position.Add(halfUp).Add(halfRight).Sub(headOffset)
	bottomLeft := pose.Position.Sub(halfUp).Sub(halfRight).Sub(headOffset)

	tl := topLeft.Sub(eye)
	tr := topRight.Sub(eye)
	bl := bottomLeft.Sub(eye)

	near := tl.Dot(dir)
	if !(near > 0) {
		return Frustum{}, mgl64.Vec3{}, fmt.Errorf("%w: eye is behind the display plane (near=%.4f)", ErrInvalidFrustum, near)
	}

	f := Frustum{
		Left:   tl.Dot(right),
		Right:  tr.Dot(right),
		Top:    tl.Dot(up),
		Bottom: bl.Dot(up),
		Near:   near,
		Far:    far,
	}
	if !f.Valid() {
		return Frustum{}, mgl64.Vec3{}, fmt.Errorf("%w: %+v", ErrInvalidFrustum, f)
	}

	// The camera is re-seated from the head position so the eye used for
	// rendering sits exactly near units in front of the window.
	cameraPos := mgl64.Vec3{
		head.X + pose.Position.X(),
		head.Y + pose.Position.Y(),
		pose.Position.Z() + near,
	}

	return f, cameraPos, nil
}
