package parallax3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// pitchLimit keeps pitch away from straight up/down so the right vector
// never degenerates.
const pitchLimit = math.Pi/2 - 0.01

var worldUp = mgl64.Vec3{0, 1, 0}

// WindowPose is the virtual display plane's location and the direction an
// observer looks through it.
type WindowPose struct {
	Position mgl64.Vec3
	Yaw      float64
	Pitch    float64
}

// DefaultWindowPose matches the start-up placement: half a meter up, one
// meter back, looking down -Z.
func DefaultWindowPose() WindowPose {
	return WindowPose{
		Position: mgl64.Vec3{0, 0.5, 1},
		Yaw:      math.Pi,
		Pitch:    0,
	}
}

// Direction is the unit view direction derived from yaw and pitch.
func (p WindowPose) Direction() mgl64.Vec3 {
	return viewDirection(p.Yaw, p.Pitch)
}

func viewDirection(yaw, pitch float64) mgl64.Vec3 {
	return mgl64.Vec3{
		math.Cos(pitch) * math.Sin(yaw),
		math.Sin(pitch),
		math.Cos(pitch) * math.Cos(yaw),
	}.Normalize()
}

// Basis returns the view direction, the right vector and the
// re-orthogonalized up vector of the display plane.
func (p WindowPose) Basis() (dir, right, up mgl64.Vec3) {
	dir = p.Direction()
	right = dir.Cross(worldUp).Normalize()
	up = right.Cross(dir).Normalize()
	return dir, right, up
}

// AddAngle changes yaw and pitch, clamping pitch.
func (p *WindowPose) AddAngle(dYaw, dPitch float64) {
	p.Yaw += dYaw
	p.Pitch = clampFloat(p.Pitch+dPitch, -pitchLimit, pitchLimit)
}

// DisplayGeometry is the half extent of the display plane. It is
// recomputed every frame since the viewport aspect can change on resize.
type DisplayGeometry struct {
	HalfWidth  float64
	HalfHeight float64
}

// NewDisplayGeometry derives the plane size from the physical screen height
// and the viewport size in pixels.
func NewDisplayGeometry(screenHeight float64, viewportW, viewportH int) DisplayGeometry {
	aspect := 1.0
	if viewportW > 0 && viewportH > 0 {
		aspect = float64(viewportW) / float64(viewportH)
	}
	half := screenHeight / 2
	return DisplayGeometry{
		HalfWidth:  half * aspect,
		HalfHeight: half,
	}
}
