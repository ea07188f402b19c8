package parallax3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane is Ax + By + Cz + D = 0. Points with a positive distance are on
// the kept side when clipping.
type Plane struct {
	A, B, C, D float64
}

const planeThickness = 1e-9

// NewPlaneFromPoint builds the plane through p with the given normal.
func NewPlaneFromPoint(p mgl64.Vec3, normal mgl64.Vec3) *Plane {
	n := normal.Normalize()
	return &Plane{
		A: n.X(),
		B: n.Y(),
		C: n.Z(),
		D: -n.Dot(p),
	}
}

// NearClipPlane keeps view-space points at least near units in front of
// the camera. The camera looks down -Z.
func NearClipPlane(near float64) *Plane {
	return &Plane{A: 0, B: 0, C: -1, D: -near}
}

// PointOnPlane is the signed distance of p from the plane; values inside
// the plane thickness snap to zero.
func (p *Plane) PointOnPlane(point mgl64.Vec3) float64 {
	num := p.A*point.X() + p.B*point.Y() + p.C*point.Z() + p.D
	if math.Abs(num) < planeThickness {
		return 0
	}
	return num
}

// LineIntersect returns where the segment p1-p2 crosses the plane. If the
// segment is parallel to the plane p1 is returned.
func (p *Plane) LineIntersect(p1, p2 mgl64.Vec3) mgl64.Vec3 {
	d := p2.Sub(p1)
	denom := p.A*d.X() + p.B*d.Y() + p.C*d.Z()
	if denom == 0 {
		return p1
	}
	t := -(p.A*p1.X() + p.B*p1.Y() + p.C*p1.Z() + p.D) / denom
	return p1.Add(d.Mul(t))
}

// ClipPolygon keeps the part of a convex polygon on the positive side of
// the plane.
func (p *Plane) ClipPolygon(points []mgl64.Vec3) []mgl64.Vec3 {
	if len(points) == 0 {
		return []mgl64.Vec3{}
	}
	out := make([]mgl64.Vec3, 0, len(points)+2)
	prev := points[len(points)-1]
	prevDist := p.PointOnPlane(prev)
	for _, cur := range points {
		curDist := p.PointOnPlane(cur)
		switch {
		case curDist >= 0 && prevDist >= 0:
			out = append(out, cur)
		case curDist >= 0 && prevDist < 0:
			out = append(out, p.LineIntersect(prev, cur), cur)
		case curDist < 0 && prevDist >= 0:
			if prevDist > 0 {
				out = append(out, p.LineIntersect(prev, cur))
			}
		}
		prev, prevDist = cur, curDist
	}
	return out
}

// ClipSegment trims a segment to the positive side of the plane. ok is
// false when nothing is left.
func (p *Plane) ClipSegment(a, b mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3, bool) {
	da := p.PointOnPlane(a)
	db := p.PointOnPlane(b)
	switch {
	case da >= 0 && db >= 0:
		return a, b, true
	case da < 0 && db < 0:
		return a, b, false
	case da < 0:
		return p.LineIntersect(a, b), b, true
	default:
		return a, p.LineIntersect(a, b), true
	}
}
