package parallax3d

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// Face is a convex polygon in object space.
type Face struct {
	Points []mgl64.Vec3
	Col    color.RGBA
	normal *mgl64.Vec3
}

func NewFace(pnts []mgl64.Vec3, col color.RGBA) *Face {
	return &Face{Points: pnts, Col: col}
}

func (f *Face) AddPoint(x, y, z float64) {
	f.Points = append(f.Points, mgl64.Vec3{x, y, z})
	f.normal = nil
}

// GetNormal is the unit normal from the first three points, counter
// clockwise winding facing the viewer.
func (f *Face) GetNormal() mgl64.Vec3 {
	if f.normal == nil {
		n := f.createNormal()
		f.normal = &n
	}
	return *f.normal
}

func (f *Face) createNormal() mgl64.Vec3 {
	if len(f.Points) < 3 {
		return mgl64.Vec3{0, 0, 1}
	}
	u := f.Points[1].Sub(f.Points[0])
	v := f.Points[2].Sub(f.Points[1])
	n := u.Cross(v)
	if n.Len() == 0 {
		return mgl64.Vec3{0, 0, 1}
	}
	return n.Normalize()
}

func (f *Face) GetMidPoint() mgl64.Vec3 {
	if len(f.Points) == 0 {
		return mgl64.Vec3{}
	}
	var sum mgl64.Vec3
	for _, p := range f.Points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(f.Points)))
}
