package parallax3d

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// Line is a world-space segment, used for helpers such as the floor grid.
type Line struct {
	A, B mgl64.Vec3
	Col  color.RGBA
}

// Object3d is a set of faces and lines in object space, placed in the world
// by position, uniform scale and a yaw rotation.
type Object3d struct {
	Faces    []*Face
	Lines    []Line
	position mgl64.Vec3
	scale    float64
	rotY     float64
}

func NewObject3d() *Object3d {
	return &Object3d{scale: 1}
}

func (o *Object3d) SetPosition(x, y, z float64) {
	o.position = mgl64.Vec3{x, y, z}
}

func (o *Object3d) GetPosition() mgl64.Vec3 {
	return o.position
}

func (o *Object3d) SetScale(s float64) {
	o.scale = s
}

// RotateY spins the object about its own Y axis.
func (o *Object3d) RotateY(amountOfMovementInRads float64) {
	o.rotY += amountOfMovementInRads
}

// ModelMatrix is the object to world transform.
func (o *Object3d) ModelMatrix() mgl64.Mat4 {
	return ModelMatrix(o.position, o.scale, o.rotY)
}

// NewCube returns an axis aligned cube of the given edge length, centred on
// the origin, with one colour per side.
func NewCube(size float64, cols [6]color.RGBA) *Object3d {
	s := size / 2
	p := [8]mgl64.Vec3{
		{-s, -s, -s}, {s, -s, -s}, {s, s, -s}, {-s, s, -s},
		{-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s},
	}
	sides := [6][4]int{
		{4, 5, 6, 7}, // +Z
		{1, 0, 3, 2}, // -Z
		{0, 1, 5, 4}, // -Y
		{7, 6, 2, 3}, // +Y
		{5, 1, 2, 6}, // +X
		{0, 4, 7, 3}, // -X
	}

	o := NewObject3d()
	for i, side := range sides {
		f := NewFace(nil, cols[i])
		for _, idx := range side {
			f.AddPoint(p[idx].X(), p[idx].Y(), p[idx].Z())
		}
		o.Faces = append(o.Faces, f)
	}
	return o
}

// NewGrid is a square grid on the XZ plane centred on the origin.
func NewGrid(size float64, divisions int, col color.RGBA) *Object3d {
	o := NewObject3d()
	if divisions < 1 {
		divisions = 1
	}
	half := size / 2
	step := size / float64(divisions)
	for i := 0; i <= divisions; i++ {
		k := -half + float64(i)*step
		o.Lines = append(o.Lines,
			Line{A: mgl64.Vec3{-half, 0, k}, B: mgl64.Vec3{half, 0, k}, Col: col},
			Line{A: mgl64.Vec3{k, 0, -half}, B: mgl64.Vec3{k, 0, half}, Col: col},
		)
	}
	return o
}
