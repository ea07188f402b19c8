package parallax3d

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// Lighting for flat shading. The light sits at the camera.
const (
	ambientLight = 0.55
	diffuseLight = 1.0 - ambientLight
)

// World holds the scene and paints it through a RenderCamera.
type World struct {
	objects []*Object3d
	store   *FaceStore
}

func NewWorld() *World {
	return &World{store: NewFaceStore()}
}

// NewDefaultWorld is the start-up scene: a 10x10 floor grid and a cube
// floating just behind the window.
func NewDefaultWorld() *World {
	w := NewWorld()
	w.AddObject(NewGrid(10, 10, color.RGBA{R: 90, G: 90, B: 90, A: 255}), 0, 0, 0)
	w.AddObject(NewCube(1, [6]color.RGBA{
		{R: 0, G: 0, B: 255, A: 255},
		{R: 255, G: 0, B: 0, A: 255},
		{R: 0, G: 255, B: 0, A: 255},
		{R: 255, G: 255, B: 0, A: 255},
		{R: 0, G: 255, B: 255, A: 255},
		{R: 255, G: 0, B: 255, A: 255},
	}), 0, 0.5, -1)
	return w
}

func (w *World) AddObject(obj *Object3d, x, y, z float64) {
	obj.SetPosition(x, y, z)
	w.objects = append(w.objects, obj)
}

func (w *World) Objects() []*Object3d {
	return w.objects
}

// PaintObjects projects every object through cam and hands the result to
// b. Lines go first, then faces back to front.
func (w *World) PaintObjects(b PolygonBatcher, cam *RenderCamera, width, height int) {
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()
	near := NearClipPlane(cam.NearDistance())

	w.store.Reset()

	for _, obj := range w.objects {
		mv := view.Mul4(obj.ModelMatrix())

		for _, l := range obj.Lines {
			a, c, ok := near.ClipSegment(TransformPoint(mv, l.A), TransformPoint(mv, l.B))
			if !ok {
				continue
			}
			x0, y0, ok0 := ProjectToScreen(proj, a, width, height)
			x1, y1, ok1 := ProjectToScreen(proj, c, width, height)
			if ok0 && ok1 {
				b.AddLine(x0, y0, x1, y1, l.Col)
			}
		}

		for _, f := range obj.Faces {
			if len(f.Points) < 3 {
				continue
			}
			pts := make([]mgl64.Vec3, len(f.Points))
			for i, p := range f.Points {
				pts[i] = TransformPoint(mv, p)
			}
			normal := RotateVector(mv, f.GetNormal()).Normalize()

			// The camera is at the origin, so a face is visible when its
			// normal points back towards it.
			if normal.Dot(pts[0]) >= 0 {
				continue
			}

			clipped := near.ClipPolygon(pts)
			if len(clipped) < 3 {
				continue
			}
			w.store.add(clipped, shade(f.Col, normal))
		}
	}

	w.store.SortFacesByDistance()

	for _, vf := range w.store.faces {
		xp := make([]float32, 0, len(vf.points))
		yp := make([]float32, 0, len(vf.points))
		for _, p := range vf.points {
			x, y, ok := ProjectToScreen(proj, p, width, height)
			if !ok {
				break
			}
			xp = append(xp, x)
			yp = append(yp, y)
		}
		if len(xp) == len(vf.points) {
			b.AddPolygon(xp, yp, vf.col)
		}
	}
}

// shade applies ambient plus head-on diffuse lighting.
func shade(col color.RGBA, normal mgl64.Vec3) color.RGBA {
	diffuse := normal.Z()
	if diffuse < 0 {
		diffuse = 0
	}
	brightness := ambientLight + diffuse*diffuseLight
	return color.RGBA{
		R: uint8(clamp(int(float64(col.R)*brightness), 0, 255)),
		G: uint8(clamp(int(float64(col.G)*brightness), 0, 255)),
		B: uint8(clamp(int(float64(col.B)*brightness), 0, 255)),
		A: col.A,
	}
}
