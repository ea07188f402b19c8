package parallax3d

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	whiteImage = ebiten.NewImage(3, 3)
	whiteSub   *ebiten.Image
)

func init() {
	whiteImage.Fill(color.White)
	whiteSub = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

// PolygonBatcher receives projected screen-space primitives.
type PolygonBatcher interface {
	AddPolygon(xp, yp []float32, clr color.RGBA)
	AddLine(x0, y0, x1, y1 float32, clr color.RGBA)
}

// ScreenBatcher draws straight onto an ebiten image. The vertex and index
// buffers are reused between primitives.
type ScreenBatcher struct {
	Screen *ebiten.Image
	// Outline strokes polygon edges in OutlineColor.
	Outline      bool
	OutlineColor color.RGBA

	vertices []ebiten.Vertex
	indices  []uint16
}

func (s *ScreenBatcher) AddPolygon(xp, yp []float32, clr color.RGBA) {
	s.vertices, s.indices = appendConvexFan(s.vertices[:0], s.indices[:0], xp, yp)
	s.draw(clr)

	if s.Outline {
		s.vertices, s.indices = appendOutline(s.vertices[:0], s.indices[:0], xp, yp, 1)
		s.draw(s.OutlineColor)
	}
}

func (s *ScreenBatcher) AddLine(x0, y0, x1, y1 float32, clr color.RGBA) {
	DrawLine(s.Screen, x0, y0, x1, y1, clr)
}

func (s *ScreenBatcher) draw(clr color.RGBA) {
	if len(s.indices) == 0 {
		return
	}
	tint(s.vertices, clr)
	s.Screen.DrawTriangles(s.vertices, s.indices, whiteSub, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

// appendConvexFan triangulates a convex polygon as a fan around its first
// point.
func appendConvexFan(vs []ebiten.Vertex, is []uint16, xp, yp []float32) ([]ebiten.Vertex, []uint16) {
	if len(xp) < 3 {
		return vs, is
	}
	base := uint16(len(vs))
	for i := range xp {
		vs = append(vs, ebiten.Vertex{DstX: xp[i], DstY: yp[i]})
	}
	for i := 2; i < len(xp); i++ {
		is = append(is, base, base+uint16(i-1), base+uint16(i))
	}
	return vs, is
}

// appendOutline adds the stroke of the closed polygon outline.
func appendOutline(vs []ebiten.Vertex, is []uint16, xp, yp []float32, width float32) ([]ebiten.Vertex, []uint16) {
	if len(xp) < 2 {
		return vs, is
	}
	var path vector.Path
	path.MoveTo(xp[0], yp[0])
	for i := 1; i < len(xp); i++ {
		path.LineTo(xp[i], yp[i])
	}
	path.Close()

	return path.AppendVerticesAndIndicesForStroke(vs, is, &vector.StrokeOptions{Width: width})
}

// tint points every vertex at the white texel and colours it.
func tint(vs []ebiten.Vertex, clr color.RGBA) {
	r, g, b, a := colorScale(clr)
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR, vs[i].ColorG, vs[i].ColorB, vs[i].ColorA = r, g, b, a
	}
}

func colorScale(clr color.RGBA) (r, g, b, a float32) {
	return float32(clr.R) / 255.0, float32(clr.G) / 255.0, float32(clr.B) / 255.0, float32(clr.A) / 255.0
}
