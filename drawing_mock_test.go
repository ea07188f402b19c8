package parallax3d

import "image/color"

// recordingBatcher is a mock PolygonBatcher that keeps what was drawn.
type recordingBatcher struct {
	polygons []recordedPolygon
	lines    int
}

type recordedPolygon struct {
	xp, yp []float32
	clr    color.RGBA
}

func (b *recordingBatcher) AddPolygon(xp, yp []float32, clr color.RGBA) {
	b.polygons = append(b.polygons, recordedPolygon{xp: xp, yp: yp, clr: clr})
}

func (b *recordingBatcher) AddLine(x0, y0, x1, y1 float32, clr color.RGBA) {
	b.lines++
}
