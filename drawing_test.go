package parallax3d

import (
	"image/color"
	"testing"
)

func TestAppendConvexFan(t *testing.T) {
	xp := []float32{0, 10, 10, 5, 0}
	yp := []float32{0, 0, 10, 15, 10}

	vs, is := appendConvexFan(nil, nil, xp, yp)
	if len(vs) != 5 {
		t.Fatalf("got %d vertices", len(vs))
	}
	want := []uint16{0, 1, 2, 0, 2, 3, 0, 3, 4}
	if len(is) != len(want) {
		t.Fatalf("got %d indices, want %d", len(is), len(want))
	}
	for i := range want {
		if is[i] != want[i] {
			t.Errorf("indices = %v, want %v", is, want)
			break
		}
	}

	// Appending a second polygon offsets its indices.
	vs, is = appendConvexFan(vs, is, xp[:3], yp[:3])
	if len(vs) != 8 || is[len(is)-3] != 5 || is[len(is)-1] != 7 {
		t.Errorf("second fan: %d vertices, indices %v", len(vs), is[len(want):])
	}

	if vs, is := appendConvexFan(nil, nil, xp[:2], yp[:2]); len(vs) != 0 || len(is) != 0 {
		t.Error("degenerate polygon produced triangles")
	}
}

func TestTint(t *testing.T) {
	vs, _ := appendConvexFan(nil, nil, []float32{0, 1, 1}, []float32{0, 0, 1})
	tint(vs, color.RGBA{R: 255, G: 0, B: 51, A: 255})
	for _, v := range vs {
		if v.SrcX != 1 || v.SrcY != 1 || v.ColorR != 1 || v.ColorG != 0 || v.ColorB != 0.2 || v.ColorA != 1 {
			t.Fatalf("vertex = %+v", v)
		}
	}
}
