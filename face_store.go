package parallax3d

import (
	"image/color"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// viewFace is a face already in camera space, ready for sorting and
// projection.
type viewFace struct {
	points []mgl64.Vec3
	col    color.RGBA
	depth  float64
}

// FaceStore collects the faces of one frame so they can be painted back to
// front.
type FaceStore struct {
	faces []viewFace
}

func NewFaceStore() *FaceStore {
	return &FaceStore{faces: make([]viewFace, 0, 64)}
}

func (fs *FaceStore) Reset() {
	fs.faces = fs.faces[:0]
}

func (fs *FaceStore) add(points []mgl64.Vec3, col color.RGBA) {
	var sum mgl64.Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	mid := sum.Mul(1 / float64(len(points)))
	fs.faces = append(fs.faces, viewFace{points: points, col: col, depth: mid.Len()})
}

func (fs *FaceStore) FaceCount() int {
	return len(fs.faces)
}

// SortFacesByDistance puts the faces farthest from the camera first.
func (fs *FaceStore) SortFacesByDistance() {
	sort.SliceStable(fs.faces, func(i, j int) bool {
		return fs.faces[i].depth > fs.faces[j].depth
	})
}
