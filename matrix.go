package parallax3d

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// TransMatrix returns a translation matrix.
func TransMatrix(x, y, z float64) mgl64.Mat4 {
	return mgl64.Translate3D(x, y, z)
}

// ModelMatrix places an object at pos with a uniform scale and a rotation
// about the Y axis.
func ModelMatrix(pos mgl64.Vec3, scale, rotY float64) mgl64.Mat4 {
	return TransMatrix(pos.X(), pos.Y(), pos.Z()).
		Mul4(mgl64.HomogRotate3DY(rotY)).
		Mul4(mgl64.Scale3D(scale, scale, scale))
}

// TransformPoint applies m to a point (w=1) and drops w.
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// RotateVector applies only the rotation part of m, for normals and
// directions.
func RotateVector(m mgl64.Mat4, v mgl64.Vec3) mgl64.Vec3 {
	return m.Mat3().Mul3x1(v)
}

// ProjectToScreen takes a view-space point through proj and maps the result
// to pixel coordinates with y pointing down. ok is false when the point
// has no valid perspective divide.
func ProjectToScreen(proj mgl64.Mat4, p mgl64.Vec3, width, height int) (x, y float32, ok bool) {
	clip := proj.Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndcX := clip.X() / clip.W()
	ndcY := clip.Y() / clip.W()
	x = float32((ndcX + 1) * 0.5 * float64(width))
	y = float32((1 - ndcY) * 0.5 * float64(height))
	return x, y, true
}

// MatrixString formats m row by row, for debug output.
func MatrixString(m mgl64.Mat4) string {
	var sb strings.Builder
	for r := 0; r < 4; r++ {
		if r > 0 {
			sb.WriteString("\n")
		}
		row := m.Row(r)
		for c := 0; c < 4; c++ {
			if c > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(fmt.Sprintf("%f", row[c]))
		}
	}
	return sb.String()
}
