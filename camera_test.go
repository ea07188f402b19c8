package parallax3d

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRenderCameraInstall(t *testing.T) {
	c := NewRenderCamera(16.0 / 9.0)
	if c.Installed() {
		t.Fatal("new camera already installed")
	}
	start := c.ProjectionMatrix()

	if c.Install(Frustum{Left: 1, Right: -1, Top: 1, Bottom: -1, Near: 1, Far: 10}, mgl64.Vec3{1, 2, 3}) {
		t.Error("invalid frustum installed")
	}
	if c.ProjectionMatrix() != start || c.GetPosition() != (mgl64.Vec3{}) {
		t.Error("invalid frustum changed the camera")
	}

	f := Frustum{Left: -0.5, Right: 0.3, Top: 0.4, Bottom: -0.2, Near: 1.5, Far: 100}
	if !c.Install(f, mgl64.Vec3{0, 1, 2}) {
		t.Fatal("valid frustum rejected")
	}
	if c.ProjectionMatrix() != mgl64.Frustum(-0.5, 0.3, -0.2, 0.4, 1.5, 100) {
		t.Error("projection does not match mgl64.Frustum")
	}
	if c.NearDistance() != 1.5 || !c.Installed() {
		t.Errorf("near = %v installed = %v", c.NearDistance(), c.Installed())
	}
}

func TestRenderCameraViewMatrix(t *testing.T) {
	c := NewRenderCamera(1)
	c.SetPosition(mgl64.Vec3{0, 1, 5})
	c.LookAlong(mgl64.Vec3{0, 0, -2})

	// A point straight ahead ends up on the -Z axis in view space.
	p := TransformPoint(c.ViewMatrix(), mgl64.Vec3{0, 1, 0})
	if !vecAlmostEqual(p, mgl64.Vec3{0, 0, -5}) {
		t.Errorf("view-space point = %v", p)
	}

	// A zero direction is ignored.
	c.LookAlong(mgl64.Vec3{})
	if !vecAlmostEqual(c.Direction(), mgl64.Vec3{0, 0, -1}) {
		t.Errorf("direction = %v", c.Direction())
	}
}

func TestProjectToScreen(t *testing.T) {
	proj := Frustum{Left: -1, Right: 1, Top: 1, Bottom: -1, Near: 1, Far: 100}.Matrix()

	testCases := []struct {
		name   string
		p      mgl64.Vec3
		x, y   float32
		wantOk bool
	}{
		{"centre", mgl64.Vec3{0, 0, -5}, 400, 300, true},
		{"top left corner on near plane", mgl64.Vec3{-1, 1, -1}, 0, 0, true},
		{"behind camera", mgl64.Vec3{0, 0, 5}, 0, 0, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			x, y, ok := ProjectToScreen(proj, tc.p, 800, 600)
			if ok != tc.wantOk {
				t.Fatalf("ok = %v", ok)
			}
			if ok && (!almostEqual(float64(x), float64(tc.x)) || !almostEqual(float64(y), float64(tc.y))) {
				t.Errorf("got %v,%v want %v,%v", x, y, tc.x, tc.y)
			}
		})
	}
}
