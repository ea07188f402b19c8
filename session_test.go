package parallax3d

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestSession(opts ...SessionOption) *Session {
	return NewSession(NewTunables(), append([]SessionOption{WithLogger(quietLogger())}, opts...)...)
}

// fakeSource hands out a fixed frame under a settable sequence number.
type fakeSource struct {
	frame LandmarkFrame
	seq   uint64
	ok    bool
}

func (f *fakeSource) Latest() (LandmarkFrame, uint64, bool) {
	return f.frame, f.seq, f.ok
}

func TestSessionUpdateInstallsFrustum(t *testing.T) {
	s := newTestSession()
	s.SetHead(HeadPosition{Z: 0.5})

	res := s.Update(FrameInput{}, 1600, 900)
	if !res.Valid || res.Err != nil {
		t.Fatalf("Update() = %+v", res)
	}
	if !s.Camera().Installed() {
		t.Fatal("camera projection not installed")
	}
	if s.Camera().Frustum() != res.Frustum {
		t.Errorf("camera frustum %+v, result %+v", s.Camera().Frustum(), res.Frustum)
	}
	if !vecAlmostEqual(s.Camera().GetPosition(), res.Eye) {
		t.Errorf("camera at %v, want %v", s.Camera().GetPosition(), res.Eye)
	}
	if !vecAlmostEqual(s.Camera().Direction(), mgl64.Vec3{0, 0, -1}) {
		t.Errorf("camera direction %v", s.Camera().Direction())
	}
	if want := res.Frustum.Matrix(); s.Camera().ProjectionMatrix() != want {
		t.Error("projection matrix does not match the frustum")
	}
}

func TestSessionUpdateKeepsProjectionWhenInvalid(t *testing.T) {
	s := newTestSession()
	s.SetHead(HeadPosition{Z: 0.5})
	good := s.Update(FrameInput{}, 800, 600)
	proj := s.Camera().ProjectionMatrix()

	s.SetHead(HeadPosition{Z: -10})
	bad := s.Update(FrameInput{}, 800, 600)
	if bad.Valid || !errors.Is(bad.Err, ErrInvalidFrustum) {
		t.Fatalf("expected an invalid frame, got %+v", bad)
	}
	if s.Camera().ProjectionMatrix() != proj {
		t.Error("projection replaced by an invalid frame")
	}
	if bad.Frustum != good.Frustum || !vecAlmostEqual(bad.Eye, good.Eye) {
		t.Errorf("invalid frame should report the previous state, got %+v", bad)
	}
	if s.Readout().Valid {
		t.Error("readout should be marked invalid")
	}

	s.SetHead(HeadPosition{Z: 0.5})
	if res := s.Update(FrameInput{}, 800, 600); !res.Valid {
		t.Errorf("did not recover: %+v", res)
	}
}

func TestSessionMovementKeys(t *testing.T) {
	speed := 0.01
	testCases := []struct {
		name string
		keys []Key
		want mgl64.Vec3
	}{
		{"forward", []Key{KeyForward}, mgl64.Vec3{0, 0.5, 1 - speed}},
		{"back", []Key{KeyBack}, mgl64.Vec3{0, 0.5, 1 + speed}},
		{"strafe left", []Key{KeyStrafeLeft}, mgl64.Vec3{-speed, 0.5, 1}},
		{"strafe right", []Key{KeyStrafeRight}, mgl64.Vec3{speed, 0.5, 1}},
		{"up", []Key{KeyUp}, mgl64.Vec3{0, 0.5 + speed, 1}},
		{"down", []Key{KeyDown}, mgl64.Vec3{0, 0.5 - speed, 1}},
		{"forward and back cancel", []Key{KeyForward, KeyBack}, mgl64.Vec3{0, 0.5, 1}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSession()
			s.ApplyFrameInput(FrameInput{Held: NewKeySet(tc.keys...)})
			if got := s.Pose().Position; !vecAlmostEqual(got, tc.want) {
				t.Errorf("position = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSessionMovementFollowsYaw(t *testing.T) {
	s := newTestSession()
	p := s.Pose()
	p.Yaw = math.Pi / 2
	s.SetPose(p)

	s.ApplyFrameInput(FrameInput{Held: NewKeySet(KeyForward)})
	if got := s.Pose().Position; !vecAlmostEqual(got, mgl64.Vec3{0.01, 0.5, 1}) {
		t.Errorf("position = %v", got)
	}
}

func TestSessionPitchClamp(t *testing.T) {
	s := newTestSession()
	for i := 0; i < 100; i++ {
		s.ApplyFrameInput(FrameInput{Drag: DragRotate, MouseDY: -1000})
	}
	if p := s.Pose().Pitch; p >= math.Pi/2 || p > pitchLimit {
		t.Errorf("pitch %v not clamped", p)
	}

	for i := 0; i < 100; i++ {
		s.ApplyFrameInput(FrameInput{Drag: DragRotate, MouseDY: 1000})
	}
	if p := s.Pose().Pitch; p <= -math.Pi/2 || p < -pitchLimit {
		t.Errorf("pitch %v not clamped", p)
	}

	// The frustum stays solvable at the clamp.
	s.SetHead(HeadPosition{Z: 0.5})
	if res := s.Update(FrameInput{}, 800, 600); !res.Valid {
		t.Errorf("frustum invalid at clamped pitch: %v", res.Err)
	}
}

func TestSessionDragModes(t *testing.T) {
	s := newTestSession()

	s.ApplyFrameInput(FrameInput{Drag: DragRotate, MouseDX: 100})
	if !almostEqual(s.Pose().Yaw, math.Pi-0.1) {
		t.Errorf("yaw = %v", s.Pose().Yaw)
	}
	if s.Head() != (HeadPosition{}) {
		t.Errorf("rotate drag moved the head: %+v", s.Head())
	}

	s.ApplyFrameInput(FrameInput{Drag: DragHeadOffset, MouseDX: 100, MouseDY: 50})
	if h := s.Head(); !almostEqual(h.X, 0.1) || !almostEqual(h.Y, -0.05) {
		t.Errorf("head = %+v", h)
	}

	s.ApplyFrameInput(FrameInput{Drag: DragNone, MouseDX: 100, MouseDY: 50})
	if h := s.Head(); !almostEqual(h.X, 0.1) {
		t.Errorf("no drag still moved the head: %+v", h)
	}
}

func TestSessionWheel(t *testing.T) {
	s := newTestSession()
	s.ApplyFrameInput(FrameInput{WheelDY: 100})
	if !almostEqual(s.Head().Z, 0.1) {
		t.Errorf("head Z = %v", s.Head().Z)
	}
	s.ApplyFrameInput(FrameInput{WheelDY: -300})
	if !almostEqual(s.Head().Z, -0.2) {
		t.Errorf("head Z = %v", s.Head().Z)
	}
}

func TestSessionLandmarks(t *testing.T) {
	src := &fakeSource{}
	s := newTestSession(WithLandmarkSource(src))
	s.SetHead(HeadPosition{X: 0.3, Z: 0.5})

	// Nothing published yet.
	s.Update(FrameInput{}, 800, 600)
	if s.Head() != (HeadPosition{X: 0.3, Z: 0.5}) {
		t.Errorf("head changed without a frame: %+v", s.Head())
	}

	// A frame with no faces keeps the previous head.
	src.frame, src.seq, src.ok = LandmarkFrame{Camera: vga}, 1, true
	s.Update(FrameInput{}, 800, 600)
	if s.Head() != (HeadPosition{X: 0.3, Z: 0.5}) {
		t.Errorf("head changed with no face: %+v", s.Head())
	}

	// The first detection passes straight through the filter.
	src.frame, src.seq = LandmarkFrame{Faces: []FaceLandmarks{centredFace()}, Camera: vga}, 2
	s.Update(FrameInput{}, 800, 600)
	if !almostEqual(s.Head().Z, 3.25875*4) || !almostEqual(s.Head().X, 0) {
		t.Errorf("head = %+v", s.Head())
	}

	// A stale sequence number is not applied again.
	s.SetHead(HeadPosition{Z: 1})
	s.Update(FrameInput{}, 800, 600)
	if s.Head() != (HeadPosition{Z: 1}) {
		t.Errorf("stale frame re-applied: %+v", s.Head())
	}

	// A collapsed face is skipped.
	bad := centredFace()
	bad.FaceRight = bad.FaceLeft
	src.frame, src.seq = LandmarkFrame{Faces: []FaceLandmarks{bad}, Camera: vga}, 3
	s.Update(FrameInput{}, 800, 600)
	if s.Head() != (HeadPosition{Z: 1}) {
		t.Errorf("degenerate face applied: %+v", s.Head())
	}
}

func TestSessionReadout(t *testing.T) {
	s := newTestSession()
	s.SetHead(HeadPosition{X: 0.1, Y: 0.2, Z: 0.5})
	s.Update(FrameInput{}, 800, 600)

	r := s.Readout()
	if !r.Valid || r.X != 0 || r.Y != 0.5 || r.Z != 1 || r.HeadZ != 0.5 {
		t.Errorf("readout = %+v", r)
	}
	if r.String() == "" {
		t.Error("empty readout string")
	}
}

func TestTunablesRoundTripGivesSameFrustum(t *testing.T) {
	orig := NewTunables()
	if err := orig.Apply(map[string]float64{FOV: 55, ScreenHeight: 0.8, Amplifier: 2}); err != nil {
		t.Fatal(err)
	}
	data, err := orig.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	restored := NewTunables()
	if err := restored.UnmarshalJSON(data); err != nil {
		t.Fatal(err)
	}

	run := func(tun *Tunables) FrameResult {
		s := NewSession(tun, WithLogger(quietLogger()))
		s.SetHead(HeadPosition{X: 0.1, Y: -0.05, Z: 0.6})
		return s.Update(FrameInput{}, 1280, 720)
	}
	a, b := run(orig), run(restored)
	if a.Frustum != b.Frustum || a.Eye != b.Eye {
		t.Errorf("frustum differs after round trip: %+v vs %+v", a, b)
	}
}

func TestDragTracker(t *testing.T) {
	var d DragTracker

	d.Press(DragRotate, 10, 10)
	if d.Mode() != DragRotate {
		t.Fatalf("mode = %v", d.Mode())
	}
	if dx, dy := d.Move(15, 7); dx != 5 || dy != -3 {
		t.Errorf("delta = %v,%v", dx, dy)
	}

	// A second button while dragging is ignored.
	d.Press(DragHeadOffset, 0, 0)
	if d.Mode() != DragRotate {
		t.Errorf("mode changed to %v", d.Mode())
	}

	d.Release()
	if d.Mode() != DragNone {
		t.Errorf("mode after release = %v", d.Mode())
	}

	d.Press(DragHeadOffset, 100, 100)
	if d.Mode() != DragHeadOffset || d.Mode().String() != "head-offset" {
		t.Errorf("mode = %v", d.Mode())
	}
	if dx, dy := d.Move(100, 100); dx != 0 || dy != 0 {
		t.Errorf("press should reset the cursor origin, got %v,%v", dx, dy)
	}
}
