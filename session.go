package parallax3d

import (
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

// Session owns all per-process mutable state: the window pose, the current
// head position, and the render camera. Update is called once per frame
// from the render goroutine.
type Session struct {
	tunables *Tunables
	source   LandmarkSource
	log      logrus.FieldLogger

	pose    WindowPose
	head    HeadPosition
	filter  HeadFilter
	lastSeq uint64

	camera    *RenderCamera
	frustumOK bool

	readout atomic.Pointer[Readout]
}

type SessionOption func(*Session)

// WithLandmarkSource feeds face-tracker results into the session. Without
// one the head only moves through manual input.
func WithLandmarkSource(src LandmarkSource) SessionOption {
	return func(s *Session) {
		s.source = src
	}
}

func WithLogger(l logrus.FieldLogger) SessionOption {
	return func(s *Session) {
		s.log = l
	}
}

// WithWindowPose overrides the start-up window placement.
func WithWindowPose(p WindowPose) SessionOption {
	return func(s *Session) {
		s.pose = p
	}
}

func NewSession(t *Tunables, opts ...SessionOption) *Session {
	if t == nil {
		t = NewTunables()
	}
	s := &Session{
		tunables:  t,
		pose:      DefaultWindowPose(),
		camera:    NewRenderCamera(float64(windowWidth) / float64(windowHeight)),
		frustumOK: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		s.log = l
	}
	s.camera.LookAlong(s.pose.Direction())
	s.publishReadout(false)
	return s
}

// FrameResult is what one Update produced. When Valid is false the camera
// still carries the previous projection.
type FrameResult struct {
	Valid     bool
	Eye       mgl64.Vec3
	Direction mgl64.Vec3
	Frustum   Frustum
	Err       error
}

// Update runs one frame: apply input, fold in the newest face-tracker
// result, solve the off-axis frustum and install it on the camera.
func (s *Session) Update(in FrameInput, viewportW, viewportH int) FrameResult {
	s.ApplyFrameInput(in)
	s.pollLandmarks()

	t := s.tunables
	geom := NewDisplayGeometry(t.Get(ScreenHeight), viewportW, viewportH)
	dir := s.pose.Direction()

	f, eye, err := ComputeFrustum(s.head, s.pose, geom, t.Get(ScreenHeight), t.Get(FOV), t.Get(FarPlane))
	s.camera.LookAlong(dir)

	if err != nil {
		if s.frustumOK {
			s.log.WithFields(logrus.Fields{
				"head":  fmt.Sprintf("%.2f,%.2f,%.2f", s.head.X, s.head.Y, s.head.Z),
				"error": err.Error(),
			}).Warn("camera is behind the window, keeping previous projection")
		}
		s.frustumOK = false
		s.publishReadout(false)
		return FrameResult{
			Valid:     false,
			Eye:       s.camera.GetPosition(),
			Direction: dir,
			Frustum:   s.camera.Frustum(),
			Err:       err,
		}
	}

	if !s.frustumOK {
		s.log.WithField("projection", MatrixString(f.Matrix())).Info("projection recovered")
	}
	s.frustumOK = true
	s.camera.Install(f, eye)
	s.publishReadout(true)

	return FrameResult{
		Valid:     true,
		Eye:       eye,
		Direction: dir,
		Frustum:   f,
	}
}

// ApplyFrameInput moves the window and head from one frame's worth of
// input. Movement is a fixed step per call, not scaled by elapsed time.
func (s *Session) ApplyFrameInput(in FrameInput) {
	t := s.tunables
	speed := t.Get(MoveSpeed)

	dir := s.pose.Direction()
	right := dir.Cross(worldUp).Normalize()

	if in.Held[KeyForward] {
		s.pose.Position = s.pose.Position.Add(dir.Mul(speed))
	}
	if in.Held[KeyBack] {
		s.pose.Position = s.pose.Position.Sub(dir.Mul(speed))
	}
	if in.Held[KeyStrafeLeft] {
		s.pose.Position = s.pose.Position.Sub(right.Mul(speed))
	}
	if in.Held[KeyStrafeRight] {
		s.pose.Position = s.pose.Position.Add(right.Mul(speed))
	}
	if in.Held[KeyUp] {
		s.pose.Position[1] += speed
	}
	if in.Held[KeyDown] {
		s.pose.Position[1] -= speed
	}

	sens := t.Get(MouseSensitivity)
	switch in.Drag {
	case DragRotate:
		s.pose.AddAngle(-in.MouseDX*sens, -in.MouseDY*sens)
	case DragHeadOffset:
		s.head.X += in.MouseDX * sens
		s.head.Y -= in.MouseDY * sens
	}

	if in.WheelDY != 0 {
		s.head.Z += in.WheelDY * t.Get(WheelScale)
	}
}

func (s *Session) pollLandmarks() {
	if s.source == nil {
		return
	}
	frame, seq, ok := s.source.Latest()
	if !ok || seq == s.lastSeq {
		return
	}
	s.lastSeq = seq

	// No face keeps the last head position.
	if len(frame.Faces) == 0 {
		return
	}

	h, err := EstimateHead(frame.Faces[0], frame.Camera, s.tunables)
	if err != nil {
		s.log.WithField("error", err.Error()).Debug("skipping head estimate")
		return
	}
	s.head = s.filter.Apply(h, s.tunables.Get(LerpFactor))
}

func (s *Session) Pose() WindowPose { return s.pose }
func (s *Session) SetPose(p WindowPose) { s.pose = p }
func (s *Session) Head() HeadPosition { return s.head }
func (s *Session) SetHead(h HeadPosition) { s.head = h }
func (s *Session) Camera() *RenderCamera { return s.camera }
func (s *Session) Tunables() *Tunables { return s.tunables }
func (s *Session) Source() LandmarkSource { return s.source }

// Readout is the coordinate display: window pose and head position.
type Readout struct {
	X, Y, Z    float64
	Yaw, Pitch float64
	HeadX      float64
	HeadY      float64
	HeadZ      float64
	Valid      bool
}

func (r Readout) String() string {
	return fmt.Sprintf("x: %.2f y: %.2f z: %.2f yaw:%.2f pitch:%.2f\nheadX: %.2f headY: %.2f headZ: %.2f",
		r.X, r.Y, r.Z, r.Yaw, r.Pitch, r.HeadX, r.HeadY, r.HeadZ)
}

// Readout returns the latest coordinate readout. It is safe to call from
// any goroutine.
func (s *Session) Readout() Readout {
	r := s.readout.Load()
	if r == nil {
		return Readout{}
	}
	return *r
}

func (s *Session) publishReadout(valid bool) {
	s.readout.Store(&Readout{
		X:     s.pose.Position.X(),
		Y:     s.pose.Position.Y(),
		Z:     s.pose.Position.Z(),
		Yaw:   s.pose.Yaw,
		Pitch: s.pose.Pitch,
		HeadX: s.head.X,
		HeadY: s.head.Y,
		HeadZ: s.head.Z,
		Valid: valid,
	})
}
