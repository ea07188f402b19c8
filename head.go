package parallax3d

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerateFace is returned when the landmarks cannot produce a depth
// estimate, e.g. the face edges collapsed onto each other.
var ErrDegenerateFace = errors.New("degenerate face measurement")

// Face mesh landmark indices used by the estimator.
const (
	LandmarkLeftEye   = 33
	LandmarkRightEye  = 263
	LandmarkFaceLeft  = 234
	LandmarkFaceRight = 454
)

// HeadPosition is the viewer's head in meters relative to the display.
// Z is the distance from the display, X and Y the lateral and vertical
// offsets.
type HeadPosition struct {
	X, Y, Z float64
}

func (h HeadPosition) finite() bool {
	return isFinite(h.X) && isFinite(h.Y) && isFinite(h.Z)
}

// Point2 is a normalized image coordinate in [0,1].
type Point2 struct {
	X, Y float64
}

// FaceLandmarks are the four points the estimator needs.
type FaceLandmarks struct {
	LeftEye   Point2
	RightEye  Point2
	FaceLeft  Point2
	FaceRight Point2
}

// FaceLandmarksFromMesh picks the estimator points out of a dense face mesh.
func FaceLandmarksFromMesh(mesh []Point2) (FaceLandmarks, bool) {
	if len(mesh) <= LandmarkFaceRight {
		return FaceLandmarks{}, false
	}
	return FaceLandmarks{
		LeftEye:   mesh[LandmarkLeftEye],
		RightEye:  mesh[LandmarkRightEye],
		FaceLeft:  mesh[LandmarkFaceLeft],
		FaceRight: mesh[LandmarkFaceRight],
	}, true
}

// CameraIntrinsics describes the video source feeding the face tracker.
type CameraIntrinsics struct {
	Width, Height int
}

// EstimateHead converts face landmarks into a head position using a pinhole
// camera model. The lateral offsets are negated so that camera space lines
// up with display space, and everything is scaled by the amplifier.
func EstimateHead(lm FaceLandmarks, cam CameraIntrinsics, t *Tunables) (HeadPosition, error) {
	if cam.Width <= 0 || cam.Height <= 0 {
		return HeadPosition{}, fmt.Errorf("%w: camera size %dx%d", ErrDegenerateFace, cam.Width, cam.Height)
	}
	frameW := float64(cam.Width)
	frameH := float64(cam.Height)

	focal := t.Get(FocalLength)
	realFaceWidth := t.Get(RealFaceWidth)
	amp := t.Get(Amplifier)

	faceWidthPixels := math.Abs(lm.FaceLeft.X-lm.FaceRight.X) * frameW
	if faceWidthPixels == 0 || !isFinite(faceWidthPixels) {
		return HeadPosition{}, fmt.Errorf("%w: face width is %v px", ErrDegenerateFace, faceWidthPixels)
	}
	if focal <= 0 {
		return HeadPosition{}, fmt.Errorf("%w: focal length %v", ErrDegenerateFace, focal)
	}

	distance := (realFaceWidth * focal) / faceWidthPixels

	centerX := (lm.LeftEye.X+lm.RightEye.X)/2 + t.Get(EyeXOffset)
	centerY := (lm.LeftEye.Y+lm.RightEye.Y)/2 + t.Get(EyeYOffset)

	pixelX := centerX * frameW
	pixelY := centerY * frameH

	metersPerPixel := distance / focal
	realX := (pixelX - frameW/2) * metersPerPixel * (realFaceWidth / (faceWidthPixels / frameW))
	realY := (pixelY - frameH/2) * metersPerPixel * (realFaceWidth / (faceWidthPixels / frameH))

	head := HeadPosition{
		X: -realX * amp,
		Y: -realY * amp,
		Z: (distance + t.Get(EyeZOffset)) * amp,
	}
	if !head.finite() {
		return HeadPosition{}, fmt.Errorf("%w: non-finite estimate %+v", ErrDegenerateFace, head)
	}
	return head, nil
}

// HeadFilter smooths successive estimates with an exponential moving
// average. Alpha 1 passes the raw estimate through.
type HeadFilter struct {
	last HeadPosition
	has  bool
}

func (f *HeadFilter) Apply(h HeadPosition, alpha float64) HeadPosition {
	if !f.has || alpha >= 1 || alpha <= 0 {
		f.last = h
		f.has = true
		return h
	}
	f.last = HeadPosition{
		X: alpha*h.X + (1-alpha)*f.last.X,
		Y: alpha*h.Y + (1-alpha)*f.last.Y,
		Z: alpha*h.Z + (1-alpha)*f.last.Z,
	}
	return f.last
}

// Reset forgets the filter history, so the next sample passes through.
func (f *HeadFilter) Reset() {
	f.has = false
}
