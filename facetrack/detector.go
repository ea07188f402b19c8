// Package facetrack feeds live face landmarks from a webcam into a
// parallax3d session.
package facetrack

import (
	"gocv.io/x/gocv"

	"github.com/smasonuk/parallax3d"
)

// Face is one detection: the estimator landmarks plus the data used to
// rank faces when several are in view.
type Face struct {
	Landmarks  parallax3d.FaceLandmarks
	W, H       float64 // bounding box size, normalized
	Confidence float64
}

// Area of the normalized bounding box.
func (f Face) Area() float64 {
	return f.W * f.H
}

// Detector finds faces in a BGR frame.
type Detector interface {
	Detect(img gocv.Mat) ([]Face, error)
	Close() error
}

// Config holds camera and detector settings.
type Config struct {
	DeviceID         int     `env:"PARALLAX_CAMERA_DEVICE" envDefault:"0"`
	ModelPath        string  `env:"PARALLAX_FACE_MODEL" envDefault:"models/face_detection_yunet.onnx"`
	ConfidenceThresh float64 `env:"PARALLAX_FACE_CONFIDENCE" envDefault:"0.3" validate:"gte=0,lte=1"`
	FallbackWidth    int     `env:"PARALLAX_CAMERA_WIDTH" envDefault:"640" validate:"gt=0"`
	FallbackHeight   int     `env:"PARALLAX_CAMERA_HEIGHT" envDefault:"480" validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{
		DeviceID:         0,
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.3,
		FallbackWidth:    640,
		FallbackHeight:   480,
	}
}

// SelectBest puts the most likely viewer first: confidence weighted 0.7,
// relative size weighted 0.3. The slice is reordered in place.
func SelectBest(faces []Face) []Face {
	if len(faces) < 2 {
		return faces
	}

	maxArea := 0.0
	for _, f := range faces {
		if f.Area() > maxArea {
			maxArea = f.Area()
		}
	}

	best, bestScore := 0, -1.0
	for i, f := range faces {
		score := f.Confidence * 0.7
		if maxArea > 0 {
			score += (f.Area() / maxArea) * 0.3
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	faces[0], faces[best] = faces[best], faces[0]
	return faces
}
