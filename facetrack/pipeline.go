package facetrack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/smasonuk/parallax3d"
)

// ErrStreamEnded is returned by Run when the camera stops delivering frames.
var ErrStreamEnded = errors.New("camera stream ended")

// FrameReader is the part of gocv.VideoCapture the pipeline uses.
type FrameReader interface {
	Read(m *gocv.Mat) bool
}

// Pipeline reads camera frames, runs the detector and publishes the result
// into a single latest-value slot. It implements parallax3d.LandmarkSource,
// so the render loop never waits on detection.
type Pipeline struct {
	cfg      Config
	frames   FrameReader
	detector Detector
	slot     parallax3d.LatestSlot
	log      logrus.FieldLogger
	closers  []func()
}

// NewPipeline wires an already opened frame source to a detector.
func NewPipeline(frames FrameReader, detector Detector, cfg Config, log logrus.FieldLogger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		cfg:      cfg,
		frames:   frames,
		detector: detector,
		log:      log,
	}
}

// Open starts the webcam and loads the YuNet model.
func Open(cfg Config, log logrus.FieldLogger) (*Pipeline, error) {
	capture, err := gocv.OpenVideoCapture(cfg.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", cfg.DeviceID, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("open camera %d: device not available", cfg.DeviceID)
	}

	detector, err := NewYuNet(cfg)
	if err != nil {
		capture.Close()
		return nil, err
	}

	p := NewPipeline(capture, detector, cfg, log)
	p.closers = append(p.closers, func() { capture.Close() })
	return p, nil
}

// Latest returns the newest published landmark frame.
func (p *Pipeline) Latest() (parallax3d.LandmarkFrame, uint64, bool) {
	return p.slot.Latest()
}

// Run blocks reading and detecting until ctx is cancelled or the stream
// ends. Detection errors on a single frame are logged and skipped.
func (p *Pipeline) Run(ctx context.Context) error {
	img := gocv.NewMat()
	defer img.Close()

	p.log.WithField("device", p.cfg.DeviceID).Info("face tracking started")
	misses := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !p.frames.Read(&img) {
			return ErrStreamEnded
		}
		if img.Empty() {
			continue
		}

		faces, err := p.detector.Detect(img)
		if err != nil {
			p.log.WithField("error", err.Error()).Debug("detection failed")
			continue
		}

		if len(faces) == 0 {
			misses++
			if misses == 30 {
				p.log.Debug("lost face")
			}
		} else {
			misses = 0
		}

		p.publish(faces, p.intrinsics(img.Cols(), img.Rows()))
	}
}

// intrinsics falls back to the configured size while the camera has not
// reported its resolution yet.
func (p *Pipeline) intrinsics(w, h int) parallax3d.CameraIntrinsics {
	if w <= 0 || h <= 0 {
		return parallax3d.CameraIntrinsics{Width: p.cfg.FallbackWidth, Height: p.cfg.FallbackHeight}
	}
	return parallax3d.CameraIntrinsics{Width: w, Height: h}
}

func (p *Pipeline) publish(faces []Face, cam parallax3d.CameraIntrinsics) {
	frame := parallax3d.LandmarkFrame{
		Faces:    make([]parallax3d.FaceLandmarks, len(faces)),
		Camera:   cam,
		Captured: time.Now(),
	}
	for i, f := range faces {
		frame.Faces[i] = f.Landmarks
	}
	p.slot.Publish(frame)
}

// Close releases the detector and the camera.
func (p *Pipeline) Close() error {
	var err error
	if p.detector != nil {
		err = p.detector.Close()
	}
	for _, c := range p.closers {
		c()
	}
	return err
}
