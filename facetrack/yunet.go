package facetrack

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/smasonuk/parallax3d"
)

// YuNet output row layout.
const (
	colX         = 0
	colY         = 1
	colW         = 2
	colH         = 3
	colRightEyeX = 4
	colRightEyeY = 5
	colLeftEyeX  = 6
	colLeftEyeY  = 7
	colScore     = 14
	yunetCols    = 15
)

// YuNetDetector uses OpenCV's FaceDetectorYN.
type YuNetDetector struct {
	detector gocv.FaceDetectorYN
	mu       sync.Mutex
}

func NewYuNet(cfg Config) (*YuNetDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"",
		image.Pt(cfg.FallbackWidth, cfg.FallbackHeight),
		float32(cfg.ConfidenceThresh),
		0.3,
		5000,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNetDetector{detector: detector}, nil
}

func (d *YuNetDetector) Detect(img gocv.Mat) ([]Face, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	d.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	out := gocv.NewMat()
	defer out.Close()
	d.detector.Detect(img, &out)

	if out.Rows() > 0 && out.Cols() < yunetCols {
		return nil, fmt.Errorf("unexpected detector output: %d columns", out.Cols())
	}

	faces := make([]Face, 0, out.Rows())
	row := make([]float32, yunetCols)
	for r := 0; r < out.Rows(); r++ {
		for c := 0; c < yunetCols; c++ {
			row[c] = out.GetFloatAt(r, c)
		}
		if f, ok := faceFromRow(row, float64(img.Cols()), float64(img.Rows())); ok {
			faces = append(faces, f)
		}
	}
	return SelectBest(faces), nil
}

func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}

// faceFromRow maps one YuNet row (pixels) to normalized landmarks. YuNet
// has no face-contour points, so the face edges are the bounding box sides
// taken at eye height.
func faceFromRow(row []float32, imgW, imgH float64) (Face, bool) {
	if len(row) < yunetCols || imgW <= 0 || imgH <= 0 {
		return Face{}, false
	}
	x := float64(row[colX])
	w := float64(row[colW])
	h := float64(row[colH])

	rightEye := parallax3d.Point2{X: float64(row[colRightEyeX]) / imgW, Y: float64(row[colRightEyeY]) / imgH}
	leftEye := parallax3d.Point2{X: float64(row[colLeftEyeX]) / imgW, Y: float64(row[colLeftEyeY]) / imgH}
	eyeY := (rightEye.Y + leftEye.Y) / 2

	return Face{
		Landmarks: parallax3d.FaceLandmarks{
			LeftEye:   leftEye,
			RightEye:  rightEye,
			FaceLeft:  parallax3d.Point2{X: x / imgW, Y: eyeY},
			FaceRight: parallax3d.Point2{X: (x + w) / imgW, Y: eyeY},
		},
		W:          w / imgW,
		H:          h / imgH,
		Confidence: float64(row[colScore]),
	}, true
}
