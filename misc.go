package parallax3d

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

const (
	windowWidth  = 960
	windowHeight = 540
)

func DrawLine(screen *ebiten.Image, startX, startY, endX, endY float32, col color.Color) {
	vector.StrokeLine(screen, startX, startY, endX, endY, 1, col, true)
}
