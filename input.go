package parallax3d

// Key is a movement key understood by the input controller.
type Key int

const (
	KeyForward Key = iota
	KeyBack
	KeyStrafeLeft
	KeyStrafeRight
	KeyUp
	KeyDown
)

// KeySet is the set of keys held down during a frame.
type KeySet map[Key]bool

func NewKeySet(keys ...Key) KeySet {
	ks := make(KeySet, len(keys))
	for _, k := range keys {
		ks[k] = true
	}
	return ks
}

// DragMode says which mouse drag, if any, is in progress.
type DragMode int

const (
	DragNone DragMode = iota
	// DragRotate turns the window (primary button).
	DragRotate
	// DragHeadOffset nudges the head position by hand (secondary button).
	DragHeadOffset
)

func (d DragMode) String() string {
	switch d {
	case DragRotate:
		return "rotate"
	case DragHeadOffset:
		return "head-offset"
	default:
		return "none"
	}
}

// FrameInput is everything the controller consumes in one frame.
type FrameInput struct {
	Held    KeySet
	MouseDX float64
	MouseDY float64
	WheelDY float64
	Drag    DragMode
}

// DragTracker turns raw button and cursor events into a drag mode and a
// per-frame cursor delta. Only one drag can be active at a time.
type DragTracker struct {
	rotating   bool
	offsetting bool
	lastX      int
	lastY      int
}

// Press starts a drag at the given cursor position. A press while another
// drag is active is ignored.
func (d *DragTracker) Press(mode DragMode, x, y int) {
	if d.rotating || d.offsetting {
		return
	}
	switch mode {
	case DragRotate:
		d.rotating = true
	case DragHeadOffset:
		d.offsetting = true
	default:
		return
	}
	d.lastX, d.lastY = x, y
}

// Release ends any drag. It is also what focus loss calls, otherwise a
// button released outside the window leaves the drag stuck on.
func (d *DragTracker) Release() {
	d.rotating = false
	d.offsetting = false
}

func (d *DragTracker) Mode() DragMode {
	switch {
	case d.rotating:
		return DragRotate
	case d.offsetting:
		return DragHeadOffset
	default:
		return DragNone
	}
}

// Move reports the cursor delta since the last call and remembers x, y.
func (d *DragTracker) Move(x, y int) (dx, dy float64) {
	dx = float64(x - d.lastX)
	dy = float64(y - d.lastY)
	d.lastX, d.lastY = x, y
	return dx, dy
}
