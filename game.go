package parallax3d

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// wheelNotch converts ebiten wheel ticks to browser-style wheel deltas so
// wheelScale keeps its meaning.
const wheelNotch = 100.0

var movementKeys = map[Key][]ebiten.Key{
	KeyForward:     {ebiten.KeyW},
	KeyBack:        {ebiten.KeyS},
	KeyStrafeLeft:  {ebiten.KeyA},
	KeyStrafeRight: {ebiten.KeyD},
	KeyUp:          {ebiten.KeySpace},
	KeyDown:        {ebiten.KeyShiftLeft, ebiten.KeyShiftRight},
}

// Game runs a Session inside an ebiten window.
type Game struct {
	session *Session
	world   *World
	drag    DragTracker
	width   int
	height  int
	last    FrameResult
	// ShowReadout draws the coordinate readout in the corner.
	ShowReadout bool
}

func NewGame(session *Session, world *World) *Game {
	if world == nil {
		world = NewDefaultWorld()
	}
	return &Game{
		session:     session,
		world:       world,
		width:       windowWidth,
		height:      windowHeight,
		ShowReadout: true,
	}
}

func (g *Game) Update() error {
	g.last = g.session.Update(g.readInput(), g.width, g.height)
	return nil
}

func (g *Game) readInput() FrameInput {
	in := FrameInput{Held: KeySet{}}
	for k, keys := range movementKeys {
		for _, ek := range keys {
			if ebiten.IsKeyPressed(ek) {
				in.Held[k] = true
			}
		}
	}

	x, y := ebiten.CursorPosition()
	if !ebiten.IsFocused() {
		g.drag.Release()
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.drag.Press(DragRotate, x, y)
	} else if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.drag.Press(DragHeadOffset, x, y)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) ||
		inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight) {
		g.drag.Release()
	}

	in.Drag = g.drag.Mode()
	in.MouseDX, in.MouseDY = g.drag.Move(x, y)

	_, wy := ebiten.Wheel()
	in.WheelDY = -wy * wheelNotch
	return in
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	g.world.PaintObjects(&ScreenBatcher{Screen: screen}, g.session.Camera(), g.width, g.height)
	if g.ShowReadout {
		ebitenutil.DebugPrint(screen, g.session.Readout().String())
	}
}

// Layout follows the window size, so the aspect ratio is picked up on the
// next Update after a resize.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		g.width, g.height = outsideWidth, outsideHeight
	}
	return g.width, g.height
}

// Run opens the window and blocks until it is closed.
func Run(g *Game, title string) error {
	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}
