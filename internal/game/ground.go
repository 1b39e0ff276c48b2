package game

// Ground constants. The ground is drawn as two tiles leapfrogging each
// other to fake an endless scroll.
const (
	GroundY     = 730.0
	GroundSpeed = 5.0
	GroundTileW = float64(WinWidth)
)

// Ground is the scrolling floor strip.
type Ground struct {
	X1 float64
	X2 float64
}

// NewGround creates the ground with both tiles in start position.
func NewGround() *Ground {
	return &Ground{X1: 0, X2: GroundTileW}
}

// Move scrolls both tiles left, wrapping each behind the other as it
// leaves the screen.
func (g *Ground) Move() {
	g.X1 -= GroundSpeed
	g.X2 -= GroundSpeed
	if g.X1+GroundTileW < 0 {
		g.X1 = g.X2 + GroundTileW
	}
	if g.X2+GroundTileW < 0 {
		g.X2 = g.X1 + GroundTileW
	}
}
