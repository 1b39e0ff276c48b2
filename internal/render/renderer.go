// Package render draws the game with procedurally built sprites, so the
// binary needs no asset files.
package render

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Dipendra367/FlappyBirdAI/internal/game"
)

var (
	skyColor     = color.RGBA{R: 112, G: 197, B: 206, A: 255}
	groundColor  = color.RGBA{R: 222, G: 184, B: 121, A: 255}
	grassColor   = color.RGBA{R: 120, G: 190, B: 90, A: 255}
	pipeColor    = color.RGBA{R: 84, G: 173, B: 57, A: 255}
	pipeEdge     = color.RGBA{R: 60, G: 125, B: 42, A: 255}
	birdBody     = color.RGBA{R: 245, G: 200, B: 60, A: 255}
	birdWing     = color.RGBA{R: 250, G: 235, B: 190, A: 255}
	birdBeak     = color.RGBA{R: 235, G: 120, B: 50, A: 255}
	birdEyeWhite = color.RGBA{R: 250, G: 250, B: 250, A: 255}
	birdEyeDot   = color.RGBA{R: 30, G: 30, B: 30, A: 255}
)

// Renderer owns the sprite images and draws one frame of the game. All
// sprites are built in memory at startup.
type Renderer struct {
	pixel *ebiten.Image
	bird  *ebiten.Image
}

// NewRenderer builds the sprites. Must be called after ebiten is
// initialised enough to create images (in practice: any time before RunGame
// returns).
func NewRenderer() *Renderer {
	pixel := ebiten.NewImage(1, 1)
	pixel.Fill(color.White)
	return &Renderer{
		pixel: pixel,
		bird:  buildBirdSprite(),
	}
}

// buildBirdSprite paints the bird into an offscreen image once. The sprite
// faces right, matching the direction of travel.
func buildBirdSprite() *ebiten.Image {
	w := int(game.BirdWidth)
	h := int(game.BirdHeight)
	img := ebiten.NewImage(w, h)

	paint := func(x, y, rw, rh int, col color.RGBA) {
		for py := y; py < y+rh && py < h; py++ {
			for px := x; px < x+rw && px < w; px++ {
				if px >= 0 && py >= 0 {
					img.Set(px, py, col)
				}
			}
		}
	}

	// Body with rounded corners faked by trimming the corner pixels.
	paint(2, 4, w-10, h-8, birdBody)
	paint(4, 2, w-14, h-4, birdBody)
	// Wing.
	paint(8, h/2, 14, 8, birdWing)
	// Beak.
	paint(w-8, h/2-3, 8, 7, birdBeak)
	// Eye.
	paint(w-18, 6, 9, 9, birdEyeWhite)
	paint(w-14, 8, 4, 4, birdEyeDot)

	return img
}

// fillRect draws a solid rectangle using the shared 1x1 pixel.
func (r *Renderer) fillRect(dst *ebiten.Image, x, y, w, h float64, col color.RGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	dst.DrawImage(r.pixel, op)
}

// DrawBackground fills the sky with a banded vertical gradient, lighter
// toward the horizon.
func (r *Renderer) DrawBackground(screen *ebiten.Image) {
	const bands = 8
	bandH := float64(game.WinHeight) / bands
	for i := 0; i < bands; i++ {
		t := float64(i) / (bands - 1)
		col := color.RGBA{
			R: uint8(float64(skyColor.R) + 30*t),
			G: uint8(float64(skyColor.G) + 20*t),
			B: skyColor.B,
			A: 255,
		}
		r.fillRect(screen, 0, float64(i)*bandH, game.WinWidth, bandH+1, col)
	}
}

// DrawBird draws a bird rotated about its center by its tilt angle.
func (r *Renderer) DrawBird(screen *ebiten.Image, b *game.Bird) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-game.BirdWidth/2, -game.BirdHeight/2)
	op.GeoM.Rotate(-b.Tilt * math.Pi / 180)
	op.GeoM.Translate(game.BirdX+game.BirdWidth/2, b.Y+game.BirdHeight/2)
	screen.DrawImage(r.bird, op)
}

// DrawBirdFaded draws a bird at reduced opacity, used for the rest of a
// training cohort behind the leader.
func (r *Renderer) DrawBirdFaded(screen *ebiten.Image, b *game.Bird) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-game.BirdWidth/2, -game.BirdHeight/2)
	op.GeoM.Rotate(-b.Tilt * math.Pi / 180)
	op.GeoM.Translate(game.BirdX+game.BirdWidth/2, b.Y+game.BirdHeight/2)
	op.ColorM.Scale(1, 1, 1, 0.35)
	screen.DrawImage(r.bird, op)
}

// DrawPipe draws both halves of a pipe with a wider lip at the gap edge.
func (r *Renderer) DrawPipe(screen *ebiten.Image, p *game.Pipe) {
	const (
		lipHeight   = 26.0
		lipOverhang = 4.0
		edgeWidth   = 4.0
	)

	// Top half: from the screen top down to the gap.
	r.fillRect(screen, p.X, 0, game.PipeWidth, p.GapTop-lipHeight, pipeColor)
	r.fillRect(screen, p.X, 0, edgeWidth, p.GapTop-lipHeight, pipeEdge)
	r.fillRect(screen, p.X-lipOverhang, p.GapTop-lipHeight, game.PipeWidth+2*lipOverhang, lipHeight, pipeColor)
	r.fillRect(screen, p.X-lipOverhang, p.GapTop-edgeWidth, game.PipeWidth+2*lipOverhang, edgeWidth, pipeEdge)

	// Bottom half: from the gap down to the ground.
	bottom := p.GapBottom()
	r.fillRect(screen, p.X-lipOverhang, bottom, game.PipeWidth+2*lipOverhang, lipHeight, pipeColor)
	r.fillRect(screen, p.X-lipOverhang, bottom, game.PipeWidth+2*lipOverhang, edgeWidth, pipeEdge)
	r.fillRect(screen, p.X, bottom+lipHeight, game.PipeWidth, game.GroundY-bottom-lipHeight, pipeColor)
	r.fillRect(screen, p.X, bottom+lipHeight, edgeWidth, game.GroundY-bottom-lipHeight, pipeEdge)
}

// DrawGround draws both scrolling ground tiles with a grass strip on top.
func (r *Renderer) DrawGround(screen *ebiten.Image, g *game.Ground) {
	h := float64(game.WinHeight) - game.GroundY
	for _, x := range []float64{g.X1, g.X2} {
		r.fillRect(screen, x, game.GroundY, game.GroundTileW, h, groundColor)
		r.fillRect(screen, x, game.GroundY, game.GroundTileW, 8, grassColor)
	}
}

// DrawWorld draws the static scene: background, pipes and ground. Birds are
// drawn by the caller, which knows which ones to show.
func (r *Renderer) DrawWorld(screen *ebiten.Image, w *game.World) {
	r.DrawBackground(screen)
	for _, p := range w.Pipes {
		r.DrawPipe(screen, p)
	}
	r.DrawGround(screen, w.Ground)
}
