package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/Dipendra367/FlappyBirdAI/internal/game"
)

var (
	hudColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	shadowColor = color.RGBA{R: 20, G: 20, B: 30, A: 200}
	dimColor    = color.RGBA{R: 0, G: 0, B: 0, A: 140}
)

const (
	hudPadding  = 10
	hudLineStep = 16
)

// drawText draws a string with a one pixel drop shadow for legibility
// against the sky.
func drawText(screen *ebiten.Image, s string, x, y int) {
	face := basicfont.Face7x13
	text.Draw(screen, s, face, x+1, y+1, shadowColor)
	text.Draw(screen, s, face, x, y, hudColor)
}

// DrawScore draws the score in the top-right corner.
func (r *Renderer) DrawScore(screen *ebiten.Image, score string) {
	face := basicfont.Face7x13
	w := text.BoundString(face, score).Dx()
	drawText(screen, score, game.WinWidth-hudPadding-w, hudPadding+face.Ascent)
}

// DrawStats draws one line per entry down the top-left corner.
func (r *Renderer) DrawStats(screen *ebiten.Image, lines []string) {
	face := basicfont.Face7x13
	y := hudPadding + face.Ascent
	for _, line := range lines {
		drawText(screen, line, hudPadding, y)
		y += hudLineStep
	}
}

// DrawCenteredBanner dims the scene and draws the given lines centered on
// screen, used for the game-over and pause states.
func (r *Renderer) DrawCenteredBanner(screen *ebiten.Image, lines []string) {
	r.fillRect(screen, 0, 0, game.WinWidth, game.WinHeight, dimColor)

	face := basicfont.Face7x13
	total := len(lines) * hudLineStep
	y := game.WinHeight/2 - total/2 + face.Ascent
	for _, line := range lines {
		w := text.BoundString(face, line).Dx()
		drawText(screen, line, (game.WinWidth-w)/2, y)
		y += hudLineStep
	}
}
