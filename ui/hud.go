package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the heads-up display.
type HUDData struct {
	Kind      string
	Width     int
	Height    int
	Particles int
	T         float64
	Period    float64
	FPS       int32
	Status    string
	StatusErr bool
}

// HUD renders the preview overlay.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD at the top-left corner of the viewport.
func (h *HUD) Draw(x, y int32, data HUDData) {
	t := h.renderer.Theme

	rl.DrawText(
		fmt.Sprintf("%s %dx%d | %d particles", data.Kind, data.Width, data.Height, data.Particles),
		x+10, y+10, 16, rl.White,
	)
	rl.DrawText(
		fmt.Sprintf("t %.2f / %.2fs | FPS: %d", data.T, data.Period, data.FPS),
		x+10, y+30, 16, t.LabelColor,
	)

	if data.Status != "" {
		c := rl.Yellow
		if data.StatusErr {
			c = t.ErrorColor
		}
		rl.DrawText(data.Status, x+10, y+50, 16, c)
	}
}

// DrawControls renders the key legend along the bottom of the viewport.
func (h *HUD) DrawControls(x, bottom int32, controls string) {
	rl.DrawText(controls, x+10, bottom-25, 14, rl.Gray)
}
