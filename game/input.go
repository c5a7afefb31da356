package game

import (
	"fmt"
	"math/rand/v2"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/weatherloop/components"
	"github.com/pthm-cable/weatherloop/config"
	"github.com/pthm-cable/weatherloop/ui"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	keys := []struct {
		key    int32
		action ui.Action
	}{
		{rl.KeyTab, ui.ActionToggleKind},
		{rl.KeyR, ui.ActionReseed},
		{rl.KeySpace, ui.ActionRestart},
		{rl.KeyC, ui.ActionToggleChecker},
		{rl.KeyS, ui.ActionToggleSeamless},
		{rl.KeyE, ui.ActionExport},
		{rl.KeyJ, ui.ActionCopyJSON},
		{rl.KeyY, ui.ActionCopyYAML},
		{rl.KeyG, ui.ActionCopyCommand},
	}
	for _, k := range keys {
		if rl.IsKeyPressed(k.key) {
			g.do(k.action)
		}
	}

	g.handleCameraInput()
}

// do runs a panel or keyboard action.
func (g *Game) do(a ui.Action) {
	switch a {
	case ui.ActionToggleKind:
		g.edit(func(c *config.Config) {
			if c.Derived.Kind == components.KindSnow {
				c.SetKind(components.KindRain)
			} else {
				c.SetKind(components.KindSnow)
			}
		})
	case ui.ActionReseed:
		seed := rand.Uint32()
		g.edit(func(c *config.Config) { c.Seed = seed })
		g.setStatus(fmt.Sprintf("seed %d", seed))
	case ui.ActionRestart:
		g.loop.Restart()
	case ui.ActionToggleChecker:
		g.checker = !g.checker
	case ui.ActionToggleSeamless:
		g.edit(func(c *config.Config) { c.Loop.Seamless = !c.Loop.Seamless })
	case ui.ActionExport:
		g.startExport()
	case ui.ActionCancelExport:
		g.stopExport()
		g.setStatus("export cancelled")
	case ui.ActionCopyJSON:
		g.copyParams("json")
	case ui.ActionCopyYAML:
		g.copyParams("yaml")
	case ui.ActionCopyCommand:
		rl.SetClipboardText(config.GeneratorCommand(g.loop.Config()))
		g.setStatus("generator command copied")
	}
}

func (g *Game) copyParams(format string) {
	data, err := config.ExportParams(g.loop.Config(), format)
	if err != nil {
		g.setError(err.Error())
		return
	}
	rl.SetClipboardText(string(data))
	g.setStatus(format + " params copied")
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	panelW := float32(g.panel.Width())
	g.camera.SetViewport(panelW, 0, w-panelW, h)
	g.panel.Resize(int32(h))
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / g.camera.Zoom

	// Arrow key panning
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	// Mouse wheel zooms only over the viewport so the panel can scroll sliders
	mouse := rl.GetMousePosition()
	if wheel := rl.GetMouseWheelMove(); wheel != 0 && g.camera.InViewport(mouse.X, mouse.Y) {
		g.camera.ZoomBy(1 + wheel*0.1)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
