package game

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/weatherloop/loop"
	"github.com/pthm-cable/weatherloop/systems"
	"github.com/pthm-cable/weatherloop/ui"
)

// upload copies img into the frame texture, recreating it on size changes.
func (g *Game) upload(img *image.RGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if g.frameTex.ID == 0 || w != g.texW || h != g.texH {
		if g.frameTex.ID != 0 {
			rl.UnloadTexture(g.frameTex)
		}
		blank := rl.GenImageColor(w, h, rl.Blank)
		g.frameTex = rl.LoadTextureFromImage(blank)
		rl.UnloadImage(blank)
		g.texW, g.texH = w, h
		g.pixels = make([]color.RGBA, w*h)
	}

	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := g.pixels[y*w : (y+1)*w]
		for x := range dst {
			p := row[4*x : 4*x+4]
			dst[x] = color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
		}
	}
	rl.UpdateTexture(g.frameTex, g.pixels)
}

// drawFrame draws the optional checker backdrop and the frame texture into
// the viewport.
func (g *Game) drawFrame() {
	cam := g.camera
	x, y, w, h := cam.FrameRect()
	dest := rl.Rectangle{X: x, Y: y, Width: w, Height: h}

	rl.BeginScissorMode(int32(cam.ViewportX), int32(cam.ViewportY), int32(cam.ViewportW), int32(cam.ViewportH))
	if g.checker {
		// Checker cells stay at screen scale like an editor backdrop
		src := rl.Rectangle{Width: w, Height: h}
		rl.DrawTexturePro(g.checkerTex, src, dest, rl.Vector2{}, 0, rl.White)
	} else {
		rl.DrawRectangleRec(dest, rl.Black)
	}

	// Frame pixels are premultiplied
	rl.BeginBlendMode(rl.BlendAlphaPremultiply)
	src := rl.Rectangle{Width: float32(g.texW), Height: float32(g.texH)}
	rl.DrawTexturePro(g.frameTex, src, dest, rl.Vector2{}, 0, rl.White)
	rl.EndBlendMode()
	rl.EndScissorMode()

	rl.DrawRectangleLines(int32(x), int32(y), int32(w), int32(h), rl.DarkGray)
}

// drawHUD draws the status overlay and the key legend.
func (g *Game) drawHUD() {
	cfg := g.loop.Config()
	d := cfg.Derived
	state := g.loop.State()

	var t float64
	if state.Started {
		t = loop.LoopTime(g.Now().Sub(state.Start), cfg.Duration)
	}

	data := ui.HUDData{
		Kind:      d.Kind.String(),
		Width:     d.Width,
		Height:    d.Height,
		Particles: systems.ParticleCount(cfg.Density(), d.Width, d.Height),
		T:         t,
		Period:    d.Period,
		FPS:       rl.GetFPS(),
	}
	if g.status != "" && g.Now().Before(g.statusUntil) {
		data.Status, data.StatusErr = g.status, g.statusErr
	}

	vx, vy := int32(g.camera.ViewportX), int32(g.camera.ViewportY)
	g.hud.Draw(vx, vy, data)
	g.hud.DrawControls(vx, vy+int32(g.camera.ViewportH), controlsLegend)
}
