// Package game is the interactive preview shell: a raylib window showing the
// live loop next to a parameter panel.
package game

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/weatherloop/camera"
	"github.com/pthm-cable/weatherloop/config"
	"github.com/pthm-cable/weatherloop/loop"
	"github.com/pthm-cable/weatherloop/renderer"
	"github.com/pthm-cable/weatherloop/ui"
)

// statusDuration is how long a status message stays on screen.
const statusDuration = 4 * time.Second

const controlsLegend = "[Tab] kind  [R] reseed  [Space] restart  [C] checker  [S] seamless  [E] export  [J/Y] copy params  [G] copy command  [Home] fit"

// Game holds the preview shell state. It must be created after the raylib
// window and used from the window's thread.
type Game struct {
	ctx    context.Context
	loop   *loop.Loop
	logger *slog.Logger
	opts   Options

	camera *camera.Camera
	panel  *ui.ControlsPanel
	hud    *ui.HUD

	frameTex   rl.Texture2D
	texW, texH int
	pixels     []color.RGBA
	checkerTex rl.Texture2D
	checker    bool

	screenWidth, screenHeight float32

	status      string
	statusErr   bool
	statusUntil time.Time

	export *exportJob
}

// NewGame creates the preview shell over cfg.
func NewGame(cfg *config.Config, opts Options) *Game {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	g := &Game{
		ctx:          context.Background(),
		loop:         loop.New(cfg, opts.Logger),
		logger:       opts.Logger,
		opts:         opts,
		hud:          ui.NewHUD(),
		checker:      cfg.Preview.Checker,
		screenWidth:  float32(rl.GetScreenWidth()),
		screenHeight: float32(rl.GetScreenHeight()),
	}

	panelW := int32(cfg.Preview.PanelWidth)
	g.panel = ui.NewControlsPanel(0, 0, panelW, int32(g.screenHeight))
	g.camera = camera.New(g.screenWidth-float32(panelW), g.screenHeight,
		float32(cfg.Derived.Width), float32(cfg.Derived.Height))
	g.camera.SetViewport(float32(panelW), 0, g.screenWidth-float32(panelW), g.screenHeight)

	g.checkerTex = loadChecker(cfg.Export.CheckerTile)
	return g
}

// Run drives the preview loop until ctx is cancelled or the window closes.
func (g *Game) Run(ctx context.Context) error {
	g.ctx = ctx
	defer g.stopExport()
	return g.loop.Run(ctx, g)
}

// Next implements loop.Display. raylib paces frames in EndDrawing.
func (g *Game) Next() bool {
	return !rl.WindowShouldClose()
}

// Now implements loop.Display.
func (g *Game) Now() time.Time {
	return time.Now()
}

// Present implements loop.Display: it handles input, shows img and the UI,
// then applies any panel edits for the next tick.
func (g *Game) Present(img *image.RGBA) {
	g.handleInput()
	g.pollExport()
	g.upload(img)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 14, B: 18, A: 255})
	g.drawFrame()
	g.drawHUD()
	res := g.panel.Draw(g.loop.Config(), ui.PanelState{
		Checker:   g.checker,
		Exporting: g.export != nil,
		Progress:  g.export.progress(),
	})
	rl.EndDrawing()

	if len(res.Edits) > 0 {
		g.edit(res.Edits...)
	}
	g.do(res.Action)
}

// edit applies fns to the live parameters as one validated update.
func (g *Game) edit(fns ...func(c *config.Config)) {
	err := g.loop.Update(func(c *config.Config) {
		for _, fn := range fns {
			fn(c)
		}
	})
	if err != nil {
		g.setError("rejected edit: " + err.Error())
		return
	}
	d := g.loop.Config().Derived
	g.camera.SetFrame(float32(d.Width), float32(d.Height))
}

func (g *Game) setStatus(msg string) {
	g.status, g.statusErr = msg, false
	g.statusUntil = time.Now().Add(statusDuration)
}

func (g *Game) setError(msg string) {
	g.status, g.statusErr = msg, true
	g.statusUntil = time.Now().Add(statusDuration)
	g.logger.Warn(msg)
}

// Unload releases GPU resources and stops a running export.
func (g *Game) Unload() {
	g.stopExport()
	if g.frameTex.ID != 0 {
		rl.UnloadTexture(g.frameTex)
	}
	if g.checkerTex.ID != 0 {
		rl.UnloadTexture(g.checkerTex)
	}
}

// loadChecker uploads the checker cell as a repeating texture.
func loadChecker(tile int) rl.Texture2D {
	cell := renderer.CheckerTile(tile)
	size := cell.Bounds().Dx()
	img := rl.GenImageColor(size, size, rl.Black)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureWrap(tex, rl.WrapRepeat)

	pixels := make([]color.RGBA, size*size)
	for i := range pixels {
		p := cell.Pix[4*i : 4*i+4]
		pixels[i] = color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
	}
	rl.UpdateTexture(tex, pixels)
	return tex
}
