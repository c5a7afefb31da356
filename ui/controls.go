package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/weatherloop/components"
	"github.com/pthm-cable/weatherloop/config"
	"github.com/pthm-cable/weatherloop/systems"
)

// PanelState is the shell state the panel displays.
type PanelState struct {
	Checker   bool
	Exporting bool
	// Progress of the running export in [0, 1]
	Progress float32
}

// PanelResult collects what the user changed during one draw.
type PanelResult struct {
	Edits  []func(c *config.Config)
	Action Action
}

// ControlsPanel renders the parameter sliders and action buttons for the
// active weather kind.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width, height int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		height:   height,
	}
}

// Resize updates the panel height.
func (c *ControlsPanel) Resize(height int32) {
	c.height = height
}

// Width returns the panel width.
func (c *ControlsPanel) Width() int32 {
	return c.width
}

// Draw renders the panel for cfg. Slider edits are returned rather than
// applied so the caller can validate them as one update.
func (c *ControlsPanel) Draw(cfg *config.Config, state PanelState) PanelResult {
	var res PanelResult
	r := c.renderer
	t := r.Theme
	padding := t.Padding
	x := c.x + padding
	inner := c.width - padding*2

	r.DrawPanel(c.x, c.y, c.width, c.height)
	y := c.y + padding

	kind := cfg.Derived.Kind
	title := "Rain"
	if kind == components.KindSnow {
		title = "Snow"
	}
	y = r.DrawSectionHeader(x, y, title+" Parameters")

	for _, ctrl := range config.Controls(kind) {
		v := ctrl.Get(cfg)
		rl.DrawText(ctrl.Name, x, y, t.FontSize, t.LabelColor)
		val := FormatValue(v, ctrl.Step)
		rl.DrawText(val, x+inner-rl.MeasureText(val, t.FontSize), y, t.FontSize, t.ValueColor)
		y += t.LineHeight - 2

		nv := gui.SliderBar(
			rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(inner), Height: float32(t.SliderHeight)},
			"", "",
			float32(v), float32(ctrl.Min), float32(ctrl.Max),
		)
		if nv != float32(v) {
			set := ctrl.Set
			res.Edits = append(res.Edits, func(c *config.Config) { set(c, float64(nv)) })
		}
		y += t.SliderHeight + 6
	}

	y += 4
	rl.DrawLine(x, y, x+inner, y, t.PanelBorder)
	y += 8

	gap := padding / 2
	third := (inner - 2*gap) / 3
	bh := float32(t.ButtonHeight)
	button := func(col int32, text string) bool {
		bx := x + col*(third+gap)
		return gui.Button(rl.Rectangle{X: float32(bx), Y: float32(y), Width: float32(third), Height: bh}, text)
	}

	if button(0, toggleText(kind == components.KindSnow, "Rain", "Snow")) {
		res.Action = ActionToggleKind
	}
	if button(1, "Reseed") {
		res.Action = ActionReseed
	}
	if button(2, "Restart") {
		res.Action = ActionRestart
	}
	y += t.ButtonHeight + 6

	if button(0, toggleText(state.Checker, "Checker on", "Checker off")) {
		res.Action = ActionToggleChecker
	}
	if button(1, toggleText(cfg.Loop.Seamless, "Seamless", "Raw motion")) {
		res.Action = ActionToggleSeamless
	}
	if button(2, toggleText(state.Exporting, "Cancel", "Export")) {
		res.Action = toggleAction(state.Exporting, ActionCancelExport, ActionExport)
	}
	y += t.ButtonHeight + 6

	if button(0, "Copy JSON") {
		res.Action = ActionCopyJSON
	}
	if button(1, "Copy YAML") {
		res.Action = ActionCopyYAML
	}
	if button(2, "Copy Cmd") {
		res.Action = ActionCopyCommand
	}
	y += t.ButtonHeight + 10

	if state.Exporting {
		y = r.DrawBar(x, y, "Export", state.Progress, inner)
	}

	d := cfg.Derived
	y = r.DrawLabelValue(x, y, "Frame", config.FormatSize(d.Width, d.Height))
	y = r.DrawLabelValue(x, y, "Particles", fmt.Sprintf("%d", systems.ParticleCount(cfg.Density(), d.Width, d.Height)))
	y = r.DrawLabelValue(x, y, "Seed", fmt.Sprintf("%d", cfg.Seed))
	r.DrawLabelValue(x, y, "Loop", fmt.Sprintf("%.2fs @ %d fps", d.Period, cfg.FPS))

	return res
}

func toggleAction(cond bool, ifTrue, ifFalse Action) Action {
	if cond {
		return ifTrue
	}
	return ifFalse
}
