// Package ui draws the preview's control panel and heads-up display.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	MutedColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	ErrorColor     rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
	SliderHeight   int32
	ButtonHeight   int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.White,
		MutedColor:     rl.Gray,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		ErrorColor:     rl.Color{R: 230, G: 110, B: 100, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     110,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 16,
		SliderHeight:   16,
		ButtonHeight:   26,
	}
}

// Action is a command issued from the panel or keyboard.
type Action int

const (
	ActionNone Action = iota
	ActionToggleKind
	ActionReseed
	ActionRestart
	ActionToggleChecker
	ActionToggleSeamless
	ActionExport
	ActionCancelExport
	ActionCopyJSON
	ActionCopyYAML
	ActionCopyCommand
)
