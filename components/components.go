// Package components defines the particle data shared by the factory, the
// motion model and the renderer.
package components

import "fmt"

// Kind selects the weather effect.
type Kind uint8

const (
	KindRain Kind = iota
	KindSnow
)

// String returns the lowercase kind name used in configs and file names.
func (k Kind) String() string {
	switch k {
	case KindRain:
		return "rain"
	case KindSnow:
		return "snow"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind parses "rain" or "snow".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "rain":
		return KindRain, nil
	case "snow":
		return KindSnow, nil
	}
	return 0, fmt.Errorf("unknown weather kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Particle holds the static attributes of one drop or flake.
// Position at time t is derived from these; nothing here changes after creation.
type Particle struct {
	// Origin, possibly outside the visible frame
	X0, Y0 float64

	// Velocity in px/sec
	VX, VY float64

	Size  float64 // radius (snow) or base width (rain), px
	Alpha float64 // 0.05..1
	Phase float64 // [0, 2π), offsets wobble and sparkle

	// Rain only
	LenScale   float64 // 0.55..1.9
	ThickScale float64 // 0.65..1.7
	Sparkle    float64 // 0..1 highlight intensity
}

// Batch is the immutable particle set for one combination of kind,
// resolution, seed and parameters. A batch is replaced as a whole, never edited.
type Batch struct {
	Kind      Kind
	Width     int
	Height    int
	Seed      uint32
	Particles []Particle
}

// Len returns the particle count.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Particles)
}
