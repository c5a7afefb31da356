package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/weatherloop/components"
)

// BatchStats summarizes the particle distribution of one batch.
type BatchStats struct {
	Kind   string `csv:"kind"`
	Seed   uint32 `csv:"seed"`
	Width  int    `csv:"width"`
	Height int    `csv:"height"`
	Count  int    `csv:"count"`

	// Size distribution (px)
	SizeMean float64 `csv:"size_mean"`
	SizeStd  float64 `csv:"size_std"`
	SizeP10  float64 `csv:"size_p10"`
	SizeP50  float64 `csv:"size_p50"`
	SizeP90  float64 `csv:"size_p90"`

	// Opacity distribution
	AlphaMean float64 `csv:"alpha_mean"`
	AlphaStd  float64 `csv:"alpha_std"`

	// Speed distribution (px/sec)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
}

// FrameRecord holds timing for one exported frame.
type FrameRecord struct {
	Frame    int     `csv:"frame"`
	T        float64 `csv:"t"`
	RenderUS int64   `csv:"render_us"`
	EncodeUS int64   `csv:"encode_us"`
	TotalUS  int64   `csv:"total_us"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// SummarizeBatch computes distribution statistics for b.
func SummarizeBatch(b *components.Batch) BatchStats {
	if b == nil {
		return BatchStats{}
	}
	s := BatchStats{
		Kind:   b.Kind.String(),
		Seed:   b.Seed,
		Width:  b.Width,
		Height: b.Height,
		Count:  b.Len(),
	}
	if s.Count == 0 {
		return s
	}

	sizes := make([]float64, s.Count)
	alphas := make([]float64, s.Count)
	speeds := make([]float64, s.Count)
	for i := range b.Particles {
		p := &b.Particles[i]
		sizes[i] = p.Size
		alphas[i] = p.Alpha
		speeds[i] = math.Hypot(p.VX, p.VY)
	}

	s.SizeMean, s.SizeStd = meanStd(sizes)
	s.AlphaMean, s.AlphaStd = meanStd(alphas)
	s.SpeedMean, s.SpeedStd = meanStd(speeds)

	sort.Float64s(sizes)
	sort.Float64s(speeds)
	s.SizeP10 = Percentile(sizes, 0.10)
	s.SizeP50 = Percentile(sizes, 0.50)
	s.SizeP90 = Percentile(sizes, 0.90)
	s.SpeedP50 = Percentile(speeds, 0.50)

	return s
}

// meanStd returns the mean and sample standard deviation. A single value has
// zero spread.
func meanStd(values []float64) (float64, float64) {
	if len(values) < 2 {
		return stat.Mean(values, nil), 0
	}
	return stat.MeanStdDev(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s BatchStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", s.Kind),
		slog.Any("seed", s.Seed),
		slog.Int("width", s.Width),
		slog.Int("height", s.Height),
		slog.Int("count", s.Count),
		slog.Float64("size_mean", s.SizeMean),
		slog.Float64("size_std", s.SizeStd),
		slog.Float64("size_p10", s.SizeP10),
		slog.Float64("size_p50", s.SizeP50),
		slog.Float64("size_p90", s.SizeP90),
		slog.Float64("alpha_mean", s.AlphaMean),
		slog.Float64("alpha_std", s.AlphaStd),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
	)
}
