package formats

import "math"

// SectionScore is the raw outcome of one section within an attempt.
type SectionScore struct {
	Total   int     `json:"total"`
	Correct int     `json:"correct"`
	Percent float64 `json:"percent"`
}

// Breakdown maps section code to its raw outcome.
type Breakdown map[string]SectionScore

// ScaleMapper converts a raw percentage (and optionally the section breakdown)
// to the assessment's published scale. Implementations must be pure and
// non-decreasing in pct.
type ScaleMapper interface {
	Scale(pct float64, breakdown Breakdown) float64
}

var scaleRegistry = map[string]ScaleMapper{}

// RegisterScale binds a mapper to a key like "hp.v1.scale".
func RegisterScale(key string, m ScaleMapper) { scaleRegistry[key] = m }

// ApplyScaling applies a registered scale mapper; returns pct if not found.
func ApplyScaling(key string, pct float64, breakdown Breakdown) float64 {
	if m, ok := scaleRegistry[key]; ok && m != nil {
		return m.Scale(pct, breakdown)
	}
	return pct
}

// Scorer normalizes percentages through the mapper registered under Key.
type Scorer struct {
	Key string
}

func (s Scorer) Normalize(pct float64, breakdown Breakdown) float64 {
	return ApplyScaling(s.Key, clampPct(pct), breakdown)
}

// Point is one knot of a piecewise-linear curve.
type Point struct {
	Pct    float64
	Scaled float64
}

// Curve is a piecewise-linear mapper over knots sorted by Pct with
// non-decreasing Scaled values. Results are rounded to two decimals.
type Curve []Point

func (c Curve) Scale(pct float64, _ Breakdown) float64 {
	if len(c) == 0 {
		return 0
	}
	pct = clampPct(pct)
	if pct <= c[0].Pct {
		return round2(c[0].Scaled)
	}
	for i := 1; i < len(c); i++ {
		lo, hi := c[i-1], c[i]
		if pct <= hi.Pct {
			if hi.Pct == lo.Pct {
				return round2(hi.Scaled)
			}
			f := (pct - lo.Pct) / (hi.Pct - lo.Pct)
			return round2(lo.Scaled + f*(hi.Scaled-lo.Scaled))
		}
	}
	return round2(c[len(c)-1].Scaled)
}

func clampPct(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func round2(x float64) float64 { return math.Floor(x*100+0.5) / 100 }
