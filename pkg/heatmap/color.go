package heatmap

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// MaxCalls is the call count at which the color scale saturates.
const MaxCalls = 40

// Neutral colors for tiles with no calls.
const (
	neutralColor = "#e5e7eb"
	darkText     = "#1f2937"
	lightText    = "#f9fafb"
)

// luminanceThreshold splits dark-text from light-text backgrounds.
// Standard WCAG-style heuristic; changing it breaks visual regression
// baselines.
const luminanceThreshold = 0.65

// Saturation and lightness bounds of the scale. Lightness decreases
// with more calls so hot tiles read darker.
const (
	minSaturation = 0.45
	maxSaturation = 0.85
	maxLightness  = 0.82
	minLightness  = 0.38
)

// hueStop is one anchor of the hue ramp.
type hueStop struct {
	pos float64 // position on the 0..1 call-count ratio
	hue float64 // degrees
}

// hueStops orders the ramp blue -> green -> yellow -> red. Perceptual
// color distance is non-linear across that spectrum, so hue is
// interpolated piecewise through these anchors rather than as one
// linear ramp.
var hueStops = []hueStop{
	{pos: 0.0, hue: 215},
	{pos: 0.35, hue: 150},
	{pos: 0.65, hue: 45},
	{pos: 1.0, hue: 5},
}

// MapColor maps a call count to a tile background and contrasting text
// color, both as #rrggbb hex strings.
//
// Counts <= 0 take the fixed neutral gray with no hue computation.
// Positive counts are clamped to [0, MaxCalls]; the resulting ratio
// drives the hue ramp and the linear saturation/lightness ramps. Text
// color is chosen by relative luminance of the computed background
// (0.2126 R + 0.7152 G + 0.0722 B on [0,1] channels) against the fixed
// threshold.
func MapColor(calls int) (color, textColor string) {
	if calls <= 0 {
		return neutralColor, darkText
	}

	ratio := float64(calls) / MaxCalls
	if ratio > 1 {
		ratio = 1
	}

	h := hueAt(ratio)
	s := minSaturation + ratio*(maxSaturation-minSaturation)
	l := maxLightness - ratio*(maxLightness-minLightness)

	bg := colorful.Hsl(h, s, l)

	if relativeLuminance(bg) > luminanceThreshold {
		return bg.Hex(), darkText
	}
	return bg.Hex(), lightText
}

// hueAt interpolates the hue ramp at a ratio in [0, 1].
func hueAt(ratio float64) float64 {
	if ratio <= hueStops[0].pos {
		return hueStops[0].hue
	}

	for i := 1; i < len(hueStops); i++ {
		prev, next := hueStops[i-1], hueStops[i]
		if ratio <= next.pos {
			span := next.pos - prev.pos
			frac := (ratio - prev.pos) / span
			return prev.hue + frac*(next.hue-prev.hue)
		}
	}

	return hueStops[len(hueStops)-1].hue
}

// lightnessAt returns the scale lightness for a clamped call count.
// Split out so the monotonicity of the scale is testable without
// round-tripping through RGB.
func lightnessAt(calls int) float64 {
	if calls <= 0 {
		return maxLightness
	}

	ratio := float64(calls) / MaxCalls
	if ratio > 1 {
		ratio = 1
	}

	return maxLightness - ratio*(maxLightness-minLightness)
}

// relativeLuminance computes the WCAG-style relative luminance of a
// color on [0, 1] channels.
func relativeLuminance(c colorful.Color) float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}
