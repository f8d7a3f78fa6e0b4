// Package plotstyle generates color palettes for plot series.
//
// The worker renders plots with matplotlib defaults; clients that overlay
// several series ask the server for a palette of perceptually distinct hex
// colors to pass along in plot parameters.
package plotstyle

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// MaxSeries caps a single palette request.
const MaxSeries = 64

// SeriesPalette returns n visually distinct hex colors (#rrggbb).
//
// Small palettes come from go-colorful's warm generator; when it cannot
// satisfy the request (it rejects large n), evenly spaced HCL hues are
// used instead so the function never fails for valid n.
func SeriesPalette(n int) ([]string, error) {
	if n < 1 || n > MaxSeries {
		return nil, fmt.Errorf("plotstyle: series count %d out of range [1,%d]", n, MaxSeries)
	}

	colors, err := colorful.HappyPalette(n)
	if err != nil {
		colors = spacedHues(n)
	}

	hex := make([]string, n)
	for i, c := range colors {
		hex[i] = c.Hex()
	}
	return hex, nil
}

func spacedHues(n int) []colorful.Color {
	colors := make([]colorful.Color, n)
	for i := range colors {
		h := float64(i) * 360.0 / float64(n)
		colors[i] = colorful.Hcl(h, 0.5, 0.7).Clamped()
	}
	return colors
}
