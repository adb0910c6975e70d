package wm

import (
	"sort"

	"github.com/1broseidon/stratawm/internal/geometry"
)

// tileWidths splits a monitor width across n tiled windows: the first n-1
// get floor(width/n) and the last absorbs the remainder. Border is
// subtracted twice from each returned width.
func tileWidths(width, n, border int) []int {
	if n == 0 {
		return nil
	}
	each := width / n
	last := width - (n-1)*each
	widths := make([]int, n)
	for i := range widths {
		w := each
		if i == n-1 {
			w = last
		}
		widths[i] = w - 2*border
	}
	return widths
}

// updateLayout recomputes and applies the geometry of every mapped window on
// a monitor: a single horizontal row of tiles, then floating windows, then
// fullscreen windows, with the snap preview kept topmost.
func (e *Engine) updateLayout(mon int) error {
	m := e.monitors[mon]
	monGeo := m.geometry
	desk := m.desktop
	border := e.params.BorderWidth

	mapped := e.mappedOn(desk)

	var tiled, floating, fullscreen []*window
	for _, w := range mapped {
		switch {
		case w.fullscreen:
			fullscreen = append(fullscreen, w)
		case w.floating:
			floating = append(floating, w)
		default:
			tiled = append(tiled, w)
		}
	}

	if len(tiled) > 0 {
		widths := tileWidths(monGeo.W, len(tiled), border)
		x := 0
		for i, w := range tiled {
			geo := geometry.Rect{
				X: x,
				Y: 0,
				W: widths[i],
				H: monGeo.H - 2*border,
			}
			w.geometry = geo
			cfg := Configure{
				Geometry:    geo.Translate(monGeo.X, monGeo.Y),
				SetGeometry: true,
				BorderWidth: border,
				SetBorder:   true,
			}
			if err := e.display.ConfigureWindow(w.id, cfg); err != nil {
				return err
			}
			x += widths[i] + 2*border
		}
	}

	// Floating windows keep their stored geometry. Configuring in ascending
	// stacking order with StackAbove leaves the most recently raised window
	// on top.
	sort.SliceStable(floating, func(i, j int) bool {
		return floating[i].stackOrder < floating[j].stackOrder
	})
	for _, w := range floating {
		cfg := Configure{
			Geometry:    w.geometry.Translate(monGeo.X, monGeo.Y),
			SetGeometry: true,
			BorderWidth: border,
			SetBorder:   true,
			Stack:       StackAbove,
		}
		if err := e.display.ConfigureWindow(w.id, cfg); err != nil {
			return err
		}
	}

	// Fullscreen windows cover the whole monitor, borderless, above the
	// floating layer.
	sort.SliceStable(fullscreen, func(i, j int) bool {
		return fullscreen[i].stackOrder < fullscreen[j].stackOrder
	})
	for _, w := range fullscreen {
		cfg := Configure{
			Geometry:    monGeo,
			SetGeometry: true,
			BorderWidth: 0,
			SetBorder:   true,
			Stack:       StackAbove,
		}
		if err := e.display.ConfigureWindow(w.id, cfg); err != nil {
			return err
		}
	}

	// The snap preview always stays above every client window.
	return e.display.ConfigureWindow(e.preview, Configure{Stack: StackAbove})
}
