package wm

import "github.com/1broseidon/stratawm/internal/geometry"

// snapCandidate maps a pointer position near a monitor's edges, corners, or
// center to a canonical quarter/half/full rectangle in absolute coordinates.
// Corner zones win over single edges, which win over the center zone: a
// pointer inside both the "left" and "top" bands snaps to the top-left
// quadrant, never the left half.
func snapCandidate(mon geometry.Rect, x, y, margin int) (geometry.Rect, bool) {
	left := mon.Left() <= x && x < mon.Left()+margin
	right := mon.Right()-margin <= x && x < mon.Right()
	top := mon.Top() <= y && y < mon.Top()+margin
	bottom := mon.Bottom()-margin <= y && y < mon.Bottom()

	halfW := mon.W / 2
	halfH := mon.H / 2
	restW := mon.W - halfW
	restH := mon.H - halfH

	switch {
	case left && top:
		return geometry.Rect{X: mon.Left(), Y: mon.Top(), W: halfW, H: halfH}, true
	case left && bottom:
		return geometry.Rect{X: mon.Left(), Y: mon.Top() + halfH, W: halfW, H: restH}, true
	case right && top:
		return geometry.Rect{X: mon.Left() + halfW, Y: mon.Top(), W: restW, H: halfH}, true
	case right && bottom:
		return geometry.Rect{X: mon.Left() + halfW, Y: mon.Top() + halfH, W: restW, H: restH}, true
	case left:
		return geometry.Rect{X: mon.Left(), Y: mon.Top(), W: halfW, H: mon.H}, true
	case right:
		return geometry.Rect{X: mon.Left() + halfW, Y: mon.Top(), W: restW, H: mon.H}, true
	case top:
		return geometry.Rect{X: mon.Left(), Y: mon.Top(), W: mon.W, H: halfH}, true
	case bottom:
		return geometry.Rect{X: mon.Left(), Y: mon.Top() + halfH, W: mon.W, H: restH}, true
	}

	// Center zone: a margin-sized box around the monitor's midpoint yields
	// the full monitor rectangle.
	cx := mon.Left() + halfW
	cy := mon.Top() + halfH
	if cx-margin <= x && x < cx+margin && cy-margin <= y && y < cy+margin {
		return mon, true
	}

	return geometry.Rect{}, false
}
