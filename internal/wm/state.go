package wm

import "github.com/1broseidon/stratawm/internal/geometry"

// noMonitor marks a desktop that is not shown on any monitor.
const noMonitor = -1

// monitor is the engine's live binding to an enabled display output.
type monitor struct {
	output OutputID

	// geometry is the region occupied by this monitor, in absolute screen
	// coordinates.
	geometry geometry.Rect

	// desktop is the index of the desktop currently shown on this monitor.
	desktop int

	// sink is an invisible input-only window used as the focus target when
	// the desktop has no mapped client windows.
	sink WindowID
}

// desktop is a virtual desktop: a bucket of windows shown on at most one
// monitor at a time.
type desktop struct {
	// monitor is the index of the monitor displaying this desktop, or
	// noMonitor when it is not visible. Monitor and desktop bindings form a
	// partial bijection: desktops[monitors[m].desktop].monitor == m.
	monitor int
}

// window is one managed client window.
type window struct {
	id         WindowID
	desktop    int
	mapped     bool
	floating   bool
	fullscreen bool

	// geometry is relative to the origin of the monitor bound to the
	// window's desktop. When the desktop is unbound the geometry is retained
	// but not displayed.
	geometry geometry.Rect

	// stackOrder is a globally unique, increasing token. Higher values stack
	// in front among floating and fullscreen windows.
	stackOrder uint64

	// ignoreUnmap suppresses the state transition for the next UnmapNotify
	// when the engine itself unmapped the window. The core protocol gives no
	// other way to tell a self-initiated unmap from a client withdrawal.
	ignoreUnmap bool
}

// KeyChord is a grabbed modifier-state plus keycode combination.
type KeyChord struct {
	Mods    uint16
	Keycode uint8
}

// mappedOn returns the mapped windows of a desktop in insertion order.
// Window enumeration order is deliberately deterministic: every "first
// window" and cycling decision walks the insertion-ordered id list.
func (e *Engine) mappedOn(desk int) []*window {
	var out []*window
	for _, id := range e.order {
		w := e.windows[id]
		if w.desktop == desk && w.mapped {
			out = append(out, w)
		}
	}
	return out
}

// firstMappedOn returns the first mapped window on a desktop, or nil.
func (e *Engine) firstMappedOn(desk int) *window {
	for _, id := range e.order {
		w := e.windows[id]
		if w.desktop == desk && w.mapped {
			return w
		}
	}
	return nil
}

// nextStackOrder mints a fresh stacking token.
func (e *Engine) nextStackOrder() uint64 {
	e.stackCounter++
	return e.stackCounter
}
