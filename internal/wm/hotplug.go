package wm

import (
	"fmt"

	"github.com/1broseidon/stratawm/internal/geometry"
)

// addMonitor registers an enabled output: creates its focus sink, binds the
// first free desktop, and lays the desktop out.
func (e *Engine) addMonitor(out OutputID, geo geometry.Rect) (int, error) {
	desk := -1
	for i := range e.desktops {
		if e.desktops[i].monitor == noMonitor {
			desk = i
			break
		}
	}
	if desk == -1 {
		return 0, fmt.Errorf("output %d enabled but all %d desktops are already visible", uint32(out), len(e.desktops))
	}

	sink, err := e.display.CreateInputWindow(geo.X, geo.Y)
	if err != nil {
		return 0, fmt.Errorf("create focus sink for output %d: %w", uint32(out), err)
	}
	if err := e.display.MapWindow(sink); err != nil {
		return 0, err
	}

	idx := len(e.monitors)
	e.monitors = append(e.monitors, &monitor{
		output:   out,
		geometry: geo,
		desktop:  desk,
		sink:     sink,
	})
	e.desktops[desk].monitor = idx
	e.log.Info().
		Uint32("output", uint32(out)).
		Int("desktop", desk).
		Int("x", geo.X).Int("y", geo.Y).Int("w", geo.W).Int("h", geo.H).
		Msg("monitor added")

	return idx, e.updateLayout(idx)
}

func (e *Engine) handleCrtcChange(ev CrtcChange) error {
	idx := -1
	for i, m := range e.monitors {
		if m.output == ev.Output {
			idx = i
			break
		}
	}

	switch {
	case idx >= 0 && !ev.Enabled:
		return e.removeMonitor(idx)

	case idx >= 0:
		// Mode or position change on a known output.
		e.monitors[idx].geometry = ev.Geometry
		e.log.Info().Uint32("output", uint32(ev.Output)).Msg("monitor reconfigured")
		return e.updateLayout(idx)

	case ev.Enabled:
		mi, err := e.addMonitor(ev.Output, ev.Geometry)
		if err != nil {
			return err
		}
		desk := e.monitors[mi].desktop
		for _, w := range e.mappedOn(desk) {
			if err := e.display.MapWindow(w.id); err != nil {
				return err
			}
		}
		return e.focusDesktop(desk, mi)
	}

	// Disable for an output we never tracked.
	return nil
}

// removeMonitor tears a monitor down: hides its desktop's windows, destroys
// its sink, and compacts the monitor slice. The desktop binding of the
// monitor that moves into the vacated slot is repaired so desktop indices
// stay consistent.
func (e *Engine) removeMonitor(idx int) error {
	m := e.monitors[idx]
	desk := m.desktop

	for _, w := range e.mappedOn(desk) {
		w.ignoreUnmap = true
		if err := e.display.UnmapWindow(w.id); err != nil {
			return err
		}
	}

	e.desktops[desk].monitor = noMonitor
	if err := e.display.DestroyWindow(m.sink); err != nil {
		return err
	}

	last := len(e.monitors) - 1
	e.monitors[idx] = e.monitors[last]
	e.monitors = e.monitors[:last]
	if idx < len(e.monitors) {
		e.desktops[e.monitors[idx].desktop].monitor = idx
	}
	e.log.Info().Uint32("output", uint32(m.output)).Int("desktop", desk).Msg("monitor removed")

	// If focus pointed at the dead sink or a window that just went off
	// screen, move it somewhere live.
	if e.focus == m.sink || e.focusOnDesktop(desk) {
		if len(e.monitors) == 0 {
			return e.changeFocus(None)
		}
		return e.focusDesktop(e.monitors[0].desktop, 0)
	}
	return nil
}

// focusOnDesktop reports whether the current focus is a managed window living
// on the given desktop.
func (e *Engine) focusOnDesktop(desk int) bool {
	w, ok := e.windows[e.focus]
	return ok && w.desktop == desk
}
