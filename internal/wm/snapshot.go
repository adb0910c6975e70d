package wm

import "github.com/1broseidon/stratawm/internal/geometry"

// Snapshot is a deep copy of the engine's observable state, published after
// every loop iteration for read-only consumers (the status socket).
type Snapshot struct {
	Focus    WindowID
	Monitors []MonitorSnapshot
	Windows  []WindowSnapshot
}

// MonitorSnapshot describes one live monitor.
type MonitorSnapshot struct {
	Output   OutputID
	Geometry geometry.Rect
	Desktop  int
}

// WindowSnapshot describes one managed window.
type WindowSnapshot struct {
	ID         WindowID
	Desktop    int
	Mapped     bool
	Floating   bool
	Fullscreen bool
	Geometry   geometry.Rect
}

func (e *Engine) snapshot() Snapshot {
	s := Snapshot{
		Focus:    e.focus,
		Monitors: make([]MonitorSnapshot, 0, len(e.monitors)),
		Windows:  make([]WindowSnapshot, 0, len(e.order)),
	}
	for _, m := range e.monitors {
		s.Monitors = append(s.Monitors, MonitorSnapshot{
			Output:   m.output,
			Geometry: m.geometry,
			Desktop:  m.desktop,
		})
	}
	for _, id := range e.order {
		w := e.windows[id]
		s.Windows = append(s.Windows, WindowSnapshot{
			ID:         w.id,
			Desktop:    w.desktop,
			Mapped:     w.mapped,
			Floating:   w.floating,
			Fullscreen: w.fullscreen,
			Geometry:   w.geometry,
		})
	}
	return s
}
