package wm

import "github.com/1broseidon/stratawm/internal/geometry"

// Event is a protocol event delivered by the Display. Handlers dispatch on
// the concrete type.
type Event interface {
	isEvent()
}

// KeyPress is a grabbed key combination going down.
type KeyPress struct {
	State   uint16 // modifier mask at press time
	Keycode uint8
}

// ButtonPress is a pointer button going down on the root grab. Child is the
// top-level window under the pointer, or None for bare root.
type ButtonPress struct {
	Button       uint8
	State        uint16
	RootX, RootY int
	Child        WindowID
}

// ButtonRelease is a pointer button coming back up.
type ButtonRelease struct {
	Button       uint8
	RootX, RootY int
}

// Motion is pointer movement while a button grab is active.
type Motion struct {
	State        uint16
	RootX, RootY int
}

// MapRequest is a client asking to make a window viewable.
type MapRequest struct {
	Window WindowID
}

// UnmapNotify reports that a window became unviewable, whether by the
// engine's own request or the client's.
type UnmapNotify struct {
	Window WindowID
}

// DestroyNotify reports that a window ceased to exist.
type DestroyNotify struct {
	Window WindowID
}

// ConfigureRequest is a client asking for a new window configuration. The
// Has flags mirror the request's value mask.
type ConfigureRequest struct {
	Window       WindowID
	X, Y         int
	W, H         int
	BorderWidth  int
	Sibling      WindowID
	Stack        StackMode
	HasX, HasY   bool
	HasW, HasH   bool
	HasBorder    bool
	HasSibling   bool
	HasStack     bool
}

// FullscreenRequest is a client message asking to enter or leave fullscreen.
type FullscreenRequest struct {
	Window WindowID
	On     bool
}

// CrtcChange reports that a display output was enabled, reconfigured, or
// disabled. Geometry is meaningful only when Enabled is true.
type CrtcChange struct {
	Output   OutputID
	Enabled  bool
	Geometry geometry.Rect
}

// OutputHardwareChange reports a connector-level change (a monitor cable
// plugged or pulled). The engine reacts by running the configured
// monitor-change hook; the actual geometry change arrives later as one or
// more CrtcChange events.
type OutputHardwareChange struct{}

// ProtocolError is an asynchronous protocol-level error. It does not
// correlate with a specific request and never interrupts the event loop.
type ProtocolError struct {
	Err error
}

func (KeyPress) isEvent()             {}
func (ButtonPress) isEvent()          {}
func (ButtonRelease) isEvent()        {}
func (Motion) isEvent()               {}
func (MapRequest) isEvent()           {}
func (UnmapNotify) isEvent()          {}
func (DestroyNotify) isEvent()        {}
func (ConfigureRequest) isEvent()     {}
func (FullscreenRequest) isEvent()    {}
func (CrtcChange) isEvent()           {}
func (OutputHardwareChange) isEvent() {}
func (ProtocolError) isEvent()        {}
