package wm

import "github.com/1broseidon/stratawm/internal/geometry"

// WindowID identifies a window on the display server. Zero means "no window".
type WindowID uint32

// OutputID identifies a physical display output (a CRTC).
type OutputID uint32

// None is the absent window identifier.
const None WindowID = 0

// StackMode selects how a configure request restacks a window.
type StackMode int

const (
	StackNone StackMode = iota
	StackAbove
	StackBelow
	StackTopIf
)

// Configure describes a window configuration request. Zero-value fields with
// their Set flag false are left untouched on the server.
type Configure struct {
	Geometry    geometry.Rect
	SetGeometry bool
	BorderWidth int
	SetBorder   bool
	Stack       StackMode
	Sibling     WindowID // restack relative to this window when non-zero
}

// PointerMode is the continuation mode for a frozen pointer grab.
type PointerMode int

const (
	// PointerReplay releases the frozen event to the client it was aimed at.
	PointerReplay PointerMode = iota
	// PointerSync keeps the pointer frozen so the next event is also
	// delivered synchronously.
	PointerSync
)

// Output is one physical display head as reported by the display server.
type Output struct {
	ID       OutputID
	Enabled  bool
	Geometry geometry.Rect
}

// Display abstracts the display-server connection the engine drives. The
// production implementation lives in internal/x11; tests substitute an
// in-memory fake.
type Display interface {
	// WaitEvent blocks until the next protocol event arrives. It returns an
	// error only for fatal transport failures; asynchronous protocol errors
	// are delivered as ProtocolError events.
	WaitEvent() (Event, error)

	// CreateInputWindow creates and maps an invisible 1x1 input-only window
	// at the given root coordinates, used as a focus sink.
	CreateInputWindow(x, y int) (WindowID, error)

	// CreatePreviewWindow creates the translucent snap-preview window. It is
	// returned unmapped.
	CreatePreviewWindow() (WindowID, error)

	MapWindow(WindowID) error
	UnmapWindow(WindowID) error
	DestroyWindow(WindowID) error
	ConfigureWindow(WindowID, Configure) error

	// ForwardConfigure replays a configure request from an unmanaged client
	// verbatim.
	ForwardConfigure(ConfigureRequest) error

	SetBorderColor(WindowID, uint32) error

	// SetInputFocus transfers input focus with no revert target. Passing
	// None drops focus entirely.
	SetInputFocus(WindowID) error

	WindowGeometry(WindowID) (geometry.Rect, error)

	// IsDialog reports whether the window declares a dialog window type.
	IsDialog(WindowID) bool

	// SetFullscreenHint writes or clears the window's fullscreen state
	// property.
	SetFullscreenHint(WindowID, bool) error

	// AnnounceActions advertises the actions the engine supports on a newly
	// managed window.
	AnnounceActions(WindowID) error

	GrabKey(mods uint16, keycode uint8) error
	GrabButtons() error
	AllowPointer(PointerMode) error

	// Outputs enumerates all display outputs, including disabled ones.
	Outputs() ([]Output, error)
}
