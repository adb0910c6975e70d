package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/stratawm/internal/geometry"
	"github.com/1broseidon/stratawm/internal/wm"
)

// previewPixel is the preview window's background: 50% alpha over a warm
// amber, with the color channels premultiplied as composited visuals expect.
const previewPixel = 0x80513D14

// CreateInputWindow creates a 1x1 input-only window used as a focus sink.
func (c *Connection) CreateInputWindow(x, y int) (wm.WindowID, error) {
	wid, err := xproto.NewWindowId(c.conn)
	if err != nil {
		return wm.None, err
	}
	err = xproto.CreateWindowChecked(
		c.conn, 0, wid, c.root,
		int16(x), int16(y), 1, 1, 0,
		xproto.WindowClassInputOnly, c.screen.RootVisual,
		xproto.CwOverrideRedirect, []uint32{1},
	).Check()
	if err != nil {
		return wm.None, fmt.Errorf("create input window: %w", err)
	}
	return wm.WindowID(wid), nil
}

// CreatePreviewWindow creates the translucent snap-preview window on a 32-bit
// visual so a running compositor renders it see-through.
func (c *Connection) CreatePreviewWindow() (wm.WindowID, error) {
	visual, ok := c.argbVisual()
	if !ok {
		return wm.None, fmt.Errorf("no 32-bit truecolor visual on screen")
	}

	cmap, err := xproto.NewColormapId(c.conn)
	if err != nil {
		return wm.None, err
	}
	err = xproto.CreateColormapChecked(
		c.conn, xproto.ColormapAllocNone, cmap, c.root, visual,
	).Check()
	if err != nil {
		return wm.None, fmt.Errorf("create colormap: %w", err)
	}

	wid, err := xproto.NewWindowId(c.conn)
	if err != nil {
		return wm.None, err
	}
	// A 32-bit window must supply its own back/border pixel and colormap;
	// the defaults belong to the root depth and would make the request fail.
	err = xproto.CreateWindowChecked(
		c.conn, 32, wid, c.root,
		0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, visual,
		xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwOverrideRedirect|xproto.CwColormap,
		[]uint32{previewPixel, previewPixel, 1, uint32(cmap)},
	).Check()
	if err != nil {
		return wm.None, fmt.Errorf("create preview window: %w", err)
	}
	return wm.WindowID(wid), nil
}

// argbVisual finds a 32-bit truecolor visual for translucent windows.
func (c *Connection) argbVisual() (xproto.Visualid, bool) {
	for _, depth := range c.screen.AllowedDepths {
		if depth.Depth != 32 {
			continue
		}
		for _, vis := range depth.Visuals {
			if vis.Class == xproto.VisualClassTrueColor {
				return vis.VisualId, true
			}
		}
	}
	return 0, false
}

func (c *Connection) MapWindow(id wm.WindowID) error {
	return xproto.MapWindowChecked(c.conn, xproto.Window(id)).Check()
}

func (c *Connection) UnmapWindow(id wm.WindowID) error {
	return xproto.UnmapWindowChecked(c.conn, xproto.Window(id)).Check()
}

func (c *Connection) DestroyWindow(id wm.WindowID) error {
	return xproto.DestroyWindowChecked(c.conn, xproto.Window(id)).Check()
}

// ConfigureWindow applies a configuration. Values must follow the ascending
// bit order of the request's value mask.
func (c *Connection) ConfigureWindow(id wm.WindowID, cfg wm.Configure) error {
	var mask uint16
	var values []uint32

	if cfg.SetGeometry {
		mask |= xproto.ConfigWindowX | xproto.ConfigWindowY |
			xproto.ConfigWindowWidth | xproto.ConfigWindowHeight
		values = append(values,
			uint32(cfg.Geometry.X), uint32(cfg.Geometry.Y),
			uint32(cfg.Geometry.W), uint32(cfg.Geometry.H))
	}
	if cfg.SetBorder {
		mask |= xproto.ConfigWindowBorderWidth
		values = append(values, uint32(cfg.BorderWidth))
	}
	if cfg.Sibling != wm.None {
		mask |= xproto.ConfigWindowSibling
		values = append(values, uint32(cfg.Sibling))
	}
	if cfg.Stack != wm.StackNone {
		mask |= xproto.ConfigWindowStackMode
		values = append(values, stackMode(cfg.Stack))
	}
	if mask == 0 {
		return nil
	}
	return xproto.ConfigureWindowChecked(c.conn, xproto.Window(id), mask, values).Check()
}

func stackMode(m wm.StackMode) uint32 {
	switch m {
	case wm.StackBelow:
		return xproto.StackModeBelow
	case wm.StackTopIf:
		return xproto.StackModeTopIf
	default:
		return xproto.StackModeAbove
	}
}

// ForwardConfigure replays an unmanaged client's configure request verbatim.
func (c *Connection) ForwardConfigure(ev wm.ConfigureRequest) error {
	var mask uint16
	var values []uint32

	if ev.HasX {
		mask |= xproto.ConfigWindowX
		values = append(values, uint32(ev.X))
	}
	if ev.HasY {
		mask |= xproto.ConfigWindowY
		values = append(values, uint32(ev.Y))
	}
	if ev.HasW {
		mask |= xproto.ConfigWindowWidth
		values = append(values, uint32(ev.W))
	}
	if ev.HasH {
		mask |= xproto.ConfigWindowHeight
		values = append(values, uint32(ev.H))
	}
	if ev.HasBorder {
		mask |= xproto.ConfigWindowBorderWidth
		values = append(values, uint32(ev.BorderWidth))
	}
	if ev.HasSibling {
		mask |= xproto.ConfigWindowSibling
		values = append(values, uint32(ev.Sibling))
	}
	if ev.HasStack {
		mask |= xproto.ConfigWindowStackMode
		values = append(values, stackMode(ev.Stack))
	}
	if mask == 0 {
		return nil
	}
	return xproto.ConfigureWindowChecked(c.conn, xproto.Window(ev.Window), mask, values).Check()
}

func (c *Connection) SetBorderColor(id wm.WindowID, color uint32) error {
	return xproto.ChangeWindowAttributesChecked(
		c.conn, xproto.Window(id), xproto.CwBorderPixel, []uint32{color},
	).Check()
}

// SetInputFocus transfers input focus with no revert target, so focus never
// silently falls back to a window the engine does not control.
func (c *Connection) SetInputFocus(id wm.WindowID) error {
	return xproto.SetInputFocusChecked(
		c.conn, xproto.InputFocusNone, xproto.Window(id), xproto.TimeCurrentTime,
	).Check()
}

func (c *Connection) WindowGeometry(id wm.WindowID) (geometry.Rect, error) {
	geom, err := xproto.GetGeometry(c.conn, xproto.Drawable(id)).Reply()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("get geometry of %d: %w", uint32(id), err)
	}
	return geometry.Rect{
		X: int(geom.X),
		Y: int(geom.Y),
		W: int(geom.Width),
		H: int(geom.Height),
	}, nil
}

// IsDialog reports whether a window declares the dialog window type.
func (c *Connection) IsDialog(id wm.WindowID) bool {
	types, err := ewmh.WmWindowTypeGet(c.xu, xproto.Window(id))
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DIALOG" {
			return true
		}
	}
	return false
}

func (c *Connection) SetFullscreenHint(id wm.WindowID, on bool) error {
	states := []string{}
	if on {
		states = append(states, "_NET_WM_STATE_FULLSCREEN")
	}
	return ewmh.WmStateSet(c.xu, xproto.Window(id), states)
}

// AnnounceActions advertises the operations the manager supports on a newly
// managed window.
func (c *Connection) AnnounceActions(id wm.WindowID) error {
	return ewmh.WmAllowedActionsSet(c.xu, xproto.Window(id), []string{
		"_NET_WM_ACTION_MOVE",
		"_NET_WM_ACTION_RESIZE",
		"_NET_WM_ACTION_FULLSCREEN",
		"_NET_WM_ACTION_CHANGE_DESKTOP",
		"_NET_WM_ACTION_CLOSE",
	})
}

func (c *Connection) GrabKey(mods uint16, keycode uint8) error {
	return xproto.GrabKeyChecked(
		c.conn, true, c.root,
		mods, xproto.Keycode(keycode),
		xproto.GrabModeAsync, xproto.GrabModeAsync,
	).Check()
}

// GrabButtons grabs every pointer button on the root with a synchronous
// pointer mode, so each press freezes event delivery until the engine decides
// to replay or keep it.
func (c *Connection) GrabButtons() error {
	return xproto.GrabButtonChecked(
		c.conn, true, c.root,
		uint16(xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease|xproto.EventMaskPointerMotion),
		xproto.GrabModeSync, xproto.GrabModeAsync,
		xproto.WindowNone, xproto.CursorNone,
		xproto.ButtonIndexAny, xproto.ModMaskAny,
	).Check()
}

func (c *Connection) AllowPointer(mode wm.PointerMode) error {
	m := byte(xproto.AllowReplayPointer)
	if mode == wm.PointerSync {
		m = xproto.AllowSyncPointer
	}
	return xproto.AllowEventsChecked(c.conn, m, xproto.TimeCurrentTime).Check()
}

// Outputs enumerates every CRTC. A CRTC with no mode or no connected outputs
// is reported as disabled.
func (c *Connection) Outputs() ([]wm.Output, error) {
	resources, err := randr.GetScreenResourcesCurrent(c.conn, c.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var outputs []wm.Output
	for _, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			return nil, fmt.Errorf("failed to get crtc %d info: %w", uint32(crtc), err)
		}
		out := wm.Output{
			ID:      wm.OutputID(crtc),
			Enabled: info.Mode != 0 && len(info.Outputs) > 0,
			Geometry: geometry.Rect{
				X: int(info.X),
				Y: int(info.Y),
				W: int(info.Width),
				H: int(info.Height),
			},
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}
