package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/stratawm/internal/geometry"
	"github.com/1broseidon/stratawm/internal/wm"
)

// _NET_WM_STATE client-message actions.
const (
	netWMStateRemove = 0
	netWMStateAdd    = 1
	netWMStateToggle = 2
)

// WaitEvent blocks for the next protocol event and translates it. Events the
// engine has no interest in are consumed here.
func (c *Connection) WaitEvent() (wm.Event, error) {
	for {
		ev, xerr := c.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return nil, fmt.Errorf("display connection closed")
		}
		if xerr != nil {
			return wm.ProtocolError{Err: xerr}, nil
		}

		switch ev := ev.(type) {
		case xproto.KeyPressEvent:
			return wm.KeyPress{
				State:   uint16(ev.State),
				Keycode: uint8(ev.Detail),
			}, nil

		case xproto.ButtonPressEvent:
			return wm.ButtonPress{
				Button: uint8(ev.Detail),
				State:  uint16(ev.State),
				RootX:  int(ev.RootX),
				RootY:  int(ev.RootY),
				Child:  wm.WindowID(ev.Child),
			}, nil

		case xproto.ButtonReleaseEvent:
			return wm.ButtonRelease{
				Button: uint8(ev.Detail),
				RootX:  int(ev.RootX),
				RootY:  int(ev.RootY),
			}, nil

		case xproto.MotionNotifyEvent:
			return wm.Motion{
				State: uint16(ev.State),
				RootX: int(ev.RootX),
				RootY: int(ev.RootY),
			}, nil

		case xproto.MapRequestEvent:
			return wm.MapRequest{Window: wm.WindowID(ev.Window)}, nil

		case xproto.UnmapNotifyEvent:
			return wm.UnmapNotify{Window: wm.WindowID(ev.Window)}, nil

		case xproto.DestroyNotifyEvent:
			return wm.DestroyNotify{Window: wm.WindowID(ev.Window)}, nil

		case xproto.ConfigureRequestEvent:
			return translateConfigureRequest(ev), nil

		case xproto.ClientMessageEvent:
			if req, ok := c.translateClientMessage(ev); ok {
				return req, nil
			}

		case randr.NotifyEvent:
			switch ev.SubCode {
			case randr.NotifyCrtcChange:
				cc := ev.U.Cc
				return wm.CrtcChange{
					Output:  wm.OutputID(cc.Crtc),
					Enabled: cc.Mode != 0,
					Geometry: geometry.Rect{
						X: int(cc.X),
						Y: int(cc.Y),
						W: int(cc.Width),
						H: int(cc.Height),
					},
				}, nil
			case randr.NotifyOutputChange:
				return wm.OutputHardwareChange{}, nil
			}
		}
	}
}

func translateConfigureRequest(ev xproto.ConfigureRequestEvent) wm.ConfigureRequest {
	req := wm.ConfigureRequest{
		Window:      wm.WindowID(ev.Window),
		X:           int(ev.X),
		Y:           int(ev.Y),
		W:           int(ev.Width),
		H:           int(ev.Height),
		BorderWidth: int(ev.BorderWidth),
		Sibling:     wm.WindowID(ev.Sibling),
	}
	req.HasX = ev.ValueMask&xproto.ConfigWindowX != 0
	req.HasY = ev.ValueMask&xproto.ConfigWindowY != 0
	req.HasW = ev.ValueMask&xproto.ConfigWindowWidth != 0
	req.HasH = ev.ValueMask&xproto.ConfigWindowHeight != 0
	req.HasBorder = ev.ValueMask&xproto.ConfigWindowBorderWidth != 0
	req.HasSibling = ev.ValueMask&xproto.ConfigWindowSibling != 0
	if ev.ValueMask&xproto.ConfigWindowStackMode != 0 {
		req.HasStack = true
		switch ev.StackMode {
		case xproto.StackModeBelow:
			req.Stack = wm.StackBelow
		case xproto.StackModeTopIf:
			req.Stack = wm.StackTopIf
		default:
			req.Stack = wm.StackAbove
		}
	}
	return req
}

// translateClientMessage recognizes _NET_WM_STATE fullscreen transitions.
func (c *Connection) translateClientMessage(ev xproto.ClientMessageEvent) (wm.Event, bool) {
	if ev.Type != c.atomWMState || ev.Format != 32 {
		return nil, false
	}
	data := ev.Data.Data32
	if xproto.Atom(data[1]) != c.atomFullscreen && xproto.Atom(data[2]) != c.atomFullscreen {
		return nil, false
	}

	on := false
	switch data[0] {
	case netWMStateAdd:
		on = true
	case netWMStateRemove:
		on = false
	case netWMStateToggle:
		on = !c.isFullscreen(xproto.Window(ev.Window))
	default:
		return nil, false
	}
	return wm.FullscreenRequest{Window: wm.WindowID(ev.Window), On: on}, true
}

func (c *Connection) isFullscreen(win xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.xu, win)
	if err != nil {
		return false
	}
	for _, s := range states {
		if s == "_NET_WM_STATE_FULLSCREEN" {
			return true
		}
	}
	return false
}
