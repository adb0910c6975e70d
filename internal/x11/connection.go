package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/rs/zerolog"
)

// Connection manages the X11 connection and the core X resources the window
// manager owns. It implements wm.Display.
type Connection struct {
	xu     *xgbutil.XUtil
	conn   *xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo
	log    zerolog.Logger

	// Interned atoms consulted on the event path.
	atomWMState    xproto.Atom
	atomFullscreen xproto.Atom

	checkWin xproto.Window
}

// NewConnection establishes a connection to the X11 server and initializes
// the required extensions.
func NewConnection(log zerolog.Logger) (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to display: %w", err)
	}

	// Initialize keybind module (required for key-name lookup)
	keybind.Initialize(xu)

	if err := randr.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	c := &Connection{
		xu:     xu,
		conn:   xu.Conn(),
		root:   xu.RootWin(),
		screen: xu.Screen(),
		log:    log,
	}

	if c.atomWMState, err = xprop.Atm(xu, "_NET_WM_STATE"); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("intern _NET_WM_STATE: %w", err)
	}
	if c.atomFullscreen, err = xprop.Atm(xu, "_NET_WM_STATE_FULLSCREEN"); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("intern _NET_WM_STATE_FULLSCREEN: %w", err)
	}

	return c, nil
}

// Manage claims window-manager ownership of the root window. It fails if
// another window manager already holds the substructure-redirect selection.
func (c *Connection) Manage() error {
	mask := uint32(xproto.EventMaskSubstructureRedirect |
		xproto.EventMaskSubstructureNotify |
		xproto.EventMaskButtonPress |
		xproto.EventMaskButtonRelease |
		xproto.EventMaskPointerMotion)
	err := xproto.ChangeWindowAttributesChecked(
		c.conn, c.root, xproto.CwEventMask, []uint32{mask},
	).Check()
	if err != nil {
		return fmt.Errorf("acquire root window (is another window manager running?): %w", err)
	}

	err = randr.SelectInputChecked(
		c.conn, c.root,
		randr.NotifyMaskCrtcChange|randr.NotifyMaskOutputChange,
	).Check()
	if err != nil {
		return fmt.Errorf("select randr notifications: %w", err)
	}

	if err := c.announce(); err != nil {
		return fmt.Errorf("announce supported hints: %w", err)
	}

	c.log.Info().Uint32("root", uint32(c.root)).Msg("managing root window")
	return nil
}

// announce publishes the supported EWMH hints and the supporting-check
// window that identifies a live compliant window manager.
func (c *Connection) announce() error {
	check, err := xproto.NewWindowId(c.conn)
	if err != nil {
		return err
	}
	err = xproto.CreateWindowChecked(
		c.conn, 0, check, c.root,
		-1, -1, 1, 1, 0,
		xproto.WindowClassInputOnly, c.screen.RootVisual,
		0, nil,
	).Check()
	if err != nil {
		return err
	}
	c.checkWin = check

	if err := ewmh.SupportedSet(c.xu, []string{
		"_NET_SUPPORTED",
		"_NET_SUPPORTING_WM_CHECK",
		"_NET_WM_NAME",
		"_NET_WM_STATE",
		"_NET_WM_STATE_FULLSCREEN",
		"_NET_WM_WINDOW_TYPE",
		"_NET_WM_WINDOW_TYPE_DIALOG",
		"_NET_WM_ALLOWED_ACTIONS",
	}); err != nil {
		return err
	}
	if err := ewmh.SupportingWmCheckSet(c.xu, c.root, check); err != nil {
		return err
	}
	if err := ewmh.SupportingWmCheckSet(c.xu, check, check); err != nil {
		return err
	}
	return ewmh.WmNameSet(c.xu, check, "stratawm")
}

// Close cleanly disconnects from the X11 server.
func (c *Connection) Close() {
	c.conn.Close()
}
