package wm

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/1broseidon/stratawm/internal/geometry"
)

// Params carries the engine's static configuration.
type Params struct {
	// Desktops is the fixed size of the virtual-desktop pool.
	Desktops int

	// BorderWidth is the border drawn around tiled and floating windows.
	BorderWidth int

	// SnapMargin is the width of the snap zones along monitor edges.
	SnapMargin int

	FocusedBorderColor uint32
	NormalBorderColor  uint32

	// DragModMask is the modifier that turns a button press into a drag
	// session.
	DragModMask uint16

	// MonitorChangeCmd is run whenever an output connector changes; empty
	// disables the hook.
	MonitorChangeCmd string
}

// Launcher starts external processes for OpSpawnProcess.
type Launcher interface {
	Run(cmdline string) error
}

// Engine is the window-manager state machine. All state is owned by the
// event loop; nothing here is safe for concurrent use.
type Engine struct {
	display Display
	spawn   Launcher
	log     zerolog.Logger
	params  Params

	keybinds map[KeyChord]Command
	windows  map[WindowID]*window
	order    []WindowID // window ids in insertion order
	monitors []*monitor
	desktops []desktop

	// focus is the current focus target: a managed window id, a monitor's
	// sink id, or None.
	focus WindowID

	// Drag session: dragActive mirrors buttonCount > 0; dragX/dragY is the
	// last sampled pointer position.
	dragActive   bool
	dragX, dragY int
	buttonCount  int

	// preview is the snap-preview window; previewRect is the candidate it
	// currently shows (zero when hidden).
	preview     WindowID
	previewRect geometry.Rect

	stackCounter uint64

	cmdq []Command

	publish func(Snapshot)
}

// New builds an engine over the given display. The launcher may be nil, in
// which case spawn commands run through /bin/sh (see ShellLauncher).
func New(display Display, launcher Launcher, log zerolog.Logger, params Params) (*Engine, error) {
	if params.Desktops < 1 {
		return nil, fmt.Errorf("desktop pool size must be positive, got %d", params.Desktops)
	}
	if launcher == nil {
		launcher = ShellLauncher{}
	}
	return &Engine{
		display:  display,
		spawn:    launcher,
		log:      log,
		params:   params,
		keybinds: make(map[KeyChord]Command),
		windows:  make(map[WindowID]*window),
		desktops: make([]desktop, params.Desktops),
		focus:    None,
	}, nil
}

// SetPublisher installs a snapshot callback invoked after every loop
// iteration. The callback must not retain references into the engine; the
// snapshot is a deep copy.
func (e *Engine) SetPublisher(fn func(Snapshot)) {
	e.publish = fn
}

// BindKey grabs a key combination and binds it to a command.
func (e *Engine) BindKey(mods uint16, keycode uint8, cmd Command) error {
	if err := e.display.GrabKey(mods, keycode); err != nil {
		return fmt.Errorf("grab key state=%#x detail=%d: %w", mods, keycode, err)
	}
	e.keybinds[KeyChord{Mods: mods, Keycode: keycode}] = cmd
	e.log.Info().Uint16("state", mods).Uint8("detail", keycode).Stringer("cmd", cmd).Msg("keybinding registered")
	return nil
}

// Init prepares the engine: desktop pool, preview window, pointer grabs,
// initial monitor enumeration, and initial focus.
func (e *Engine) Init() error {
	for i := range e.desktops {
		e.desktops[i].monitor = noMonitor
	}

	preview, err := e.display.CreatePreviewWindow()
	if err != nil {
		return fmt.Errorf("create preview window: %w", err)
	}
	e.preview = preview

	if err := e.display.GrabButtons(); err != nil {
		return fmt.Errorf("grab buttons: %w", err)
	}

	outputs, err := e.display.Outputs()
	if err != nil {
		return fmt.Errorf("enumerate outputs: %w", err)
	}
	for _, out := range outputs {
		if !out.Enabled {
			continue
		}
		if _, err := e.addMonitor(out.ID, out.Geometry); err != nil {
			return err
		}
	}

	if len(e.monitors) > 0 {
		if err := e.changeFocus(e.monitors[0].sink); err != nil {
			return err
		}
	} else {
		e.log.Warn().Msg("no enabled outputs at startup")
	}
	return nil
}

// Run drives the reactive loop: wait for an event, mutate state, drain the
// command queue. It returns restart=true when the loop was terminated by a
// Restart command; a non-nil error means a fatal failure.
func (e *Engine) Run() (restart bool, err error) {
	for {
		ev, err := e.display.WaitEvent()
		if err != nil {
			return false, fmt.Errorf("wait for event: %w", err)
		}
		if err := e.handleEvent(ev); err != nil {
			return false, err
		}
		if err := e.processCommands(); err != nil {
			var s shutdown
			if errors.As(err, &s) {
				return s.restart, nil
			}
			return false, err
		}
		if e.publish != nil {
			e.publish(e.snapshot())
		}
	}
}

func (e *Engine) handleEvent(ev Event) error {
	switch ev := ev.(type) {
	case KeyPress:
		if cmd, ok := e.keybinds[KeyChord{Mods: ev.State, Keycode: ev.Keycode}]; ok {
			e.cmdq = append(e.cmdq, cmd)
		}
		return nil

	case ButtonPress:
		return e.handleButtonPress(ev)
	case Motion:
		return e.handleMotion(ev)
	case ButtonRelease:
		return e.handleButtonRelease(ev)

	case MapRequest:
		return e.handleMapRequest(ev)
	case UnmapNotify:
		return e.handleUnmapNotify(ev)
	case DestroyNotify:
		return e.removeWindow(ev.Window)
	case ConfigureRequest:
		return e.handleConfigureRequest(ev)
	case FullscreenRequest:
		return e.handleFullscreenRequest(ev)

	case CrtcChange:
		return e.handleCrtcChange(ev)
	case OutputHardwareChange:
		if e.params.MonitorChangeCmd != "" {
			e.cmdq = append(e.cmdq, Command{Op: OpSpawnProcess, Cmdline: e.params.MonitorChangeCmd})
		}
		return nil

	case ProtocolError:
		// Protocol errors do not correlate with a specific request; there is
		// nothing safe to retry. Log and carry on.
		e.log.Error().Err(ev.Err).Msg("protocol error")
		return nil
	}
	e.log.Trace().Type("event", ev).Msg("unhandled event")
	return nil
}

func (e *Engine) handleMapRequest(ev MapRequest) error {
	if w, ok := e.windows[ev.Window]; ok {
		mon := e.desktops[w.desktop].monitor
		if mon == noMonitor {
			return nil
		}
		w.mapped = true
		e.log.Debug().Uint32("window", uint32(w.id)).Int("desktop", w.desktop).Msg("window remapped")
		if err := e.updateLayout(mon); err != nil {
			return err
		}
		if err := e.display.MapWindow(w.id); err != nil {
			return err
		}
		return e.changeFocus(w.id)
	}

	geo, err := e.display.WindowGeometry(ev.Window)
	if err != nil {
		return err
	}

	mon, ok := e.focusedMonitor()
	if !ok {
		mon = 0
	}
	if len(e.monitors) == 0 {
		e.log.Warn().Uint32("window", uint32(ev.Window)).Msg("map request with no monitors; ignoring")
		return nil
	}
	monGeo := e.monitors[mon].geometry
	desk := e.monitors[mon].desktop

	w := &window{
		id:      ev.Window,
		desktop: desk,
		mapped:  true,
		geometry: geometry.Rect{
			X: geo.X - monGeo.X,
			Y: geo.Y - monGeo.Y,
			W: geo.W,
			H: geo.H,
		},
	}

	// Dialogs float, centered on their monitor.
	if e.display.IsDialog(w.id) {
		w.floating = true
		w.stackOrder = e.nextStackOrder()
		w.geometry.X = monGeo.W/2 - w.geometry.W/2
		w.geometry.Y = monGeo.H/2 - w.geometry.H/2
	}

	if err := e.display.AnnounceActions(w.id); err != nil {
		return err
	}

	e.windows[w.id] = w
	e.order = append(e.order, w.id)
	e.log.Debug().Uint32("window", uint32(w.id)).Int("desktop", desk).Msg("window managed")

	if err := e.updateLayout(mon); err != nil {
		return err
	}
	if err := e.display.MapWindow(w.id); err != nil {
		return err
	}
	return e.changeFocus(w.id)
}

func (e *Engine) handleUnmapNotify(ev UnmapNotify) error {
	w, ok := e.windows[ev.Window]
	if !ok {
		e.log.Warn().Uint32("window", uint32(ev.Window)).Msg("unmap notify for unknown window")
		return nil
	}
	if w.ignoreUnmap {
		// Self-inflicted: the engine hid this window itself.
		w.ignoreUnmap = false
		return nil
	}
	mon := e.desktops[w.desktop].monitor
	if mon == noMonitor {
		return nil
	}
	e.log.Debug().Uint32("window", uint32(w.id)).Msg("window withdrawn")
	w.mapped = false

	if e.focus == w.id {
		next := e.monitors[mon].sink
		if first := e.firstMappedOn(w.desktop); first != nil {
			next = first.id
		}
		if err := e.changeFocus(next); err != nil {
			return err
		}
	}
	return e.updateLayout(mon)
}

// removeWindow drops a window record entirely, relayouts its former monitor,
// and refocuses if the window held focus.
func (e *Engine) removeWindow(id WindowID) error {
	w, ok := e.windows[id]
	if !ok {
		return nil
	}
	delete(e.windows, id)
	for i, o := range e.order {
		if o == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.log.Debug().Uint32("window", uint32(id)).Int("desktop", w.desktop).Msg("window removed")

	mon := e.desktops[w.desktop].monitor
	if mon == noMonitor {
		if e.focus == id {
			return e.changeFocus(None)
		}
		return nil
	}
	if err := e.updateLayout(mon); err != nil {
		return err
	}
	if e.focus == id {
		next := e.monitors[mon].sink
		if first := e.firstMappedOn(w.desktop); first != nil {
			next = first.id
		}
		return e.changeFocus(next)
	}
	return nil
}

func (e *Engine) handleConfigureRequest(ev ConfigureRequest) error {
	if _, ok := e.windows[ev.Window]; ok {
		// Managed windows get their geometry from the layout engine.
		return nil
	}
	return e.display.ForwardConfigure(ev)
}

func (e *Engine) handleFullscreenRequest(ev FullscreenRequest) error {
	w, ok := e.windows[ev.Window]
	if !ok {
		return nil
	}
	w.fullscreen = ev.On
	if ev.On {
		w.stackOrder = e.nextStackOrder()
	}
	if mon := e.desktops[w.desktop].monitor; mon != noMonitor {
		if err := e.updateLayout(mon); err != nil {
			return err
		}
	}
	return e.display.SetFullscreenHint(w.id, ev.On)
}

// changeFocus moves the focus marker and input focus to the target. The
// target must be a managed window, a live sink, or None; the engine is the
// only party that ever re-focuses after the target disappears.
func (e *Engine) changeFocus(target WindowID) error {
	if e.focus == target {
		return nil
	}
	prev := e.focus
	e.focus = target
	e.log.Debug().Uint32("window", uint32(target)).Msg("focus changed")

	if _, ok := e.windows[prev]; ok {
		if err := e.display.SetBorderColor(prev, e.params.NormalBorderColor); err != nil {
			return err
		}
	}
	if _, ok := e.windows[target]; ok {
		if err := e.display.SetBorderColor(target, e.params.FocusedBorderColor); err != nil {
			return err
		}
	}
	return e.display.SetInputFocus(target)
}

// focusedMonitor resolves the monitor owning the current focus target,
// whether that is a managed window or a sink.
func (e *Engine) focusedMonitor() (int, bool) {
	if w, ok := e.windows[e.focus]; ok {
		mon := e.desktops[w.desktop].monitor
		if mon == noMonitor {
			return 0, false
		}
		return mon, true
	}
	for i, m := range e.monitors {
		if m.sink == e.focus {
			return i, true
		}
	}
	return 0, false
}

// monitorContaining returns the index of the monitor whose geometry contains
// the point, or -1.
func (e *Engine) monitorContaining(x, y int) int {
	for i, m := range e.monitors {
		if m.geometry.Contains(x, y) {
			return i
		}
	}
	return -1
}
