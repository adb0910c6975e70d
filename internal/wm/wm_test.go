package wm

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/1broseidon/stratawm/internal/geometry"
)

// fakeDisplay is an in-memory Display recording every call so tests can
// assert on the engine's protocol traffic without a display server.
type fakeDisplay struct {
	nextID WindowID

	mapped    map[WindowID]bool
	destroyed map[WindowID]bool
	configs   map[WindowID]Configure
	borders   map[WindowID]uint32
	geos      map[WindowID]geometry.Rect
	dialogs   map[WindowID]bool
	fullHints map[WindowID]bool

	focus   WindowID
	allowed []PointerMode

	outputs []Output
	events  []Event
}

func newFakeDisplay(outputs ...Output) *fakeDisplay {
	return &fakeDisplay{
		nextID:    100,
		mapped:    make(map[WindowID]bool),
		destroyed: make(map[WindowID]bool),
		configs:   make(map[WindowID]Configure),
		borders:   make(map[WindowID]uint32),
		geos:      make(map[WindowID]geometry.Rect),
		dialogs:   make(map[WindowID]bool),
		fullHints: make(map[WindowID]bool),
		outputs:   outputs,
	}
}

// addClient registers a client-created window the way a real client would
// exist before its MapRequest arrives.
func (d *fakeDisplay) addClient(geo geometry.Rect, dialog bool) WindowID {
	d.nextID++
	id := d.nextID
	d.geos[id] = geo
	d.dialogs[id] = dialog
	return id
}

func (d *fakeDisplay) WaitEvent() (Event, error) {
	if len(d.events) == 0 {
		return nil, errFakeClosed
	}
	ev := d.events[0]
	d.events = d.events[1:]
	return ev, nil
}

func (d *fakeDisplay) CreateInputWindow(x, y int) (WindowID, error) {
	d.nextID++
	d.geos[d.nextID] = geometry.Rect{X: x, Y: y, W: 1, H: 1}
	return d.nextID, nil
}

func (d *fakeDisplay) CreatePreviewWindow() (WindowID, error) {
	d.nextID++
	return d.nextID, nil
}

func (d *fakeDisplay) MapWindow(id WindowID) error {
	d.mapped[id] = true
	return nil
}

func (d *fakeDisplay) UnmapWindow(id WindowID) error {
	d.mapped[id] = false
	return nil
}

func (d *fakeDisplay) DestroyWindow(id WindowID) error {
	d.destroyed[id] = true
	delete(d.mapped, id)
	return nil
}

func (d *fakeDisplay) ConfigureWindow(id WindowID, cfg Configure) error {
	d.configs[id] = cfg
	if cfg.SetGeometry {
		d.geos[id] = cfg.Geometry
	}
	return nil
}

func (d *fakeDisplay) ForwardConfigure(ev ConfigureRequest) error {
	cfg := d.configs[ev.Window]
	if ev.HasX {
		cfg.Geometry.X = ev.X
	}
	if ev.HasY {
		cfg.Geometry.Y = ev.Y
	}
	if ev.HasW {
		cfg.Geometry.W = ev.W
	}
	if ev.HasH {
		cfg.Geometry.H = ev.H
	}
	cfg.SetGeometry = true
	d.configs[ev.Window] = cfg
	return nil
}

func (d *fakeDisplay) SetBorderColor(id WindowID, color uint32) error {
	d.borders[id] = color
	return nil
}

func (d *fakeDisplay) SetInputFocus(id WindowID) error {
	d.focus = id
	return nil
}

func (d *fakeDisplay) WindowGeometry(id WindowID) (geometry.Rect, error) {
	return d.geos[id], nil
}

func (d *fakeDisplay) IsDialog(id WindowID) bool { return d.dialogs[id] }

func (d *fakeDisplay) SetFullscreenHint(id WindowID, on bool) error {
	d.fullHints[id] = on
	return nil
}

func (d *fakeDisplay) AnnounceActions(WindowID) error { return nil }

func (d *fakeDisplay) GrabKey(uint16, uint8) error { return nil }

func (d *fakeDisplay) GrabButtons() error { return nil }

func (d *fakeDisplay) AllowPointer(mode PointerMode) error {
	d.allowed = append(d.allowed, mode)
	return nil
}

func (d *fakeDisplay) Outputs() ([]Output, error) { return d.outputs, nil }

type fakeError string

func (e fakeError) Error() string { return string(e) }

const errFakeClosed = fakeError("fake display closed")

// recordingLauncher captures spawn command lines instead of running them.
type recordingLauncher struct {
	cmdlines []string
}

func (l *recordingLauncher) Run(cmdline string) error {
	l.cmdlines = append(l.cmdlines, cmdline)
	return nil
}

func testParams() Params {
	return Params{
		Desktops:           20,
		BorderWidth:        1,
		SnapMargin:         32,
		FocusedBorderColor: 0x00FF00,
		NormalBorderColor:  0x000000,
		DragModMask:        1 << 6, // Mod4
	}
}

// newTestEngine builds an initialized engine over a fake display showing the
// given outputs.
func newTestEngine(t *testing.T, d *fakeDisplay) (*Engine, *recordingLauncher) {
	t.Helper()
	launcher := &recordingLauncher{}
	e, err := New(d, launcher, zerolog.Nop(), testParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return e, launcher
}

func singleOutput() Output {
	return Output{ID: 1, Enabled: true, Geometry: geometry.Rect{X: 0, Y: 0, W: 1920, H: 1080}}
}

func dualOutputs() []Output {
	return []Output{
		{ID: 1, Enabled: true, Geometry: geometry.Rect{X: 0, Y: 0, W: 1920, H: 1080}},
		{ID: 2, Enabled: true, Geometry: geometry.Rect{X: 1920, Y: 0, W: 1280, H: 1024}},
	}
}

// mapClient drives a fresh client window through MapRequest and returns its
// id.
func mapClient(t *testing.T, e *Engine, d *fakeDisplay, geo geometry.Rect) WindowID {
	t.Helper()
	id := d.addClient(geo, false)
	if err := e.handleEvent(MapRequest{Window: id}); err != nil {
		t.Fatalf("map request for %d: %v", id, err)
	}
	return id
}

// checkBijection verifies that monitor and desktop bindings stay mutually
// consistent.
func checkBijection(t *testing.T, e *Engine) {
	t.Helper()
	for mi, m := range e.monitors {
		if m.desktop < 0 || m.desktop >= len(e.desktops) {
			t.Fatalf("monitor %d bound to out-of-range desktop %d", mi, m.desktop)
		}
		if got := e.desktops[m.desktop].monitor; got != mi {
			t.Fatalf("monitor %d shows desktop %d, but desktop points back at monitor %d", mi, m.desktop, got)
		}
	}
	seen := make(map[int]int)
	for di, d := range e.desktops {
		if d.monitor == noMonitor {
			continue
		}
		if prev, dup := seen[d.monitor]; dup {
			t.Fatalf("desktops %d and %d both claim monitor %d", prev, di, d.monitor)
		}
		seen[d.monitor] = di
	}
}
