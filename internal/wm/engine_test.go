package wm

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/1broseidon/stratawm/internal/geometry"
)

func TestNewRejectsEmptyDesktopPool(t *testing.T) {
	if _, err := New(newFakeDisplay(), nil, zerolog.Nop(), Params{Desktops: 0}); err == nil {
		t.Fatal("expected error for zero desktops")
	}
}

func TestInitFocusesFirstSink(t *testing.T) {
	d := newFakeDisplay(dualOutputs()...)
	e, _ := newTestEngine(t, d)

	if len(e.monitors) != 2 {
		t.Fatalf("got %d monitors, want 2", len(e.monitors))
	}
	checkBijection(t, e)
	if e.focus != e.monitors[0].sink {
		t.Fatalf("initial focus = %d, want first sink %d", e.focus, e.monitors[0].sink)
	}
	if d.focus != e.monitors[0].sink {
		t.Fatalf("input focus = %d, want %d", d.focus, e.monitors[0].sink)
	}
	for _, m := range e.monitors {
		if !d.mapped[m.sink] {
			t.Fatalf("sink %d not mapped", m.sink)
		}
	}
}

func TestInitSkipsDisabledOutputs(t *testing.T) {
	d := newFakeDisplay(
		Output{ID: 1, Enabled: false},
		Output{ID: 2, Enabled: true, Geometry: geometry.Rect{W: 1920, H: 1080}},
	)
	e, _ := newTestEngine(t, d)
	if len(e.monitors) != 1 || e.monitors[0].output != 2 {
		t.Fatalf("monitors = %+v, want only output 2", e.monitors)
	}
}

func TestMapRequestFocusesNewWindow(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	id := mapClient(t, e, d, geometry.Rect{X: 10, Y: 10, W: 400, H: 300})
	if e.focus != id {
		t.Fatalf("focus = %d, want new window %d", e.focus, id)
	}
	if !d.mapped[id] {
		t.Fatal("window not mapped")
	}
	if got := d.borders[id]; got != testParams().FocusedBorderColor {
		t.Fatalf("border color = %#x, want focused color", got)
	}
}

func TestDialogFloatsCentered(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	id := d.addClient(geometry.Rect{X: 0, Y: 0, W: 400, H: 300}, true)
	if err := e.handleEvent(MapRequest{Window: id}); err != nil {
		t.Fatalf("map request: %v", err)
	}

	w := e.windows[id]
	if !w.floating {
		t.Fatal("dialog not floating")
	}
	want := geometry.Rect{X: 1920/2 - 200, Y: 1080/2 - 150, W: 400, H: 300}
	if w.geometry != want {
		t.Fatalf("dialog geometry = %+v, want centered %+v", w.geometry, want)
	}
}

func TestUnmapRefocusesSibling(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	a := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})
	b := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})
	if e.focus != b {
		t.Fatalf("focus = %d, want %d", e.focus, b)
	}

	if err := e.handleEvent(UnmapNotify{Window: b}); err != nil {
		t.Fatalf("unmap notify: %v", err)
	}
	if e.windows[b].mapped {
		t.Fatal("window still marked mapped")
	}
	if e.focus != a {
		t.Fatalf("focus = %d, want surviving window %d", e.focus, a)
	}
	if got := d.borders[a]; got != testParams().FocusedBorderColor {
		t.Fatalf("surviving window border = %#x, want focused color", got)
	}
}

func TestUnmapLastWindowFocusesSink(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	a := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})
	if err := e.handleEvent(UnmapNotify{Window: a}); err != nil {
		t.Fatalf("unmap notify: %v", err)
	}
	if e.focus != e.monitors[0].sink {
		t.Fatalf("focus = %d, want sink %d", e.focus, e.monitors[0].sink)
	}
}

func TestSelfInflictedUnmapIgnoredOnce(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	a := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})
	e.windows[a].ignoreUnmap = true

	if err := e.handleEvent(UnmapNotify{Window: a}); err != nil {
		t.Fatalf("unmap notify: %v", err)
	}
	if !e.windows[a].mapped {
		t.Fatal("self-inflicted unmap changed mapped state")
	}
	if e.windows[a].ignoreUnmap {
		t.Fatal("ignore flag not consumed")
	}

	// The next unmap is a real client withdrawal.
	if err := e.handleEvent(UnmapNotify{Window: a}); err != nil {
		t.Fatalf("second unmap notify: %v", err)
	}
	if e.windows[a].mapped {
		t.Fatal("client withdrawal ignored")
	}
}

func TestDestroyRemovesAndRefocuses(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	a := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})
	b := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})

	if err := e.handleEvent(DestroyNotify{Window: b}); err != nil {
		t.Fatalf("destroy notify: %v", err)
	}
	if _, ok := e.windows[b]; ok {
		t.Fatal("destroyed window still tracked")
	}
	if len(e.order) != 1 || e.order[0] != a {
		t.Fatalf("order = %v, want [%d]", e.order, a)
	}
	if e.focus != a {
		t.Fatalf("focus = %d, want %d", e.focus, a)
	}

	// Destroying an unknown window is a no-op.
	if err := e.handleEvent(DestroyNotify{Window: 9999}); err != nil {
		t.Fatalf("destroy of unknown window: %v", err)
	}
}

func TestConfigureRequestPassthrough(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	managed := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})
	before := d.configs[managed]
	if err := e.handleEvent(ConfigureRequest{Window: managed, X: 5, HasX: true}); err != nil {
		t.Fatalf("configure request: %v", err)
	}
	if d.configs[managed] != before {
		t.Fatal("configure request on managed window was forwarded")
	}

	unmanaged := d.addClient(geometry.Rect{W: 100, H: 100}, false)
	if err := e.handleEvent(ConfigureRequest{Window: unmanaged, W: 640, H: 480, HasW: true, HasH: true}); err != nil {
		t.Fatalf("configure request: %v", err)
	}
	got := d.configs[unmanaged].Geometry
	if got.W != 640 || got.H != 480 {
		t.Fatalf("forwarded geometry = %+v, want 640x480", got)
	}
}

func TestFocusNextWindowCycles(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	a := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})
	b := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})
	c := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})

	want := []WindowID{a, b, c, a}
	for _, next := range want {
		if err := e.focusNextWindow(); err != nil {
			t.Fatalf("focusNextWindow: %v", err)
		}
		if e.focus != next {
			t.Fatalf("focus = %d, want %d", e.focus, next)
		}
	}
}

func TestFocusNextWindowSingleIsNoop(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	a := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})
	if err := e.focusNextWindow(); err != nil {
		t.Fatalf("focusNextWindow: %v", err)
	}
	if e.focus != a {
		t.Fatalf("focus moved to %d with a single window", e.focus)
	}
}

func TestFocusNextMonitorWraps(t *testing.T) {
	d := newFakeDisplay(dualOutputs()...)
	e, _ := newTestEngine(t, d)

	if err := e.focusNextMonitor(); err != nil {
		t.Fatalf("focusNextMonitor: %v", err)
	}
	if e.focus != e.monitors[1].sink {
		t.Fatalf("focus = %d, want second sink %d", e.focus, e.monitors[1].sink)
	}
	if err := e.focusNextMonitor(); err != nil {
		t.Fatalf("focusNextMonitor: %v", err)
	}
	if e.focus != e.monitors[0].sink {
		t.Fatalf("focus = %d, want wrap to first sink %d", e.focus, e.monitors[0].sink)
	}
}

func TestSwitchDesktopHidesAndShows(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	a := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})

	if err := e.switchDesktop(5); err != nil {
		t.Fatalf("switchDesktop: %v", err)
	}
	checkBijection(t, e)
	if e.monitors[0].desktop != 5 {
		t.Fatalf("monitor shows desktop %d, want 5", e.monitors[0].desktop)
	}
	if d.mapped[a] {
		t.Fatal("window of hidden desktop still mapped on display")
	}
	if !e.windows[a].mapped {
		t.Fatal("hidden window lost its logical mapped state")
	}
	if !e.windows[a].ignoreUnmap {
		t.Fatal("engine-initiated unmap not flagged")
	}
	if e.focus != e.monitors[0].sink {
		t.Fatalf("focus = %d, want sink of empty desktop", e.focus)
	}

	// Switching back restores the window.
	if err := e.switchDesktop(0); err != nil {
		t.Fatalf("switch back: %v", err)
	}
	if !d.mapped[a] {
		t.Fatal("window not remapped on return")
	}
	if e.focus != a {
		t.Fatalf("focus = %d, want %d", e.focus, a)
	}
}

func TestSwitchDesktopSwapsVisibleDesktops(t *testing.T) {
	d := newFakeDisplay(dualOutputs()...)
	e, _ := newTestEngine(t, d)

	deskA := e.monitors[0].desktop
	deskB := e.monitors[1].desktop

	// Focus is on monitor 0; bring monitor 1's desktop here.
	if err := e.switchDesktop(deskB); err != nil {
		t.Fatalf("switchDesktop: %v", err)
	}
	checkBijection(t, e)
	if e.monitors[0].desktop != deskB || e.monitors[1].desktop != deskA {
		t.Fatalf("desktops not swapped: mon0=%d mon1=%d", e.monitors[0].desktop, e.monitors[1].desktop)
	}
}

func TestSwitchDesktopToCurrentIsNoop(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	a := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})
	if err := e.switchDesktop(e.monitors[0].desktop); err != nil {
		t.Fatalf("switchDesktop: %v", err)
	}
	if !d.mapped[a] || e.focus != a {
		t.Fatal("switching to the visible desktop disturbed state")
	}
}

func TestSwitchDesktopOutOfRange(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)
	if err := e.switchDesktop(len(e.desktops)); err == nil {
		t.Fatal("expected error for out-of-range desktop")
	}
	if err := e.switchDesktop(-1); err == nil {
		t.Fatal("expected error for negative desktop")
	}
}

func TestMoveWindowToHiddenDesktop(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	a := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})
	b := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})

	if err := e.moveWindow(7); err != nil {
		t.Fatalf("moveWindow: %v", err)
	}
	if e.windows[b].desktop != 7 {
		t.Fatalf("window desktop = %d, want 7", e.windows[b].desktop)
	}
	if d.mapped[b] {
		t.Fatal("moved window still visible")
	}
	if e.focus != a {
		t.Fatalf("focus = %d, want remaining window %d", e.focus, a)
	}

	// Following it restores visibility.
	if err := e.switchDesktop(7); err != nil {
		t.Fatalf("switchDesktop: %v", err)
	}
	if !d.mapped[b] || e.focus != b {
		t.Fatal("moved window not shown after switching to its desktop")
	}
}

func TestMoveWindowToVisibleDesktop(t *testing.T) {
	d := newFakeDisplay(dualOutputs()...)
	e, _ := newTestEngine(t, d)

	a := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})
	deskB := e.monitors[1].desktop

	if err := e.moveWindow(deskB); err != nil {
		t.Fatalf("moveWindow: %v", err)
	}
	if e.windows[a].desktop != deskB {
		t.Fatalf("window desktop = %d, want %d", e.windows[a].desktop, deskB)
	}
	if !d.mapped[a] {
		t.Fatal("window moved between visible desktops should stay mapped")
	}
	// Now tiled on monitor 1.
	if got := d.configs[a].Geometry; got != (geometry.Rect{X: 1920, Y: 0, W: 1278, H: 1022}) {
		t.Fatalf("geometry after move = %+v", got)
	}
}

func TestToggleFloatingRoundTrip(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	a := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})
	tiled := d.configs[a].Geometry

	if err := e.toggleFloating(); err != nil {
		t.Fatalf("toggleFloating: %v", err)
	}
	if !e.windows[a].floating {
		t.Fatal("window not floating after toggle")
	}
	if err := e.toggleFloating(); err != nil {
		t.Fatalf("toggleFloating: %v", err)
	}
	if e.windows[a].floating {
		t.Fatal("window still floating after second toggle")
	}
	if got := d.configs[a].Geometry; got != tiled {
		t.Fatalf("retiled geometry = %+v, want %+v", got, tiled)
	}
}

func TestKeybindingEnqueuesCommand(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, launcher := newTestEngine(t, d)

	if err := e.BindKey(1<<6, 33, Command{Op: OpSpawnProcess, Cmdline: "dmenu_run"}); err != nil {
		t.Fatalf("BindKey: %v", err)
	}
	if err := e.handleEvent(KeyPress{State: 1 << 6, Keycode: 33}); err != nil {
		t.Fatalf("key press: %v", err)
	}
	if err := e.processCommands(); err != nil {
		t.Fatalf("processCommands: %v", err)
	}
	if len(launcher.cmdlines) != 1 || launcher.cmdlines[0] != "dmenu_run" {
		t.Fatalf("spawned = %v, want [dmenu_run]", launcher.cmdlines)
	}

	// An unbound chord enqueues nothing.
	if err := e.handleEvent(KeyPress{State: 0, Keycode: 33}); err != nil {
		t.Fatalf("key press: %v", err)
	}
	if len(e.cmdq) != 0 {
		t.Fatalf("command queue = %v, want empty", e.cmdq)
	}
}

func TestExitAndRestartSurfaceAsShutdown(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	e.cmdq = append(e.cmdq, Command{Op: OpExit})
	err := e.processCommands()
	var s shutdown
	if !errors.As(err, &s) || s.restart {
		t.Fatalf("exit command: err = %v", err)
	}

	e.cmdq = append(e.cmdq, Command{Op: OpRestart})
	err = e.processCommands()
	if !errors.As(err, &s) || !s.restart {
		t.Fatalf("restart command: err = %v", err)
	}
}

func TestRunDrivesLoopAndReportsRestart(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	if err := e.BindKey(1<<6, 27, Command{Op: OpRestart}); err != nil {
		t.Fatalf("BindKey: %v", err)
	}
	id := d.addClient(geometry.Rect{W: 400, H: 300}, false)
	d.events = []Event{
		MapRequest{Window: id},
		KeyPress{State: 1 << 6, Keycode: 27},
	}

	var published int
	e.SetPublisher(func(Snapshot) { published++ })

	restart, err := e.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !restart {
		t.Fatal("Run reported exit, want restart")
	}
	if e.focus != id {
		t.Fatalf("focus = %d, want mapped window %d", e.focus, id)
	}
	if published == 0 {
		t.Fatal("no snapshots published")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	d := newFakeDisplay(singleOutput())
	e, _ := newTestEngine(t, d)

	a := mapClient(t, e, d, geometry.Rect{W: 400, H: 300})
	snap := e.snapshot()

	if snap.Focus != a {
		t.Fatalf("snapshot focus = %d, want %d", snap.Focus, a)
	}
	if len(snap.Windows) != 1 || snap.Windows[0].ID != a {
		t.Fatalf("snapshot windows = %+v", snap.Windows)
	}
	if len(snap.Monitors) != 1 || snap.Monitors[0].Output != 1 {
		t.Fatalf("snapshot monitors = %+v", snap.Monitors)
	}

	snap.Windows[0].Desktop = 99
	if e.windows[a].desktop == 99 {
		t.Fatal("mutating the snapshot reached engine state")
	}
}
