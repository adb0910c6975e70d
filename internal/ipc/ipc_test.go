package ipc

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/1broseidon/stratawm/internal/geometry"
	"github.com/1broseidon/stratawm/internal/wm"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	srv, err := NewServer(zerolog.Nop(), 20)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv
}

func testSnapshot() wm.Snapshot {
	return wm.Snapshot{
		Focus: 101,
		Monitors: []wm.MonitorSnapshot{
			{Output: 7, Geometry: geometry.Rect{X: 0, Y: 0, W: 1920, H: 1080}, Desktop: 0},
		},
		Windows: []wm.WindowSnapshot{
			{ID: 101, Desktop: 0, Mapped: true, Geometry: geometry.Rect{X: 0, Y: 0, W: 958, H: 1078}},
			{ID: 102, Desktop: 3, Mapped: false, Floating: true, Geometry: geometry.Rect{X: 40, Y: 60, W: 500, H: 400}},
		},
	}
}

func TestStatusRoundTrip(t *testing.T) {
	srv := startTestServer(t)
	srv.Update(testSnapshot())

	status, err := NewClient().GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.FocusedWindow != 101 {
		t.Fatalf("FocusedWindow = %d, want 101", status.FocusedWindow)
	}
	if status.WindowCount != 2 || status.MonitorCount != 1 || status.Desktops != 20 {
		t.Fatalf("status = %+v", status)
	}
}

func TestMonitorsRoundTrip(t *testing.T) {
	srv := startTestServer(t)
	srv.Update(testSnapshot())

	monitors, err := NewClient().GetMonitors()
	if err != nil {
		t.Fatalf("GetMonitors: %v", err)
	}
	if len(monitors.Monitors) != 1 {
		t.Fatalf("got %d monitors, want 1", len(monitors.Monitors))
	}
	m := monitors.Monitors[0]
	if m.Output != 7 || m.Width != 1920 || m.Height != 1080 || m.Desktop != 0 {
		t.Fatalf("monitor = %+v", m)
	}
}

func TestWindowsRoundTrip(t *testing.T) {
	srv := startTestServer(t)
	srv.Update(testSnapshot())

	windows, err := NewClient().GetWindows()
	if err != nil {
		t.Fatalf("GetWindows: %v", err)
	}
	if len(windows.Windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(windows.Windows))
	}
	if !windows.Windows[0].Focused || windows.Windows[1].Focused {
		t.Fatalf("focus flags wrong: %+v", windows.Windows)
	}
	if !windows.Windows[1].Floating || windows.Windows[1].Desktop != 3 {
		t.Fatalf("window = %+v", windows.Windows[1])
	}
}

func TestUnknownCommandReturnsError(t *testing.T) {
	startTestServer(t)

	c := NewClient()
	if _, err := c.sendRequest(&Request{Command: "FROBNICATE"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestUpdateReplacesSnapshot(t *testing.T) {
	srv := startTestServer(t)
	srv.Update(testSnapshot())
	srv.Update(wm.Snapshot{})

	status, err := NewClient().GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.WindowCount != 0 || status.FocusedWindow != 0 {
		t.Fatalf("stale snapshot served: %+v", status)
	}
}
