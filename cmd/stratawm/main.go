package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/1broseidon/stratawm/internal/config"
	"github.com/1broseidon/stratawm/internal/ipc"
	"github.com/1broseidon/stratawm/internal/wm"
	"github.com/1broseidon/stratawm/internal/x11"
)

// Exit codes of the manager process. A supervising script relaunches on 2:
//
//	while stratawm run; [ $? -eq 2 ]; do :; done
const (
	exitOK      = 0
	exitFatal   = 1
	exitRestart = 2
)

func main() {
	if len(os.Args) < 2 {
		os.Exit(runWM(nil))
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runWM(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(exitFatal)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: stratawm [command] [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Run the window manager (default, foreground)")
	fmt.Fprintln(w, "  status              Show manager status")
	fmt.Fprintln(w, "  monitors            List active monitors")
	fmt.Fprintln(w, "  windows             List managed windows")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Exit codes of run: 0 normal exit, 1 fatal error, 2 restart requested.")
}

func runWM(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "config file (default ~/.config/stratawm/config.yaml)")
	debug := fs.Bool("debug", false, "enable debug logging")
	pretty := fs.Bool("pretty", false, "human-readable log output")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: stratawm run [--config path] [--debug] [--pretty]")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return exitFatal
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if *pretty {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if *debug {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return exitFatal
	}

	conn, err := x11.NewConnection(log.With().Str("component", "x11").Logger())
	if err != nil {
		log.Error().Err(err).Msg("cannot connect to display")
		return exitFatal
	}
	defer conn.Close()

	if err := conn.Manage(); err != nil {
		log.Error().Err(err).Msg("cannot take over window management")
		return exitFatal
	}

	engine, err := buildEngine(conn, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("engine setup failed")
		return exitFatal
	}

	srv, err := ipc.NewServer(log.With().Str("component", "ipc").Logger(), cfg.Desktops)
	if err != nil {
		log.Error().Err(err).Msg("cannot create IPC server")
		return exitFatal
	}
	if err := srv.Start(); err != nil {
		log.Error().Err(err).Msg("cannot start IPC server")
		return exitFatal
	}
	defer srv.Stop()
	engine.SetPublisher(srv.Update)

	restart, err := engine.Run()
	if err != nil {
		log.Error().Err(err).Msg("window manager terminated")
		return exitFatal
	}
	if restart {
		log.Info().Msg("restart requested")
		return exitRestart
	}
	log.Info().Msg("exiting")
	return exitOK
}

// buildEngine wires the validated configuration into an initialized engine
// with all keybindings grabbed.
func buildEngine(conn *x11.Connection, cfg *config.Config, log zerolog.Logger) (*wm.Engine, error) {
	dragMod, err := config.ParseModifier(cfg.Modifier)
	if err != nil {
		return nil, err
	}
	focused, err := config.ParseColor(cfg.FocusedBorderColor)
	if err != nil {
		return nil, err
	}
	normal, err := config.ParseColor(cfg.NormalBorderColor)
	if err != nil {
		return nil, err
	}

	engine, err := wm.New(conn, nil, log.With().Str("component", "engine").Logger(), wm.Params{
		Desktops:           cfg.Desktops,
		BorderWidth:        cfg.BorderWidth,
		SnapMargin:         cfg.SnapMargin,
		FocusedBorderColor: focused,
		NormalBorderColor:  normal,
		DragModMask:        dragMod,
		MonitorChangeCmd:   cfg.MonitorChangeCommand,
	})
	if err != nil {
		return nil, err
	}
	if err := engine.Init(); err != nil {
		return nil, err
	}

	for _, kb := range cfg.Keybindings {
		mods, key, err := config.ParseChord(kb.Keys)
		if err != nil {
			return nil, err
		}
		keycode, err := conn.Keycode(key)
		if err != nil {
			return nil, fmt.Errorf("keybinding %q: %w", kb.Keys, err)
		}
		if err := engine.BindKey(mods, keycode, commandFor(kb)); err != nil {
			return nil, fmt.Errorf("keybinding %q: %w", kb.Keys, err)
		}
	}
	return engine, nil
}

func commandFor(kb config.Keybinding) wm.Command {
	switch kb.Action {
	case config.ActionExit:
		return wm.Command{Op: wm.OpExit}
	case config.ActionRestart:
		return wm.Command{Op: wm.OpRestart}
	case config.ActionSpawn:
		return wm.Command{Op: wm.OpSpawnProcess, Cmdline: kb.Command}
	case config.ActionFocusNextMonitor:
		return wm.Command{Op: wm.OpFocusNextMonitor}
	case config.ActionFocusNextWindow:
		return wm.Command{Op: wm.OpFocusNextWindow}
	case config.ActionSwitchDesktop:
		return wm.Command{Op: wm.OpSwitchDesktop, Desktop: *kb.Desktop}
	case config.ActionMoveWindow:
		return wm.Command{Op: wm.OpMoveWindow, Desktop: *kb.Desktop}
	case config.ActionToggleFloating:
		return wm.Command{Op: wm.OpToggleFloating}
	}
	// Validation rejects unknown actions before we get here.
	return wm.Command{Op: wm.OpExit}
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: stratawm status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show manager status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return exitFatal
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return exitFatal
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFatal
	}
	fmt.Printf("focused_window: %d\n", status.FocusedWindow)
	fmt.Printf("window_count:   %d\n", status.WindowCount)
	fmt.Printf("monitor_count:  %d\n", status.MonitorCount)
	fmt.Printf("desktops:       %d\n", status.Desktops)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runMonitors(args []string) int {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: stratawm monitors")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return exitFatal
	}

	monitors, err := ipc.NewClient().GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFatal
	}
	for _, m := range monitors.Monitors {
		fmt.Printf("output %d: %dx%d+%d+%d desktop %d\n",
			m.Output, m.Width, m.Height, m.X, m.Y, m.Desktop)
	}
	return 0
}

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: stratawm windows")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return exitFatal
	}

	windows, err := ipc.NewClient().GetWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFatal
	}
	for _, w := range windows.Windows {
		marks := ""
		if w.Focused {
			marks += "*"
		}
		if w.Floating {
			marks += " floating"
		}
		if w.Fullscreen {
			marks += " fullscreen"
		}
		if !w.Mapped {
			marks += " hidden"
		}
		fmt.Printf("0x%08x desktop %d %dx%d+%d+%d%s\n",
			w.ID, w.Desktop, w.Width, w.Height, w.X, w.Y, marks)
	}
	return 0
}
