package wm

import "fmt"

// CommandOp enumerates the engine operations a keybinding can trigger.
type CommandOp int

const (
	OpExit CommandOp = iota
	OpRestart
	OpSpawnProcess
	OpFocusNextMonitor
	OpFocusNextWindow
	OpSwitchDesktop
	OpMoveWindow
	OpToggleFloating
)

// Command is a deferred engine operation. Event handlers enqueue commands;
// the queue drains after each event is fully handled.
type Command struct {
	Op CommandOp

	// Cmdline is the shell command for OpSpawnProcess.
	Cmdline string

	// Desktop is the target desktop index for OpSwitchDesktop and
	// OpMoveWindow.
	Desktop int
}

func (c Command) String() string {
	switch c.Op {
	case OpExit:
		return "exit"
	case OpRestart:
		return "restart"
	case OpSpawnProcess:
		return fmt.Sprintf("spawn(%s)", c.Cmdline)
	case OpFocusNextMonitor:
		return "focus-next-monitor"
	case OpFocusNextWindow:
		return "focus-next-window"
	case OpSwitchDesktop:
		return fmt.Sprintf("switch-desktop(%d)", c.Desktop)
	case OpMoveWindow:
		return fmt.Sprintf("move-window(%d)", c.Desktop)
	case OpToggleFloating:
		return "toggle-floating"
	}
	return fmt.Sprintf("command(%d)", int(c.Op))
}

// shutdown is the distinguished non-error termination outcome of the event
// loop. Restart tells the supervisor to relaunch.
type shutdown struct {
	restart bool
}

func (s shutdown) Error() string {
	if s.restart {
		return "restart requested"
	}
	return "exit requested"
}
