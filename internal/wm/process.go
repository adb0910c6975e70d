package wm

import "fmt"

// processCommands drains the FIFO command queue. Exit and Restart surface as
// a shutdown outcome; everything else mutates state in place.
func (e *Engine) processCommands() error {
	for len(e.cmdq) > 0 {
		cmd := e.cmdq[0]
		e.cmdq = e.cmdq[1:]
		e.log.Debug().Stringer("cmd", cmd).Msg("executing command")

		switch cmd.Op {
		case OpExit:
			return shutdown{restart: false}
		case OpRestart:
			return shutdown{restart: true}

		case OpSpawnProcess:
			// Deliberately synchronous: the loop stalls until the shell
			// wrapper returns.
			if err := e.spawn.Run(cmd.Cmdline); err != nil {
				e.log.Error().Err(err).Str("cmdline", cmd.Cmdline).Msg("spawn failed")
			}

		case OpFocusNextMonitor:
			if err := e.focusNextMonitor(); err != nil {
				return err
			}
		case OpFocusNextWindow:
			if err := e.focusNextWindow(); err != nil {
				return err
			}
		case OpSwitchDesktop:
			if err := e.switchDesktop(cmd.Desktop); err != nil {
				return err
			}
		case OpMoveWindow:
			if err := e.moveWindow(cmd.Desktop); err != nil {
				return err
			}
		case OpToggleFloating:
			if err := e.toggleFloating(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown command op %d", int(cmd.Op))
		}
	}
	return nil
}

func (e *Engine) focusNextMonitor() error {
	if len(e.monitors) == 0 {
		return nil
	}
	next := 0
	if cur, ok := e.focusedMonitor(); ok {
		next = (cur + 1) % len(e.monitors)
	}
	desk := e.monitors[next].desktop
	target := e.monitors[next].sink
	if first := e.firstMappedOn(desk); first != nil {
		target = first.id
	}
	return e.changeFocus(target)
}

func (e *Engine) focusNextWindow() error {
	w, ok := e.windows[e.focus]
	if !ok {
		return nil
	}
	siblings := e.mappedOn(w.desktop)
	if len(siblings) < 2 {
		return nil
	}
	for i, s := range siblings {
		if s.id == w.id {
			return e.changeFocus(siblings[(i+1)%len(siblings)].id)
		}
	}
	return nil
}

// switchDesktop brings the target desktop onto the focused monitor. If the
// target is already visible elsewhere the two desktops swap monitors; the
// windows themselves never move between desktops.
func (e *Engine) switchDesktop(target int) error {
	if target < 0 || target >= len(e.desktops) {
		return fmt.Errorf("desktop index %d out of range", target)
	}
	if len(e.monitors) == 0 {
		return nil
	}

	monB, ok := e.focusedMonitor()
	if !ok {
		monB = 0
	}

	if monA := e.desktops[target].monitor; monA != noMonitor {
		// Swap the two monitor bindings.
		deskA := target
		deskB := e.monitors[monB].desktop
		if monA == monB {
			return nil
		}
		e.monitors[monA].desktop = deskB
		e.monitors[monB].desktop = deskA
		e.desktops[deskA].monitor = monB
		e.desktops[deskB].monitor = monA
		if err := e.updateLayout(monA); err != nil {
			return err
		}
		if err := e.updateLayout(monB); err != nil {
			return err
		}
		return e.focusDesktop(target, monB)
	}

	// Target not visible: hide the current desktop and show the target on
	// the same monitor.
	current := e.monitors[monB].desktop
	for _, w := range e.mappedOn(current) {
		w.ignoreUnmap = true
		if err := e.display.UnmapWindow(w.id); err != nil {
			return err
		}
	}
	for _, w := range e.mappedOn(target) {
		if err := e.display.MapWindow(w.id); err != nil {
			return err
		}
	}

	e.monitors[monB].desktop = target
	e.desktops[target].monitor = monB
	e.desktops[current].monitor = noMonitor
	if err := e.updateLayout(monB); err != nil {
		return err
	}
	return e.focusDesktop(target, monB)
}

// focusDesktop focuses the first mapped window on the desktop, falling back
// to the monitor's sink.
func (e *Engine) focusDesktop(desk, mon int) error {
	target := e.monitors[mon].sink
	if first := e.firstMappedOn(desk); first != nil {
		target = first.id
	}
	return e.changeFocus(target)
}

// moveWindow reassigns the focused window to another desktop.
func (e *Engine) moveWindow(target int) error {
	if target < 0 || target >= len(e.desktops) {
		return fmt.Errorf("desktop index %d out of range", target)
	}
	w, ok := e.windows[e.focus]
	if !ok {
		return nil
	}

	oldDesk := w.desktop
	oldMon := e.desktops[oldDesk].monitor
	newMon := e.desktops[target].monitor

	w.desktop = target
	if newMon == noMonitor {
		w.ignoreUnmap = true
		if err := e.display.UnmapWindow(w.id); err != nil {
			return err
		}
		if e.focus == w.id && oldMon != noMonitor {
			next := e.monitors[oldMon].sink
			if first := e.firstMappedOn(oldDesk); first != nil {
				next = first.id
			}
			if err := e.changeFocus(next); err != nil {
				return err
			}
		}
	}

	if oldMon != noMonitor {
		if err := e.updateLayout(oldMon); err != nil {
			return err
		}
	}
	if newMon != noMonitor {
		if err := e.updateLayout(newMon); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) toggleFloating() error {
	w, ok := e.windows[e.focus]
	if !ok {
		return nil
	}
	w.floating = !w.floating
	if w.floating {
		// Raise on entering floating mode.
		w.stackOrder = e.nextStackOrder()
		if err := e.display.ConfigureWindow(w.id, Configure{Stack: StackAbove}); err != nil {
			return err
		}
	}
	if mon := e.desktops[w.desktop].monitor; mon != noMonitor {
		return e.updateLayout(mon)
	}
	return nil
}
