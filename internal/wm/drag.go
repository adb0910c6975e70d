package wm

import "github.com/1broseidon/stratawm/internal/geometry"

const (
	primaryButton   = 1
	secondaryButton = 3

	// Pointer-button bits in an event's modifier state.
	button1Mask = 1 << 8
	button3Mask = 1 << 10

	// Border drawn around the snap-preview window.
	previewBorderWidth = 4
)

func (e *Engine) handleButtonPress(ev ButtonPress) error {
	// Click-to-focus: the clicked window, or the sink of the monitor under
	// the pointer for a bare-root click. Unmanaged children are ignored so
	// focus only ever lands on tracked windows and sinks.
	if ev.Button == primaryButton || ev.Button == secondaryButton {
		target := None
		if _, ok := e.windows[ev.Child]; ok {
			target = ev.Child
		} else if len(e.monitors) > 0 {
			mon := e.monitorContaining(ev.RootX, ev.RootY)
			if mon < 0 {
				mon = 0
			}
			target = e.monitors[mon].sink
		}
		if target != None {
			if err := e.changeFocus(target); err != nil {
				return err
			}
		}
	}

	mode := PointerReplay
	if ev.State&e.params.DragModMask != 0 {
		// Begin (or extend) a drag session; keep the pointer frozen so
		// motion and release replay through us synchronously.
		e.dragActive = true
		e.dragX, e.dragY = ev.RootX, ev.RootY
		e.buttonCount++
		mode = PointerSync
	}
	return e.display.AllowPointer(mode)
}

func (e *Engine) handleMotion(ev Motion) error {
	if !e.dragActive {
		return nil
	}
	dx := ev.RootX - e.dragX
	dy := ev.RootY - e.dragY
	e.dragX, e.dragY = ev.RootX, ev.RootY

	w, ok := e.windows[e.focus]
	if !ok {
		return nil
	}

	// The first motion promotes the dragged window to floating.
	if !w.floating {
		w.floating = true
		w.stackOrder = e.nextStackOrder()
		if mon := e.desktops[w.desktop].monitor; mon != noMonitor {
			if err := e.updateLayout(mon); err != nil {
				return err
			}
		}
	}

	if ev.State&button1Mask != 0 {
		w.geometry.X += dx
		w.geometry.Y += dy
	} else if ev.State&button3Mask != 0 {
		w.geometry.W += dx
		w.geometry.H += dy
	}

	mon := e.desktops[w.desktop].monitor
	if mon == noMonitor {
		return nil
	}
	monGeo := e.monitors[mon].geometry
	absX := monGeo.X + w.geometry.X
	absY := monGeo.Y + w.geometry.Y

	// Crossing onto another monitor re-homes the window to that monitor's
	// desktop, translating its geometry into the new local space.
	if !monGeo.Contains(ev.RootX, ev.RootY) {
		if ni := e.monitorContaining(ev.RootX, ev.RootY); ni >= 0 {
			nm := e.monitors[ni]
			w.desktop = nm.desktop
			w.geometry.X = absX - nm.geometry.X
			w.geometry.Y = absY - nm.geometry.Y
			monGeo = nm.geometry
		}
	}

	// Reconfigure immediately, kept just below the preview indicator.
	cfg := Configure{
		Geometry:    w.geometry.Translate(monGeo.X, monGeo.Y),
		SetGeometry: true,
		Stack:       StackBelow,
		Sibling:     e.preview,
	}
	if err := e.display.ConfigureWindow(w.id, cfg); err != nil {
		return err
	}

	return e.updatePreview(ev.RootX, ev.RootY)
}

// updatePreview shows the snap candidate under the pointer, or hides the
// preview when no zone matches. The preview is only reconfigured when the
// candidate changes.
func (e *Engine) updatePreview(x, y int) error {
	if mi := e.monitorContaining(x, y); mi >= 0 {
		cand, ok := snapCandidate(e.monitors[mi].geometry, x, y, e.params.SnapMargin)
		if ok {
			if cand == e.previewRect {
				return nil
			}
			e.previewRect = cand
			cfg := Configure{
				Geometry: geometry.Rect{
					X: cand.X,
					Y: cand.Y,
					W: cand.W - 2*previewBorderWidth,
					H: cand.H - 2*previewBorderWidth,
				},
				SetGeometry: true,
				BorderWidth: previewBorderWidth,
				SetBorder:   true,
				Stack:       StackTopIf,
			}
			if err := e.display.ConfigureWindow(e.preview, cfg); err != nil {
				return err
			}
			return e.display.MapWindow(e.preview)
		}
	}
	e.previewRect = geometry.Rect{}
	return e.display.UnmapWindow(e.preview)
}

func (e *Engine) handleButtonRelease(ev ButtonRelease) error {
	if e.buttonCount == 0 {
		return nil
	}
	e.buttonCount--

	if ev.Button == primaryButton {
		if w, ok := e.windows[e.focus]; ok {
			if mi := e.monitorContaining(ev.RootX, ev.RootY); mi >= 0 {
				monGeo := e.monitors[mi].geometry
				if cand, ok := snapCandidate(monGeo, ev.RootX, ev.RootY, e.params.SnapMargin); ok {
					b := e.params.BorderWidth
					w.geometry = geometry.Rect{
						X: cand.X - monGeo.X,
						Y: cand.Y - monGeo.Y,
						W: cand.W - 2*b,
						H: cand.H - 2*b,
					}
					if err := e.updateLayout(mi); err != nil {
						return err
					}
				}
			}
			if err := e.display.UnmapWindow(e.preview); err != nil {
				return err
			}
		}
	}

	if e.buttonCount > 0 {
		return e.display.AllowPointer(PointerSync)
	}

	// Session over: clear the drag position and preview candidate together.
	e.dragActive = false
	e.previewRect = geometry.Rect{}
	return e.display.UnmapWindow(e.preview)
}
