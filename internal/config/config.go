package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Action names a window-manager operation a keybinding can trigger.
type Action string

const (
	ActionExit             Action = "exit"
	ActionRestart          Action = "restart"
	ActionSpawn            Action = "spawn"
	ActionFocusNextMonitor Action = "focus-next-monitor"
	ActionFocusNextWindow  Action = "focus-next-window"
	ActionSwitchDesktop    Action = "switch-desktop"
	ActionMoveWindow       Action = "move-window"
	ActionToggleFloating   Action = "toggle-floating"
)

// Keybinding binds a key chord to an action.
type Keybinding struct {
	// Keys is the chord, modifiers then key name, joined by "+"
	// (for example "mod4+shift+q").
	Keys   string `yaml:"keys"`
	Action Action `yaml:"action"`

	// Command is the shell command line for the spawn action.
	Command string `yaml:"command,omitempty"`

	// Desktop is the zero-based target for switch-desktop and move-window.
	Desktop *int `yaml:"desktop,omitempty"`
}

// Config is the full window-manager configuration.
type Config struct {
	// Desktops is the size of the virtual-desktop pool.
	Desktops int `yaml:"desktops"`

	// BorderWidth is drawn around every managed window, in pixels.
	BorderWidth int `yaml:"border_width"`

	// SnapMargin is the width of the drag-snap zones along monitor edges.
	SnapMargin int `yaml:"snap_margin"`

	// Modifier turns a pointer-button press into a drag.
	Modifier string `yaml:"modifier"`

	FocusedBorderColor string `yaml:"focused_border_color"`
	NormalBorderColor  string `yaml:"normal_border_color"`

	// MonitorChangeCommand runs whenever a display connector changes; empty
	// disables the hook.
	MonitorChangeCommand string `yaml:"monitor_change_command"`

	Keybindings []Keybinding `yaml:"keybindings"`
}

// Default returns the built-in configuration, used verbatim when no config
// file exists.
func Default() *Config {
	desktop := func(n int) *int { return &n }
	bindings := []Keybinding{
		{Keys: "mod4+shift+q", Action: ActionExit},
		{Keys: "mod4+shift+r", Action: ActionRestart},
		{Keys: "mod4+j", Action: ActionFocusNextMonitor},
		{Keys: "mod4+Tab", Action: ActionFocusNextWindow},
		{Keys: "mod4+s", Action: ActionToggleFloating},
		{Keys: "mod4+p", Action: ActionSpawn, Command: "dmenu_run"},
		{Keys: "mod4+t", Action: ActionSpawn, Command: "xterm"},
	}
	for i, key := range []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0"} {
		bindings = append(bindings,
			Keybinding{Keys: "mod4+" + key, Action: ActionSwitchDesktop, Desktop: desktop(i)},
			Keybinding{Keys: "mod4+shift+" + key, Action: ActionMoveWindow, Desktop: desktop(i)},
		)
	}
	return &Config{
		Desktops:           20,
		BorderWidth:        1,
		SnapMargin:         32,
		Modifier:           "mod4",
		FocusedBorderColor: "0x00FF00",
		NormalBorderColor:  "0x000000",
		Keybindings:        bindings,
	}
}

var modMasks = map[string]uint16{
	"shift":   1 << 0,
	"lock":    1 << 1,
	"control": 1 << 2,
	"ctrl":    1 << 2,
	"mod1":    1 << 3,
	"alt":     1 << 3,
	"mod2":    1 << 4,
	"mod3":    1 << 5,
	"mod4":    1 << 6,
	"super":   1 << 6,
	"mod5":    1 << 7,
}

// ParseModifier resolves a modifier name to its core-protocol mask bit.
func ParseModifier(name string) (uint16, error) {
	mask, ok := modMasks[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown modifier %q", name)
	}
	return mask, nil
}

// ParseChord splits a chord into its modifier mask and key name. The last
// "+"-separated token is the key; everything before it must be a modifier.
func ParseChord(chord string) (mods uint16, key string, err error) {
	parts := strings.Split(chord, "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return 0, "", fmt.Errorf("empty key chord %q", chord)
	}
	key = parts[len(parts)-1]
	for _, part := range parts[:len(parts)-1] {
		mask, err := ParseModifier(part)
		if err != nil {
			return 0, "", fmt.Errorf("chord %q: %w", chord, err)
		}
		mods |= mask
	}
	return mods, key, nil
}

// ParseColor parses a 24-bit hex color with a "0x" or "#" prefix.
func ParseColor(s string) (uint32, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if v > 0xFFFFFF {
		return 0, fmt.Errorf("color %q out of 24-bit range", s)
	}
	return uint32(v), nil
}

// Validate checks every field; errors name the offending YAML path.
func (c *Config) Validate() error {
	if c.Desktops < 1 {
		return fmt.Errorf("desktops: must be at least 1, got %d", c.Desktops)
	}
	if c.BorderWidth < 0 {
		return fmt.Errorf("border_width: must not be negative, got %d", c.BorderWidth)
	}
	if c.SnapMargin < 1 {
		return fmt.Errorf("snap_margin: must be positive, got %d", c.SnapMargin)
	}
	if _, err := ParseModifier(c.Modifier); err != nil {
		return fmt.Errorf("modifier: %w", err)
	}
	if _, err := ParseColor(c.FocusedBorderColor); err != nil {
		return fmt.Errorf("focused_border_color: %w", err)
	}
	if _, err := ParseColor(c.NormalBorderColor); err != nil {
		return fmt.Errorf("normal_border_color: %w", err)
	}

	for i, kb := range c.Keybindings {
		if err := c.validateKeybinding(kb); err != nil {
			return fmt.Errorf("keybindings[%d]: %w", i, err)
		}
	}
	return nil
}

func (c *Config) validateKeybinding(kb Keybinding) error {
	if _, _, err := ParseChord(kb.Keys); err != nil {
		return err
	}
	switch kb.Action {
	case ActionExit, ActionRestart, ActionFocusNextMonitor, ActionFocusNextWindow, ActionToggleFloating:
		return nil
	case ActionSpawn:
		if strings.TrimSpace(kb.Command) == "" {
			return fmt.Errorf("%q: spawn requires a command", kb.Keys)
		}
		return nil
	case ActionSwitchDesktop, ActionMoveWindow:
		if kb.Desktop == nil {
			return fmt.Errorf("%q: %s requires a desktop", kb.Keys, kb.Action)
		}
		if *kb.Desktop < 0 || *kb.Desktop >= c.Desktops {
			return fmt.Errorf("%q: desktop %d out of range [0,%d)", kb.Keys, *kb.Desktop, c.Desktops)
		}
		return nil
	case "":
		return fmt.Errorf("%q: missing action", kb.Keys)
	}
	return fmt.Errorf("%q: unknown action %q", kb.Keys, kb.Action)
}
