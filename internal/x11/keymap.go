package x11

import (
	"fmt"

	"github.com/BurntSushi/xgbutil/keybind"
)

// Keycode resolves a key name (for example "Tab", "q", "1") to a hardware
// keycode using the server's current keyboard mapping.
func (c *Connection) Keycode(name string) (uint8, error) {
	codes := keybind.StrToKeycodes(c.xu, name)
	if len(codes) == 0 {
		return 0, fmt.Errorf("key %q not present in keyboard mapping", name)
	}
	return uint8(codes[0]), nil
}
