package keypad

import "strings"

// ParseCombo parses a key combination string like "ctrl+shift+a" into a
// modifier mask and a HID scan code. Parsing is case and whitespace
// insensitive. Unrecognized tokens are ignored; a zero keycode in the result
// signals that no key was resolved and callers must treat it as a parse
// failure (ErrUnknownKey).
func ParseCombo(combo string) (Modifier, uint8) {
	parts := strings.Split(strings.ReplaceAll(strings.ToLower(combo), " ", ""), "+")

	var mods Modifier
	var code uint8
	for _, part := range parts {
		switch part {
		case "ctrl", "control":
			mods |= ModCtrl
		case "shift":
			mods |= ModShift
		case "alt":
			mods |= ModAlt
		case "win", "super", "meta", "gui":
			mods |= ModWin
		default:
			// Last resolvable key token wins.
			if c, ok := KeyCode(part); ok {
				code = c
			}
		}
	}

	return mods, code
}
