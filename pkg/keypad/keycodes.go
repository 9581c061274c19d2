package keypad

import (
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
)

// keyCodeMap maps key names to USB HID keyboard scan codes (usage page 0x07).
// Several names are aliases for the same code; the table must stay wire
// compatible with deployed firmware.
var keyCodeMap = map[string]uint8{
	// Letters
	"a": 4, "b": 5, "c": 6, "d": 7, "e": 8, "f": 9, "g": 10, "h": 11,
	"i": 12, "j": 13, "k": 14, "l": 15, "m": 16, "n": 17, "o": 18, "p": 19,
	"q": 20, "r": 21, "s": 22, "t": 23, "u": 24, "v": 25, "w": 26, "x": 27,
	"y": 28, "z": 29,

	// Digits
	"1": 30, "2": 31, "3": 32, "4": 33, "5": 34,
	"6": 35, "7": 36, "8": 37, "9": 38, "0": 39,

	// Special keys
	"enter": 40, "return": 40,
	"escape": 41, "esc": 41,
	"backspace": 42,
	"tab":       43,
	"space":     44,
	"minus":     45, "-": 45,
	"equal": 46, "=": 46,
	"leftbracket": 47, "[": 47,
	"rightbracket": 48, "]": 48,
	"backslash": 49, `\`: 49,
	"semicolon": 51, ";": 51,
	"quote": 52, "'": 52,
	"grave": 53, "`": 53,
	"comma": 54, ",": 54,
	"period": 55, ".": 55,
	"slash": 56, "/": 56,
	"capslock": 57,

	// Function keys
	"f1": 58, "f2": 59, "f3": 60, "f4": 61, "f5": 62, "f6": 63,
	"f7": 64, "f8": 65, "f9": 66, "f10": 67, "f11": 68, "f12": 69,

	// Navigation
	"printscreen": 70, "prtsc": 70,
	"scrolllock": 71,
	"pause":      72, "break": 72,
	"insert": 73,
	"home":   74,
	"pageup": 75, "pgup": 75,
	"delete": 76, "del": 76,
	"end":      77,
	"pagedown": 78, "pgdn": 78,
	"right": 79, "left": 80, "down": 81, "up": 82,

	// Numpad
	"numlock":     83,
	"kp_divide":   84,
	"kp_multiply": 85,
	"kp_minus":    86,
	"kp_plus":     87,
	"kp_enter":    88,
	"kp_1":        89, "kp_2": 90, "kp_3": 91, "kp_4": 92, "kp_5": 93,
	"kp_6": 94, "kp_7": 95, "kp_8": 96, "kp_9": 97, "kp_0": 98,
	"kp_period": 99, "kp_dot": 99,

	// Menu
	"menu": 101, "app": 101,
}

// mediaCodeMap maps media action names to consumer-control codes (as sent on
// report id 3 firmware).
var mediaCodeMap = map[string]uint8{
	"play": 205, "pause": 205, "playpause": 205,
	"stop": 183,
	"prev": 182, "previous": 182,
	"next":    181,
	"mute":    226,
	"volup":   233, "volumeup": 233,
	"voldown": 234, "volumedown": 234,
}

// slotMap maps physical control names to slot numbers for the 12-key,
// two-knob layout. Each knob occupies three consecutive slots: rotate left,
// press, rotate right.
var slotMap = map[string]uint8{
	"key1": 1, "key2": 2, "key3": 3, "key4": 4,
	"key5": 5, "key6": 6, "key7": 7, "key8": 8,
	"key9": 9, "key10": 10, "key11": 11, "key12": 12,

	// Knob 1
	"k1_left": 13, "knob1_left": 13, "knob1_ccw": 13,
	"k1_press": 14, "knob1_press": 14, "knob1_click": 14,
	"k1_right": 15, "knob1_right": 15, "knob1_cw": 15,

	// Knob 2 (if present)
	"k2_left": 16, "knob2_left": 16, "knob2_ccw": 16,
	"k2_press": 17, "knob2_press": 17, "knob2_click": 17,
	"k2_right": 18, "knob2_right": 18, "knob2_cw": 18,
}

var (
	keyNameMap  = map[uint8]string{}
	slotNameMap = map[uint8]string{}
)

func init() {
	// First alias in sorted order wins so reverse lookups are stable.
	for name, code := range keyCodeMap {
		if cur, ok := keyNameMap[code]; !ok || name < cur {
			keyNameMap[code] = name
		}
	}
	for name, code := range slotMap {
		if cur, ok := slotNameMap[code]; !ok || name < cur {
			slotNameMap[code] = name
		}
	}
}

// normalize prepares a user-supplied token for table lookup. Tables store
// lowercase snake-style names; CamelCase spellings are accepted as well.
func normalize(table map[string]uint8, name string) (uint8, bool) {
	s := strings.TrimSpace(name)
	for _, candidate := range []string{
		strings.ToLower(s),
		strcase.ToSnake(s),
	} {
		if code, ok := table[candidate]; ok {
			return code, true
		}
	}
	// CamelCase spellings ("PageUp", "Knob1Left") can snake-case differently
	// from the stored key, so fall back to comparing with underscores
	// stripped from both sides. The tables are small enough to scan.
	stripped := strings.ReplaceAll(strcase.ToSnake(s), "_", "")
	for key, code := range table {
		if strings.ReplaceAll(key, "_", "") == stripped {
			return code, true
		}
	}
	return 0, false
}

// KeyCode resolves a key name to its HID scan code.
func KeyCode(name string) (uint8, bool) {
	return normalize(keyCodeMap, name)
}

// KeyName returns the canonical name of a scan code, for listings.
func KeyName(code uint8) (string, bool) {
	name, ok := keyNameMap[code]
	return name, ok
}

// MediaCode resolves a media action name to its consumer-control code.
// Membership in this table decides whether a mapping is dispatched as a media
// key; media names never pass through the combo parser.
func MediaCode(name string) (uint8, bool) {
	return normalize(mediaCodeMap, name)
}

// SlotNumber resolves a physical control name to its slot number.
func SlotNumber(name string) (uint8, bool) {
	return normalize(slotMap, name)
}

// SlotName returns the canonical name of a slot number.
func SlotName(slot uint8) (string, bool) {
	name, ok := slotNameMap[slot]
	return name, ok
}

// KeyNames returns all recognized key names in sorted order.
func KeyNames() []string {
	return sortedNames(keyCodeMap)
}

// MediaNames returns all recognized media action names in sorted order.
func MediaNames() []string {
	return sortedNames(mediaCodeMap)
}

// SlotNames returns all recognized physical control names in sorted order.
func SlotNames() []string {
	return sortedNames(slotMap)
}

func sortedNames(table map[string]uint8) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
