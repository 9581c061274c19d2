// Package keypad implements the configuration protocol of CH552/CH57x-based
// programmable macro keypads (12 keys plus up to two rotary knobs).
//
// The device is configured over a HID output-report channel. Every command is
// a 9-byte wire frame: one report-id byte followed by an 8-byte payload. Two
// incompatible firmware dialects exist and are detected per session; see
// Dialect. The protocol is fire-and-forget: no acknowledgment frame exists and
// the firmware relies solely on packet arrival order.
package keypad

// Device identifiers. Different firmware revisions ship under different
// product ids.
const (
	VendorID uint16 = 0x1189

	ProductIDNew uint16 = 0x8890
	ProductIDOld uint16 = 0x8840
)

// ProductIDs lists all known product ids, most common first.
var ProductIDs = []uint16{ProductIDNew, ProductIDOld}

// KeyType selects how the firmware interprets a key mapping payload. It is
// encoded as the low nibble of the type byte.
type KeyType uint8

const (
	KeyTypeBasic KeyType = 0x1
	KeyTypeMedia KeyType = 0x2
	KeyTypeMouse KeyType = 0x3
	KeyTypeLed   KeyType = 0x8
)

func (t KeyType) String() string {
	switch t {
	case KeyTypeBasic:
		return "basic"
	case KeyTypeMedia:
		return "media"
	case KeyTypeMouse:
		return "mouse"
	case KeyTypeLed:
		return "led"
	}
	return "unknown"
}

// Modifier is a bitmask of keyboard modifier flags. Zero means no modifier.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
	ModWin
	ModRCtrl
	ModRShift
	ModRAlt
	ModRWin
)

// KeyMapping is the logical configuration unit the encoder turns into wire
// frames. It is constructed per command and not retained.
type KeyMapping struct {
	Slot      uint8
	Type      KeyType
	Modifiers Modifier
	Code      uint8
	Layer     int
}
