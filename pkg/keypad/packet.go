package keypad

// PayloadLen is the fixed payload size of every command frame. The wire frame
// is one report-id byte followed by the payload.
const PayloadLen = 8

const (
	// LedSlot is the pseudo-slot carrying LED commands. It never denotes a
	// physical key.
	LedSlot uint8 = 0xB0

	layerSwitchOp byte = 0xA1
	flashCommitOp byte = 0xAA

	// Second byte of the flash-commit frame.
	flashCommitKey byte = 0xAA
	flashCommitLed byte = 0xA1
)

// Frame is a single 8-byte command payload.
type Frame [PayloadLen]byte

// typeByte renders the dialect-dependent type byte. Modern firmware carries
// the layer in the upper nibble; layers below 1 are clamped, values above 3
// pass through unchanged (observed firmware tolerates them).
func typeByte(d Dialect, kt KeyType, layer int) byte {
	if d == DialectLegacy {
		return byte(kt) & 0x0F
	}
	if layer < 1 {
		layer = 1
	}
	return byte(layer)<<4 | byte(kt)&0x0F
}

func layerSwitchFrame(layer int) Frame {
	if layer < 1 {
		layer = 1
	}
	return Frame{layerSwitchOp, byte(layer)}
}

func basicKeyFrame(d Dialect, m KeyMapping) Frame {
	// Bytes 2 and 3 are the sequence length and index, constant for
	// single-key assignments.
	return Frame{m.Slot, typeByte(d, KeyTypeBasic, m.Layer), 1, 0, byte(m.Modifiers), m.Code}
}

func mediaKeyFrame(d Dialect, m KeyMapping) Frame {
	return Frame{m.Slot, typeByte(d, KeyTypeMedia, m.Layer), m.Code}
}

func ledFrame(mode uint8) Frame {
	return Frame{LedSlot, byte(KeyTypeLed), mode}
}

func flashCommitFrame(led bool) Frame {
	second := flashCommitKey
	if led {
		second = flashCommitLed
	}
	return Frame{flashCommitOp, second}
}

// EncodeKeyMapping renders a key mapping into the ordered frame sequence of
// one atomic configuration change: layer switch (modern dialect only),
// payload, flash commit. Legacy firmware has no layer concept, so the layer
// switch is skipped entirely.
func EncodeKeyMapping(d Dialect, m KeyMapping) []Frame {
	var frames []Frame
	if d == DialectModern {
		frames = append(frames, layerSwitchFrame(m.Layer))
	}
	switch m.Type {
	case KeyTypeMedia:
		frames = append(frames, mediaKeyFrame(d, m))
	default:
		frames = append(frames, basicKeyFrame(d, m))
	}
	return append(frames, flashCommitFrame(false))
}

// EncodeLedMode renders an LED mode change: the LED frame followed by the
// LED-flavored flash commit. LED state is not layer scoped, so no layer
// switch is emitted for either dialect.
func EncodeLedMode(mode uint8) []Frame {
	return []Frame{ledFrame(mode), flashCommitFrame(true)}
}
