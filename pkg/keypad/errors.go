package keypad

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when an operation is attempted on a closed
	// or never-opened session.
	ErrNotConnected = errors.New("device not connected")

	// ErrUnknownKey marks a combo string that resolved to no keycode.
	ErrUnknownKey = errors.New("unknown key")

	// ErrUnknownSlot marks a physical control name missing from the slot
	// table.
	ErrUnknownSlot = errors.New("unknown physical key")
)

// PartialCommandError reports a multi-frame command sequence that failed
// after at least one frame was already written. The device may have applied
// the frames that went out; one-way HID writes give no way to roll them back.
type PartialCommandError struct {
	Sent  int
	Total int
	Err   error
}

func (e *PartialCommandError) Error() string {
	return fmt.Sprintf("command partially applied (%d of %d frames sent): %v", e.Sent, e.Total, e.Err)
}

func (e *PartialCommandError) Unwrap() error {
	return e.Err
}
