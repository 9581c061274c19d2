package keypad

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Transport is the open HID handle a session writes through. *hid.Device from
// github.com/sstallion/go-hid satisfies it directly. The session never
// performs device discovery; it is handed an already-open handle.
type Transport interface {
	Write(p []byte) (int, error)
	ReadWithTimeout(p []byte, timeout time.Duration) (int, error)
	Close() error
}

// Session owns a transport handle and the dialect detected for it. Commands
// are sequenced strictly one frame at a time: the firmware relies on packet
// arrival order, so frames of a command must never be reordered or coalesced.
//
// A session is single-threaded and not reusable after Close; configuring the
// device again requires opening a new session, which re-runs detection.
type Session struct {
	log *zap.Logger
	tr  Transport

	dialect  Dialect
	reportID byte

	// frameDelay is an optional pause between frames to accommodate slow
	// firmware. The protocol itself does not require it.
	frameDelay time.Duration

	connected bool
}

type SessionOption func(*Session)

func WithFrameDelay(d time.Duration) SessionOption {
	return func(s *Session) {
		s.frameDelay = d
	}
}

// Open wraps an already-open transport in a session and detects the firmware
// dialect. Detection runs exactly once; the dialect is fixed for the session
// lifetime.
func Open(log *zap.Logger, tr Transport, opts ...SessionOption) *Session {
	s := &Session{
		log:       log,
		tr:        tr,
		connected: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dialect, s.reportID = DetectDialect(tr)
	log.Debug("dialect detected",
		zap.Stringer("dialect", s.dialect),
		zap.Uint8("reportId", s.reportID))
	return s
}

// Dialect returns the dialect detected at open time.
func (s *Session) Dialect() Dialect {
	return s.dialect
}

// ReportID returns the report id fixed at open time.
func (s *Session) ReportID() byte {
	return s.reportID
}

// SetBasicKey assigns a keyboard key (with optional modifiers) to a physical
// slot on the given layer and commits it to flash.
func (s *Session) SetBasicKey(slot uint8, keycode uint8, mods Modifier, layer int) error {
	return s.sendFrames(EncodeKeyMapping(s.dialect, KeyMapping{
		Slot:      slot,
		Type:      KeyTypeBasic,
		Modifiers: mods,
		Code:      keycode,
		Layer:     layer,
	}))
}

// SetMediaKey assigns a consumer-control action to a physical slot on the
// given layer and commits it to flash.
func (s *Session) SetMediaKey(slot uint8, mediaCode uint8, layer int) error {
	return s.sendFrames(EncodeKeyMapping(s.dialect, KeyMapping{
		Slot:  slot,
		Type:  KeyTypeMedia,
		Code:  mediaCode,
		Layer: layer,
	}))
}

// SetLedMode sets the backlight mode (0=off, 1=on, 2=breathing, ...) and
// commits it to flash. LED state is not layer scoped.
func (s *Session) SetLedMode(mode uint8) error {
	return s.sendFrames(EncodeLedMode(mode))
}

// sendFrames writes a command sequence one wire frame at a time. A failure
// aborts the remaining frames; if any frame already went out the error is a
// PartialCommandError, since the device may have applied the written part.
func (s *Session) sendFrames(frames []Frame) error {
	if !s.connected {
		return ErrNotConnected
	}
	for i, frame := range frames {
		if err := s.writeFrame(frame); err != nil {
			if i > 0 {
				return &PartialCommandError{Sent: i, Total: len(frames), Err: err}
			}
			return err
		}
	}
	return nil
}

func (s *Session) writeFrame(frame Frame) error {
	buf := make([]byte, 1+PayloadLen)
	buf[0] = s.reportID
	copy(buf[1:], frame[:])

	s.log.Debug("writing frame", zap.Binary("frame", buf))
	if _, err := s.tr.Write(buf); err != nil {
		return fmt.Errorf("failed to write report %d: %w", s.reportID, err)
	}
	if s.frameDelay > 0 {
		time.Sleep(s.frameDelay)
	}
	return nil
}

// Close releases the transport. The session is unusable afterwards.
func (s *Session) Close() error {
	if !s.connected {
		return nil
	}
	s.connected = false
	return s.tr.Close()
}
