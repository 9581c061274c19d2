package keypad

// Dialect identifies which of the two incompatible firmware command framings
// a device speaks.
//
// Legacy firmware (report id 0) has no layer concept at the wire level and
// expects the bare key-type nibble as the type byte. Modern firmware (report
// ids 2 and 3) encodes the active layer in the upper nibble of the type byte
// and requires an explicit layer-switch frame before every key assignment.
type Dialect uint8

const (
	DialectLegacy Dialect = iota
	DialectModern
)

func (d Dialect) String() string {
	if d == DialectLegacy {
		return "legacy"
	}
	return "modern"
}

// DefaultReportID is assumed when probing fails entirely.
const DefaultReportID byte = 3

// reportProbeOrder reflects real-world prevalence of the firmware revisions
// and must not be reordered: deployed units are detected by the first report
// id the transport accepts.
var reportProbeOrder = [...]byte{3, 0, 2}

// DetectDialect probes the transport with all-zero payloads to find the
// report id the firmware accepts, and derives the dialect from it. The probe
// payload is a no-op for every known firmware, so failed attempts have no
// observable side effect on the device.
//
// If no probe is accepted the session falls back to report id 3 / modern and
// the first real write surfaces its own error; detection failure is
// deliberately non-fatal.
func DetectDialect(tr Transport) (Dialect, byte) {
	var probe [1 + PayloadLen]byte
	for _, rid := range reportProbeOrder {
		probe[0] = rid
		if _, err := tr.Write(probe[:]); err == nil {
			return dialectForReportID(rid), rid
		}
	}
	return DialectModern, DefaultReportID
}

func dialectForReportID(rid byte) Dialect {
	if rid == 0 {
		return DialectLegacy
	}
	return DialectModern
}
