package scan

import "github.com/znetsec/znetscan/pkg/types"

// EventKind discriminates the events a scan emits
type EventKind int

const (
	// EventProgress carries the completion percentage; fired on every probe
	// completion, monotonically non-decreasing within one scan
	EventProgress EventKind = iota
	// EventDeviceFound carries a discovered device; fired once per reachable
	// host, in address-ascending order
	EventDeviceFound
	// EventLog carries a non-fatal diagnostic message; advisory only
	EventLog
	// EventScanComplete fires exactly once after every candidate is
	// accounted for
	EventScanComplete
	// EventFatal fires instead of any other event when the scan cannot
	// start; the stream ends immediately after
	EventFatal
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventDeviceFound:
		return "device"
	case EventLog:
		return "log"
	case EventScanComplete:
		return "complete"
	case EventFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Event is one entry of a scan's output stream. Kind selects which fields
// are meaningful.
type Event struct {
	Kind   EventKind
	ScanID string

	// Progress is set for EventProgress: 0..100
	Progress int
	// Device is set for EventDeviceFound
	Device *types.Device
	// Message is set for EventLog
	Message string
	// Err is set for EventFatal
	Err error
}
