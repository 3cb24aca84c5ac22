package scan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	syncutil "github.com/projectdiscovery/utils/sync"
	"github.com/rs/xid"
	"github.com/znetsec/znetscan/pkg/discovery/common"
	"github.com/znetsec/znetscan/pkg/discovery/probe"
	"github.com/znetsec/znetscan/pkg/discovery/subnet"
	"github.com/znetsec/znetscan/pkg/types"
)

// DefaultWorkers matches the candidate count so no probe ever waits for a
// worker; the pool cap exists for resource safety, not throttling
const DefaultWorkers = 255

// ErrAlreadyStarted is emitted as a fatal event when Run is called twice on
// the same Coordinator
var ErrAlreadyStarted = errors.New("scan already started; coordinators are single use")

// ProbeFunc probes one candidate address. A (nil, nil) return means the host
// is unreachable; an error is advisory and downgrades to no-device.
type ProbeFunc func(ctx context.Context, host string) (*types.Device, error)

// Options configures a Coordinator
type Options struct {
	// Timeout applies to every network call of every probe. Defaults to
	// probe.DefaultTimeout.
	Timeout time.Duration
	// Workers caps the probe pool. Defaults to DefaultWorkers.
	Workers int
	// Ports overrides the candidate port list; order is preserved
	Ports []int
	// UseARPTable enables ARP-cache enrichment of link-layer addresses
	UseARPTable bool
}

// Coordinator owns one scan: its worker pool, its probe resources, and its
// event stream
type Coordinator struct {
	opts    Options
	id      string
	started atomic.Bool

	// replaceable seams for tests
	localAddr func() (net.IP, error)
	probeFn   ProbeFunc
	closeFn   func() error
}

// NewCoordinator creates a Coordinator for a single scan run
func NewCoordinator(opts Options) *Coordinator {
	if opts.Timeout <= 0 {
		opts.Timeout = probe.DefaultTimeout
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Coordinator{
		opts:      opts,
		id:        xid.New().String(),
		localAddr: common.LocalAddress,
	}
}

// ID returns the scan identifier stamped on every event
func (c *Coordinator) ID() string {
	return c.id
}

// probeOutcome is the completion record of one candidate address
type probeOutcome struct {
	device *types.Device
	err    error
}

// Run starts the scan and returns its event stream. The stream delivers
// progress, device, and log events in submission order, ends with exactly
// one completion event, and is closed afterwards. If no usable local
// interface exists, a single fatal event is delivered instead.
//
// Cancelling ctx makes in-flight probes return early; every candidate is
// still accounted for, so progress always reaches 100.
func (c *Coordinator) Run(ctx context.Context) <-chan Event {
	events := make(chan Event, 64)

	if !c.started.CompareAndSwap(false, true) {
		events <- Event{Kind: EventFatal, ScanID: c.id, Err: ErrAlreadyStarted}
		close(events)
		return events
	}

	go func() {
		defer close(events)
		c.run(ctx, events)
	}()

	return events
}

func (c *Coordinator) run(ctx context.Context, events chan<- Event) {
	localIP, err := c.localAddr()
	if err != nil {
		events <- Event{Kind: EventFatal, ScanID: c.id, Err: err}
		return
	}

	candidates, err := subnet.Enumerate(localIP)
	if err != nil {
		events <- Event{Kind: EventFatal, ScanID: c.id, Err: err}
		return
	}

	events <- Event{Kind: EventLog, ScanID: c.id, Message: fmt.Sprintf("Local IP: %s", localIP)}
	events <- Event{Kind: EventLog, ScanID: c.id, Message: fmt.Sprintf("Scanning subnet: %s", common.Network24(localIP))}

	probeFn := c.probeFn
	if probeFn == nil {
		prober, err := probe.NewProber(probe.Options{
			Timeout:     c.opts.Timeout,
			Ports:       c.opts.Ports,
			UseARPTable: c.opts.UseARPTable,
		})
		if err != nil {
			events <- Event{Kind: EventFatal, ScanID: c.id, Err: err}
			return
		}
		probeFn = prober.Probe
		c.closeFn = prober.Close
	}
	if c.closeFn != nil {
		defer func() { _ = c.closeFn() }()
	}

	// One buffered slot per candidate keeps workers from blocking on the
	// ordered consumption stage
	slots := make([]chan probeOutcome, len(candidates))
	for i := range slots {
		slots[i] = make(chan probeOutcome, 1)
	}

	awg, err := syncutil.New(syncutil.WithSize(c.opts.Workers))
	if err != nil {
		events <- Event{Kind: EventFatal, ScanID: c.id, Err: err}
		return
	}

	for i, host := range candidates {
		awg.Add()
		go func(slot chan<- probeOutcome, host string) {
			defer awg.Done()
			device, err := probeFn(ctx, host)
			slot <- probeOutcome{device: device, err: err}
		}(slots[i], host)
	}

	// Consume completions in submission order. Every completion, reachable
	// or not, advances progress; only devices produce discovery events.
	completed := 0
	for i, host := range candidates {
		outcome := <-slots[i]
		completed++

		if outcome.err != nil {
			events <- Event{
				Kind:    EventLog,
				ScanID:  c.id,
				Message: fmt.Sprintf("Error scanning %s: %s", host, outcome.err),
			}
		} else if outcome.device != nil {
			events <- Event{Kind: EventDeviceFound, ScanID: c.id, Device: outcome.device}
		}

		events <- Event{
			Kind:     EventProgress,
			ScanID:   c.id,
			Progress: completed * 100 / len(candidates),
		}
	}

	awg.Wait()
	events <- Event{Kind: EventScanComplete, ScanID: c.id}
}
