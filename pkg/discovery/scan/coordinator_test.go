package scan

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/znetsec/znetscan/pkg/discovery/common"
	"github.com/znetsec/znetscan/pkg/types"
)

// collect drains a scan's event stream into a slice
func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(30 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("timed out draining event stream")
		}
	}
}

func byKind(events []Event, kind EventKind) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// fakeProber marks the listed host addresses reachable and fails the listed
// error hosts
func fakeProber(reachable map[string][]int, failing map[string]error) ProbeFunc {
	return func(ctx context.Context, host string) (*types.Device, error) {
		if err, ok := failing[host]; ok {
			return nil, err
		}
		ports, ok := reachable[host]
		if !ok {
			return nil, nil
		}
		return &types.Device{
			Address:          host,
			Hostname:         host,
			LinkLayerAddress: "Unknown (Host not directly reachable)",
			OpenPorts:        ports,
		}, nil
	}
}

func newTestCoordinator(probeFn ProbeFunc) *Coordinator {
	c := NewCoordinator(Options{Workers: 32})
	c.localAddr = func() (net.IP, error) {
		return net.ParseIP("192.168.5.7").To4(), nil
	}
	c.probeFn = probeFn
	return c
}

func TestRunEmitsOrderedStream(t *testing.T) {
	reachable := map[string][]int{
		"192.168.5.1":   {80, 443},
		"192.168.5.100": {},
		"192.168.5.254": {22},
	}
	failing := map[string]error{
		"192.168.5.50": errors.New("probe exploded"),
	}

	c := newTestCoordinator(fakeProber(reachable, failing))
	events := collect(t, c.Run(context.Background()))

	// Exactly one completion, no fatal
	if got := len(byKind(events, EventScanComplete)); got != 1 {
		t.Fatalf("completion events = %d, want 1", got)
	}
	if got := len(byKind(events, EventFatal)); got != 0 {
		t.Fatalf("fatal events = %d, want 0", got)
	}
	if events[len(events)-1].Kind != EventScanComplete {
		t.Error("completion is not the final event")
	}

	// One progress event per candidate, non-decreasing, ending at 100
	progress := byKind(events, EventProgress)
	if len(progress) != 254 {
		t.Fatalf("progress events = %d, want 254", len(progress))
	}
	last := 0
	for _, ev := range progress {
		if ev.Progress < last {
			t.Fatalf("progress regressed: %d after %d", ev.Progress, last)
		}
		last = ev.Progress
	}
	if last != 100 {
		t.Errorf("final progress = %d, want 100", last)
	}

	// Devices arrive in address-ascending submission order
	devices := byKind(events, EventDeviceFound)
	wantOrder := []string{"192.168.5.1", "192.168.5.100", "192.168.5.254"}
	if len(devices) != len(wantOrder) {
		t.Fatalf("device events = %d, want %d", len(devices), len(wantOrder))
	}
	for i, ev := range devices {
		if ev.Device.Address != wantOrder[i] {
			t.Errorf("device %d = %s, want %s", i, ev.Device.Address, wantOrder[i])
		}
	}

	// Probe errors surface as advisory logs, not aborts
	foundErrLog := false
	for _, ev := range byKind(events, EventLog) {
		if strings.Contains(ev.Message, "Error scanning 192.168.5.50") {
			foundErrLog = true
		}
	}
	if !foundErrLog {
		t.Error("missing advisory log for failing host")
	}

	// Every event carries the scan ID
	for _, ev := range events {
		if ev.ScanID != c.ID() {
			t.Fatalf("event scan ID = %q, want %q", ev.ScanID, c.ID())
		}
	}
}

func TestRunNoReachableHosts(t *testing.T) {
	c := newTestCoordinator(fakeProber(nil, nil))
	events := collect(t, c.Run(context.Background()))

	if got := len(byKind(events, EventDeviceFound)); got != 0 {
		t.Errorf("device events = %d, want 0", got)
	}
	progress := byKind(events, EventProgress)
	if len(progress) != 254 {
		t.Fatalf("progress events = %d, want 254", len(progress))
	}
	// Zero devices is a valid outcome; the scan still reports completion
	if progress[len(progress)-1].Progress != 100 {
		t.Errorf("final progress = %d, want 100", progress[len(progress)-1].Progress)
	}
	if got := len(byKind(events, EventScanComplete)); got != 1 {
		t.Errorf("completion events = %d, want 1", got)
	}
}

func TestRunNoInterfaceIsFatal(t *testing.T) {
	c := NewCoordinator(Options{})
	c.localAddr = func() (net.IP, error) {
		return nil, common.ErrNoInterfaceFound
	}
	c.probeFn = fakeProber(nil, nil)

	events := collect(t, c.Run(context.Background()))

	fatal := byKind(events, EventFatal)
	if len(fatal) != 1 {
		t.Fatalf("fatal events = %d, want 1", len(fatal))
	}
	if !errors.Is(fatal[0].Err, common.ErrNoInterfaceFound) {
		t.Errorf("fatal error = %v, want ErrNoInterfaceFound", fatal[0].Err)
	}
	if len(events) != 1 {
		t.Errorf("events = %d, want only the fatal event", len(events))
	}
}

func TestRunIsSingleUse(t *testing.T) {
	c := newTestCoordinator(fakeProber(nil, nil))
	collect(t, c.Run(context.Background()))

	events := collect(t, c.Run(context.Background()))
	fatal := byKind(events, EventFatal)
	if len(fatal) != 1 || !errors.Is(fatal[0].Err, ErrAlreadyStarted) {
		t.Fatalf("second Run events = %+v, want single ErrAlreadyStarted fatal", events)
	}
}

func TestRerunWithFreshCoordinatorIsIndependent(t *testing.T) {
	reachable := map[string][]int{"192.168.5.9": {80}}

	first := newTestCoordinator(fakeProber(reachable, nil))
	firstEvents := collect(t, first.Run(context.Background()))

	second := newTestCoordinator(fakeProber(reachable, nil))
	secondEvents := collect(t, second.Run(context.Background()))

	if first.ID() == second.ID() {
		t.Error("fresh coordinators share a scan ID")
	}

	for name, events := range map[string][]Event{"first": firstEvents, "second": secondEvents} {
		if got := len(byKind(events, EventProgress)); got != 254 {
			t.Errorf("%s scan progress events = %d, want 254", name, got)
		}
		if got := len(byKind(events, EventDeviceFound)); got != 1 {
			t.Errorf("%s scan device events = %d, want 1", name, got)
		}
		if got := len(byKind(events, EventScanComplete)); got != 1 {
			t.Errorf("%s scan completion events = %d, want 1", name, got)
		}
	}
}

func TestRunSlowHostDoesNotLoseCompletions(t *testing.T) {
	// One straggler near the front of the range: everything still completes
	// and ordering is preserved behind it
	slow := "192.168.5.2"
	probeFn := func(ctx context.Context, host string) (*types.Device, error) {
		if host == slow {
			time.Sleep(200 * time.Millisecond)
			return &types.Device{Address: host, Hostname: host, LinkLayerAddress: "Unknown (Host not directly reachable)"}, nil
		}
		if host == "192.168.5.3" {
			return &types.Device{Address: host, Hostname: host, LinkLayerAddress: "Unknown (Host not directly reachable)"}, nil
		}
		return nil, nil
	}

	c := newTestCoordinator(probeFn)
	events := collect(t, c.Run(context.Background()))

	devices := byKind(events, EventDeviceFound)
	if len(devices) != 2 {
		t.Fatalf("device events = %d, want 2", len(devices))
	}
	// The slow .2 is still reported before the fast .3
	if devices[0].Device.Address != slow || devices[1].Device.Address != "192.168.5.3" {
		t.Errorf("device order = [%s %s], want [%s 192.168.5.3]",
			devices[0].Device.Address, devices[1].Device.Address, slow)
	}
	if got := len(byKind(events, EventProgress)); got != 254 {
		t.Errorf("progress events = %d, want 254", got)
	}
}
