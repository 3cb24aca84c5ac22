// Package probe runs the full per-host discovery sequence: reachability,
// hostname, link-layer address, and open ports. Steps after the reachability
// check never fail; their errors degrade into fallback values on the device
// record. A probe yields either a fully populated device or no device, never
// a partial one.
package probe

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/projectdiscovery/gcache"
	"github.com/znetsec/znetscan/pkg/discovery/hwaddr"
	"github.com/znetsec/znetscan/pkg/discovery/ping"
	"github.com/znetsec/znetscan/pkg/discovery/portscan"
	"github.com/znetsec/znetscan/pkg/types"
)

// DefaultTimeout bounds every network call a probe makes
const DefaultTimeout = time.Second

// Options configures a Prober
type Options struct {
	// Timeout applies identically to the reachability check and to each
	// port connect attempt. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Ports overrides the candidate port list. Defaults to
	// portscan.DefaultPorts; order is preserved.
	Ports []int
	// UseARPTable additionally consults the OS ARP cache when no local
	// interface is bound to the probed address
	UseARPTable bool
}

// Prober probes one host at a time and is safe for concurrent use. All
// probes of a scan share one Prober, so ICMP traffic flows through a single
// socket and reverse-DNS answers are cached across hosts.
type Prober struct {
	timeout     time.Duration
	ports       []int
	useARPTable bool

	pinger *ping.Pinger

	// replaceable seams for tests
	reach       func(ctx context.Context, ip net.IP) (bool, error)
	lookupAddr  func(ctx context.Context, addr string) ([]string, error)
	resolveLink func(ip net.IP) hwaddr.LinkAddr
	scanPorts   func(ctx context.Context, host string, ports []int, timeout time.Duration) []int

	dnsCache gcache.Cache[string, string]
}

// NewProber creates a Prober and opens its shared ICMP connection
func NewProber(opts Options) (*Prober, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if len(opts.Ports) == 0 {
		opts.Ports = portscan.DefaultPorts
	}

	pinger, err := ping.NewPinger(opts.Timeout)
	if err != nil {
		return nil, err
	}

	p := &Prober{
		timeout:     opts.Timeout,
		ports:       opts.Ports,
		useARPTable: opts.UseARPTable,
		pinger:      pinger,
		reach:       pinger.Ping,
		lookupAddr:  net.DefaultResolver.LookupAddr,
		resolveLink: hwaddr.Resolve,
		scanPorts:   portscan.Scan,
		dnsCache: gcache.New[string, string](512).
			LRU().
			Expiration(10 * time.Minute).
			Build(),
	}
	if opts.UseARPTable {
		p.resolveLink = hwaddr.ResolveWithARPTable
	}

	return p, nil
}

// Close releases the shared ICMP connection
func (p *Prober) Close() error {
	if p.pinger != nil {
		return p.pinger.Close()
	}
	return nil
}

// Probe checks host for reachability and, if it answers, assembles its
// device record. An unreachable host returns (nil, nil); only the
// reachability check itself can produce an error, and callers treat that as
// no-device after logging it.
func (p *Prober) Probe(ctx context.Context, host string) (*types.Device, error) {
	ip := net.ParseIP(host)
	if ip == nil {
		return nil, &net.ParseError{Type: "IP address", Text: host}
	}

	reachable, err := p.reach(ctx, ip)
	if err != nil {
		return nil, err
	}
	if !reachable {
		return nil, nil
	}

	device := &types.Device{
		Address:          host,
		Hostname:         p.resolveHostname(ctx, host),
		LinkLayerAddress: p.resolveLink(ip).String(),
		OpenPorts:        p.scanPorts(ctx, host, p.ports, p.timeout),
	}

	return device, nil
}

// resolveHostname reverse-resolves host, falling back to the IP literal when
// resolution fails or yields nothing. Answers are cached across probes.
func (p *Prober) resolveHostname(ctx context.Context, host string) string {
	if cached, err := p.dnsCache.Get(host); err == nil {
		return cached
	}

	lookupCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	hostname := host
	if names, err := p.lookupAddr(lookupCtx, host); err == nil && len(names) > 0 {
		if name := strings.TrimSuffix(names[0], "."); name != "" {
			hostname = name
		}
	}

	_ = p.dnsCache.Set(host, hostname)
	return hostname
}
