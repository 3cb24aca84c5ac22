// Package hwaddr resolves the link-layer (MAC) address of a host. Resolution
// locates the local network interface bound to the host's IP, which only
// succeeds for the scanning machine's own addresses; hosts elsewhere on the
// segment resolve through the optional ARP-table lookup instead. Failures are
// never errors: they become advisory placeholder strings on the device record.
package hwaddr

import (
	"fmt"
	"net"
	"strings"
)

// Advisory reasons for an unresolved link-layer address. The exact wording is
// part of the device record contract.
const (
	ReasonNotDirectlyReachable = "Host not directly reachable"
	ReasonCannotRetrieve       = "Cannot retrieve MAC"
)

// LinkAddr is a tagged result: either a resolved hardware address or a
// descriptive reason why none is available.
type LinkAddr struct {
	Addr   net.HardwareAddr
	Reason string
}

// Resolved reports whether a hardware address was found
func (l LinkAddr) Resolved() bool {
	return len(l.Addr) > 0
}

// String renders the address as dash-separated uppercase hex octets, or the
// advisory "Unknown (...)" placeholder when unresolved.
func (l LinkAddr) String() string {
	if l.Resolved() {
		return Format(l.Addr)
	}
	return "Unknown (" + l.Reason + ")"
}

// Format renders a hardware address as dash-separated uppercase hex octets
func Format(mac net.HardwareAddr) string {
	parts := make([]string, 0, len(mac))
	for _, b := range mac {
		parts = append(parts, fmt.Sprintf("%02X", b))
	}
	return strings.Join(parts, "-")
}

// ifaceInfo is a snapshot of one local interface: its hardware address and
// the IPs bound to it
type ifaceInfo struct {
	hw    net.HardwareAddr
	addrs []net.IP
}

// Resolve looks up the hardware address of ip by locating a local interface
// bound to it
func Resolve(ip net.IP) LinkAddr {
	interfaces, err := net.Interfaces()
	if err != nil {
		return LinkAddr{Reason: "Error: " + err.Error()}
	}

	infos := make([]ifaceInfo, 0, len(interfaces))
	for _, iface := range interfaces {
		info := ifaceInfo{hw: iface.HardwareAddr}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok {
				info.addrs = append(info.addrs, ipNet.IP)
			}
		}
		infos = append(infos, info)
	}

	return lookup(ip, infos)
}

// lookup finds the interface bound to ip within a snapshot. Virtual
// interfaces carry no hardware address and surface as "cannot retrieve".
func lookup(ip net.IP, infos []ifaceInfo) LinkAddr {
	for _, info := range infos {
		for _, addr := range info.addrs {
			if !addr.Equal(ip) {
				continue
			}
			if len(info.hw) == 0 {
				return LinkAddr{Reason: ReasonCannotRetrieve}
			}
			return LinkAddr{Addr: info.hw}
		}
	}
	return LinkAddr{Reason: ReasonNotDirectlyReachable}
}

// ResolveWithARPTable resolves like Resolve, but when no local interface is
// bound to ip it additionally consults the OS ARP cache. Hosts that answered
// a probe moments ago usually have a fresh entry there.
func ResolveWithARPTable(ip net.IP) LinkAddr {
	result := Resolve(ip)
	if result.Resolved() || result.Reason != ReasonNotDirectlyReachable {
		return result
	}

	entries, err := readLocalARPTable()
	if err != nil {
		return result
	}
	for _, entry := range entries {
		if entry.IP.Equal(ip) {
			return LinkAddr{Addr: entry.MAC}
		}
	}
	return result
}

// arpEntry is one row of the OS ARP cache
type arpEntry struct {
	IP  net.IP
	MAC net.HardwareAddr
}
