package common

import (
	"errors"
	"net"
)

// ErrNoInterfaceFound is returned when no up, non-loopback interface carries
// an IPv4 address. It is the only error that aborts a scan before it starts.
var ErrNoInterfaceFound = errors.New("no network interface found")

// LocalAddress returns the IPv4 address of the primary local interface: the
// first IPv4 address found on the first interface that is up and not loopback.
func LocalAddress() (net.IP, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	return localAddress(interfaces)
}

func localAddress(interfaces []net.Interface) (net.IP, error) {
	for _, iface := range interfaces {
		// Skip loopback and down interfaces
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipNet.IP.To4(); ip4 != nil {
				return ip4, nil
			}
		}
	}

	return nil, ErrNoInterfaceFound
}

// Network24 returns the /24 network containing ip
func Network24(ip net.IP) *net.IPNet {
	mask24 := net.CIDRMask(24, 32)
	return &net.IPNet{
		IP:   ip.To4().Mask(mask24),
		Mask: mask24,
	}
}

// IsNetworkOrBroadcast checks if an IP is the network or broadcast address
func IsNetworkOrBroadcast(ip net.IP, network *net.IPNet) bool {
	if network == nil {
		return false
	}

	// Network address
	if ip.Equal(network.IP) {
		return true
	}

	// Broadcast address
	broadcast := make(net.IP, len(network.IP))
	copy(broadcast, network.IP)
	for i := range broadcast {
		broadcast[i] |= ^network.Mask[i]
	}
	return ip.Equal(broadcast)
}
