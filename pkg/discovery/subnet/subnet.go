// Package subnet derives the candidate host addresses for a local-network
// scan. The scan range is fixed at the /24 network of the scanning machine's
// own address: host octets 1 through 254, ascending. Network and broadcast
// addresses are never candidates.
package subnet

import (
	"fmt"
	"net"

	"github.com/projectdiscovery/mapcidr"
	"github.com/znetsec/znetscan/pkg/discovery/common"
)

// Enumerate expands the /24 network containing ip into its 254 candidate
// host addresses in ascending order. Deterministic, no I/O.
func Enumerate(ip net.IP) ([]string, error) {
	if ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("not an IPv4 address: %v", ip)
	}
	return EnumerateNetwork(common.Network24(ip))
}

// EnumerateNetwork expands network into its usable host addresses, dropping
// the network and broadcast addresses.
func EnumerateNetwork(network *net.IPNet) ([]string, error) {
	cidrStr := network.String()
	ips, err := mapcidr.IPAddresses(cidrStr)
	if err != nil {
		return nil, fmt.Errorf("failed to expand CIDR %s: %w", cidrStr, err)
	}

	candidates := make([]string, 0, len(ips))
	for _, ipStr := range ips {
		parsed := net.ParseIP(ipStr)
		if parsed == nil {
			continue
		}
		if common.IsNetworkOrBroadcast(parsed, network) {
			continue
		}
		candidates = append(candidates, ipStr)
	}

	return candidates, nil
}
