package runner

import (
	"strings"

	"github.com/projectdiscovery/gologger"
	"github.com/shirou/gopsutil/v3/host"
	gopsnet "github.com/shirou/gopsutil/v3/net"
)

// listInterfaces prints the local interface inventory. It is the operator's
// first stop when a scan refuses to start for lack of a usable interface.
func (r *Runner) listInterfaces() error {
	if info, err := host.Info(); err == nil {
		gologger.Info().Msgf("Host: %s (%s %s)", info.Hostname, info.Platform, info.PlatformVersion)
	}

	interfaces, err := gopsnet.Interfaces()
	if err != nil {
		return err
	}

	for _, iface := range interfaces {
		addrs := make([]string, 0, len(iface.Addrs))
		for _, addr := range iface.Addrs {
			addrs = append(addrs, addr.Addr)
		}

		hw := iface.HardwareAddr
		if hw == "" {
			hw = "-"
		}

		gologger.Silent().Msgf("%-14s %-18s flags=[%s] %s",
			iface.Name, hw, strings.Join(iface.Flags, ","), strings.Join(addrs, " "))
	}

	return nil
}
