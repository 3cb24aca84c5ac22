package types

import "time"

// Device represents a single discovered host. It is built exactly once by the
// prober and never mutated afterwards.
type Device struct {
	// Address is the probed IPv4 address in dotted-quad form
	Address string `json:"address"`
	// Hostname is the reverse-DNS name; equals Address when resolution failed
	Hostname string `json:"hostname"`
	// LinkLayerAddress is the dash-separated MAC, or an advisory
	// "Unknown (...)" placeholder when the MAC could not be resolved
	LinkLayerAddress string `json:"link_layer_address"`
	// OpenPorts holds the ports that accepted a TCP connection, in scan order
	OpenPorts []int `json:"open_ports"`
}

// HasHostname reports whether reverse DNS produced a name distinct from the address
func (d *Device) HasHostname() bool {
	return d.Hostname != "" && d.Hostname != d.Address
}

// DeviceRecord is the persisted form of a Device written to the output stream
type DeviceRecord struct {
	ScanID    string `json:"scan_id"`
	Timestamp string `json:"timestamp"` // RFC3339 format date-time

	Device
}

// NewDeviceRecord stamps a device with its scan ID and discovery time
func NewDeviceRecord(scanID string, device Device) DeviceRecord {
	return DeviceRecord{
		ScanID:    scanID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Device:    device,
	}
}
