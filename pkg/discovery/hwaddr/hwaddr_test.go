package hwaddr

import (
	"net"
	"testing"
)

func mustMAC(t *testing.T, s string) net.HardwareAddr {
	t.Helper()
	mac, err := net.ParseMAC(s)
	if err != nil {
		t.Fatalf("parse MAC %q: %v", s, err)
	}
	return mac
}

func TestLookup(t *testing.T) {
	infos := []ifaceInfo{
		{
			hw:    mustMAC(t, "aa:bb:cc:dd:ee:ff"),
			addrs: []net.IP{net.ParseIP("192.168.1.50")},
		},
		{
			// Virtual interface: has an address but no hardware address
			hw:    nil,
			addrs: []net.IP{net.ParseIP("10.8.0.2")},
		},
	}

	tests := []struct {
		name         string
		ip           string
		wantResolved bool
		wantString   string
	}{
		{
			name:         "Interface bound to IP",
			ip:           "192.168.1.50",
			wantResolved: true,
			wantString:   "AA-BB-CC-DD-EE-FF",
		},
		{
			name:       "No interface maps to IP",
			ip:         "192.168.1.99",
			wantString: "Unknown (Host not directly reachable)",
		},
		{
			name:       "Virtual interface without hardware address",
			ip:         "10.8.0.2",
			wantString: "Unknown (Cannot retrieve MAC)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lookup(net.ParseIP(tt.ip), infos)
			if got.Resolved() != tt.wantResolved {
				t.Errorf("Resolved() = %v, want %v", got.Resolved(), tt.wantResolved)
			}
			if got.String() != tt.wantString {
				t.Errorf("String() = %q, want %q", got.String(), tt.wantString)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		mac  string
		want string
	}{
		{"Lowercase input", "aa:bb:cc:dd:ee:ff", "AA-BB-CC-DD-EE-FF"},
		{"Leading zeros preserved", "00:0a:0b:0c:0d:0e", "00-0A-0B-0C-0D-0E"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(mustMAC(t, tt.mac)); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLinkAddrErrorReason(t *testing.T) {
	l := LinkAddr{Reason: "Error: interface enumeration failed"}
	if l.Resolved() {
		t.Error("expected unresolved")
	}
	if got, want := l.String(), "Unknown (Error: interface enumeration failed)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
