package ping

import (
	"net"
	"testing"
)

func TestNextSeqWrapsAt16Bits(t *testing.T) {
	p := &Pinger{}
	p.seq.Store(0xfffe)

	if got := p.nextSeq(); got != 0xffff {
		t.Errorf("nextSeq() = %#x, want 0xffff", got)
	}
	if got := p.nextSeq(); got != 0 {
		t.Errorf("nextSeq() after wrap = %#x, want 0", got)
	}
	if got := p.nextSeq(); got != 1 {
		t.Errorf("nextSeq() after wrap = %#x, want 1", got)
	}
}

func TestPeerMatches(t *testing.T) {
	want := net.ParseIP("192.168.1.10")

	tests := []struct {
		name string
		peer net.Addr
		want bool
	}{
		{"IPAddr match", &net.IPAddr{IP: net.ParseIP("192.168.1.10")}, true},
		{"IPAddr mismatch", &net.IPAddr{IP: net.ParseIP("192.168.1.11")}, false},
		{"UDPAddr match", &net.UDPAddr{IP: net.ParseIP("192.168.1.10")}, true},
		{"UDPAddr mismatch", &net.UDPAddr{IP: net.ParseIP("10.0.0.1")}, false},
		{"Unsupported addr type", &net.TCPAddr{IP: net.ParseIP("192.168.1.10")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := peerMatches(tt.peer, want); got != tt.want {
				t.Errorf("peerMatches(%v) = %v, want %v", tt.peer, got, tt.want)
			}
		})
	}
}
