package ping

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	mapsutil "github.com/projectdiscovery/utils/maps"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const echoPayload = "ZNETSCAN-R-U-THERE"

// pendingEcho tracks a sent echo request waiting for its reply
type pendingEcho struct {
	IP   net.IP
	Done chan struct{}
}

// Pinger sends ICMP echo requests over a single shared connection and matches
// replies back to their senders. Safe for concurrent use; one Pinger serves
// every worker of a scan.
type Pinger struct {
	conn         net.PacketConn
	timeout      time.Duration
	unprivileged bool
	id           int
	seq          atomic.Uint32
	pending      *mapsutil.SyncLockMap[int, *pendingEcho]
	closed       chan struct{}
}

// NewPinger opens the shared ICMP connection. It prefers a raw socket and
// falls back to an unprivileged datagram socket when raw sockets require
// privileges the process does not have.
func NewPinger(timeout time.Duration) (*Pinger, error) {
	conn, unprivileged, err := listenICMP()
	if err != nil {
		return nil, fmt.Errorf("failed to create shared ICMP connection: %w", err)
	}

	p := &Pinger{
		conn:         conn,
		timeout:      timeout,
		unprivileged: unprivileged,
		id:           os.Getpid() & 0xffff,
		pending:      mapsutil.NewSyncLockMap[int, *pendingEcho](),
		closed:       make(chan struct{}),
	}

	go p.receiveReplies()

	return p, nil
}

func listenICMP() (net.PacketConn, bool, error) {
	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err == nil {
		return conn, false, nil
	}

	// Raw sockets need root on most systems; the datagram flavor does not
	conn, udpErr := icmp.ListenPacket("udp4", "0.0.0.0")
	if udpErr != nil {
		return nil, false, err
	}
	return conn, true, nil
}

// Ping sends one echo request to ip and reports whether a matching reply
// arrived within the pinger's timeout. A missing reply is not an error; only
// send failures are.
func (p *Pinger) Ping(ctx context.Context, ip net.IP) (bool, error) {
	seq := p.nextSeq()
	pending := &pendingEcho{IP: ip, Done: make(chan struct{})}
	_ = p.pending.Set(seq, pending)
	defer p.pending.Delete(seq)

	if err := p.sendEcho(ip, seq); err != nil {
		return false, err
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-pending.Done:
		return true, nil
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-p.closed:
		return false, nil
	}
}

// Close releases the shared connection and wakes any in-flight pings
func (p *Pinger) Close() error {
	close(p.closed)
	return p.conn.Close()
}

// nextSeq hands out sequence numbers unique within the 16-bit ICMP field
func (p *Pinger) nextSeq() int {
	return int(p.seq.Add(1) & 0xffff)
}

func (p *Pinger) sendEcho(ip net.IP, seq int) error {
	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq,
			Data: []byte(echoPayload),
		},
	}

	msgBytes, err := msg.Marshal(nil)
	if err != nil {
		return fmt.Errorf("failed to marshal ICMP message: %w", err)
	}

	var dst net.Addr = &net.IPAddr{IP: ip}
	if p.unprivileged {
		dst = &net.UDPAddr{IP: ip}
	}

	_, err = p.conn.WriteTo(msgBytes, dst)
	return err
}

// receiveReplies reads echo replies off the shared connection and signals the
// matching pending ping. Runs until the connection is closed.
func (p *Pinger) receiveReplies() {
	proto := ipv4.ICMPTypeEchoReply.Protocol()
	reply := make([]byte, 1500)

	for {
		select {
		case <-p.closed:
			return
		default:
		}

		if err := p.conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond)); err != nil {
			return
		}

		n, peer, err := p.conn.ReadFrom(reply)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			// Connection closed or broken
			return
		}

		rm, err := icmp.ParseMessage(proto, reply[:n])
		if err != nil {
			continue
		}
		if rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		echo, ok := rm.Body.(*icmp.Echo)
		if !ok {
			continue
		}

		// The kernel rewrites the echo ID on datagram sockets, so the ID is
		// only meaningful on raw sockets; sequence numbers match either way
		if !p.unprivileged && echo.ID != p.id {
			continue
		}

		pending, exists := p.pending.Get(echo.Seq)
		if !exists {
			continue
		}
		if !peerMatches(peer, pending.IP) {
			continue
		}

		p.pending.Delete(echo.Seq)
		close(pending.Done)
	}
}

func peerMatches(peer net.Addr, want net.IP) bool {
	switch addr := peer.(type) {
	case *net.IPAddr:
		return addr.IP.Equal(want)
	case *net.UDPAddr:
		return addr.IP.Equal(want)
	default:
		return false
	}
}
