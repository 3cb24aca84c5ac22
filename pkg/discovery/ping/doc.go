// Package ping answers the single question the discovery engine asks about a
// host before probing it further: does it reply to an ICMP echo within the
// timeout.
//
// One shared ICMP connection serves all concurrent probes. Each probe sends an
// echo request with a unique sequence number and waits for the receiver
// goroutine to match the reply, bounded by the probe timeout. A raw ICMP
// socket is used when available, falling back to an unprivileged datagram
// ICMP socket otherwise.
//
// Limitations:
// - Hosts with ICMP disabled or firewalled will not respond
// - Some networks may rate-limit ICMP traffic
package ping
