// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
package transport

import (
	"net"

	"github.com/pkg/errors"
)

// McastConfig configures multicast group membership for a receiver, or
// egress interface selection for a sender. OutboundIf is the local IPv4
// address of the NIC to send/join on; empty lets the OS choose.
type McastConfig struct {
	Enabled    bool
	OutboundIf string
}

// SenderConfig describes one outbound UDP path.
type SenderConfig struct {
	LocalAddr string // "" or "ip:port"; empty binds ephemeral
	Dest      Endpoint
	Mcast     McastConfig
	TTL       int // multicast TTL; 0 = OS default
}

// ReceiverConfig describes one inbound UDP path.
type ReceiverConfig struct {
	BindAddr string // "ip:port"
	Mcast    McastConfig
}

// Sender wraps a UDP socket bound for one destination.
type Sender struct {
	conn *net.UDPConn
	dest *net.UDPAddr
}

// DialSender opens a UDP socket for cfg. For multicast destinations, the
// outbound interface is selected via OutboundIf when set.
func DialSender(cfg SenderConfig) (*Sender, error) {
	if !IsMulticast(cfg.Dest.IP) {
		cfg.Mcast.Enabled = false
	}

	destAddr := &net.UDPAddr{IP: net.IPv4(cfg.Dest.IP[0], cfg.Dest.IP[1], cfg.Dest.IP[2], cfg.Dest.IP[3]), Port: int(cfg.Dest.Port)}

	var laddr *net.UDPAddr
	if cfg.LocalAddr != "" {
		ep, ok := ParseEndpoint(cfg.LocalAddr)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidEndpoint, "local address %q", cfg.LocalAddr)
		}
		laddr = &net.UDPAddr{IP: net.IPv4(ep.IP[0], ep.IP[1], ep.IP[2], ep.IP[3]), Port: int(ep.Port)}
	} else if cfg.Mcast.Enabled && cfg.Mcast.OutboundIf != "" {
		ip, ok := ParseIPv4(cfg.Mcast.OutboundIf)
		if !ok {
			return nil, errors.Errorf("transport: invalid outbound interface %q", cfg.Mcast.OutboundIf)
		}
		laddr = &net.UDPAddr{IP: net.IPv4(ip[0], ip[1], ip[2], ip[3])}
	}

	conn, err := net.DialUDP("udp4", laddr, destAddr)
	if err != nil {
		return nil, errors.Wrap(err, "transport: dial")
	}
	if cfg.TTL > 0 {
		if err := setIPv4TTL(conn, cfg.TTL); err != nil {
			conn.Close()
			return nil, errors.Wrap(err, "transport: set ttl")
		}
	}
	return &Sender{conn: conn, dest: destAddr}, nil
}

// Send writes one datagram to the configured destination.
func (s *Sender) Send(payload []byte) (int, error) {
	n, err := s.conn.Write(payload)
	if err != nil {
		return n, errors.Wrap(err, "transport: send")
	}
	return n, nil
}

// Close releases the underlying socket.
func (s *Sender) Close() error { return s.conn.Close() }

// Receiver wraps a UDP socket bound for inbound frames, optionally
// joined to a multicast group.
type Receiver struct {
	conn *net.UDPConn
}

// ListenReceiver opens and, if configured, joins a multicast group for cfg.
func ListenReceiver(cfg ReceiverConfig) (*Receiver, error) {
	ep, ok := ParseEndpoint(cfg.BindAddr)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidEndpoint, "bind address %q", cfg.BindAddr)
	}
	bindAddr := &net.UDPAddr{IP: net.IPv4(ep.IP[0], ep.IP[1], ep.IP[2], ep.IP[3]), Port: int(ep.Port)}

	if cfg.Mcast.Enabled && IsMulticast(ep.IP) {
		var iface *net.Interface
		if cfg.Mcast.OutboundIf != "" {
			ifaces, err := net.Interfaces()
			if err != nil {
				return nil, errors.Wrap(err, "transport: list interfaces")
			}
			for i := range ifaces {
				addrs, _ := ifaces[i].Addrs()
				for _, a := range addrs {
					if ipNet, ok := a.(*net.IPNet); ok && ipNet.IP.String() == cfg.Mcast.OutboundIf {
						iface = &ifaces[i]
					}
				}
			}
		}
		conn, err := net.ListenMulticastUDP("udp4", iface, bindAddr)
		if err != nil {
			return nil, errors.Wrap(err, "transport: listen multicast")
		}
		return &Receiver{conn: conn}, nil
	}

	conn, err := net.ListenUDP("udp4", bindAddr)
	if err != nil {
		return nil, errors.Wrap(err, "transport: listen")
	}
	return &Receiver{conn: conn}, nil
}

// Recv blocks for the next datagram, returning the bytes read into buf
// and the sender's endpoint.
func (r *Receiver) Recv(buf []byte) (int, *net.UDPAddr, error) {
	n, addr, err := r.conn.ReadFromUDP(buf)
	if err != nil {
		return n, addr, errors.Wrap(err, "transport: recv")
	}
	return n, addr, nil
}

// Close releases the underlying socket.
func (r *Receiver) Close() error { return r.conn.Close() }
