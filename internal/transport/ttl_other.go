// +build !linux,!darwin,!freebsd

package transport

import "net"

func setIPv4TTL(conn *net.UDPConn, ttl int) error {
	return nil
}
