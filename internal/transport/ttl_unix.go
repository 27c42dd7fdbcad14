// +build linux darwin freebsd

package transport

import (
	"net"

	"golang.org/x/sys/unix"
)

func setIPv4TTL(conn *net.UDPConn, ttl int) error {
	sc, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var setErr error
	ctrlErr := sc.Control(func(fd uintptr) {
		setErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_MULTICAST_TTL, ttl)
	})
	if ctrlErr != nil {
		return ctrlErr
	}
	return setErr
}
