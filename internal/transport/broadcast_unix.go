//go:build !windows

package transport

import (
	"net"

	"github.com/higebu/netfd"
	"golang.org/x/sys/unix"
)

// enableBroadcast sets SO_BROADCAST on conn's underlying socket, which
// Linux requires before a datagram can be addressed to a broadcast
// address (EACCES otherwise).
func enableBroadcast(conn *net.UDPConn) error {
	fd := netfd.GetFdFromConn(conn)
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
}
