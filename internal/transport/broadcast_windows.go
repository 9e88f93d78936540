//go:build windows

package transport

import "net"

// enableBroadcast is a no-op on Windows: net.ListenUDP sockets there
// already permit sends to a broadcast address.
func enableBroadcast(conn *net.UDPConn) error {
	return nil
}
