// File: transport/udp/addr.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Conversions between netip.AddrPort and the raw sockaddr forms used by the
// syscall layer.

package udp

import (
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"
)

func sockaddrFromAddrPort(ap netip.AddrPort) unix.Sockaddr {
	if ap.Addr().Is4() || ap.Addr().Is4In6() {
		return &unix.SockaddrInet4{
			Port: int(ap.Port()),
			Addr: ap.Addr().Unmap().As4(),
		}
	}
	return &unix.SockaddrInet6{
		Port: int(ap.Port()),
		Addr: ap.Addr().As16(),
	}
}

func addrPortFromSockaddr(sa unix.Sockaddr) (netip.AddrPort, error) {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(sa.Addr), uint16(sa.Port)), nil
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(sa.Addr), uint16(sa.Port)), nil
	default:
		return netip.AddrPort{}, fmt.Errorf("unsupported sockaddr type %T", sa)
	}
}
