//go:build linux
// +build linux

// File: transport/udp/probe_linux.go
// Author: momentics <momentics@gmail.com>
//
// Standalone capability and backpressure probes, usable before any real
// socket is bound.

package udp

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// GSOSupported reports whether the running kernel accepts UDP send
// segmentation. It probes UDP_SEGMENT on a throwaway loopback socket, so
// consumers can pick configuration defaults before binding real sockets.
func GSOSupported() bool {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return false
	}
	defer unix.Close(fd)
	sa := &unix.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}
	if err := unix.Bind(fd, sa); err != nil {
		return false
	}
	return unix.SetsockoptInt(fd, unix.SOL_UDP, unix.UDP_SEGMENT, 1500) == nil
}

// SendBufferQueued returns the number of bytes sitting in fd's kernel send
// buffer, not yet handed to the network. Consumers use it for
// backpressure-aware send monitoring.
func SendBufferQueued(fd int) (int, error) {
	n, err := unix.IoctlGetInt(fd, unix.TIOCOUTQ)
	if err != nil {
		return 0, fmt.Errorf("ioctl TIOCOUTQ: %w", err)
	}
	return n, nil
}
