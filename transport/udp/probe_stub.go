//go:build !linux
// +build !linux

// File: transport/udp/probe_stub.go
// Author: momentics <momentics@gmail.com>

package udp

import "errors"

// GSOSupported reports false on platforms without UDP send segmentation.
func GSOSupported() bool { return false }

// SendBufferQueued is unavailable on this platform.
func SendBufferQueued(fd int) (int, error) {
	return 0, errors.New("udp: send buffer query not supported on this platform")
}
