//go:build !linux
// +build !linux

// File: transport/udp/offload_stub.go
// Author: momentics <momentics@gmail.com>
//
// No-op offload capability for platforms without kernel support. Sockets
// still work; every probe reports the feature as unavailable.

package udp

import (
	"errors"
	"net/netip"

	"github.com/momentics/hioload-quic/api"
)

const groControlSize = 0

func tryEnableReceiveCoalescing(fd int) bool { return false }

func tryEnableSendPacing(fd int) bool { return false }

func tryEnableSendSegmentation(fd, segment int) bool { return false }

// recvCoalesced is unreachable: receive coalescing is never enabled here.
func (s *Socket) recvCoalesced(buf []byte) (int, netip.AddrPort, int, error) {
	return 0, netip.AddrPort{}, 0, errors.New("udp: receive coalescing not supported on this platform")
}

func (s *Socket) sendControl(info api.SendInfo, segmentSize, payloadLen int) []byte {
	return nil
}
