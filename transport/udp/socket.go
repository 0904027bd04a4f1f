// File: transport/udp/socket.go
// Package udp implements the offload-aware UDP socket.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package udp

import (
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-quic/api"
)

// gsoProbeSegment is the conservative jumbo segment used to probe send
// segmentation support at bind time.
const gsoProbeSegment = 9000

// Socket owns one bound, non-blocking UDP socket together with the offload
// feature flags probed at bind time. The local address and the flags are
// immutable after Bind.
//
// Socket is not safe for concurrent use; the run loop is single-threaded.
type Socket struct {
	fd        int
	localAddr netip.AddrPort

	// reusable control-message buffers, never shared across sockets
	cmsgBuf []byte
	oobBuf  []byte

	gro    bool
	pacing bool
	gso    bool
}

// Bind opens a UDP socket on addr and probes the kernel offload features,
// each skippable through its disable flag. The cached local address always
// matches the OS-reported bound address, so binding to port 0 yields the
// assigned port.
func Bind(addr netip.AddrPort, disableGRO, disablePacing, disableGSO bool) (*Socket, error) {
	if !addr.Addr().IsValid() {
		return nil, fmt.Errorf("bind: invalid address %s", addr)
	}
	domain := unix.AF_INET6
	if addr.Addr().Is4() || addr.Addr().Is4In6() {
		domain = unix.AF_INET
	}
	fd, err := unix.Socket(domain, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, fmt.Errorf("socket create: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set nonblock: %w", err)
	}
	unix.CloseOnExec(fd)
	if err := unix.Bind(fd, sockaddrFromAddrPort(addr)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	sa, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("getsockname: %w", err)
	}
	local, err := addrPortFromSockaddr(sa)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	s := &Socket{
		fd:        fd,
		localAddr: local,
		cmsgBuf:   make([]byte, groControlSize),
	}
	if !disableGRO {
		s.gro = tryEnableReceiveCoalescing(fd)
	}
	if !disablePacing {
		s.pacing = tryEnableSendPacing(fd)
	}
	if !disableGSO {
		s.gso = tryEnableSendSegmentation(fd, gsoProbeSegment)
	}
	return s, nil
}

// Recv reads the next datagram into buf. With receive coalescing enabled the
// kernel may deliver several same-flow datagrams merged into one payload;
// segSize then carries the size of the individual segments, with 0 meaning
// "the whole payload is one segment". Without coalescing, segSize == n.
//
// A would-block condition is returned unwrapped enough for api.IsWouldBlock
// and simply means the socket is drained.
func (s *Socket) Recv(buf []byte) (n int, from netip.AddrPort, segSize int, err error) {
	if s.gro {
		return s.recvCoalesced(buf)
	}
	n, sa, err := unix.Recvfrom(s.fd, buf, 0)
	if err != nil {
		return 0, netip.AddrPort{}, 0, fmt.Errorf("recvfrom: %w", err)
	}
	from, err = addrPortFromSockaddr(sa)
	if err != nil {
		return 0, netip.AddrPort{}, 0, err
	}
	return n, from, n, nil
}

// Send writes buf to info.To. With send segmentation enabled and
// 0 < segmentSize < len(buf), the kernel splits buf into segmentSize-sized
// UDP datagrams. With pacing enabled and info.At set, the kernel holds the
// packet until the requested transmission time.
func (s *Socket) Send(buf []byte, info api.SendInfo, segmentSize int) (int, error) {
	oob := s.sendControl(info, segmentSize, len(buf))
	n, err := unix.SendmsgN(s.fd, buf, oob, sockaddrFromAddrPort(info.To), 0)
	if err != nil {
		return 0, fmt.Errorf("sendmsg to %s: %w", info.To, err)
	}
	return n, nil
}

// LocalAddr returns the OS-reported bound address, cached at Bind.
func (s *Socket) LocalAddr() netip.AddrPort { return s.localAddr }

// Fd returns the underlying descriptor for poll registration and the
// send-buffer query.
func (s *Socket) Fd() int { return s.fd }

// GROEnabled reports whether receive coalescing was enabled at bind.
func (s *Socket) GROEnabled() bool { return s.gro }

// PacingEnabled reports whether transmit-time pacing was enabled at bind.
func (s *Socket) PacingEnabled() bool { return s.pacing }

// GSOEnabled reports whether send segmentation was enabled at bind.
func (s *Socket) GSOEnabled() bool { return s.gso }

// Close releases the OS handle.
func (s *Socket) Close() error {
	return unix.Close(s.fd)
}
