//go:build linux
// +build linux

// File: transport/udp/offload_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux kernel offload capability: UDP_GRO receive coalescing, UDP_SEGMENT
// send segmentation and SO_TXTIME transmit-time pacing, plus the control
// message plumbing that carries per-call segment sizes and transmit times.

package udp

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-quic/api"
)

// sizeOfSegmentData is the payload size of UDP_GRO / UDP_SEGMENT control
// messages as consumed here: a uint16 segment size.
const sizeOfSegmentData = 2

// sizeOfTxTimeData is the payload size of SCM_TXTIME: a uint64 nanosecond
// timestamp on CLOCK_MONOTONIC.
const sizeOfTxTimeData = 8

// groControlSize sizes the reusable receive control buffer. The kernel
// reports the GRO segment size as a 4-byte integer.
var groControlSize = unix.CmsgSpace(4)

// tryEnableReceiveCoalescing asks the kernel to merge same-flow datagrams
// into single receive calls.
func tryEnableReceiveCoalescing(fd int) bool {
	return unix.SetsockoptInt(fd, unix.SOL_UDP, unix.UDP_GRO, 1) == nil
}

// tryEnableSendPacing sets SO_TXTIME so sendmsg can carry a per-packet
// transmission time on the monotonic clock.
func tryEnableSendPacing(fd int) bool {
	// struct sock_txtime { clockid_t clockid; u32 flags; }
	var cfg [8]byte
	binary.NativeEndian.PutUint32(cfg[:4], unix.CLOCK_MONOTONIC)
	return unix.SetsockoptString(fd, unix.SOL_SOCKET, unix.SO_TXTIME, string(cfg[:])) == nil
}

// tryEnableSendSegmentation probes UDP_SEGMENT with the given segment size.
// The option is reset afterwards: segmentation is requested per send through
// a control message, never through socket-wide state.
func tryEnableSendSegmentation(fd, segment int) bool {
	if unix.SetsockoptInt(fd, unix.SOL_UDP, unix.UDP_SEGMENT, segment) != nil {
		return false
	}
	_ = unix.SetsockoptInt(fd, unix.SOL_UDP, unix.UDP_SEGMENT, 0)
	return true
}

// recvCoalesced receives a possibly kernel-merged datagram train in a single
// call and extracts the per-segment size from the UDP_GRO control message.
func (s *Socket) recvCoalesced(buf []byte) (int, netip.AddrPort, int, error) {
	n, oobn, _, sa, err := unix.Recvmsg(s.fd, buf, s.cmsgBuf, 0)
	if err != nil {
		return 0, netip.AddrPort{}, 0, fmt.Errorf("recvmsg: %w", err)
	}
	segSize, err := parseSegmentSize(s.cmsgBuf[:oobn])
	if err != nil {
		return 0, netip.AddrPort{}, 0, err
	}
	from, err := addrPortFromSockaddr(sa)
	if err != nil {
		return 0, netip.AddrPort{}, 0, err
	}
	return n, from, segSize, nil
}

// parseSegmentSize walks the received control messages for the UDP_GRO
// segment size. Absence is not an error: 0 means one segment.
func parseSegmentSize(control []byte) (int, error) {
	remainder := control
	for len(remainder) >= unix.SizeofCmsghdr {
		hdr, data, rest, err := unix.ParseOneSocketControlMessage(remainder)
		if err != nil {
			return 0, fmt.Errorf("parse control message: %w", err)
		}
		if hdr.Level == unix.SOL_UDP && hdr.Type == unix.UDP_GRO && len(data) >= sizeOfSegmentData {
			return int(binary.NativeEndian.Uint16(data[:sizeOfSegmentData])), nil
		}
		remainder = rest
	}
	return 0, nil
}

// sendControl builds the outgoing control messages for one send into the
// socket's reusable buffer: UDP_SEGMENT when the kernel should split the
// payload, SCM_TXTIME when the engine requested a transmit time.
func (s *Socket) sendControl(info api.SendInfo, segmentSize, payloadLen int) []byte {
	s.oobBuf = s.oobBuf[:0]
	if s.gso && segmentSize > 0 && segmentSize < payloadLen {
		s.oobBuf = appendSegmentSize(s.oobBuf, uint16(segmentSize))
	}
	if s.pacing && !info.At.IsZero() {
		s.oobBuf = appendTxTime(s.oobBuf, info.At)
	}
	if len(s.oobBuf) == 0 {
		return nil
	}
	return s.oobBuf
}

// appendSegmentSize appends a UDP_SEGMENT control message carrying size.
func appendSegmentSize(oob []byte, size uint16) []byte {
	off := len(oob)
	oob = append(oob, make([]byte, unix.CmsgSpace(sizeOfSegmentData))...)
	hdr := (*unix.Cmsghdr)(unsafe.Pointer(&oob[off]))
	hdr.Level = unix.SOL_UDP
	hdr.Type = unix.UDP_SEGMENT
	hdr.SetLen(unix.CmsgLen(sizeOfSegmentData))
	binary.NativeEndian.PutUint16(oob[off+unix.CmsgLen(0):], size)
	return oob
}

// appendTxTime appends an SCM_TXTIME control message carrying at converted
// to CLOCK_MONOTONIC nanoseconds.
func appendTxTime(oob []byte, at time.Time) []byte {
	off := len(oob)
	oob = append(oob, make([]byte, unix.CmsgSpace(sizeOfTxTimeData))...)
	hdr := (*unix.Cmsghdr)(unsafe.Pointer(&oob[off]))
	hdr.Level = unix.SOL_SOCKET
	hdr.Type = unix.SCM_TXTIME
	hdr.SetLen(unix.CmsgLen(sizeOfTxTimeData))
	binary.NativeEndian.PutUint64(oob[off+unix.CmsgLen(0):], monotonicNanos(at))
	return oob
}

// monotonicNanos maps a wall-clock transmit time onto CLOCK_MONOTONIC, the
// clock SO_TXTIME was configured with. Times already in the past collapse to
// "now".
func monotonicNanos(at time.Time) uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	now := uint64(ts.Nano())
	d := time.Until(at)
	if d <= 0 {
		return now
	}
	return now + uint64(d)
}
