//go:build linux

package udp_test

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-quic/api"
	"github.com/momentics/hioload-quic/transport/udp"
)

var loopback = netip.MustParseAddrPort("127.0.0.1:0")

func bindLoopback(t *testing.T, disableGRO, disablePacing, disableGSO bool) *udp.Socket {
	t.Helper()
	s, err := udp.Bind(loopback, disableGRO, disablePacing, disableGSO)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// recvRetry drains the would-block window after a loopback send.
func recvRetry(t *testing.T, s *udp.Socket, buf []byte) (int, netip.AddrPort, int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		n, from, segSize, err := s.Recv(buf)
		if err == nil {
			return n, from, segSize
		}
		require.True(t, api.IsWouldBlock(err), "recv failed: %v", err)
		require.True(t, time.Now().Before(deadline), "no datagram arrived")
		time.Sleep(time.Millisecond)
	}
}

func TestBindCachesOSReportedAddress(t *testing.T) {
	s := bindLoopback(t, false, false, false)
	local := s.LocalAddr()
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), local.Addr())
	assert.NotZero(t, local.Port(), "port 0 bind must report the assigned port")
}

func TestBindInvalidAddress(t *testing.T) {
	_, err := udp.Bind(netip.AddrPort{}, false, false, false)
	require.Error(t, err)
}

func TestRecvWouldBlockOnEmptySocket(t *testing.T) {
	s := bindLoopback(t, false, false, false)
	buf := make([]byte, 2048)
	_, _, _, err := s.Recv(buf)
	require.Error(t, err)
	assert.True(t, api.IsWouldBlock(err))
}

func TestSendRecvRoundTrip(t *testing.T) {
	a := bindLoopback(t, false, false, false)
	b := bindLoopback(t, false, false, false)

	payload := []byte("offload socket round trip")
	n, err := a.Send(payload, api.SendInfo{From: a.LocalAddr(), To: b.LocalAddr()}, 0)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)

	buf := make([]byte, 2048)
	got, from, _ := recvRetry(t, b, buf)
	assert.Equal(t, payload, buf[:got])
	assert.Equal(t, a.LocalAddr(), from)
}

func TestDisabledGRORecvReportsWholePayload(t *testing.T) {
	a := bindLoopback(t, true, true, true)
	b := bindLoopback(t, true, true, true)
	assert.False(t, b.GROEnabled())

	payload := make([]byte, 1200)
	_, err := a.Send(payload, api.SendInfo{From: a.LocalAddr(), To: b.LocalAddr()}, 0)
	require.NoError(t, err)

	buf := make([]byte, 2048)
	n, _, segSize := recvRetry(t, b, buf)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, n, segSize, "without coalescing segment size equals length")
}

func TestPacedSendWithPastTransmitTime(t *testing.T) {
	a := bindLoopback(t, false, false, false)
	b := bindLoopback(t, false, false, false)

	// a transmit time in the past must send immediately, paced or not
	info := api.SendInfo{From: a.LocalAddr(), To: b.LocalAddr(), At: time.Now().Add(-time.Second)}
	payload := []byte("paced")
	_, err := a.Send(payload, info, 0)
	require.NoError(t, err)

	buf := make([]byte, 2048)
	n, _, _ := recvRetry(t, b, buf)
	assert.Equal(t, payload, buf[:n])
}

func TestGSOSupportedDoesNotPanic(t *testing.T) {
	// value is kernel-dependent; the probe itself must always be safe
	_ = udp.GSOSupported()
}

func TestSendBufferQueued(t *testing.T) {
	s := bindLoopback(t, false, false, false)
	n, err := udp.SendBufferQueued(s.Fd())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 0)
}
