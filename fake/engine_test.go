package fake_test

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-quic/api"
	"github.com/momentics/hioload-quic/fake"
)

func TestSendDrainOrderAndExhaustion(t *testing.T) {
	e := fake.NewEngine()
	assert.False(t, e.HasPendingSends())

	e.QueuePacket(fake.Packet{Payload: []byte("one")})
	e.QueuePacket(fake.Packet{Payload: []byte("two"), SegmentSize: 2})
	require.True(t, e.HasPendingSends())

	buf := make([]byte, 16)
	res, err := e.SendPacketsOut(buf)
	require.NoError(t, err)
	assert.Equal(t, "one", string(buf[:res.Total]))

	res, err = e.SendPacketsOut(buf)
	require.NoError(t, err)
	assert.Equal(t, "two", string(buf[:res.Total]))
	assert.Equal(t, 2, res.SegmentSize)

	_, err = e.SendPacketsOut(buf)
	require.ErrorIs(t, err, api.ErrDone)
	assert.False(t, e.HasPendingSends())
}

func TestRecvCopiesOutOfSharedBuffer(t *testing.T) {
	e := fake.NewEngine()
	buf := []byte("payload")
	require.NoError(t, e.Recv(buf, api.RecvInfo{}))

	// runner reuses its scratch buffer; the record must not alias it
	copy(buf, "XXXXXXX")
	got := e.Received()
	require.Len(t, got, 1)
	assert.Equal(t, "payload", string(got[0].Segment))
}

func TestIdleTimeoutTracksMockClock(t *testing.T) {
	mock := clock.NewMock()
	e := fake.NewEngine(fake.WithClock(mock), fake.WithIdleTimeout(5*time.Second))

	d, ok := e.Timeout()
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, d)

	mock.Add(2 * time.Second)
	d, _ = e.Timeout()
	assert.Equal(t, 3*time.Second, d)

	// a received segment re-arms the idle deadline
	require.NoError(t, e.Recv([]byte("ping"), api.RecvInfo{}))
	d, _ = e.Timeout()
	assert.Equal(t, 5*time.Second, d)

	mock.Add(10 * time.Second)
	d, _ = e.Timeout()
	assert.Equal(t, time.Duration(0), d)

	e.OnTimeout()
	assert.Equal(t, 1, e.TimeoutsFired())
	d, _ = e.Timeout()
	assert.Equal(t, 5*time.Second, d)
}

func TestNoTimeoutWhenUnarmed(t *testing.T) {
	e := fake.NewEngine()
	_, ok := e.Timeout()
	assert.False(t, ok)
}
