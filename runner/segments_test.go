package runner

import (
	"errors"
	"net/netip"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/momentics/hioload-quic/api"
	"github.com/momentics/hioload-quic/fake"
)

// segmentRunner builds a Runner just capable enough to exercise segment
// iteration; no poll object or sockets are involved.
func segmentRunner(e api.Engine) *Runner {
	return &Runner{engine: e, log: zap.NewNop()}
}

var recvInfo = api.RecvInfo{
	To:   netip.MustParseAddrPort("127.0.0.1:4433"),
	From: netip.MustParseAddrPort("127.0.0.1:9000"),
}

func TestCoalescedPayloadSplitsIntoSegments(t *testing.T) {
	eng := fake.NewEngine()
	r := segmentRunner(eng)

	payload := make([]byte, 9000)
	for i := range payload {
		payload[i] = byte(i / 1500) // mark each segment
	}
	r.feedSegments(payload, 1500, recvInfo)

	got := eng.Received()
	require.Len(t, got, 6)
	for i, rec := range got {
		assert.Len(t, rec.Segment, 1500)
		assert.Equal(t, byte(i), rec.Segment[0])
		assert.Equal(t, recvInfo, rec.Info)
	}
}

func TestTrailingShortSegment(t *testing.T) {
	eng := fake.NewEngine()
	r := segmentRunner(eng)

	r.feedSegments(make([]byte, 3200), 1500, recvInfo)

	got := eng.Received()
	require.Len(t, got, 3)
	assert.Len(t, got[0].Segment, 1500)
	assert.Len(t, got[1].Segment, 1500)
	assert.Len(t, got[2].Segment, 200)
}

func TestHeaderErrorSkipsOnlyThatSegment(t *testing.T) {
	calls := 0
	eng := fake.NewEngine(fake.WithRecvHook(func(segment []byte, info api.RecvInfo) error {
		calls++
		if calls == 1 {
			return &api.HeaderError{Err: errors.New("bad version")}
		}
		return nil
	}))
	r := segmentRunner(eng)

	r.feedSegments(make([]byte, 4500), 1500, recvInfo)

	assert.Equal(t, 3, calls, "every segment must reach the engine")
	assert.Equal(t, 2, eng.ReceivedCount(), "only the bad segment is skipped")
}

func TestSkippableSentinelsContinue(t *testing.T) {
	sentinels := []error{
		api.ErrUnknownConnID,
		api.ErrInvalidConnID,
		api.ErrInvalidAddrToken,
		&api.RecvFailedError{Err: errors.New("library failure")},
	}
	for _, sentinel := range sentinels {
		calls := 0
		eng := fake.NewEngine(fake.WithRecvHook(func(segment []byte, info api.RecvInfo) error {
			calls++
			if calls == 2 {
				return sentinel
			}
			return nil
		}))
		segmentRunner(eng).feedSegments(make([]byte, 4500), 1500, recvInfo)
		assert.Equalf(t, 3, calls, "%v must not stop the segment walk", sentinel)
		assert.Equalf(t, 2, eng.ReceivedCount(), "%v must skip one segment", sentinel)
	}
}

func TestEngineWouldBlockAbandonsRemainingSegments(t *testing.T) {
	calls := 0
	eng := fake.NewEngine(fake.WithRecvHook(func(segment []byte, info api.RecvInfo) error {
		calls++
		if calls == 3 {
			return syscall.EAGAIN
		}
		return nil
	}))
	r := segmentRunner(eng)

	r.feedSegments(make([]byte, 9000), 1500, recvInfo)

	assert.Equal(t, 3, calls, "segments after the would-block are abandoned")
	assert.Equal(t, 2, eng.ReceivedCount())
}

func TestUnclassifiedEngineErrorIsFatal(t *testing.T) {
	eng := fake.NewEngine(fake.WithRecvHook(func(segment []byte, info api.RecvInfo) error {
		return errors.New("logic error")
	}))
	r := segmentRunner(eng)

	assert.Panics(t, func() {
		r.feedSegments(make([]byte, 1500), 1500, recvInfo)
	})
}
