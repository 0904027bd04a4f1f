// File: runner/runner.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package runner

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/momentics/hioload-quic/api"
	"github.com/momentics/hioload-quic/control"
	"github.com/momentics/hioload-quic/internal/slab"
	"github.com/momentics/hioload-quic/poller"
	"github.com/momentics/hioload-quic/transport/udp"
)

const defaultPollCapacity = 1024

// Runner owns the sockets, the poll object and the event table, and runs the
// loop that shuttles datagrams between the kernel and the protocol engine.
//
// Runner is strictly single-threaded: construction, registration and Run
// must happen on the same goroutine. Other goroutines interact with the loop
// only through registered descriptors (the shutdown pipe, external sources).
type Runner struct {
	cfg     Config
	engine  api.Engine
	sockets *udp.Registry
	events  *slab.Slab[event]
	poll    poller.Poller

	// scratch buffer for one receive or one outgoing batch; reused every
	// call, never held across the blocking poll
	buf []byte

	appTimeout    time.Duration
	appTimeoutSet bool

	shutdownFD   int
	pollCapacity int
	log          *zap.Logger
	metrics      *control.Metrics
}

// New constructs a Runner around engine. At least one socket must be
// registered with RegisterSocket before Run.
func New(cfg Config, engine api.Engine, opts ...Option) (*Runner, error) {
	r := &Runner{
		cfg:          cfg,
		engine:       engine,
		sockets:      udp.NewRegistry(),
		events:       slab.New[event](),
		buf:          make([]byte, api.MaxUDPPayload),
		shutdownFD:   -1,
		pollCapacity: defaultPollCapacity,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	p, err := poller.New(r.pollCapacity)
	if err != nil {
		return nil, err
	}
	r.poll = p
	if r.shutdownFD >= 0 {
		token := poller.Token(r.events.Insert(event{kind: eventShutdown}))
		if err := p.Register(r.shutdownFD, token, poller.Readable); err != nil {
			p.Close()
			return nil, fmt.Errorf("register shutdown fd: %w", err)
		}
	}
	return r, nil
}

// Engine returns the protocol engine driven by this runner.
func (r *Runner) Engine() api.Engine { return r.engine }

// Sockets returns the socket registry.
func (r *Runner) Sockets() *udp.Registry { return r.sockets }

// RegisterSocket adds the socket for receiving and sending and returns its
// poll token.
func (r *Runner) RegisterSocket(s *udp.Socket) (poller.Token, error) {
	key := r.sockets.Insert(s)
	token := poller.Token(r.events.Insert(event{kind: eventSocket, socket: key}))
	if err := r.poll.Register(s.Fd(), token, poller.Readable); err != nil {
		return 0, fmt.Errorf("register socket %s: %w", s.LocalAddr(), err)
	}
	return token, nil
}

// RegisterExternal multiplexes an arbitrary descriptor through the loop's
// poll object: a signal pipe, a timerfd, an inter-process channel. When fd
// becomes ready, the configured OnExternalEvent hook runs with value.
func (r *Runner) RegisterExternal(fd int, interest poller.Interest, value any) (poller.Token, error) {
	token := poller.Token(r.events.Insert(event{kind: eventExternal, value: value}))
	if err := r.poll.Register(fd, token, interest); err != nil {
		return 0, fmt.Errorf("register external fd %d: %w", fd, err)
	}
	return token, nil
}

// SetAppTimeout arms the application timeout for the next poll wait. The
// timeout is consumed every iteration whether or not it fired; re-arm it
// from the PostHandleRecvs hook for recurring behavior.
func (r *Runner) SetAppTimeout(d time.Duration) {
	r.appTimeout = d
	r.appTimeoutSet = true
}

// Close releases the poll object and every registered socket.
func (r *Runner) Close() error {
	return multierr.Append(r.poll.Close(), r.sockets.Close())
}

// pollTimeout merges the engine timeout and the application timeout into the
// single poll wait. A negative result blocks indefinitely; zero polls
// without blocking so queued sends drain immediately.
func pollTimeout(pendingSends bool, engineTimeout time.Duration, hasEngineTimeout bool, appTimeout time.Duration, hasAppTimeout bool) time.Duration {
	switch {
	case pendingSends:
		return 0
	case hasEngineTimeout && !hasAppTimeout:
		return engineTimeout
	case !hasEngineTimeout && hasAppTimeout:
		return appTimeout
	case hasEngineTimeout && hasAppTimeout:
		return min(engineTimeout, appTimeout)
	default:
		return -1
	}
}

// Run executes the loop until a shutdown event arrives or, for a client-mode
// engine, until its last connection closes. A server-mode engine keeps the
// loop alive indefinitely; only the shutdown descriptor or a fatal condition
// ends it, and that is intended production behavior.
//
// Fatal conditions (poll failure, receive failures other than would-block,
// unclassified engine errors, sends from unregistered addresses) panic with
// diagnostic detail: they indicate a kernel fault or an invariant violation
// upstream, and the loop performs no restart or partial recovery by design.
func (r *Runner) Run() error {
	for {
		engineTimeout, hasEngineTimeout := r.engine.Timeout()
		appTimeout, hasAppTimeout := r.appTimeout, r.appTimeoutSet
		r.appTimeout, r.appTimeoutSet = 0, false

		timeout := pollTimeout(r.engine.HasPendingSends(), engineTimeout, hasEngineTimeout, appTimeout, hasAppTimeout)
		r.log.Debug("poll", zap.Duration("timeout", timeout))

		ready, err := r.poll.Wait(timeout)
		if err != nil {
			panic(fmt.Sprintf("runner: poll failed fatally: %v", err))
		}
		r.metrics.AddIteration()

		if r.cfg.PreHandleRecvs != nil {
			r.cfg.PreHandleRecvs(r)
		}

		if len(ready) == 0 && !r.engine.HasPendingSends() {
			// nothing readable and nothing to flush: the wait elapsed,
			// advance the engine's timeout-driven state
			r.engine.OnTimeout()
		} else {
			stopped := false
			for _, token := range ready {
				ev, ok := r.events.Get(int(token))
				if !ok {
					panic(fmt.Sprintf("runner: ready token %d has no descriptor", token))
				}
				if r.handleEvent(ev) {
					stopped = true
					break
				}
			}
			if stopped {
				// deliberate stop; the post hook is skipped
				return nil
			}
		}

		if r.cfg.PostHandleRecvs != nil {
			r.cfg.PostHandleRecvs(r)
		}

		r.flushSends()

		r.engine.CollectGarbage()

		if !r.engine.IsServer() && r.engine.NumConns() == 0 {
			// all client connections are closed
			return nil
		}
	}
}

// handleEvent dispatches one ready descriptor. It reports true when the loop
// must stop (shutdown signal).
func (r *Runner) handleEvent(ev event) bool {
	switch ev.kind {
	case eventShutdown:
		r.log.Debug("shutdown signal received")
		return true
	case eventExternal:
		if r.cfg.OnExternalEvent != nil {
			r.cfg.OnExternalEvent(r.engine, ev.value)
		}
		return false
	case eventSocket:
		r.drainSocket(r.sockets.Get(ev.socket))
		return false
	default:
		panic(fmt.Sprintf("runner: unknown event kind %d", ev.kind))
	}
}

// drainSocket reads every currently queued datagram off the socket and feeds
// the segments to the engine. The drain stops exactly on would-block.
func (r *Runner) drainSocket(s *udp.Socket) {
	local := s.LocalAddr()
	for {
		n, from, segSize, err := s.Recv(r.buf)
		if err != nil {
			if api.IsWouldBlock(err) {
				// no more UDP packets to read on this socket;
				// process subsequent events
				r.log.Debug("recv would block", zap.Stringer("local", local))
				return
			}
			panic(fmt.Sprintf("runner: recv on %s failed fatally: %v", local, err))
		}
		if segSize == 0 {
			segSize = n
		}
		r.log.Debug("received datagram",
			zap.Stringer("local", local),
			zap.Int("bytes", n),
			zap.Int("segment_size", segSize))
		r.metrics.AddDatagramReceived(n)

		r.feedSegments(r.buf[:n], segSize, api.RecvInfo{To: local, From: from})
	}
}

// feedSegments hands each segSize-sized chunk of payload to the engine and
// classifies its errors: recoverable ones skip the segment, an engine-side
// would-block abandons the rest of the payload, anything else is fatal.
func (r *Runner) feedSegments(payload []byte, segSize int, info api.RecvInfo) {
	for off := 0; off < len(payload); off += segSize {
		end := off + segSize
		if end > len(payload) {
			end = len(payload)
		}
		err := r.engine.Recv(payload[off:end], info)
		if err == nil {
			r.metrics.AddSegmentReceived()
			continue
		}

		var hdrErr *api.HeaderError
		var recvErr *api.RecvFailedError
		switch {
		case errors.As(err, &hdrErr):
			r.log.Error("parsing packet header failed", zap.Error(err))
			r.metrics.AddSegmentSkipped()
		case errors.Is(err, api.ErrUnknownConnID):
			r.log.Debug("received packet for unknown connection id")
			r.metrics.AddSegmentSkipped()
		case errors.Is(err, api.ErrInvalidConnID):
			r.metrics.AddSegmentSkipped()
		case errors.Is(err, api.ErrInvalidAddrToken):
			r.metrics.AddSegmentSkipped()
		case api.IsWouldBlock(err):
			// engine-side send has no buffer space; drop the rest of
			// this payload and let the next poll retry
			r.log.Debug("engine would block", zap.Stringer("local", info.To))
			return
		case errors.As(err, &recvErr):
			r.log.Error("protocol library recv failed",
				zap.Stringer("local", info.To), zap.Error(err))
			r.metrics.AddSegmentSkipped()
		default:
			panic(fmt.Sprintf("runner: unexpected engine error: %v", err))
		}
	}
}

// flushSends drains the engine's outgoing queue onto the owning sockets
// until the engine reports exhaustion. A send failure drops that packet and
// keeps going: transient kernel-buffer pressure must not halt protocol
// progress.
func (r *Runner) flushSends() {
	for {
		res, err := r.engine.SendPacketsOut(r.buf)
		if err != nil {
			if errors.Is(err, api.ErrDone) {
				return
			}
			panic(fmt.Sprintf("runner: unexpected engine error: %v", err))
		}
		if _, err := r.sockets.Send(r.buf[:res.Total], res.Info, res.SegmentSize); err != nil {
			r.log.Error("error sending UDP datagram", zap.Error(err))
			r.metrics.AddSendError()
			continue
		}
		r.metrics.AddPacketSent(res.Total)
	}
}
