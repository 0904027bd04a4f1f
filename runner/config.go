// File: runner/config.go
// Package runner defines the application hook configuration.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package runner

import "github.com/momentics/hioload-quic/api"

// Config carries the optional application hooks invoked by the run loop.
// The zero value is valid: every hook defaults to a no-op.
type Config struct {
	// PreHandleRecvs runs right after the poll wake-up, before any event
	// is dispatched.
	PreHandleRecvs func(*Runner)

	// PostHandleRecvs runs once the batch of received packets is
	// processed and before outgoing packets are generated. This is the
	// conventional place to re-arm the application timeout.
	PostHandleRecvs func(*Runner)

	// OnExternalEvent runs for every ready external event source with
	// the opaque value supplied at registration. The engine is passed so
	// the hook can affect protocol state.
	OnExternalEvent func(engine api.Engine, value any)
}
