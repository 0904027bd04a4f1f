// File: poller/poller.go
// Package poller defines the platform-neutral poll object contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package poller

import "time"

// Token identifies a registered event source. The poll object never
// interprets tokens; the caller maps them back to descriptors. A token must
// not be reused while its registration is still active.
type Token int

// Interest selects the readiness conditions a registration waits for.
type Interest uint8

const (
	Readable Interest = 1 << iota
	Writable
)

// Poller is a readiness-based multiplexer over file descriptors.
type Poller interface {
	// Register adds fd under token with the given interest set.
	Register(fd int, token Token, interest Interest) error

	// Wait blocks until at least one registered source is ready or the
	// timeout elapses, and returns the ready tokens. A negative timeout
	// blocks indefinitely; a zero timeout polls without blocking.
	// Signal interruptions are retried transparently.
	//
	// The returned slice is reused by the next Wait call.
	Wait(timeout time.Duration) ([]Token, error)

	// Close releases the poll object.
	Close() error
}
