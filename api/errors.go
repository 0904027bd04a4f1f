// File: api/errors.go
// Package api defines the engine error taxonomy consumed by the run loop.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"syscall"
)

// Sentinel errors an Engine reports through Recv and SendPacketsOut.
// The runner matches them with errors.Is; engines may wrap them freely.
var (
	// ErrDone is the normal exhaustion signal from SendPacketsOut:
	// nothing more to send. It is not a failure.
	ErrDone = errors.New("nothing more to send")

	// ErrUnknownConnID marks a packet whose connection id belongs to no
	// known connection. The segment is skipped.
	ErrUnknownConnID = errors.New("unknown connection id")

	// ErrInvalidConnID marks a packet carrying a malformed connection id.
	// The segment is skipped.
	ErrInvalidConnID = errors.New("invalid connection id")

	// ErrInvalidAddrToken marks a packet whose address validation token
	// did not verify. The segment is skipped.
	ErrInvalidAddrToken = errors.New("invalid address validation token")
)

// HeaderError reports a packet whose header failed to parse. The runner logs
// it and skips the segment.
type HeaderError struct {
	Err error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("invalid packet header: %v", e.Err)
}

func (e *HeaderError) Unwrap() error { return e.Err }

// RecvFailedError reports a receive failure inside the underlying protocol
// library. The runner logs it and skips the segment.
type RecvFailedError struct {
	Err error
}

func (e *RecvFailedError) Error() string {
	return fmt.Sprintf("protocol library recv failed: %v", e.Err)
}

func (e *RecvFailedError) Unwrap() error { return e.Err }

// IsWouldBlock reports whether err is the transient "no data to read / no
// buffer space to write" condition. It is never treated as a failure: the
// current drain attempt simply stops.
func IsWouldBlock(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}
