//go:build !linux
// +build !linux

// File: poller/poller_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package poller

import "errors"

// New returns an error for platforms without a poll object implementation.
func New(capacity int) (Poller, error) {
	return nil, errors.New("poller: this platform is not supported")
}
