// File: runner/options.go
// Package runner defines functional options for Runner construction.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package runner

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-quic/control"
)

// Option customizes Runner initialization.
type Option func(*Runner)

// WithLogger replaces the default no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithShutdownFD registers fd (typically the read end of a pipe, see
// ShutdownPipe) as the shutdown signal: one readable event on it stops the
// loop cleanly.
func WithShutdownFD(fd int) Option {
	return func(r *Runner) { r.shutdownFD = fd }
}

// WithMetrics attaches a loop metrics collector.
func WithMetrics(m *control.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithPollCapacity overrides the per-wait readiness batch capacity.
func WithPollCapacity(n int) Option {
	return func(r *Runner) { r.pollCapacity = n }
}
