//go:build linux
// +build linux

// File: runner/pipe_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package runner

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ShutdownPipe returns a connected non-blocking pipe for arming the runner's
// shutdown descriptor: pass r to WithShutdownFD and write a byte to w (from
// any goroutine, thread or signal handler) to stop the loop at its next poll
// wake-up.
func ShutdownPipe() (r, w int, err error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return 0, 0, fmt.Errorf("pipe2: %w", err)
	}
	return fds[0], fds[1], nil
}
