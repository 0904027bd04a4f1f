// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package poller provides the readiness multiplexer shared by every event
// source of the run loop: UDP sockets, external descriptors and the shutdown
// pipe. The Linux implementation is built on epoll(7); other platforms get a
// constructor error rather than a compile failure.
package poller
