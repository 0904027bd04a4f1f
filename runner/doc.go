// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package runner drives socket I/O and the run loop for a protocol Engine
// multiplexing client and server QUIC connections.
//
// The loop is single-threaded and readiness-driven: one iteration computes
// the poll timeout, waits, dispatches ready events (shutdown, socket
// receive, external sources), flushes the engine's outgoing packets and runs
// engine housekeeping. The blocking poll call is the only suspension point;
// everything else runs to completion before the next wait.
package runner
