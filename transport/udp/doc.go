// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package udp implements the offload-aware UDP socket the run loop drives:
// bind-time probing of kernel receive coalescing (GRO), send segmentation
// (GSO) and transmit-time pacing (SO_TXTIME), segment-aware receive and send
// primitives, and the registry mapping engine-reported source addresses back
// to their sockets.
//
// Every offload feature is strictly best-effort. A kernel that rejects a
// probe leaves the feature disabled, which degrades performance only, never
// correctness.
package udp
