// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package api defines the contracts shared between the run loop, the offload
// socket layer and the external QUIC protocol engine. The engine itself
// (connection state, packet protection, streams) is an opaque collaborator;
// this package only pins down the surface the I/O core drives it through.
package api
