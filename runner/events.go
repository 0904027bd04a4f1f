// File: runner/events.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package runner

// eventKind tags what a poll token stands for.
type eventKind uint8

const (
	eventShutdown eventKind = iota
	eventSocket
	eventExternal
)

// event is one descriptor in the token-indexed event table. The slab slot
// holding it is the poll token, so the mapping is stable for the
// descriptor's lifetime.
type event struct {
	kind   eventKind
	socket int // socket registry key, eventSocket only
	value  any // opaque user value, eventExternal only
}
