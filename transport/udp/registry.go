// File: transport/udp/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package udp

import (
	"fmt"
	"net/netip"

	"go.uber.org/multierr"

	"github.com/momentics/hioload-quic/api"
	"github.com/momentics/hioload-quic/internal/slab"
)

// Registry owns the bound sockets and maps each socket's local address back
// to its slot for send-side lookup. Slot keys stay valid until the socket is
// removed; local addresses are unique because the OS rejects duplicate binds.
type Registry struct {
	sockets *slab.Slab[*Socket]
	byAddr  map[netip.AddrPort]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sockets: slab.New[*Socket](),
		byAddr:  make(map[netip.AddrPort]int),
	}
}

// Insert stores the socket and returns its stable slot key.
func (r *Registry) Insert(s *Socket) int {
	key := r.sockets.Insert(s)
	r.byAddr[s.LocalAddr()] = key
	return key
}

// Get returns the socket at key, or nil if the key is vacant.
func (r *Registry) Get(key int) *Socket {
	s, _ := r.sockets.Get(key)
	return s
}

// Len returns the number of registered sockets.
func (r *Registry) Len() int {
	return r.sockets.Len()
}

// Send resolves the socket bound to info.From and delegates to its Send.
//
// The engine only ever reports send-from addresses of registered sockets, so
// a miss is a programming error upstream, not a recoverable condition: it
// panics rather than dropping the packet silently.
func (r *Registry) Send(buf []byte, info api.SendInfo, segmentSize int) (int, error) {
	key, ok := r.byAddr[info.From]
	if !ok {
		panic(fmt.Sprintf("udp: send from unregistered address %s", info.From))
	}
	s, _ := r.sockets.Get(key)
	return s.Send(buf, info, segmentSize)
}

// Close closes every registered socket, aggregating failures.
func (r *Registry) Close() error {
	var err error
	r.sockets.Range(func(_ int, s *Socket) bool {
		err = multierr.Append(err, s.Close())
		return true
	})
	return err
}
