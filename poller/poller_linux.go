//go:build linux
// +build linux

// File: poller/poller_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based poll object.

package poller

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// epollPoller multiplexes descriptors through one epoll instance. The caller
// token rides in the event payload, so readiness reports need no lookup.
type epollPoller struct {
	epfd   int
	events []unix.EpollEvent
	ready  []Token
}

// New constructs the platform poll object. capacity bounds the number of
// readiness events reported per Wait; values <= 0 select the default.
func New(capacity int) (Poller, error) {
	if capacity <= 0 {
		capacity = 1024
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &epollPoller{
		epfd:   epfd,
		events: make([]unix.EpollEvent, capacity),
		ready:  make([]Token, 0, capacity),
	}, nil
}

// Register adds fd to the epoll watch list under token.
func (p *epollPoller) Register(fd int, token Token, interest Interest) error {
	var ev unix.EpollEvent
	if interest&Readable != 0 {
		ev.Events |= unix.EPOLLIN
	}
	if interest&Writable != 0 {
		ev.Events |= unix.EPOLLOUT
	}
	// The token is smuggled through the Fd payload field; epoll hands it
	// back untouched with every readiness report.
	ev.Fd = int32(token)
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add fd %d: %w", fd, err)
	}
	return nil
}

// Wait blocks up to timeout for readiness and returns the ready tokens.
// EINTR wake-ups restart the wait. Error and hang-up conditions are reported
// like readable ones: the subsequent read on the descriptor surfaces the
// real error.
func (p *epollPoller) Wait(timeout time.Duration) ([]Token, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout.Milliseconds())
		// round sub-millisecond waits up so short protocol timeouts do
		// not degrade into a busy spin
		if ms == 0 && timeout > 0 {
			ms = 1
		}
	}
	for {
		n, err := unix.EpollWait(p.epfd, p.events, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("epoll wait: %w", err)
		}
		p.ready = p.ready[:0]
		for i := 0; i < n; i++ {
			p.ready = append(p.ready, Token(p.events[i].Fd))
		}
		return p.ready, nil
	}
}

// Close releases the epoll instance.
func (p *epollPoller) Close() error {
	return unix.Close(p.epfd)
}
