// Package poll wraps Linux epoll as the reactor's single readiness
// primitive — one primitive, no per-call timeout. Grounded on
// m-lab/tcp-info's syscall-wrapper style (small struct around a raw fd,
// errno translated into a returned error) and on dsmmcken-dh-cli's
// golang.org/x/sys/unix usage for raw ioctl/mmap-adjacent calls, which
// informed using x/sys/unix here rather than a higher-level
// event-loop library.
package poll

import (
	"golang.org/x/sys/unix"
)

// Interest is the OR of READ/WRITE/HUP/ERROR a caller wants notified about.
type Interest uint32

// The interest bits.
const (
	Read Interest = 1 << iota
	Write
	Hup
	ErrorInterest
)

func (i Interest) toEpollEvents() uint32 {
	var ev uint32
	if i&Read != 0 {
		ev |= unix.EPOLLIN
	}
	if i&Write != 0 {
		ev |= unix.EPOLLOUT
	}
	if i&Hup != 0 {
		ev |= unix.EPOLLHUP
	}
	if i&ErrorInterest != 0 {
		ev |= unix.EPOLLERR
	}
	return ev
}

func fromEpollEvents(ev uint32) Interest {
	var i Interest
	if ev&unix.EPOLLIN != 0 {
		i |= Read
	}
	if ev&unix.EPOLLOUT != 0 {
		i |= Write
	}
	if ev&unix.EPOLLHUP != 0 {
		i |= Hup
	}
	if ev&unix.EPOLLERR != 0 {
		i |= ErrorInterest
	}
	return i
}

// Event is one readiness notification returned by Poll.
type Event struct {
	Token    uint64
	Interest Interest
}

// Poller is a thin epoll wrapper. Tokens are caller-assigned opaque values
// carried through epoll_event.data and returned verbatim in Event.Token.
type Poller struct {
	epfd int
}

// New creates an epoll instance.
func New() (*Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &Poller{epfd: fd}, nil
}

// Add registers fd for the given interest, tagged with token.
func (p *Poller) Add(fd int, token uint64, interest Interest) error {
	ev := &unix.EpollEvent{Events: interest.toEpollEvents()}
	ev.Fd = int32(fd)
	packToken(ev, token)
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev)
}

// Modify changes the interest set registered for fd.
func (p *Poller) Modify(fd int, token uint64, interest Interest) error {
	ev := &unix.EpollEvent{Events: interest.toEpollEvents()}
	ev.Fd = int32(fd)
	packToken(ev, token)
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, ev)
}

// Delete unregisters fd. token/interest are accepted but unused by epoll
// itself; they're kept in the signature to match the owner-assigned-token
// symmetry of Add/Modify per the readiness-adapter contract.
func (p *Poller) Delete(fd int, token uint64, interest Interest) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Poll blocks indefinitely until at least one registered fd is ready,
// appending the resulting events into out (which is reused and
// truncated), and returns the filled slice.
func (p *Poller) Poll(out []Event) ([]Event, error) {
	raw := make([]unix.EpollEvent, cap(out))
	if len(raw) == 0 {
		raw = make([]unix.EpollEvent, 64)
	}
	n, err := unix.EpollWait(p.epfd, raw, -1)
	if err != nil {
		if err == unix.EINTR {
			return out[:0], nil
		}
		return nil, err
	}
	out = out[:0]
	for i := 0; i < n; i++ {
		out = append(out, Event{
			Token:    unpackToken(&raw[i]),
			Interest: fromEpollEvents(raw[i].Events),
		})
	}
	return out, nil
}

// Close closes the epoll instance.
func (p *Poller) Close() error {
	return unix.Close(p.epfd)
}

// packToken/unpackToken store a 64-bit owner-assigned token across the two
// 32-bit fields (Fd, Pad) that make up epoll_event's 8-byte opaque data
// union in golang.org/x/sys/unix's struct layout. epoll never interprets
// this union; it is returned to the caller verbatim, so repurposing Fd for
// token storage (instead of a real fd) is safe.
func packToken(ev *unix.EpollEvent, token uint64) {
	ev.Fd = int32(uint32(token))
	ev.Pad = int32(uint32(token >> 32))
}

func unpackToken(ev *unix.EpollEvent) uint64 {
	low := uint64(uint32(ev.Fd))
	high := uint64(uint32(ev.Pad))
	return (high << 32) | low
}
