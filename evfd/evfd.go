// Package evfd wraps Linux eventfd and timerfd, the two kernel-native
// wakeup primitives the reactor polls alongside the PipeWire socket. The
// syscall-wrapping style — a small struct holding a raw fd, methods that
// call straight into golang.org/x/sys/unix and translate errno into a typed
// error — follows m-lab/tcp-info's own unsafe/syscall plumbing in
// netlink/netlink.go and parse/parse.go, adapted from netlink sockets to
// eventfd/timerfd.
package evfd

import (
	"encoding/binary"
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// ErrWouldBlock is returned by Read when the fd is non-blocking and no
// event is currently pending.
var ErrWouldBlock = errors.New("evfd: would block")

// EventFd is a Linux eventfd counter used to wake the reactor.
type EventFd struct {
	fd int
}

// New creates a non-blocking eventfd with the given initial count.
func New(initial uint32) (*EventFd, error) {
	fd, err := unix.Eventfd(int(initial), unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	return &EventFd{fd: fd}, nil
}

// Fd returns the underlying file descriptor, for registration with a
// readiness poller.
func (e *EventFd) Fd() int { return e.fd }

// Write adds n to the counter.
func (e *EventFd) Write(n uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n)
	_, err := unix.Write(e.fd, buf[:])
	return err
}

// Read returns the accumulated count and resets it to zero, or
// ErrWouldBlock if nothing is pending.
func (e *EventFd) Read() (uint64, error) {
	var buf [8]byte
	_, err := unix.Read(e.fd, buf[:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, ErrWouldBlock
		}
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// Close closes the underlying fd.
func (e *EventFd) Close() error {
	return unix.Close(e.fd)
}

// TimerFd is a Linux timerfd used for one-shot and periodic wakeups.
type TimerFd struct {
	fd int
}

// NewTimerFd creates a non-blocking timerfd on the monotonic clock.
func NewTimerFd() (*TimerFd, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	return &TimerFd{fd: fd}, nil
}

// Fd returns the underlying file descriptor.
func (t *TimerFd) Fd() int { return t.fd }

// SetTimeout arms a one-shot expiration after d.
func (t *TimerFd) SetTimeout(d time.Duration) error {
	return t.settime(d, 0)
}

// SetInterval arms a periodic expiration every d, first firing after d.
func (t *TimerFd) SetInterval(d time.Duration) error {
	return t.settime(d, d)
}

func (t *TimerFd) settime(initial, interval time.Duration) error {
	spec := unix.ItimerSpec{
		Value:    unix.NsecToTimespec(initial.Nanoseconds()),
		Interval: unix.NsecToTimespec(interval.Nanoseconds()),
	}
	return unix.TimerfdSettime(t.fd, 0, &spec, nil)
}

// Read returns the number of expirations since the last read, or
// ErrWouldBlock if none are pending.
func (t *TimerFd) Read() (uint64, error) {
	var buf [8]byte
	_, err := unix.Read(t.fd, buf[:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, ErrWouldBlock
		}
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// Close closes the underlying fd.
func (t *TimerFd) Close() error {
	return unix.Close(t.fd)
}
