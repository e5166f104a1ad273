// Package session derives a globally-unique session tag for a client
// connection, for attaching to log fields and metric labels. Adapted
// from m-lab/tcp-info's uuid package: a per-boot, per-host cookie read
// out of the kernel's SO_COOKIE sockopt, generalized here from
// *net.TCPConn to any connection backed by a raw file descriptor (a
// PipeWire connection is a Unix-domain stream socket, not TCP, but
// SO_COOKIE is socket-family-agnostic).
package session

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unsafe"
)

const soCookie = 57 // SO_COOKIE, per socket.h; not exposed by the syscall package

var cachedPrefix = ""

func timeToUnix(t time.Time) int64 {
	return int64(t.Sub(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)).Seconds())
}

// bootTimeOnce reads /proc/uptime and time.Now() once and returns the boot
// time in Unix seconds. bootTime repeats it until two consecutive reads
// agree, to avoid the race where the two syscalls straddle a second
// boundary.
func bootTimeOnce() (int64, error) {
	procUptime, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return -1, err
	}
	fields := strings.Split(string(procUptime), " ")
	if len(fields) != 2 {
		return -1, fmt.Errorf("session: could not split /proc/uptime into two parts")
	}
	uptime, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return -1, fmt.Errorf("session: could not parse /proc/uptime: %w", err)
	}
	return timeToUnix(time.Now().Add(-time.Duration(uptime * float64(time.Second)))), nil
}

func bootTime() (int64, error) {
	var prev, curr int64
	curr, err := bootTimeOnce()
	if err != nil {
		return curr, err
	}
	for prev != curr {
		prev = curr
		curr, err = bootTimeOnce()
		if err != nil {
			return curr, err
		}
	}
	return curr, nil
}

// prefix returns a string combining hostname and boot time, which
// together uniquely identify the cookie namespace for this process's
// lifetime; cached since both are constant for the life of the process.
func prefix() (string, error) {
	if cachedPrefix != "" {
		return cachedPrefix, nil
	}
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	bt, err := bootTime()
	if err != nil {
		return "", err
	}
	cachedPrefix = fmt.Sprintf("%s_%d", hostname, bt)
	return cachedPrefix, nil
}

// syscallConn is satisfied by *net.UnixConn (and *net.TCPConn), the
// minimal surface needed to reach the raw fd for a Getsockopt call.
type syscallConn interface {
	SyscallConn() (syscall.RawConn, error)
}

// cookie reads the kernel SO_COOKIE value for conn's underlying socket.
// The cookie is unique for a given boot of a given host until the host
// receives more than 2^64 connections without rebooting.
func cookie(conn syscallConn) (uint64, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, err
	}

	var cookie uint64
	var sysErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		cookieLen := uint32(unsafe.Sizeof(cookie))
		_, _, errno := syscall.Syscall6(
			uintptr(syscall.SYS_GETSOCKOPT),
			fd,
			uintptr(syscall.SOL_SOCKET),
			uintptr(soCookie),
			uintptr(unsafe.Pointer(&cookie)),
			uintptr(unsafe.Pointer(&cookieLen)),
			0)
		if errno != 0 {
			sysErr = fmt.Errorf("session: getsockopt(SO_COOKIE): %w", errno)
		}
	})
	if ctrlErr != nil {
		return 0, ctrlErr
	}
	return cookie, sysErr
}

// FromCookie renders a cookie value as a globally-unique session string.
func FromCookie(c uint64) (string, error) {
	p, err := prefix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%x", p, c), nil
}

// FromConn derives a session tag from a live connection's SO_COOKIE,
// suitable for attaching to a node.ClientNode's log fields once a
// wire.Transport has been established over it.
func FromConn(conn *net.UnixConn) (string, error) {
	c, err := cookie(conn)
	if err != nil {
		return "", err
	}
	return FromCookie(c)
}
