package wire

import (
	"errors"
	"net"

	"golang.org/x/sys/unix"
)

// ErrRemoteClosed is the distinct "remote close" transport-error variant,
// as opposed to a generic I/O error.
var ErrRemoteClosed = errors.New("wire: remote closed the connection")

// ErrWouldBlock is returned by Flush/Fill when the socket is not ready;
// callers should wait for the readiness primitive before retrying.
var ErrWouldBlock = errors.New("wire: would block")

const recvChunk = 64 * 1024

// Transport owns the send/receive byte buffers and the outbound fd queue
// for one Unix-domain connection, implementing the framing rules of spec
// §4.2: a partially-sent message is never interleaved with another, and
// fds queued alongside a message are attached to the next send syscall,
// which carries the message's first byte when the send buffer was empty
// at queue time (otherwise it carries earlier queued bytes).
type Transport struct {
	fd int

	sendBuf    []byte
	sendFds    []int
	fdsPending bool // true once sendFds must ride the very next Sendmsg call

	recvBuf []byte
	recvPos int
	recvFds []int
}

// NewTransport takes ownership of conn's underlying fd, switches it to
// non-blocking mode, and returns a Transport driving it directly via
// Sendmsg/Recvmsg so SCM_RIGHTS can be attached precisely to the syscall
// that sends the first byte of a given frame.
func NewTransport(conn *net.UnixConn) (*Transport, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, err
	}
	var fd int
	var dupErr error
	if err := raw.Control(func(s uintptr) {
		fd, dupErr = unix.Dup(int(s))
	}); err != nil {
		return nil, err
	}
	if dupErr != nil {
		return nil, dupErr
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}
	// The dup'd fd is independent of conn's lifetime; closing conn does
	// not affect it and vice versa, so the original *net.UnixConn can be
	// discarded by the caller once NewTransport returns.
	return &Transport{fd: fd}, nil
}

// Fd returns the underlying file descriptor, for registration with a
// poll.Poller.
func (t *Transport) Fd() int { return t.fd }

// QueueFrame appends one frame (header + payload) to the send buffer. fds,
// if any, are queued to be attached via SCM_RIGHTS to the next Sendmsg
// call this Transport performs — which, if the send buffer was previously
// empty, is exactly the syscall that writes this frame's header.
func (t *Transport) QueueFrame(destID uint32, op uint8, seq uint32, payload []byte, fds []int) error {
	h := Header{DestID: destID, Op: op, Size: uint32(len(payload)), Seq: seq, NumFds: uint32(len(fds))}
	var hb [HeaderSize]byte
	h.Encode(hb[:])
	t.sendBuf = append(t.sendBuf, hb[:]...)
	t.sendBuf = append(t.sendBuf, payload...)
	if len(fds) > 0 {
		t.sendFds = append(t.sendFds, fds...)
		t.fdsPending = true
	}
	return nil
}

// WantWrite reports whether the send buffer has unflushed bytes.
func (t *Transport) WantWrite() bool { return len(t.sendBuf) > 0 }

// WantRead reports whether the receive buffer has room for more data; this
// transport always has room (it grows its receive buffer), so WantRead is
// simply "always interested in readability".
func (t *Transport) WantRead() bool { return true }

// Flush writes as much of the send buffer as the socket currently accepts.
// Queued fds are attached via SCM_RIGHTS on the first successful Sendmsg
// call after they were queued, then cleared. Returns ErrWouldBlock (not an
// error the caller need treat as fatal) when the socket is not write-ready.
func (t *Transport) Flush() error {
	for len(t.sendBuf) > 0 {
		var oob []byte
		if t.fdsPending {
			oob = unix.UnixRights(t.sendFds...)
		}
		n, err := unix.SendmsgN(t.fd, t.sendBuf, oob, nil, 0)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return ErrWouldBlock
			}
			return err
		}
		if t.fdsPending {
			t.fdsPending = false
			t.sendFds = t.sendFds[:0]
		}
		t.sendBuf = t.sendBuf[n:]
	}
	return nil
}

// Fill reads as much as the socket currently offers into the receive
// buffer, absorbing any SCM_RIGHTS fds into the fd ring. Returns
// ErrRemoteClosed on EOF and ErrWouldBlock when nothing is available.
func (t *Transport) Fill() error {
	buf := make([]byte, recvChunk)
	oob := make([]byte, unix.CmsgSpace(64*4))
	n, oobn, _, _, err := unix.Recvmsg(t.fd, buf, oob, 0)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return ErrWouldBlock
		}
		return err
	}
	if n == 0 {
		return ErrRemoteClosed
	}
	t.recvBuf = append(t.recvBuf, buf[:n]...)
	if oobn > 0 {
		fds, err := parseRights(oob[:oobn])
		if err != nil {
			return err
		}
		t.recvFds = append(t.recvFds, fds...)
	}
	t.compact()
	return nil
}

func parseRights(oob []byte) ([]int, error) {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, err
	}
	var fds []int
	for _, m := range msgs {
		got, err := unix.ParseUnixRights(&m)
		if err != nil {
			return nil, err
		}
		fds = append(fds, got...)
	}
	return fds, nil
}

// compact discards already-consumed bytes once the unread tail is a small
// fraction of the buffer, so a long-lived connection doesn't grow its
// receive buffer without bound.
func (t *Transport) compact() {
	if t.recvPos == 0 {
		return
	}
	if t.recvPos < len(t.recvBuf)/2 {
		return
	}
	copy(t.recvBuf, t.recvBuf[t.recvPos:])
	t.recvBuf = t.recvBuf[:len(t.recvBuf)-t.recvPos]
	t.recvPos = 0
}

// NextFrame parses one frame out of the receive buffer if a full header
// and payload are available. ok is false when more bytes are needed. The
// returned payload and fds slices are only valid until the next call to
// Fill or NextFrame.
func (t *Transport) NextFrame() (header Header, payload []byte, fds []int, ok bool, err error) {
	avail := t.recvBuf[t.recvPos:]
	if len(avail) < HeaderSize {
		return Header{}, nil, nil, false, nil
	}
	h := DecodeHeader(avail)
	total := HeaderSize + int(h.Size)
	if len(avail) < total {
		return Header{}, nil, nil, false, nil
	}
	if h.NumFds > 0 && uint32(len(t.recvFds)) < h.NumFds {
		// The payload bytes are already buffered but the ancillary fds
		// haven't all arrived yet; wait for another Fill rather than
		// consuming the frame now and losing track of it.
		return Header{}, nil, nil, false, nil
	}
	payload = avail[HeaderSize:total]
	t.recvPos += total
	if h.NumFds > 0 {
		fds = t.recvFds[:h.NumFds]
		t.recvFds = t.recvFds[h.NumFds:]
	}
	return h, payload, fds, true, nil
}

// Close closes the underlying fd.
func (t *Transport) Close() error {
	return unix.Close(t.fd)
}
