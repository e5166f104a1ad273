package wire

import (
	"os"
	"testing"

	"github.com/go-test/deep"
	"golang.org/x/sys/unix"

	"github.com/udoprog/livemix-go/pod"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{DestID: 0, Op: 1, Size: 16, Seq: 0, NumFds: 0}
	var buf [HeaderSize]byte
	h.Encode(buf[:])
	got := DecodeHeader(buf[:])
	if diff := deep.Equal(got, h); diff != nil {
		t.Fatalf("header round trip mismatch: %v", diff)
	}
}

// TestFrameByteCount implements scenario 4 from the codec's testable
// properties: dest_id=0, op=Hello(1), seq=0, payload = struct containing
// Int(3); total bytes on the wire = 16 (header) + 8 (struct header) + 8
// (int pod) = 32, aligned.
func TestFrameByteCount(t *testing.T) {
	w := pod.NewHeapWriter()
	b, err := pod.BeginStruct(w)
	if err != nil {
		t.Fatalf("BeginStruct: %v", err)
	}
	if err := pod.EncodeInt(b.Writer(), 3); err != nil {
		t.Fatalf("EncodeInt: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	payload := w.Bytes()
	if len(payload) != 16 {
		t.Fatalf("payload length = %d, want 16 (8 struct header + 8 int pod)", len(payload))
	}

	h := Header{DestID: 0, Op: 1, Size: uint32(len(payload)), Seq: 0}
	total := HeaderSize + len(payload)
	if total != 32 {
		t.Fatalf("total frame size = %d, want 32", total)
	}
	if total%pod.Align != 0 {
		t.Fatalf("total frame size %d not 8-aligned", total)
	}
	if h.Op != 1 {
		t.Fatalf("op = %d, want Hello(1)", h.Op)
	}
}

func newTransportPair(t *testing.T) (*Transport, *Transport) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			t.Fatalf("SetNonblock: %v", err)
		}
	}
	return &Transport{fd: fds[0]}, &Transport{fd: fds[1]}
}

func TestTransportRoundTrip(t *testing.T) {
	client, server := newTransportPair(t)
	defer client.Close()
	defer server.Close()

	payload := []byte("hello world")
	if err := client.QueueFrame(0, 1, 7, payload, nil); err != nil {
		t.Fatalf("QueueFrame: %v", err)
	}
	if err := client.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if err := server.Fill(); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	h, got, fds, ok, err := server.NextFrame()
	if err != nil {
		t.Fatalf("NextFrame: %v", err)
	}
	if !ok {
		t.Fatalf("NextFrame reported no frame available")
	}
	if h.DestID != 0 || h.Op != 1 || h.Seq != 7 || h.Size != uint32(len(payload)) {
		t.Fatalf("header mismatch: %+v", h)
	}
	if string(got) != "hello world" {
		t.Fatalf("payload mismatch: %q", got)
	}
	if len(fds) != 0 {
		t.Fatalf("unexpected fds: %v", fds)
	}
}

func TestTransportFdPassing(t *testing.T) {
	client, server := newTransportPair(t)
	defer client.Close()
	defer server.Close()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	if err := client.QueueFrame(1, 2, 0, []byte("fd-frame"), []int{int(w.Fd())}); err != nil {
		t.Fatalf("QueueFrame: %v", err)
	}
	if err := client.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := server.Fill(); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	_, payload, fds, ok, err := server.NextFrame()
	if err != nil {
		t.Fatalf("NextFrame: %v", err)
	}
	if !ok {
		t.Fatalf("NextFrame reported no frame available")
	}
	if string(payload) != "fd-frame" {
		t.Fatalf("payload mismatch: %q", payload)
	}
	if len(fds) != 1 {
		t.Fatalf("expected 1 fd, got %d", len(fds))
	}
	unix.Close(fds[0])
}

func TestFrameOpSizeEncoding(t *testing.T) {
	h := Header{DestID: 5, Op: 0xAB, Size: 0x00123456, Seq: 9, NumFds: 2}
	var buf [HeaderSize]byte
	h.Encode(buf[:])
	got := DecodeHeader(buf[:])
	if got.Op != 0xAB || got.Size != 0x00123456 {
		t.Fatalf("op/size packing broken: got op=%x size=%x", got.Op, got.Size)
	}
}
