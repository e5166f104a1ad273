package shm

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/udoprog/livemix-go/evfd"
)

func mustMemfd(t *testing.T, size int) int {
	t.Helper()
	fd, err := unix.MemfdCreate("activation-test", 0)
	if err != nil {
		t.Fatalf("memfd_create: %v", err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		t.Fatalf("ftruncate: %v", err)
	}
	return fd
}

func newTestRecord(t *testing.T, version uint32, pending uint32) (*ActivationRecord, *Table) {
	t.Helper()
	fd := mustMemfd(t, 64)
	tbl := NewTable()
	tbl.Insert(1, 0, fd, 0)
	region, err := tbl.Map(1, 64, 0)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	buf := region.Bytes()
	volatileStore32(buf, offServerVersion, version)
	volatileStore32(buf, offPending, pending)

	signal, err := evfd.New(0)
	if err != nil {
		t.Fatalf("evfd.New: %v", err)
	}
	rec, err := NewActivationRecord(region, signal)
	if err != nil {
		t.Fatalf("NewActivationRecord: %v", err)
	}
	return rec, tbl
}

func volatileStore32(buf []byte, off int, v uint32) {
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
	buf[off+2] = byte(v >> 16)
	buf[off+3] = byte(v >> 24)
}

func TestActivationV1TriggerOnce(t *testing.T) {
	rec, _ := newTestRecord(t, 1, 1)
	if rec.Version() != V1 {
		t.Fatalf("expected V1, got %v", rec.Version())
	}

	ok, err := rec.Trigger()
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if !ok {
		t.Fatalf("first Trigger should return true")
	}
	if rec.Status() != StatusTriggered {
		t.Fatalf("status = %v, want TRIGGERED", rec.Status())
	}
	if rec.SignalTime() == 0 {
		t.Fatalf("signal_time not written")
	}

	n, err := rec.signal.Read()
	if err != nil {
		t.Fatalf("eventfd Read: %v", err)
	}
	if n != 1 {
		t.Fatalf("eventfd count = %d, want 1", n)
	}

	ok2, err := rec.Trigger()
	if err != nil {
		t.Fatalf("second Trigger: %v", err)
	}
	if ok2 {
		t.Fatalf("second Trigger on same record should return false")
	}
}

func TestActivationV0Path(t *testing.T) {
	rec, _ := newTestRecord(t, 0, 1)
	if rec.Version() != V0 {
		t.Fatalf("expected V0, got %v", rec.Version())
	}
	ok, err := rec.Trigger()
	if err != nil || !ok {
		t.Fatalf("Trigger = %v, %v", ok, err)
	}
	if rec.Status() != StatusTriggered {
		t.Fatalf("status = %v, want TRIGGERED", rec.Status())
	}
}

func TestMemoryTableRefcount(t *testing.T) {
	fd := mustMemfd(t, 4096)
	tbl := NewTable()
	tbl.Insert(7, 0, fd, 0)

	r1, err := tbl.Map(7, 4096, 0)
	if err != nil {
		t.Fatalf("Map 1: %v", err)
	}
	r2, err := tbl.Map(7, 4096, 0)
	if err != nil {
		t.Fatalf("Map 2: %v", err)
	}
	// Unbinding the id drops the table's own reference; the regions keep theirs.
	tbl.Remove(7)

	if err := r1.Drop(); err != nil {
		t.Fatalf("Drop 1: %v", err)
	}
	// fd must still be open: the second region holds a reference.
	if err := unix.Fsync(fd); err != nil {
		t.Fatalf("fd closed too early: %v", err)
	}

	if err := r2.Drop(); err != nil {
		t.Fatalf("Drop 2: %v", err)
	}
	if err := unix.Fsync(fd); err == nil {
		t.Fatalf("fd should be closed after last region dropped")
	}
}

func TestIdSet(t *testing.T) {
	var s IdSet
	s.Set(0)
	s.Set(63)
	s.Set(64)
	s.Set(127)
	if s.Count() != 4 {
		t.Fatalf("Count = %d, want 4", s.Count())
	}
	if !s.Has(64) || s.Has(65) {
		t.Fatalf("Has mismatch")
	}
}
