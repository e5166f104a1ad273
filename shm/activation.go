package shm

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/udoprog/livemix-go/evfd"
)

// Status is the activation record's lifecycle state, stored atomically at
// a fixed offset inside the mapped region so it is interoperable with a
// server written in C using the same discipline.
type Status uint32

// The status values. The spec names these without assigning numbers; this
// package numbers them in the order given, matching the
// real-world convention that NOT_TRIGGERED is the zero value regions start
// out as when freshly mapped (mmap zero-fills).
const (
	StatusNotTriggered Status = 0
	StatusTriggered    Status = 1
	StatusAwake        Status = 2
	StatusFinished     Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusNotTriggered:
		return "NOT_TRIGGERED"
	case StatusTriggered:
		return "TRIGGERED"
	case StatusAwake:
		return "AWAKE"
	case StatusFinished:
		return "FINISHED"
	default:
		return fmt.Sprintf("Status(%d)", uint32(s))
	}
}

// Version selects the trigger protocol a peer activation speaks, inferred
// from server_version at construction time: 0 means the unconditional
// decrement-and-store V0 path, anything else the compare-and-swap V1 path.
type Version int

const (
	V0 Version = 0
	V1 Version = 1
)

// Fixed byte offsets into the mapped activation record. Only these four
// fields have a defined meaning here; everything else in the region is
// opaque and this package never touches it.
const (
	offServerVersion = 0
	offStatus        = 4
	offSignalTime    = 8
	offPending       = 16
)

const minRegionSize = offPending + 4

// Logger is the minimal logging surface ActivationRecord needs to report
// an eventfd write failure without tearing down the trigger. Satisfied by
// *logrus.Entry / *logrus.Logger.
type Logger interface {
	Warnf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Warnf(string, ...interface{}) {}

// ActivationRecord is a view over one mapped NodeActivation-shaped region,
// exposing the atomic/volatile field access the trigger protocol requires.
type ActivationRecord struct {
	region  *Region
	version Version
	signal  *evfd.EventFd
	log     Logger
}

// NewActivationRecord wraps region, reading server_version once (a
// volatile, one-time read) to select V0 or V1 semantics. signal is the
// eventfd written on a successful trigger.
func NewActivationRecord(region *Region, signal *evfd.EventFd) (*ActivationRecord, error) {
	if len(region.Bytes()) < minRegionSize {
		return nil, ErrRegionTooSmall
	}
	sv := volatileLoad32(region.Bytes(), offServerVersion)
	version := V1
	if sv == 0 {
		version = V0
	}
	return &ActivationRecord{region: region, version: version, signal: signal, log: noopLogger{}}, nil
}

// SetLogger installs a logger used to report eventfd write failures. The
// default is a no-op, matching the core's "decode packages never log"
// posture; the driver layer installs a real logger (internal/logging).
func (a *ActivationRecord) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	a.log = l
}

// Version reports which trigger protocol this record speaks.
func (a *ActivationRecord) Version() Version { return a.version }

func (a *ActivationRecord) statusPtr() *uint32 {
	return (*uint32)(unsafe.Pointer(&a.region.Bytes()[offStatus]))
}

func (a *ActivationRecord) pendingPtr() *uint32 {
	return (*uint32)(unsafe.Pointer(&a.region.Bytes()[offPending]))
}

// Status atomically loads the current status.
func (a *ActivationRecord) Status() Status {
	return Status(atomic.LoadUint32(a.statusPtr()))
}

// Pending atomically loads the current pending count.
func (a *ActivationRecord) Pending() uint32 {
	return atomic.LoadUint32(a.pendingPtr())
}

// SignalTime reads the volatile signal_time field.
func (a *ActivationRecord) SignalTime() uint64 {
	return volatileLoad64(a.region.Bytes(), offSignalTime)
}

// Trigger implements the V0/V1 trigger protocol: it computes the current
// monotonic time, performs the version-appropriate decrement-or-CAS, and
// on success writes signal_time and pokes the eventfd. A failure to write
// the eventfd is logged but does not turn
// success into failure, since the atomic/volatile state has already
// changed by the time the write is attempted.
func (a *ActivationRecord) Trigger() (bool, error) {
	nsec := uint64(monotonicNsec())
	switch a.version {
	case V0:
		return a.triggerV0(nsec)
	default:
		return a.triggerV1(nsec)
	}
}

func (a *ActivationRecord) triggerV0(nsec uint64) (bool, error) {
	pendingWas := atomic.AddUint32(a.pendingPtr(), ^uint32(0)) + 1 // fetch_sub(1): old value
	if pendingWas != 1 {
		return false, nil
	}
	atomic.StoreUint32(a.statusPtr(), uint32(StatusTriggered))
	volatileStore64(a.region.Bytes(), offSignalTime, nsec)
	if err := a.signal.Write(1); err != nil {
		a.log.Warnf("shm: activation signal write failed: %v", err)
	}
	return true, nil
}

func (a *ActivationRecord) triggerV1(nsec uint64) (bool, error) {
	pendingWas := atomic.AddUint32(a.pendingPtr(), ^uint32(0)) + 1
	if pendingWas != 1 {
		return false, nil
	}
	if !atomic.CompareAndSwapUint32(a.statusPtr(), uint32(StatusNotTriggered), uint32(StatusTriggered)) {
		return false, nil
	}
	volatileStore64(a.region.Bytes(), offSignalTime, nsec)
	if err := a.signal.Write(1); err != nil {
		a.log.Warnf("shm: activation signal write failed: %v", err)
	}
	return true, nil
}

// monotonicNsec returns CLOCK_MONOTONIC nanoseconds, the Go-native
// equivalent of the original's libc clock_gettime(CLOCK_MONOTONIC, ...)
// helper (original_source/crates/client/src/utils.rs), read directly via
// unix.ClockGettime since only the raw nanosecond count is needed on the
// wire, not a duration. It returns 0 if the clock cannot be read.
func monotonicNsec() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return ts.Nano()
}

func volatileLoad32(buf []byte, off int) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&buf[off])))
}

func volatileLoad64(buf []byte, off int) uint64 {
	return atomic.LoadUint64((*uint64)(unsafe.Pointer(&buf[off])))
}

func volatileStore64(buf []byte, off int, v uint64) {
	atomic.StoreUint64((*uint64)(unsafe.Pointer(&buf[off])), v)
}
