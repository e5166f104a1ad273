package shm

import (
	"math/bits"
)

// IdSet is a 128-bit bitmap of small node ids, cheap enough to copy and
// merge per cycle — large enough for typical fan-outs. Built on two plain
// uint64 words rather than a third-party bitset package because no bitset
// library appears anywhere in the example pack and a fixed 128-bit set is
// exactly two words of stdlib arithmetic, not a case that benefits from a general
// growable-bitset dependency.
type IdSet struct {
	lo, hi uint64
}

// Set marks id as present. Ids ≥ 128 are silently ignored, matching "cheap
// bitmap for typical fan-outs" rather than an unbounded set.
func (s *IdSet) Set(id uint32) {
	if id < 64 {
		s.lo |= 1 << id
	} else if id < 128 {
		s.hi |= 1 << (id - 64)
	}
}

// Has reports whether id is present.
func (s IdSet) Has(id uint32) bool {
	if id < 64 {
		return s.lo&(1<<id) != 0
	} else if id < 128 {
		return s.hi&(1<<(id-64)) != 0
	}
	return false
}

// Count returns the number of set ids.
func (s IdSet) Count() int {
	return bits.OnesCount64(s.lo) + bits.OnesCount64(s.hi)
}

// Merge ORs other into s in place.
func (s *IdSet) Merge(other IdSet) {
	s.lo |= other.lo
	s.hi |= other.hi
}

// Reset clears the set.
func (s *IdSet) Reset() {
	s.lo, s.hi = 0, 0
}

// Stats aggregates per-cycle outcomes across the peer activations a driver
// manages, mirroring original_source/crates/client/src/stats.rs one field
// at a time.
type Stats struct {
	NoOutputBuffer int
	NoInputBuffer  int

	NonReady    int
	NonReadySet IdSet

	NotSelfTriggered int

	SignalError    int
	SignalErrorSet IdSet

	SignalOK    int
	SignalOKSet IdSet

	TimingSumNsec uint64
	TimingCount   int
}

// Merge adds other's counters into s and resets other, the Go equivalent of
// the Rust original's mem::take-based merge.
func (s *Stats) Merge(other *Stats) {
	s.NoOutputBuffer += other.NoOutputBuffer
	s.NoInputBuffer += other.NoInputBuffer
	s.NonReady += other.NonReady
	s.NonReadySet.Merge(other.NonReadySet)
	s.NotSelfTriggered += other.NotSelfTriggered
	s.SignalError += other.SignalError
	s.SignalErrorSet.Merge(other.SignalErrorSet)
	s.SignalOK += other.SignalOK
	s.SignalOKSet.Merge(other.SignalOKSet)
	s.TimingSumNsec += other.TimingSumNsec
	s.TimingCount += other.TimingCount
	*other = Stats{}
}

// Reporter is the logging surface Report writes to; satisfied by
// *logrus.Entry.
type Reporter interface {
	Warnf(format string, args ...interface{})
}

// Report emits one warning line per non-zero counter group, then resets
// them, mirroring the Rust original's tracing::warn!-per-group behavior in
// stats.rs's report().
func (s *Stats) Report(log Reporter) {
	if s.NoOutputBuffer > 0 {
		log.Warnf("shm: %d cycles with no output buffer", s.NoOutputBuffer)
	}
	if s.NoInputBuffer > 0 {
		log.Warnf("shm: %d cycles with no input buffer", s.NoInputBuffer)
	}
	if s.NonReady > 0 {
		log.Warnf("shm: %d non-ready peers (%d distinct nodes)", s.NonReady, s.NonReadySet.Count())
	}
	if s.NotSelfTriggered > 0 {
		log.Warnf("shm: %d cycles not self-triggered", s.NotSelfTriggered)
	}
	if s.SignalError > 0 {
		log.Warnf("shm: %d signal errors (%d distinct nodes)", s.SignalError, s.SignalErrorSet.Count())
	}
	if s.SignalOK > 0 {
		log.Warnf("shm: %d signals ok (%d distinct nodes)", s.SignalOK, s.SignalOKSet.Count())
	}
	*s = Stats{}
}
