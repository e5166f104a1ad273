// Package node implements the client-node state machine: ports ordered per
// direction, a parameter table with READ/WRITE flags, buffer blocks, IO
// region bindings, and the modified dirty-bit propagation a driver uses to
// decide when to flush an Update message. Grounded on
// original_source/crates/client/src/client_node.rs and
// original_source/crates/client/src/ports.rs, translated from the Rust
// Slab/BTreeMap-based state into Go slices and maps following the
// plain-struct-plus-map style m-lab/tcp-info's cache/cache.go uses for its
// own map[uint64]*inetdiag.ParsedMessage connection table.
package node

import "github.com/udoprog/livemix-go/pod"

// Direction is a port's data-flow direction. Any value other than
// Input/Output is a programming error that must be surfaced, not silently
// mapped, so lookups on an invalid direction return
// pod.ErrInvalidDirection rather than panicking.
type Direction int

// The two valid directions.
const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "Input"
	case Output:
		return "Output"
	default:
		return "Invalid"
	}
}

func (d Direction) valid() bool {
	return d == Input || d == Output
}

// checkDirection returns pod.ErrInvalidDirection for anything but
// Input/Output.
func checkDirection(d Direction) error {
	if !d.valid() {
		return pod.ErrInvalidDirection
	}
	return nil
}

// ParamFlags mirrors pod.ParamFlags for the READ/WRITE bits carried per
// parameter, re-exported here so callers of this package don't need to
// import pod just for the flag constants.
type ParamFlags = pod.ParamFlags

// The two flag bits.
const (
	FlagReadable = pod.FlagReadable
	FlagWritable = pod.FlagWritable
)
