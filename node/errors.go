package node

import "errors"

// ErrUnknownPort is returned when a port id is referenced that does not
// exist in the given direction's vector.
var ErrUnknownPort = errors.New("node: unknown port id")

// ErrUnknownPeer is returned when a peer-activation slot id is referenced
// that is not currently allocated.
var ErrUnknownPeer = errors.New("node: unknown peer activation id")
