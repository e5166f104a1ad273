package node

import (
	"github.com/udoprog/livemix-go/ids"
	"github.com/udoprog/livemix-go/pod"
	"github.com/udoprog/livemix-go/shm"
)

// PeerActivation pairs a peer node id with its activation record (which
// carries the V0/V1 version it was constructed with), matching
// original_source/crates/client/src/activation.rs's PeerActivation.
type PeerActivation struct {
	PeerID uint32
	Record *shm.ActivationRecord
}

// ClientNode is the top-level per-node state the driver mutates as it
// processes ClientNode events and builds Update messages. Grounded on
// original_source/crates/client/src/client_node.rs's ClientNode struct.
type ClientNode struct {
	ID uint32

	// Session is a process-lifetime-unique tag (see the session package)
	// for this node. It is stored only; no logger or metric in this module
	// reads it. Empty until SetSession is called.
	Session string

	activation *shm.ActivationRecord
	peers      ids.Slab[PeerActivation]

	Ports *Ports

	Params *Parameters

	IOClock    IORegion
	IOControl  IORegion
	IOPosition IORegion

	modified bool
}

// NewClientNode constructs an empty node with the given local id, starting
// dirty: a brand-new node with no ports or parameters is still "modified"
// until the driver has flushed at least one Update for it.
func NewClientNode(id uint32) *ClientNode {
	return &ClientNode{
		ID:       id,
		Ports:    &Ports{},
		Params:   NewParameters(),
		modified: true,
	}
}

// SetSession attaches a session tag derived from the underlying
// connection (see session.FromConn).
func (n *ClientNode) SetSession(tag string) {
	n.Session = tag
}

// SetActivation installs this node's own activation record.
func (n *ClientNode) SetActivation(rec *shm.ActivationRecord) {
	n.activation = rec
}

// Activation returns this node's own activation record, or nil if unset.
func (n *ClientNode) Activation() *shm.ActivationRecord {
	return n.activation
}

// AddPeer allocates a slot for a peer's activation record and returns its
// slab key, for later lookup/removal.
func (n *ClientNode) AddPeer(peerID uint32, rec *shm.ActivationRecord) uint32 {
	return n.peers.Insert(PeerActivation{PeerID: peerID, Record: rec})
}

// Peer returns the peer activation stored at key.
func (n *ClientNode) Peer(key uint32) (PeerActivation, error) {
	p, ok := n.peers.Get(key)
	if !ok {
		return PeerActivation{}, ErrUnknownPeer
	}
	return p, nil
}

// RemovePeer frees the peer activation slot at key.
func (n *ClientNode) RemovePeer(key uint32) {
	n.peers.Remove(key)
}

// EachPeer calls fn for every currently-allocated peer activation.
func (n *ClientNode) EachPeer(fn func(key uint32, p PeerActivation)) {
	n.peers.Each(fn)
}

// BindIOClock, BindIOControl, BindIOPosition record which memory id backs
// each node-scope IO slot. These do not mark the node modified (spec
// §3.5/§4.6: fd/region binding is excluded from the dirty-bit rule).
func (n *ClientNode) BindIOClock(memID uint32)    { n.IOClock = IORegion{MemID: memID, Bound: true} }
func (n *ClientNode) BindIOControl(memID uint32)  { n.IOControl = IORegion{MemID: memID, Bound: true} }
func (n *ClientNode) BindIOPosition(memID uint32) { n.IOPosition = IORegion{MemID: memID, Bound: true} }

// InsertPort inserts a new port in the given direction and marks the node
// modified.
func (n *ClientNode) InsertPort(dir Direction, name string) (*Port, error) {
	p, err := n.Ports.Insert(dir, name)
	if err != nil {
		return nil, err
	}
	n.modified = true
	return p, nil
}

// SetParam sets a node-level parameter and marks the node modified, on
// top of whatever Parameters.Set already does to its own flag.
func (n *ClientNode) SetParam(key Param, value *pod.Value) {
	n.Params.Set(key, value)
	n.modified = true
}

// RemoveParam removes a node-level parameter and marks the node modified.
func (n *ClientNode) RemoveParam(key Param) {
	n.Params.Remove(key)
	n.modified = true
}

// Modified reports whether the node itself, its parameter table, or any
// of its ports have changed since the last TakeModified: the node's flag
// is the OR of its own flag and its ports'.
func (n *ClientNode) Modified() bool {
	return n.modified || n.Params.Modified() || n.Ports.AnyModified()
}

// TakeModified returns and clears the node's modified state together with
// its parameter table's and every port's.
func (n *ClientNode) TakeModified() bool {
	m := n.Modified()
	n.modified = false
	n.Params.TakeModified()
	n.Ports.TakeModified()
	return m
}
