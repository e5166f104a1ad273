package node

// IORegion is an opaque binding to a mapped IO region (clock, position,
// control, buffers); the actual mapping lives in the shm package, this
// package only tracks which memory id is currently bound for each slot.
type IORegion struct {
	MemID uint32
	Bound bool
}

// Port mirrors the client-node structure at port scope: its own parameter
// table, buffer block, IO region bindings, and modified bit. Grounded on
// original_source/crates/client/src/ports.rs's Port<B>.
type Port struct {
	ID        uint32
	Direction Direction
	Name      string

	Params *Parameters

	Buffers *Buffers

	IOClock    IORegion
	IOPosition IORegion
	IOBuffers  IORegion

	modified bool
}

func newPort(id uint32, dir Direction, name string) *Port {
	return &Port{ID: id, Direction: dir, Name: name, Params: NewParameters()}
}

// SetBuffers replaces the port's buffer block, returning the previous one
// (nil if there wasn't one).
func (p *Port) SetBuffers(b *Buffers) *Buffers {
	prev := p.Buffers
	p.Buffers = b
	p.modified = true
	return prev
}

// BindIOClock, BindIOPosition, BindIOBuffers record which memory id backs
// each IO slot. Binding an IO region does not mark the node or port
// modified — parameter, buffer (SetBuffers) and port-topology changes do.
func (p *Port) BindIOClock(memID uint32)    { p.IOClock = IORegion{MemID: memID, Bound: true} }
func (p *Port) BindIOPosition(memID uint32) { p.IOPosition = IORegion{MemID: memID, Bound: true} }
func (p *Port) BindIOBuffers(memID uint32)  { p.IOBuffers = IORegion{MemID: memID, Bound: true} }

// Modified reports whether this port's own state or its Params table has
// changed since the last TakeModified.
func (p *Port) Modified() bool {
	return p.modified || p.Params.Modified()
}

// TakeModified returns and clears this port's modified state, including
// its parameter table's.
func (p *Port) TakeModified() bool {
	m := p.Modified()
	p.modified = false
	p.Params.TakeModified()
	return m
}

// Ports holds the ordered, per-direction port vectors of a client node.
// Grounded on original_source/crates/client/src/ports.rs's Ports struct.
type Ports struct {
	input  []*Port
	output []*Port
}

// Insert creates a new port in the given direction, assigning it an id
// equal to its insertion index within that direction — ports are ordered
// per direction with ids assigned independently for each direction. It
// returns pod.ErrInvalidDirection for anything but Input/Output.
func (ps *Ports) Insert(dir Direction, name string) (*Port, error) {
	if err := checkDirection(dir); err != nil {
		return nil, err
	}
	vec := ps.directionSlice(dir)
	port := newPort(uint32(len(*vec)), dir, name)
	*vec = append(*vec, port)
	return port, nil
}

// Get returns the port at id within dir.
func (ps *Ports) Get(dir Direction, id uint32) (*Port, error) {
	if err := checkDirection(dir); err != nil {
		return nil, err
	}
	vec := *ps.directionSlice(dir)
	if int(id) >= len(vec) {
		return nil, ErrUnknownPort
	}
	return vec[id], nil
}

// All returns every port in dir, in insertion order.
func (ps *Ports) All(dir Direction) ([]*Port, error) {
	if err := checkDirection(dir); err != nil {
		return nil, err
	}
	return append([]*Port(nil), *ps.directionSlice(dir)...), nil
}

func (ps *Ports) directionSlice(dir Direction) *[]*Port {
	if dir == Input {
		return &ps.input
	}
	return &ps.output
}

// AnyModified reports whether any port in either direction is modified.
func (ps *Ports) AnyModified() bool {
	for _, p := range ps.input {
		if p.Modified() {
			return true
		}
	}
	for _, p := range ps.output {
		if p.Modified() {
			return true
		}
	}
	return false
}

// TakeModified clears every port's modified state and reports whether any
// of them had been set.
func (ps *Ports) TakeModified() bool {
	var any bool
	for _, p := range ps.input {
		if p.TakeModified() {
			any = true
		}
	}
	for _, p := range ps.output {
		if p.TakeModified() {
			any = true
		}
	}
	return any
}
