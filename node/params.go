package node

import "github.com/udoprog/livemix-go/pod"

// Param identifies a parameter kind. The wire protocol's actual parameter
// ids are a domain-specific enumeration (format, props, io, ...); this
// package treats them as an opaque uint32 key, matching
// original_source/crates/client/src/parameters.rs's BTreeMap<Param, Entry>
// keyed by the same abstract notion.
type Param uint32

// paramEntry holds the ordered list of pod values stored for one Param key
// plus its accumulated READ/WRITE flags, mirroring parameters.rs's Entry.
type paramEntry struct {
	values []*pod.Value
	flags  ParamFlags
}

// Parameters is an ordered-by-insertion table of Param → values/flags,
// the same shape used at both node scope and port scope: a Param id maps
// to an ordered list of value-pods plus readable/writable flags.
type Parameters struct {
	order    []Param
	entries  map[Param]*paramEntry
	modified bool
}

// NewParameters constructs an empty parameter table.
func NewParameters() *Parameters {
	return &Parameters{entries: make(map[Param]*paramEntry)}
}

func (p *Parameters) entry(key Param) *paramEntry {
	e, ok := p.entries[key]
	if !ok {
		e = &paramEntry{}
		p.entries[key] = e
		p.order = append(p.order, key)
	}
	return e
}

// SetReadable ORs in the READ flag for key without touching its values.
func (p *Parameters) SetReadable(key Param) {
	p.entry(key).flags |= FlagReadable
	p.modified = true
}

// SetWritable ORs in the WRITE flag for key without touching its values.
func (p *Parameters) SetWritable(key Param) {
	p.entry(key).flags |= FlagWritable
	p.modified = true
}

// Set replaces the value list for key with a single value and marks it
// readable, matching parameters.rs's set().
func (p *Parameters) Set(key Param, value *pod.Value) {
	e := p.entry(key)
	e.values = []*pod.Value{value}
	e.flags |= FlagReadable
	p.modified = true
}

// Push appends value to key's list and marks it readable, matching
// parameters.rs's push().
func (p *Parameters) Push(key Param, value *pod.Value) {
	e := p.entry(key)
	e.values = append(e.values, value)
	e.flags |= FlagReadable
	p.modified = true
}

// Remove clears key's stored values and toggles off its READ flag (an XOR
// against a flag that is expected to already be set, per the Rust
// original's `flags ^= ParamFlags::READ` in parameters.rs's remove()), then
// marks the table modified.
func (p *Parameters) Remove(key Param) {
	e, ok := p.entries[key]
	if !ok {
		return
	}
	e.values = nil
	e.flags ^= FlagReadable
	p.modified = true
}

// Values returns the current value list for key, or nil if unset.
func (p *Parameters) Values(key Param) []*pod.Value {
	e, ok := p.entries[key]
	if !ok {
		return nil
	}
	return e.values
}

// Flags returns the current READ/WRITE flags for key.
func (p *Parameters) Flags(key Param) ParamFlags {
	e, ok := p.entries[key]
	if !ok {
		return 0
	}
	return e.flags
}

// Keys returns every Param that has ever been touched, in first-touch
// order.
func (p *Parameters) Keys() []Param {
	return append([]Param(nil), p.order...)
}

// Modified reports whether any Set/Push/Remove/SetReadable/SetWritable has
// happened since the last TakeModified.
func (p *Parameters) Modified() bool { return p.modified }

// TakeModified returns and clears the modified flag.
func (p *Parameters) TakeModified() bool {
	m := p.modified
	p.modified = false
	return m
}
