// Package shm implements the memory-file table, mmap'd regions, and the
// shared-memory activation-record protocol used to synchronize the client
// with the server's graph cycle. Grounded on
// original_source/crates/client/src/memory.rs (the slab-of-files,
// dense-id-map design) and original_source/crates/client/src/ptr.rs (the
// atomic/volatile field-access discipline for activation.go), translated
// from Rust raw pointers to Go's sync/atomic plus explicit volatile-style
// reads backed by the same mmap'd byte slice, read via unsafe.Pointer the
// way kernel structures are read out of raw syscall buffers elsewhere in
// this codebase.
package shm

import (
	"golang.org/x/sys/unix"

	"github.com/udoprog/livemix-go/ids"
)

// File is one entry of the memory table: an owned fd of a given data type,
// kept alive by a reference count.
type File struct {
	ID    uint32
	Type  uint32
	Fd    int
	Flags uint32
	users int
}

// Region is a live mapping of a File, returned by Table.Map.
type Region struct {
	fileIndex uint32
	table     *Table
	Size      int
	data      []byte
	dropped   bool
}

// Bytes returns the mapped memory. It must not be retained past Drop.
func (r *Region) Bytes() []byte { return r.data }

// Drop decrements the backing file's refcount, closing its fd if it was
// the last reference, and unmaps this region. Calling Drop twice is a
// no-op.
func (r *Region) Drop() error {
	if r.dropped {
		return nil
	}
	r.dropped = true
	if err := unix.Munmap(r.data); err != nil {
		return err
	}
	return r.table.release(r.fileIndex)
}

// Table is the memory-file slab plus the public id→file-index map: an
// intrusive slab keyed by a stable integer, with a dense id→index hash on
// top.
type Table struct {
	files ids.Slab[*File]
	byID  map[uint32]uint32
}

// NewTable constructs an empty memory table.
func NewTable() *Table {
	return &Table{byID: make(map[uint32]uint32)}
}

// Insert allocates a slab slot for (id, type, fd, flags) with refcount 1,
// replacing (and releasing) any previous entry registered under the same
// id.
func (t *Table) Insert(id uint32, dataType uint32, fd int, flags uint32) uint32 {
	if oldIdx, ok := t.byID[id]; ok {
		t.release(oldIdx)
	}
	idx := t.files.Insert(&File{ID: id, Type: dataType, Fd: fd, Flags: flags, users: 1})
	t.byID[id] = idx
	return idx
}

// Remove unbinds id from the map and releases the reference Insert gave the
// binding, without forcing existing regions to unmap; they continue holding
// their own refcount on the underlying File.
func (t *Table) Remove(id uint32) {
	idx, ok := t.byID[id]
	if !ok {
		return
	}
	delete(t.byID, id)
	t.release(idx)
}

// Map mmaps size bytes at offset from the file registered under id,
// bumping its refcount, and returns an owning Region.
func (t *Table) Map(id uint32, size int, offset int64) (*Region, error) {
	idx, ok := t.byID[id]
	if !ok {
		return nil, ErrUnknownMemoryID
	}
	f, ok := t.files.Get(idx)
	if !ok {
		return nil, ErrUnknownMemoryID
	}
	data, err := unix.Mmap(f.Fd, offset, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	if fp := t.files.GetMut(idx); fp != nil {
		(*fp).users++
	}
	return &Region{fileIndex: idx, table: t, Size: size, data: data}, nil
}

// release decrements the refcount of the file at idx, closing its fd and
// removing the slot when it reaches zero.
func (t *Table) release(idx uint32) error {
	fp := t.files.GetMut(idx)
	if fp == nil {
		return nil
	}
	(*fp).users--
	if (*fp).users > 0 {
		return nil
	}
	fd := (*fp).Fd
	t.files.Remove(idx)
	return unix.Close(fd)
}
