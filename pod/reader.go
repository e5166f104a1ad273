package pod

import "encoding/binary"

// Visitor receives the bytes of an unsized field (String, Bytes, Bitmap)
// from Reader.ReadBytes. Exactly one of VisitRef or VisitOwned is called:
// VisitRef when the reader's backing storage can be borrowed for the
// lifetime of the read (the common case, since a Reader wraps a slice that
// outlives the decode), VisitOwned when the bytes had to be copied into a
// temporary buffer. Implementations provide both methods; ByteVisitor below
// handles both uniformly by copying.
type Visitor interface {
	VisitRef(b []byte) error
	VisitOwned(b []byte) error
}

// ByteVisitor is a Visitor that copies the bytes it is given into Bytes,
// regardless of whether they were borrowed or owned. It is the fallback
// used when a caller does not need zero-copy semantics.
type ByteVisitor struct {
	Bytes []byte
}

func (v *ByteVisitor) VisitRef(b []byte) error {
	v.Bytes = append(v.Bytes[:0], b...)
	return nil
}

func (v *ByteVisitor) VisitOwned(b []byte) error {
	v.Bytes = append(v.Bytes[:0], b...)
	return nil
}

// RefVisitor is a Visitor that keeps the slice it is given without
// copying; if it is handed owned data it keeps that slice too and records
// that it was owned. DecodeString uses it to avoid allocating, relying on
// the reader's buffer outliving the result.
type RefVisitor struct {
	Bytes []byte
	owned bool
}

func (v *RefVisitor) VisitRef(b []byte) error {
	v.Bytes = b
	return nil
}

func (v *RefVisitor) VisitOwned(b []byte) error {
	v.Bytes = b
	v.owned = true
	return nil
}

// Reader is a positional, splittable cursor over a borrowed byte buffer. It
// never copies; every accessor either returns a sub-slice of the original
// buffer or hands bytes to a Visitor.
type Reader struct {
	buf []byte
	pos int
}

// NewReader constructs a Reader over buf starting at position 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.buf) - r.pos
}

// Pos returns the current cursor offset from the start of this reader's
// own buffer; a reader returned by Split starts again at 0.
func (r *Reader) Pos() int {
	return r.pos
}

func (r *Reader) require(n int) error {
	if r.Len() < n {
		return ErrBufferUnderflow
	}
	return nil
}

// Header reads the 8-byte (size, type) pod header without consuming
// padding.
func (r *Reader) Header() (size int, typ Type, err error) {
	if err := r.require(HeaderSize); err != nil {
		return 0, 0, err
	}
	size = int(binary.LittleEndian.Uint32(r.buf[r.pos:]))
	typ = Type(binary.LittleEndian.Uint32(r.buf[r.pos+4:]))
	r.pos += HeaderSize
	return size, typ, nil
}

// PeekHeader is Header without consuming the bytes.
func (r *Reader) PeekHeader() (size int, typ Type, err error) {
	if err := r.require(HeaderSize); err != nil {
		return 0, 0, err
	}
	size = int(binary.LittleEndian.Uint32(r.buf[r.pos:]))
	typ = Type(binary.LittleEndian.Uint32(r.buf[r.pos+4:]))
	return size, typ, nil
}

// ReadWords reads n little-endian u32 words, consuming exactly n*4 bytes
// (callers consume padding explicitly via the container cursors; raw word
// reads never skip padding themselves).
func (r *Reader) ReadWords(n int) ([]uint32, error) {
	nbytes := n * 4
	if err := r.require(nbytes); err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = binary.LittleEndian.Uint32(r.buf[r.pos+i*4:])
	}
	r.pos += nbytes
	return out, nil
}

// PeekWords is ReadWords without consuming.
func (r *Reader) PeekWords(n int) ([]uint32, error) {
	nbytes := n * 4
	if err := r.require(nbytes); err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = binary.LittleEndian.Uint32(r.buf[r.pos+i*4:])
	}
	return out, nil
}

// ReadU32 reads a single little-endian u32.
func (r *Reader) ReadU32() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadU64 reads a little-endian u64 stored as two u32 words.
func (r *Reader) ReadU64() (uint64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadBytes hands len bytes starting at the cursor to visitor and advances
// the cursor past them and their padding to the next 8-byte boundary. Since
// Reader always borrows from the original buffer, VisitRef is always called.
func (r *Reader) ReadBytes(length int, visitor Visitor) error {
	if err := r.require(length); err != nil {
		return err
	}
	b := r.buf[r.pos : r.pos+length]
	r.pos += length
	if err := visitor.VisitRef(b); err != nil {
		return err
	}
	return r.ConsumePadding(length)
}

// ConsumePadding advances the cursor past the zero padding that follows a
// field of the given unpadded length, up to the next Align boundary.
func (r *Reader) ConsumePadding(unpaddedLen int) error {
	pad := padded(unpaddedLen) - unpaddedLen
	if pad == 0 {
		return nil
	}
	if err := r.require(pad); err != nil {
		return err
	}
	r.pos += pad
	return nil
}

// Split returns a sub-reader limited to the next n bytes and advances this
// reader past them (including their own internal content — Split does not
// add padding of its own; callers that need padding call ConsumePadding
// separately, matching how container bodies already include their padding
// in their declared size).
func (r *Reader) Split(n int) (*Reader, error) {
	if err := r.require(n); err != nil {
		return nil, err
	}
	sub := &Reader{buf: r.buf[r.pos : r.pos+n]}
	r.pos += n
	return sub, nil
}

// Remaining returns the unread tail of the buffer without consuming it.
func (r *Reader) Remaining() []byte {
	return r.buf[r.pos:]
}

// Skip advances the cursor by n bytes without interpreting them.
func (r *Reader) Skip(n int) error {
	if err := r.require(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}
