package pod

import (
	"math"
	"unicode/utf8"
)

// Rectangle is the (width, height) pair carried by a Rectangle pod.
type Rectangle struct {
	Width, Height uint32
}

// Fraction is the (num, denom) pair carried by a Fraction pod.
type Fraction struct {
	Num, Denom uint32
}

// Pointer is the (type, address) pair carried by a Pointer pod. The
// reserved word from the wire layout is not exposed; it is always written
// as zero.
type Pointer struct {
	PType   uint32
	Address uint64
}

func writeHeader(w Writer, size int, typ Type) error {
	if err := putU32(w, uint32(size)); err != nil {
		return err
	}
	return putU32(w, uint32(typ))
}

// EncodeNone writes a None pod (empty body).
func EncodeNone(w Writer) error {
	return writeHeader(w, 0, TypeNone)
}

// EncodeBool writes a Bool pod.
func EncodeBool(w Writer, v bool) error {
	if err := writeHeader(w, 4, TypeBool); err != nil {
		return err
	}
	var word uint32
	if v {
		word = 1
	}
	if err := putU32(w, word); err != nil {
		return err
	}
	return w.Pad(Align)
}

// EncodeID writes an Id pod.
func EncodeID(w Writer, v uint32) error {
	if err := writeHeader(w, 4, TypeID); err != nil {
		return err
	}
	if err := putU32(w, v); err != nil {
		return err
	}
	return w.Pad(Align)
}

// EncodeInt writes an Int pod.
func EncodeInt(w Writer, v int32) error {
	if err := writeHeader(w, 4, TypeInt); err != nil {
		return err
	}
	if err := putU32(w, uint32(v)); err != nil {
		return err
	}
	return w.Pad(Align)
}

// EncodeLong writes a Long pod.
func EncodeLong(w Writer, v int64) error {
	if err := writeHeader(w, 8, TypeLong); err != nil {
		return err
	}
	return putU64(w, uint64(v))
}

// EncodeFloat writes a Float pod.
func EncodeFloat(w Writer, v float32) error {
	if err := writeHeader(w, 4, TypeFloat); err != nil {
		return err
	}
	if err := putU32(w, math.Float32bits(v)); err != nil {
		return err
	}
	return w.Pad(Align)
}

// EncodeDouble writes a Double pod.
func EncodeDouble(w Writer, v float64) error {
	if err := writeHeader(w, 8, TypeDouble); err != nil {
		return err
	}
	return putU64(w, math.Float64bits(v))
}

// EncodeString writes a NUL-terminated String pod. It fails with
// NullContainingString if s contains an embedded NUL.
func EncodeString(w Writer, s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return ErrNullContainingString
		}
	}
	size := len(s) + 1
	if err := writeHeader(w, size, TypeString); err != nil {
		return err
	}
	if err := w.WriteBytes([]byte(s)); err != nil {
		return err
	}
	if err := w.WriteBytes([]byte{0}); err != nil {
		return err
	}
	return w.Pad(Align)
}

// EncodeBytes writes a raw Bytes pod.
func EncodeBytes(w Writer, b []byte) error {
	if err := writeHeader(w, len(b), TypeBytes); err != nil {
		return err
	}
	if err := w.WriteBytes(b); err != nil {
		return err
	}
	return w.Pad(Align)
}

// EncodeRectangle writes a Rectangle pod.
func EncodeRectangle(w Writer, v Rectangle) error {
	if err := writeHeader(w, 8, TypeRectangle); err != nil {
		return err
	}
	if err := putU32(w, v.Width); err != nil {
		return err
	}
	return putU32(w, v.Height)
}

// EncodeFraction writes a Fraction pod.
func EncodeFraction(w Writer, v Fraction) error {
	if err := writeHeader(w, 8, TypeFraction); err != nil {
		return err
	}
	if err := putU32(w, v.Num); err != nil {
		return err
	}
	return putU32(w, v.Denom)
}

// EncodeBitmap writes a raw Bitmap pod.
func EncodeBitmap(w Writer, bits []byte) error {
	if err := writeHeader(w, len(bits), TypeBitmap); err != nil {
		return err
	}
	if err := w.WriteBytes(bits); err != nil {
		return err
	}
	return w.Pad(Align)
}

// EncodePointer writes a Pointer pod.
func EncodePointer(w Writer, v Pointer) error {
	if err := writeHeader(w, 16, TypePointer); err != nil {
		return err
	}
	if err := putU32(w, v.PType); err != nil {
		return err
	}
	if err := putU32(w, 0); err != nil {
		return err
	}
	return putU64(w, v.Address)
}

// EncodeFd writes an Fd pod: a 64-bit index into the frame's out-of-band fd
// list.
func EncodeFd(w Writer, index int64) error {
	if err := writeHeader(w, 8, TypeFd); err != nil {
		return err
	}
	return putU64(w, uint64(index))
}

// --- Decoding ---

// DecodeBool reads a Bool pod body (the header must already be consumed by
// the caller and checked to be TypeBool) and its trailing pad to the next
// Align boundary.
func DecodeBool(r *Reader) (bool, error) {
	v, err := r.ReadU32()
	if err != nil {
		return false, err
	}
	if err := r.ConsumePadding(4); err != nil {
		return false, err
	}
	return v != 0, nil
}

// DecodeID reads an Id pod body and its trailing pad.
func DecodeID(r *Reader) (uint32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	if err := r.ConsumePadding(4); err != nil {
		return 0, err
	}
	return v, nil
}

// DecodeInt reads an Int pod body and its trailing pad.
func DecodeInt(r *Reader) (int32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	if err := r.ConsumePadding(4); err != nil {
		return 0, err
	}
	return int32(v), nil
}

// DecodeLong reads a Long pod body.
func DecodeLong(r *Reader) (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

// DecodeFloat reads a Float pod body and its trailing pad.
func DecodeFloat(r *Reader) (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	if err := r.ConsumePadding(4); err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// DecodeDouble reads a Double pod body.
func DecodeDouble(r *Reader) (float64, error) {
	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// DecodeString reads a NUL-terminated String pod body of the given total
// (padded-excluded) size, validating UTF-8 and the trailing NUL.
func DecodeString(r *Reader, size int) (string, error) {
	if size == 0 {
		return "", ErrNonTerminatedString
	}
	var v RefVisitor
	if err := r.ReadBytes(size, &v); err != nil {
		return "", err
	}
	if v.Bytes[len(v.Bytes)-1] != 0 {
		return "", ErrNonTerminatedString
	}
	body := v.Bytes[:len(v.Bytes)-1]
	for _, b := range body {
		if b == 0 {
			return "", ErrNullContainingString
		}
	}
	if !utf8.Valid(body) {
		return "", ErrNotUtf8
	}
	return string(body), nil
}

// DecodeBytes reads a raw Bytes pod body of the given size.
func DecodeBytes(r *Reader, size int) ([]byte, error) {
	var v ByteVisitor
	if err := r.ReadBytes(size, &v); err != nil {
		return nil, err
	}
	return v.Bytes, nil
}

// DecodeRectangle reads a Rectangle pod body.
func DecodeRectangle(r *Reader) (Rectangle, error) {
	words, err := r.ReadWords(2)
	if err != nil {
		return Rectangle{}, err
	}
	return Rectangle{Width: words[0], Height: words[1]}, nil
}

// DecodeFraction reads a Fraction pod body.
func DecodeFraction(r *Reader) (Fraction, error) {
	words, err := r.ReadWords(2)
	if err != nil {
		return Fraction{}, err
	}
	return Fraction{Num: words[0], Denom: words[1]}, nil
}

// DecodeBitmap reads a raw Bitmap pod body of the given size.
func DecodeBitmap(r *Reader, size int) ([]byte, error) {
	return DecodeBytes(r, size)
}

// DecodePointer reads a Pointer pod body.
func DecodePointer(r *Reader) (Pointer, error) {
	ptype, err := r.ReadU32()
	if err != nil {
		return Pointer{}, err
	}
	if _, err := r.ReadU32(); err != nil { // reserved
		return Pointer{}, err
	}
	addr, err := r.ReadU64()
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{PType: ptype, Address: addr}, nil
}

// DecodeFd reads an Fd pod body, returning the index into the frame's fd
// list.
func DecodeFd(r *Reader) (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}
