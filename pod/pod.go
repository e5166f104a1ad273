// Package pod implements the PipeWire POD (Plain Old Data) wire codec: a
// self-describing, 8-byte-aligned binary value format used for every
// non-trivial message payload in the protocol.
//
// Every pod on the wire is an 8-byte header (size, type) followed by a body
// whose layout depends on type. The package is split the way
// m-lab/tcp-info's netlink/inetdiag packages are: small typed errors
// declared at package scope, raw byte-oriented parsing helpers, and a
// higher-level codec built on top of them.
package pod

import "fmt"

// Type is the 32-bit tag that precedes every pod body.
type Type uint32

// The well-known pod types, matching the wire's type-tag space.
const (
	TypeNone      Type = 1
	TypeBool      Type = 2
	TypeID        Type = 3
	TypeInt       Type = 4
	TypeLong      Type = 5
	TypeFloat     Type = 6
	TypeDouble    Type = 7
	TypeString    Type = 8
	TypeBytes     Type = 9
	TypeRectangle Type = 10
	TypeFraction  Type = 11
	TypeBitmap    Type = 12
	TypeArray     Type = 13
	TypeStruct    Type = 14
	TypeObject    Type = 15
	TypeSequence  Type = 16
	TypePointer   Type = 17
	TypeFd        Type = 18
	TypeChoice    Type = 19
)

var typeNames = map[Type]string{
	TypeNone:      "None",
	TypeBool:      "Bool",
	TypeID:        "Id",
	TypeInt:       "Int",
	TypeLong:      "Long",
	TypeFloat:     "Float",
	TypeDouble:    "Double",
	TypeString:    "String",
	TypeBytes:     "Bytes",
	TypeRectangle: "Rectangle",
	TypeFraction:  "Fraction",
	TypeBitmap:    "Bitmap",
	TypeArray:     "Array",
	TypeStruct:    "Struct",
	TypeObject:    "Object",
	TypeSequence:  "Sequence",
	TypePointer:   "Pointer",
	TypeFd:        "Fd",
	TypeChoice:    "Choice",
}

// String renders the type the way m-lab/tcp-info's tcp.State does,
// falling back to a numbered placeholder for anything unrecognized.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint32(t))
}

// FixedSize returns the fixed body size of types whose size does not depend
// on their content, and false for the unsized types (String, Bytes, Bitmap,
// Array, Struct, Object, Sequence, Choice).
func (t Type) FixedSize() (int, bool) {
	switch t {
	case TypeNone:
		return 0, true
	case TypeBool, TypeID, TypeInt, TypeFloat:
		return 4, true
	case TypeLong, TypeDouble, TypeRectangle, TypeFraction:
		return 8, true
	case TypePointer:
		return 16, true
	case TypeFd:
		return 8, true
	default:
		return 0, false
	}
}

// ChoiceType selects the interpretation of a Choice pod's children.
type ChoiceType uint32

// The choice kinds.
const (
	ChoiceNone  ChoiceType = 0
	ChoiceRange ChoiceType = 1
	ChoiceStep  ChoiceType = 2
	ChoiceEnum  ChoiceType = 3
	ChoiceFlags ChoiceType = 4
)

func (c ChoiceType) String() string {
	switch c {
	case ChoiceNone:
		return "None"
	case ChoiceRange:
		return "Range"
	case ChoiceStep:
		return "Step"
	case ChoiceEnum:
		return "Enum"
	case ChoiceFlags:
		return "Flags"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(c))
	}
}

// HeaderSize is the size in bytes of a pod header: a size word and a type
// word.
const HeaderSize = 8

// Align is the wire alignment boundary. Every pod, and every field inside a
// Struct, begins on a multiple of Align bytes from its container.
const Align = 8

// padded rounds n up to the next multiple of Align.
func padded(n int) int {
	return (n + Align - 1) &^ (Align - 1)
}
