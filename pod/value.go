package pod

// Value is a dynamic, type-tagged representation of any pod, used where the
// shape of a message is not known until runtime: object properties read
// off the wire, generic logging, and the round-trip tests in this package.
// Exactly one field is meaningful, selected by Type.
type Value struct {
	Type Type

	Bool      bool
	ID        uint32
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	Str       string
	Bytes     []byte
	Rectangle Rectangle
	Fraction  Fraction
	Bitmap    []byte
	Pointer   Pointer
	Fd        int64

	Array    *ArrayValue
	Struct   *StructValue
	Object   *ObjectValue
	Sequence *SequenceValue
	Choice   *ChoiceValue
}

// ArrayValue is the decoded form of an Array pod.
type ArrayValue struct {
	ChildType Type
	ChildSize int
	Elements  [][]byte
}

// StructValue is the decoded form of a Struct pod.
type StructValue struct {
	Fields []*Value
}

// Property is one key/flags/value entry of an Object pod.
type Property struct {
	Key   uint32
	Flags uint32
	Value *Value
}

// ObjectValue is the decoded form of an Object pod.
type ObjectValue struct {
	ObjType    uint32
	ObjID      uint32
	Properties []Property
}

// Control is one offset/type/value entry of a Sequence pod.
type Control struct {
	Offset uint32
	Type   uint32
	Value  *Value
}

// SequenceValue is the decoded form of a Sequence pod.
type SequenceValue struct {
	Unit     uint32
	Controls []Control
}

// ChoiceValue is the decoded form of a Choice pod.
type ChoiceValue struct {
	ChoiceType ChoiceType
	ChildType  Type
	ChildSize  int
	Elements   [][]byte
}

// EncodeValue writes v to w in full, including its own header.
func EncodeValue(w Writer, v *Value) error {
	switch v.Type {
	case TypeNone:
		return EncodeNone(w)
	case TypeBool:
		return EncodeBool(w, v.Bool)
	case TypeID:
		return EncodeID(w, v.ID)
	case TypeInt:
		return EncodeInt(w, v.Int)
	case TypeLong:
		return EncodeLong(w, v.Long)
	case TypeFloat:
		return EncodeFloat(w, v.Float)
	case TypeDouble:
		return EncodeDouble(w, v.Double)
	case TypeString:
		return EncodeString(w, v.Str)
	case TypeBytes:
		return EncodeBytes(w, v.Bytes)
	case TypeRectangle:
		return EncodeRectangle(w, v.Rectangle)
	case TypeFraction:
		return EncodeFraction(w, v.Fraction)
	case TypeBitmap:
		return EncodeBitmap(w, v.Bitmap)
	case TypePointer:
		return EncodePointer(w, v.Pointer)
	case TypeFd:
		return EncodeFd(w, v.Fd)
	case TypeArray:
		return encodeArrayValue(w, v.Array)
	case TypeStruct:
		return encodeStructValue(w, v.Struct)
	case TypeObject:
		return encodeObjectValue(w, v.Object)
	case TypeSequence:
		return encodeSequenceValue(w, v.Sequence)
	case TypeChoice:
		return encodeChoiceValue(w, v.Choice)
	default:
		return newErr(Expected, "unknown value type")
	}
}

func encodeArrayValue(w Writer, a *ArrayValue) error {
	b, err := BeginArray(w, a.ChildType, a.ChildSize)
	if err != nil {
		return err
	}
	for _, elem := range a.Elements {
		if err := b.PushBytes(elem); err != nil {
			return err
		}
	}
	return b.Close()
}

func encodeStructValue(w Writer, s *StructValue) error {
	b, err := BeginStruct(w)
	if err != nil {
		return err
	}
	for _, f := range s.Fields {
		if err := EncodeValue(b.Writer(), f); err != nil {
			return err
		}
	}
	return b.Close()
}

func encodeObjectValue(w Writer, o *ObjectValue) error {
	b, err := BeginObject(w, o.ObjType, o.ObjID)
	if err != nil {
		return err
	}
	for _, p := range o.Properties {
		if err := b.Property(p.Key, p.Flags); err != nil {
			return err
		}
		if err := EncodeValue(b.Writer(), p.Value); err != nil {
			return err
		}
	}
	return b.Close()
}

func encodeSequenceValue(w Writer, s *SequenceValue) error {
	b, err := BeginSequence(w, s.Unit)
	if err != nil {
		return err
	}
	for _, c := range s.Controls {
		if err := b.Control(c.Offset, c.Type); err != nil {
			return err
		}
		if err := EncodeValue(b.Writer(), c.Value); err != nil {
			return err
		}
	}
	return b.Close()
}

func encodeChoiceValue(w Writer, c *ChoiceValue) error {
	b, err := BeginChoice(w, c.ChoiceType, c.ChildType, c.ChildSize)
	if err != nil {
		return err
	}
	for _, elem := range c.Elements {
		if err := b.PushBytes(elem); err != nil {
			return err
		}
	}
	return b.Close()
}

// DecodeValue reads one pod (header included) from r into a Value tree.
func DecodeValue(r *Reader) (*Value, error) {
	size, typ, err := r.PeekHeader()
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeNone:
		if _, _, err := r.Header(); err != nil {
			return nil, err
		}
		return &Value{Type: TypeNone}, nil
	case TypeBool:
		consumeScalarHeader(r)
		v, err := DecodeBool(r)
		return &Value{Type: TypeBool, Bool: v}, err
	case TypeID:
		consumeScalarHeader(r)
		v, err := DecodeID(r)
		return &Value{Type: TypeID, ID: v}, err
	case TypeInt:
		consumeScalarHeader(r)
		v, err := DecodeInt(r)
		return &Value{Type: TypeInt, Int: v}, err
	case TypeLong:
		consumeScalarHeader(r)
		v, err := DecodeLong(r)
		return &Value{Type: TypeLong, Long: v}, err
	case TypeFloat:
		consumeScalarHeader(r)
		v, err := DecodeFloat(r)
		return &Value{Type: TypeFloat, Float: v}, err
	case TypeDouble:
		consumeScalarHeader(r)
		v, err := DecodeDouble(r)
		return &Value{Type: TypeDouble, Double: v}, err
	case TypeString:
		if _, _, err := r.Header(); err != nil {
			return nil, err
		}
		s, err := DecodeString(r, size)
		return &Value{Type: TypeString, Str: s}, err
	case TypeBytes:
		if _, _, err := r.Header(); err != nil {
			return nil, err
		}
		b, err := DecodeBytes(r, size)
		return &Value{Type: TypeBytes, Bytes: b}, err
	case TypeRectangle:
		consumeScalarHeader(r)
		v, err := DecodeRectangle(r)
		return &Value{Type: TypeRectangle, Rectangle: v}, err
	case TypeFraction:
		consumeScalarHeader(r)
		v, err := DecodeFraction(r)
		return &Value{Type: TypeFraction, Fraction: v}, err
	case TypeBitmap:
		if _, _, err := r.Header(); err != nil {
			return nil, err
		}
		b, err := DecodeBitmap(r, size)
		return &Value{Type: TypeBitmap, Bitmap: b}, err
	case TypePointer:
		consumeScalarHeader(r)
		v, err := DecodePointer(r)
		return &Value{Type: TypePointer, Pointer: v}, err
	case TypeFd:
		consumeScalarHeader(r)
		v, err := DecodeFd(r)
		return &Value{Type: TypeFd, Fd: v}, err
	case TypeArray:
		a, err := decodeArrayValue(r)
		return &Value{Type: TypeArray, Array: a}, err
	case TypeStruct:
		s, err := decodeStructValue(r)
		return &Value{Type: TypeStruct, Struct: s}, err
	case TypeObject:
		o, err := decodeObjectValue(r)
		return &Value{Type: TypeObject, Object: o}, err
	case TypeSequence:
		s, err := decodeSequenceValue(r)
		return &Value{Type: TypeSequence, Sequence: s}, err
	case TypeChoice:
		c, err := decodeChoiceValue(r)
		return &Value{Type: TypeChoice, Choice: c}, err
	default:
		return nil, newErr(Expected, "unknown wire type")
	}
}

// consumeScalarHeader discards the header already validated by PeekHeader
// for a fixed-size scalar type.
func consumeScalarHeader(r *Reader) {
	_, _, _ = r.Header()
}

func decodeArrayValue(r *Reader) (*ArrayValue, error) {
	c, err := ReadArray(r)
	if err != nil {
		return nil, err
	}
	out := &ArrayValue{ChildType: c.ChildType, ChildSize: c.ChildSize()}
	for {
		var v ByteVisitor
		ok, err := c.Next(&v)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out.Elements = append(out.Elements, v.Bytes)
	}
	return out, nil
}

func decodeStructValue(r *Reader) (*StructValue, error) {
	c, err := ReadStruct(r)
	if err != nil {
		return nil, err
	}
	out := &StructValue{}
	for !c.Done() {
		field, err := DecodeValue(c.Reader())
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, field)
	}
	return out, nil
}

func decodeObjectValue(r *Reader) (*ObjectValue, error) {
	c, err := ReadObject(r)
	if err != nil {
		return nil, err
	}
	out := &ObjectValue{ObjType: c.ObjType, ObjID: c.ObjID}
	for {
		key, flags, ok, err := c.NextProperty()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		val, err := DecodeValue(c.Reader())
		if err != nil {
			return nil, err
		}
		out.Properties = append(out.Properties, Property{Key: key, Flags: flags, Value: val})
	}
	return out, nil
}

func decodeSequenceValue(r *Reader) (*SequenceValue, error) {
	c, err := ReadSequence(r)
	if err != nil {
		return nil, err
	}
	out := &SequenceValue{Unit: c.Unit}
	for {
		offset, ctrlType, ok, err := c.NextControl()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		val, err := DecodeValue(c.Reader())
		if err != nil {
			return nil, err
		}
		out.Controls = append(out.Controls, Control{Offset: offset, Type: ctrlType, Value: val})
	}
	return out, nil
}

func decodeChoiceValue(r *Reader) (*ChoiceValue, error) {
	c, err := ReadChoice(r)
	if err != nil {
		return nil, err
	}
	out := &ChoiceValue{ChoiceType: c.ChoiceType, ChildType: c.ChildType, ChildSize: c.ChildSize()}
	for {
		var v ByteVisitor
		ok, err := c.Next(&v)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out.Elements = append(out.Elements, v.Bytes)
	}
	return out, nil
}
