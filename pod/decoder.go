package pod

// StructCursor walks the children of a Struct pod body, handed to the
// caller as a Reader scoped to exactly that body.
type StructCursor struct {
	r *Reader
}

// ReadStruct reads a Struct pod header from r and returns a cursor scoped to
// its body.
func ReadStruct(r *Reader) (*StructCursor, error) {
	size, typ, err := r.Header()
	if err != nil {
		return nil, err
	}
	if typ != TypeStruct {
		return nil, expectedErr(TypeStruct, typ)
	}
	body, err := r.Split(size)
	if err != nil {
		return nil, err
	}
	return &StructCursor{r: body}, nil
}

// Reader exposes the cursor's scoped reader so the caller can read the next
// child pod directly (Header/DecodeInt/ReadStruct/...).
func (c *StructCursor) Reader() *Reader { return c.r }

// Done reports whether every byte of the struct body has been consumed. A
// caller that expected more fields than were present should treat a
// premature Done as StructUnderflow.
func (c *StructCursor) Done() bool { return c.r.Len() == 0 }

// ObjectCursor walks the (type, id) header and Property entries of an
// Object pod body.
type ObjectCursor struct {
	r       *Reader
	ObjType uint32
	ObjID   uint32
}

// ReadObject reads an Object pod header and its (type, id) prefix.
func ReadObject(r *Reader) (*ObjectCursor, error) {
	size, typ, err := r.Header()
	if err != nil {
		return nil, err
	}
	if typ != TypeObject {
		return nil, expectedErr(TypeObject, typ)
	}
	body, err := r.Split(size)
	if err != nil {
		return nil, err
	}
	objType, err := body.ReadU32()
	if err != nil {
		return nil, err
	}
	objID, err := body.ReadU32()
	if err != nil {
		return nil, err
	}
	return &ObjectCursor{r: body, ObjType: objType, ObjID: objID}, nil
}

// NextProperty reads the next (key, flags) pair; the caller then reads
// exactly one child pod for the value from Reader(). ok is false once the
// body is exhausted.
func (c *ObjectCursor) NextProperty() (key uint32, flags uint32, ok bool, err error) {
	if c.r.Len() == 0 {
		return 0, 0, false, nil
	}
	key, err = c.r.ReadU32()
	if err != nil {
		return 0, 0, false, err
	}
	flags, err = c.r.ReadU32()
	if err != nil {
		return 0, 0, false, err
	}
	return key, flags, true, nil
}

func (c *ObjectCursor) Reader() *Reader { return c.r }

// ArrayCursor walks the fixed-size children of an Array pod body.
type ArrayCursor struct {
	r         *Reader
	ChildType Type
	childSize int
}

// ReadArray reads an Array pod header and its child-size/child-type prefix.
func ReadArray(r *Reader) (*ArrayCursor, error) {
	size, typ, err := r.Header()
	if err != nil {
		return nil, err
	}
	if typ != TypeArray {
		return nil, expectedErr(TypeArray, typ)
	}
	body, err := r.Split(size)
	if err != nil {
		return nil, err
	}
	if err := r.ConsumePadding(size); err != nil {
		return nil, err
	}
	childSize, err := body.ReadU32()
	if err != nil {
		return nil, err
	}
	childTypeWord, err := body.ReadU32()
	if err != nil {
		return nil, err
	}
	return &ArrayCursor{r: body, ChildType: Type(childTypeWord), childSize: int(childSize)}, nil
}

// ChildSize returns the declared fixed size, in bytes, of every element.
func (c *ArrayCursor) ChildSize() int { return c.childSize }

// Next hands the next element's raw bytes to visitor. ok is false once the
// body is exhausted; a non-zero remainder smaller than ChildSize is reported
// as InvalidArraySize.
func (c *ArrayCursor) Next(visitor Visitor) (ok bool, err error) {
	if c.r.Len() == 0 {
		return false, nil
	}
	if c.r.Len() < c.childSize {
		return false, ErrInvalidArraySize
	}
	sub, err := c.r.Split(c.childSize)
	if err != nil {
		return false, err
	}
	if err := visitor.VisitRef(sub.Remaining()); err != nil {
		return false, err
	}
	return true, nil
}

// SequenceCursor walks the unit prefix and Control entries of a Sequence pod
// body.
type SequenceCursor struct {
	r    *Reader
	Unit uint32
}

// ReadSequence reads a Sequence pod header and its unit/pad prefix.
func ReadSequence(r *Reader) (*SequenceCursor, error) {
	size, typ, err := r.Header()
	if err != nil {
		return nil, err
	}
	if typ != TypeSequence {
		return nil, expectedErr(TypeSequence, typ)
	}
	body, err := r.Split(size)
	if err != nil {
		return nil, err
	}
	unit, err := body.ReadU32()
	if err != nil {
		return nil, err
	}
	if _, err := body.ReadU32(); err != nil { // pad word
		return nil, err
	}
	return &SequenceCursor{r: body, Unit: unit}, nil
}

// NextControl reads the next (offset, controlType) pair; the caller then
// reads exactly one child pod for the value from Reader().
func (c *SequenceCursor) NextControl() (offset uint32, controlType uint32, ok bool, err error) {
	if c.r.Len() == 0 {
		return 0, 0, false, nil
	}
	offset, err = c.r.ReadU32()
	if err != nil {
		return 0, 0, false, err
	}
	controlType, err = c.r.ReadU32()
	if err != nil {
		return 0, 0, false, err
	}
	return offset, controlType, true, nil
}

func (c *SequenceCursor) Reader() *Reader { return c.r }

// ChoiceCursor walks the prefix and fixed-size alternatives of a Choice pod
// body. By convention the first alternative read is the default.
type ChoiceCursor struct {
	r          *Reader
	ChoiceType ChoiceType
	ChildType  Type
	childSize  int
}

// ReadChoice reads a Choice pod header and its prefix.
func ReadChoice(r *Reader) (*ChoiceCursor, error) {
	size, typ, err := r.Header()
	if err != nil {
		return nil, err
	}
	if typ != TypeChoice {
		return nil, expectedErr(TypeChoice, typ)
	}
	body, err := r.Split(size)
	if err != nil {
		return nil, err
	}
	if err := r.ConsumePadding(size); err != nil {
		return nil, err
	}
	choiceTypeWord, err := body.ReadU32()
	if err != nil {
		return nil, err
	}
	if _, err := body.ReadU32(); err != nil { // flags
		return nil, err
	}
	childSize, err := body.ReadU32()
	if err != nil {
		return nil, err
	}
	childTypeWord, err := body.ReadU32()
	if err != nil {
		return nil, err
	}
	return &ChoiceCursor{
		r:          body,
		ChoiceType: ChoiceType(choiceTypeWord),
		ChildType:  Type(childTypeWord),
		childSize:  int(childSize),
	}, nil
}

// ChildSize returns the declared fixed size, in bytes, of every alternative.
func (c *ChoiceCursor) ChildSize() int { return c.childSize }

// Next hands the next alternative's raw bytes to visitor, the first call
// being the default value. ok is false once the body is exhausted. A reader
// that only wants the default may call Next once and stop; per the choice
// read rule, any pod-typed value is also acceptable where a Choice was
// expected by treating it as a single-alternative Choice whose one
// alternative is that value — see DecodeChoiceTolerant.
func (c *ChoiceCursor) Next(visitor Visitor) (ok bool, err error) {
	if c.r.Len() == 0 {
		return false, nil
	}
	if c.r.Len() < c.childSize {
		return false, ErrInvalidArraySize
	}
	sub, err := c.r.Split(c.childSize)
	if err != nil {
		return false, err
	}
	if err := visitor.VisitRef(sub.Remaining()); err != nil {
		return false, err
	}
	return true, nil
}

// DecodeChoiceTolerant reads either a Choice pod or a bare pod of
// expectType at the cursor, normalizing both into a ChoiceCursor with
// exactly one alternative in the bare case. This implements the codec's
// tolerant-read rule: a property that is typically a Choice (an enum, a
// range) may legally appear on the wire as a plain scalar when the producer
// has only one possible value, and readers must accept both.
func DecodeChoiceTolerant(r *Reader, expectType Type, expectSize int) (*ChoiceCursor, error) {
	size, typ, err := r.PeekHeader()
	if err != nil {
		return nil, err
	}
	if typ == TypeChoice {
		return ReadChoice(r)
	}
	if typ != expectType {
		return nil, expectedErr(expectType, typ)
	}
	if size != expectSize {
		return nil, ErrChildSizeMismatch
	}
	if _, _, err := r.Header(); err != nil {
		return nil, err
	}
	body, err := r.Split(size)
	if err != nil {
		return nil, err
	}
	if err := r.ConsumePadding(size); err != nil {
		return nil, err
	}
	return &ChoiceCursor{r: body, ChoiceType: ChoiceNone, ChildType: expectType, childSize: expectSize}, nil
}

// DecodeScalarTolerant reads a property value that is declared as expectType
// but, per the choice read rule, may legally arrive Choice-wrapped: it reads
// through DecodeChoiceTolerant and returns the default (first) alternative's
// raw bytes, letting the caller reinterpret them as the scalar it expected.
func DecodeScalarTolerant(r *Reader, expectType Type, expectSize int) ([]byte, error) {
	cur, err := DecodeChoiceTolerant(r, expectType, expectSize)
	if err != nil {
		return nil, err
	}
	var v ByteVisitor
	ok, err := cur.Next(&v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newErr(Expected, "choice has no default alternative")
	}
	return v.Bytes, nil
}
