package pod

import (
	"testing"

	"github.com/go-test/deep"
)

func TestStructRoundTrip(t *testing.T) {
	w := NewHeapWriter()
	b, err := BeginStruct(w)
	if err != nil {
		t.Fatalf("BeginStruct: %v", err)
	}
	if err := EncodeInt(b.Writer(), 10); err != nil {
		t.Fatalf("EncodeInt: %v", err)
	}
	if err := EncodeString(b.Writer(), "hello world"); err != nil {
		t.Fatalf("EncodeString: %v", err)
	}
	arr, err := BeginArray(b.Writer(), TypeID, 4)
	if err != nil {
		t.Fatalf("BeginArray: %v", err)
	}
	for _, v := range []uint32{1, 2} {
		var body [4]byte
		putLE32(body[:], v)
		if err := arr.PushBytes(body[:]); err != nil {
			t.Fatalf("PushBytes: %v", err)
		}
	}
	if err := arr.Close(); err != nil {
		t.Fatalf("array Close: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("struct Close: %v", err)
	}

	if w.Len()%Align != 0 {
		t.Fatalf("writer cursor %d not 8-aligned", w.Len())
	}

	r := NewReader(w.Bytes())
	cur, err := ReadStruct(r)
	if err != nil {
		t.Fatalf("ReadStruct: %v", err)
	}

	if _, typ, err := cur.Reader().PeekHeader(); err != nil || typ != TypeInt {
		t.Fatalf("field 1 type = %v, err = %v", typ, err)
	}
	if _, _, err := cur.Reader().Header(); err != nil {
		t.Fatal(err)
	}
	n, err := DecodeInt(cur.Reader())
	if err != nil || n != 10 {
		t.Fatalf("DecodeInt = %d, %v", n, err)
	}

	size, typ, err := cur.Reader().Header()
	if err != nil || typ != TypeString {
		t.Fatalf("field 2 header = %d %v, err = %v", size, typ, err)
	}
	s, err := DecodeString(cur.Reader(), size)
	if err != nil || s != "hello world" {
		t.Fatalf("DecodeString = %q, %v", s, err)
	}

	ac, err := ReadArray(cur.Reader())
	if err != nil {
		t.Fatalf("ReadArray: %v", err)
	}
	var got []uint32
	for {
		var v ByteVisitor
		ok, err := ac.Next(&v)
		if err != nil {
			t.Fatalf("array Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, leUint32(v.Bytes))
	}
	if diff := deep.Equal(got, []uint32{1, 2}); diff != nil {
		t.Fatalf("array mismatch: %v", diff)
	}

	if !cur.Done() {
		t.Fatalf("struct cursor not empty after reading all fields")
	}
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func TestObjectRoundTrip(t *testing.T) {
	const (
		objFormat      = 15
		keyMediaType   = 1
		keyMediaSub    = 2
		keyAudioChans  = 8
		idAudio        = 1
		idDSP          = 2
	)

	w := NewHeapWriter()
	b, err := BeginObject(w, objFormat, 2)
	if err != nil {
		t.Fatalf("BeginObject: %v", err)
	}
	if err := b.Property(keyMediaType, uint32(FlagReadable)); err != nil {
		t.Fatal(err)
	}
	if err := EncodeID(b.Writer(), idAudio); err != nil {
		t.Fatal(err)
	}
	if err := b.Property(keyMediaSub, uint32(FlagReadable)); err != nil {
		t.Fatal(err)
	}
	if err := EncodeID(b.Writer(), idDSP); err != nil {
		t.Fatal(err)
	}
	if err := b.Property(keyAudioChans, uint32(FlagReadable)); err != nil {
		t.Fatal(err)
	}
	if err := EncodeInt(b.Writer(), 2); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("object Close: %v", err)
	}

	r := NewReader(w.Bytes())
	oc, err := ReadObject(r)
	if err != nil {
		t.Fatalf("ReadObject: %v", err)
	}
	if oc.ObjType != objFormat || oc.ObjID != 2 {
		t.Fatalf("object header = (%d, %d)", oc.ObjType, oc.ObjID)
	}

	type prop struct {
		key uint32
		val interface{}
	}
	var got []prop
	for {
		key, _, ok, err := oc.NextProperty()
		if err != nil {
			t.Fatalf("NextProperty: %v", err)
		}
		if !ok {
			break
		}
		_, typ, err := oc.Reader().PeekHeader()
		if err != nil {
			t.Fatal(err)
		}
		switch typ {
		case TypeID:
			if _, _, err := oc.Reader().Header(); err != nil {
				t.Fatal(err)
			}
			v, err := DecodeID(oc.Reader())
			if err != nil {
				t.Fatal(err)
			}
			got = append(got, prop{key, v})
		case TypeInt:
			if _, _, err := oc.Reader().Header(); err != nil {
				t.Fatal(err)
			}
			v, err := DecodeInt(oc.Reader())
			if err != nil {
				t.Fatal(err)
			}
			got = append(got, prop{key, v})
		default:
			t.Fatalf("unexpected property type %v", typ)
		}
	}

	want := []prop{
		{keyMediaType, uint32(idAudio)},
		{keyMediaSub, uint32(idDSP)},
		{keyAudioChans, int32(2)},
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("properties mismatch: %v", diff)
	}
}

func TestArrayOfStringsPadding(t *testing.T) {
	w := NewHeapWriter()
	b, err := BeginArray(w, TypeString, 4)
	if err != nil {
		t.Fatalf("BeginArray: %v", err)
	}
	for _, s := range []string{"foo", "bar", "baz"} {
		body := make([]byte, 4)
		copy(body, s)
		if err := b.PushBytes(body); err != nil {
			t.Fatalf("PushBytes(%q): %v", s, err)
		}
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if w.Len()%Align != 0 {
		t.Fatalf("array payload %d bytes not padded to 8", w.Len())
	}

	r := NewReader(w.Bytes())
	ac, err := ReadArray(r)
	if err != nil {
		t.Fatalf("ReadArray: %v", err)
	}
	var got []string
	for {
		var v ByteVisitor
		ok, err := ac.Next(&v)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		end := 0
		for end < len(v.Bytes) && v.Bytes[end] != 0 {
			end++
		}
		got = append(got, string(v.Bytes[:end]))
	}
	if diff := deep.Equal(got, []string{"foo", "bar", "baz"}); diff != nil {
		t.Fatalf("strings mismatch: %v", diff)
	}
}

func TestValueRoundTrip(t *testing.T) {
	v := &Value{
		Type: TypeStruct,
		Struct: &StructValue{
			Fields: []*Value{
				{Type: TypeInt, Int: -7},
				{Type: TypeString, Str: "pipewire"},
				{Type: TypeBool, Bool: true},
				{Type: TypeDouble, Double: 3.5},
			},
		},
	}

	w := NewHeapWriter()
	if err := EncodeValue(w, v); err != nil {
		t.Fatalf("EncodeValue: %v", err)
	}
	r := NewReader(w.Bytes())
	got, err := DecodeValue(r)
	if err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	if diff := deep.Equal(got, v); diff != nil {
		t.Fatalf("round trip mismatch: %v", diff)
	}
	if r.Len() != 0 {
		t.Fatalf("reader has %d unread bytes", r.Len())
	}
}

func TestBufferUnderflow(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	if _, _, err := r.Header(); err != ErrBufferUnderflow {
		t.Fatalf("expected ErrBufferUnderflow, got %v", err)
	}
}

func TestStackWriterOverflow(t *testing.T) {
	w := NewStackWriter()
	big := make([]byte, 300)
	if err := w.WriteBytes(big); err != ErrBufferOverflow {
		t.Fatalf("expected ErrBufferOverflow, got %v", err)
	}
}

func TestNullContainingString(t *testing.T) {
	w := NewHeapWriter()
	if err := EncodeString(w, "a\x00b"); err != ErrNullContainingString {
		t.Fatalf("expected ErrNullContainingString, got %v", err)
	}
}

func TestSchemaRoundTrip(t *testing.T) {
	type format struct {
		MediaType    uint32 `pod:"key=1,flags=r"`
		MediaSubType uint32 `pod:"key=2,flags=r"`
		Channels     int32  `pod:"key=8,flags=r"`
	}

	schema, err := DeriveObjectSchema(format{})
	if err != nil {
		t.Fatalf("DeriveObjectSchema: %v", err)
	}

	in := format{MediaType: 1, MediaSubType: 2, Channels: 2}
	w := NewHeapWriter()
	if err := schema.Marshal(w, 15, 2, &in); err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out format
	r := NewReader(w.Bytes())
	objType, objID, err := schema.Unmarshal(r, &out)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if objType != 15 || objID != 2 {
		t.Fatalf("object header = (%d, %d)", objType, objID)
	}
	if diff := deep.Equal(out, in); diff != nil {
		t.Fatalf("schema round trip mismatch: %v", diff)
	}
}
