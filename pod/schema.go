package pod

import (
	"encoding/binary"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// ParamFlags mirrors the READ/WRITE bits carried by an object Property and
// by the parameter-direction tables in the node package.
type ParamFlags uint32

// The two flag bits a property can carry.
const (
	FlagReadable ParamFlags = 1 << 0
	FlagWritable ParamFlags = 1 << 1
)

// fieldSchema is the parsed form of one struct field's `pod:"..."` tag.
type fieldSchema struct {
	index []int
	key   uint32
	flags ParamFlags
}

// ObjectSchema derives Object pod marshaling for a Go struct type from its
// field tags, standing in for the derive-macro code generation of the
// system this package's wire format was modeled on: Go has no build-time
// macros, so the same declarative intent (annotate a field with its
// property key and rw-flags) is expressed with struct tags that
// DeriveObjectSchema reads via reflection.
//
// Tag syntax: `pod:"key=0x10001,flags=rw"`. key accepts decimal or 0x-hex.
// flags is any combination of 'r' and 'w'; omitting it defaults to
// read-only, matching the common case of a reported (not settable)
// property.
type ObjectSchema struct {
	fields []fieldSchema
}

// DeriveObjectSchema parses the pod tags of T's fields once and caches
// nothing across calls; callers that marshal many values of the same type
// in a hot loop should cache the returned schema themselves.
func DeriveObjectSchema(sample interface{}) (*ObjectSchema, error) {
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, newErr(Expected, "schema target must be a struct")
	}
	s := &ObjectSchema{}
	if err := collectFields(t, nil, s); err != nil {
		return nil, err
	}
	return s, nil
}

func collectFields(t reflect.Type, prefix []int, s *ObjectSchema) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			if err := collectFields(f.Type, append(prefix, i), s); err != nil {
				return err
			}
			continue
		}
		tag, ok := f.Tag.Lookup("pod")
		if !ok {
			continue
		}
		fs, err := parseFieldTag(tag)
		if err != nil {
			return err
		}
		fs.index = append(append([]int{}, prefix...), i)
		s.fields = append(s.fields, fs)
	}
	return nil
}

func parseFieldTag(tag string) (fieldSchema, error) {
	var fs fieldSchema
	fs.flags = FlagReadable
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		name := kv[0]
		var value string
		if len(kv) == 2 {
			value = kv[1]
		}
		switch name {
		case "key":
			key, err := strconv.ParseUint(value, 0, 32)
			if err != nil {
				return fs, newErr(Expected, "invalid pod tag key: "+value)
			}
			fs.key = uint32(key)
		case "flags":
			fs.flags = 0
			if strings.Contains(value, "r") {
				fs.flags |= FlagReadable
			}
			if strings.Contains(value, "w") {
				fs.flags |= FlagWritable
			}
		}
	}
	return fs, nil
}

// Marshal writes value (a struct of the type this schema was derived from)
// as an Object pod with the given object type and id.
func (s *ObjectSchema) Marshal(w Writer, objType, objID uint32, value interface{}) error {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	b, err := BeginObject(w, objType, objID)
	if err != nil {
		return err
	}
	for _, fs := range s.fields {
		fv := rv.FieldByIndex(fs.index)
		if err := b.Property(fs.key, uint32(fs.flags)); err != nil {
			return err
		}
		if err := marshalScalar(b.Writer(), fv); err != nil {
			return err
		}
	}
	return b.Close()
}

func marshalScalar(w Writer, fv reflect.Value) error {
	switch fv.Kind() {
	case reflect.Bool:
		return EncodeBool(w, fv.Bool())
	case reflect.Int32:
		return EncodeInt(w, int32(fv.Int()))
	case reflect.Int64:
		return EncodeLong(w, fv.Int())
	case reflect.Uint32:
		return EncodeID(w, uint32(fv.Uint()))
	case reflect.Float32:
		return EncodeFloat(w, float32(fv.Float()))
	case reflect.Float64:
		return EncodeDouble(w, fv.Float())
	case reflect.String:
		return EncodeString(w, fv.String())
	case reflect.Slice:
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			return EncodeBytes(w, fv.Bytes())
		}
		return newErr(Expected, "unsupported pod field slice element type")
	default:
		return newErr(Expected, "unsupported pod field type")
	}
}

// Unmarshal reads an Object pod body from r into *value (a pointer to the
// struct type this schema was derived from), matching properties by key and
// ignoring any property whose key is not present in the schema — the same
// forward-compatible tolerance the wire object format is designed around.
func (s *ObjectSchema) Unmarshal(r *Reader, value interface{}) (objType, objID uint32, err error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Ptr {
		return 0, 0, newErr(Expected, "unmarshal target must be a pointer")
	}
	rv = rv.Elem()
	c, err := ReadObject(r)
	if err != nil {
		return 0, 0, err
	}
	byKey := make(map[uint32]fieldSchema, len(s.fields))
	for _, fs := range s.fields {
		byKey[fs.key] = fs
	}
	for {
		key, _, ok, err := c.NextProperty()
		if err != nil {
			return 0, 0, err
		}
		if !ok {
			break
		}
		fs, known := byKey[key]
		if !known {
			// Skip the value we don't have a field for.
			if _, err := DecodeValue(c.Reader()); err != nil {
				return 0, 0, err
			}
			continue
		}
		fv := rv.FieldByIndex(fs.index)
		if err := unmarshalScalar(c.Reader(), fv); err != nil {
			return 0, 0, err
		}
	}
	return c.ObjType, c.ObjID, nil
}

// unmarshalScalar decodes one field's worth of pod into fv. Numeric fields
// are read through DecodeScalarTolerant so a property that is legitimately
// Choice-wrapped (an enum or range whose generated reader must accept the
// producer's default alternative) is not rejected as a type mismatch.
func unmarshalScalar(r *Reader, fv reflect.Value) error {
	switch fv.Kind() {
	case reflect.Bool:
		b, err := DecodeScalarTolerant(r, TypeBool, 4)
		if err != nil {
			return err
		}
		fv.SetBool(binary.LittleEndian.Uint32(b) != 0)
		return nil
	case reflect.Int32:
		b, err := DecodeScalarTolerant(r, TypeInt, 4)
		if err != nil {
			return err
		}
		fv.SetInt(int64(int32(binary.LittleEndian.Uint32(b))))
		return nil
	case reflect.Int64:
		b, err := DecodeScalarTolerant(r, TypeLong, 8)
		if err != nil {
			return err
		}
		fv.SetInt(int64(binary.LittleEndian.Uint64(b)))
		return nil
	case reflect.Uint32:
		b, err := DecodeScalarTolerant(r, TypeID, 4)
		if err != nil {
			return err
		}
		fv.SetUint(uint64(binary.LittleEndian.Uint32(b)))
		return nil
	case reflect.Float32:
		b, err := DecodeScalarTolerant(r, TypeFloat, 4)
		if err != nil {
			return err
		}
		fv.SetFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(b))))
		return nil
	case reflect.Float64:
		b, err := DecodeScalarTolerant(r, TypeDouble, 8)
		if err != nil {
			return err
		}
		fv.SetFloat(math.Float64frombits(binary.LittleEndian.Uint64(b)))
		return nil
	case reflect.String:
		size, typ, err := r.Header()
		if err != nil {
			return err
		}
		if typ != TypeString {
			return expectedErr(TypeString, typ)
		}
		v, err := DecodeString(r, size)
		if err != nil {
			return err
		}
		fv.SetString(v)
		return nil
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.Uint8 {
			return newErr(Expected, "unsupported pod field slice element type")
		}
		size, typ, err := r.Header()
		if err != nil {
			return err
		}
		if typ != TypeBytes {
			return expectedErr(TypeBytes, typ)
		}
		v, err := DecodeBytes(r, size)
		if err != nil {
			return err
		}
		fv.SetBytes(v)
		return nil
	default:
		return newErr(Expected, "unsupported pod field type")
	}
}
