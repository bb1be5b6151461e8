package clarity

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"
)

var (
	valueType  = reflect.TypeOf((*Value)(nil)).Elem()
	bigIntType = reflect.TypeOf(big.Int{})
)

// UnmarshalTuple maps the entries of a tuple onto the fields of the struct
// out points to. Only fields tagged `clarity:"key"` are filled; every
// tagged key must be present. The tag option "response" unwraps an
// (ok v) result first, so `clarity:"balance,response"` reads v.
//
// Field types and the values they accept:
//
//	int, int8 .. int64      Int, range-checked
//	uint, uint8 .. uint64   UInt, range-checked
//	*big.Int, big.Int       Int or UInt
//	bool                    Bool
//	[]byte                  Buffer
//	string                  StringASCII and StringUTF8 as their content,
//	                        any other value as its String rendering
//	[]T                     List of T
//	struct                  Tuple, recursively
//	*T                      none as nil, (some v) as v
//	Value                   anything, stored as is
func UnmarshalTuple(v Value, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return &CodecError{Code: ErrBadDowncast, Message: fmt.Sprintf("UnmarshalTuple needs a non-nil struct pointer, got %T", out)}
	}
	return unmarshalStruct(v, rv.Elem(), "")
}

// Unmarshal is UnmarshalTuple for any target type in the table above.
func Unmarshal(v Value, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &CodecError{Code: ErrBadDowncast, Message: fmt.Sprintf("Unmarshal needs a non-nil pointer, got %T", out)}
	}
	return unmarshalValue(v, rv.Elem(), "")
}

func unmarshalStruct(v Value, dst reflect.Value, path string) error {
	tuple, ok := v.(Tuple)
	if !ok {
		return mismatch(v, dst.Type(), path)
	}

	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup("clarity")
		if !ok || tag == "-" || !field.IsExported() {
			continue
		}
		key, opts, _ := strings.Cut(tag, ",")
		at := joinPath(path, key)

		entry, ok := tuple.Get(key)
		if !ok {
			return &CodecError{Code: ErrMissingKey, Message: fmt.Sprintf("tuple has no key %q", at)}
		}
		if opts == "response" {
			switch r := entry.(type) {
			case ResponseOk:
				entry = r.Value
			case ResponseErr:
				return &CodecError{Code: ErrResponseErr, Message: fmt.Sprintf("%s is %s", at, r)}
			default:
				return mismatch(entry, field.Type, at)
			}
		}

		if err := unmarshalValue(entry, dst.Field(i), at); err != nil {
			return err
		}
	}
	return nil
}

func unmarshalValue(v Value, dst reflect.Value, path string) error {
	t := dst.Type()

	switch {
	case t == valueType:
		dst.Set(reflect.ValueOf(&v).Elem())
		return nil
	case t == bigIntType:
		n, err := BigInt(v)
		if err != nil {
			return mismatch(v, t, path)
		}
		dst.Set(reflect.ValueOf(n).Elem())
		return nil
	case t.Kind() == reflect.Pointer && t.Elem() == bigIntType:
		n, err := BigInt(v)
		if err != nil {
			return mismatch(v, t, path)
		}
		dst.Set(reflect.ValueOf(n))
		return nil
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := v.(Int)
		if !ok {
			return mismatch(v, t, path)
		}
		n, ok := i.Int64()
		if !ok || dst.OverflowInt(n) {
			return outOfRange(v, t, path)
		}
		dst.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, ok := v.(UInt)
		if !ok {
			return mismatch(v, t, path)
		}
		n, ok := u.Uint64()
		if !ok || dst.OverflowUint(n) {
			return outOfRange(v, t, path)
		}
		dst.SetUint(n)

	case reflect.Bool:
		b, ok := v.(Bool)
		if !ok {
			return mismatch(v, t, path)
		}
		dst.SetBool(bool(b))

	case reflect.String:
		switch s := v.(type) {
		case StringASCII:
			dst.SetString(string(s))
		case StringUTF8:
			dst.SetString(string(s))
		default:
			dst.SetString(v.String())
		}

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			b, ok := v.(Buffer)
			if !ok {
				return mismatch(v, t, path)
			}
			dst.SetBytes(append([]byte(nil), b...))
			return nil
		}
		list, ok := v.(List)
		if !ok {
			return mismatch(v, t, path)
		}
		out := reflect.MakeSlice(t, len(list), len(list))
		for i, item := range list {
			if err := unmarshalValue(item, out.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		dst.Set(out)

	case reflect.Struct:
		return unmarshalStruct(v, dst, path)

	case reflect.Pointer:
		switch o := v.(type) {
		case None:
			dst.Set(reflect.Zero(t))
		case Some:
			elem := reflect.New(t.Elem())
			if err := unmarshalValue(o.Value, elem.Elem(), path); err != nil {
				return err
			}
			dst.Set(elem)
		default:
			return mismatch(v, t, path)
		}

	default:
		return &CodecError{Code: ErrBadDowncast, Message: fmt.Sprintf("%s: unsupported field type %s", pathName(path), t)}
	}
	return nil
}

func mismatch(v Value, t reflect.Type, path string) error {
	return &CodecError{Code: ErrBadDowncast, Message: fmt.Sprintf("%s: cannot store %T in %s", pathName(path), v, t)}
}

func outOfRange(v Value, t reflect.Type, path string) error {
	return &CodecError{Code: ErrIntOutOfRange, Message: fmt.Sprintf("%s: %s does not fit %s", pathName(path), v, t)}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func pathName(path string) string {
	if path == "" {
		return "value"
	}
	return path
}
