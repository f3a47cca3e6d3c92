package serde

import (
	"encoding"
	"math"
	"reflect"
	"strconv"
)

// Into wraps a pointer so a Deserializer can fill it.
//
// The mapping mirrors Marshal. Pointers are decoded through
// DeserializeOption, structs through DeserializeStruct with keys matched
// case-sensitively first and case-insensitively second. Unknown keys are
// skipped. A missing field fails unless it is a pointer, an interface, or
// tagged omitempty. An empty interface receives bool, int64, float64,
// string, []any or map[string]any.
func Into(ptr any) Deserialize {
	return target{ptr: ptr}
}

type target struct {
	ptr any
}

func (t target) Deserialize(d Deserializer) error {
	rv := reflect.ValueOf(t.ptr)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		return Custom("cannot decode into non-pointer %T", t.ptr)
	}
	return decodeValue(d, rv.Elem(), 0)
}

// slot is a settable destination inside a larger value.
type slot struct {
	rv    reflect.Value
	depth int
}

func (s slot) Deserialize(d Deserializer) error { return decodeValue(d, s.rv, s.depth) }

func decodeValue(d Deserializer, rv reflect.Value, depth int) error {
	if depth > MaxDepth {
		return Custom("reached max recursion depth")
	}

	t := rv.Type()
	if a, ok := lookupAdapter(t); ok && a.into != nil {
		return a.into(rv.Addr()).Deserialize(d)
	}
	if rv.Kind() == reflect.Ptr {
		return d.DeserializeOption(&optionVisitor{BaseVisitor{"option"}, rv, depth})
	}
	if pt := reflect.PointerTo(t); pt.Implements(deserializeType) {
		return rv.Addr().Interface().(Deserialize).Deserialize(d)
	}
	if pt := reflect.PointerTo(t); pt.Implements(textUnmarshalType) {
		u := rv.Addr().Interface().(encoding.TextUnmarshaler)
		return d.DeserializeAny(&textVisitor{BaseVisitor{"a string"}, u})
	}

	switch rv.Kind() {
	case reflect.Bool:
		return d.DeserializeAny(&boolVisitor{BaseVisitor{"a boolean"}, rv})
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return d.DeserializeAny(&intVisitor{BaseVisitor{kindName(t)}, rv})
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return d.DeserializeAny(&uintVisitor{BaseVisitor{kindName(t)}, rv})
	case reflect.Float32, reflect.Float64:
		return d.DeserializeAny(&floatVisitor{BaseVisitor{kindName(t)}, rv})
	case reflect.String:
		return d.DeserializeAny(&stringVisitor{BaseVisitor{"a string"}, rv})
	case reflect.Slice:
		return d.DeserializeSeq(&sliceVisitor{BaseVisitor{"a sequence"}, rv, depth})
	case reflect.Array:
		return d.DeserializeTuple(rv.Len(), &arrayVisitor{BaseVisitor{"an array"}, rv, depth})
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return Custom("unsupported map key type %s", t.Key())
		}
		return d.DeserializeMap(&mapVisitor{BaseVisitor{"a map"}, rv, depth})
	case reflect.Struct:
		sf := cachedFields(t)
		return d.DeserializeStruct(t.Name(), sf.names, &structVisitor{BaseVisitor{"struct " + t.Name()}, rv, sf, depth})
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return Custom("cannot decode into interface %s", t)
		}
		return d.DeserializeAny(&anyVisitor{BaseVisitor{"any value"}, rv, depth})
	}
	return Custom("unsupported Go type %s", t)
}

func kindName(t reflect.Type) string { return t.Kind().String() }

type optionVisitor struct {
	BaseVisitor
	rv    reflect.Value
	depth int
}

func (v *optionVisitor) VisitNone() error {
	v.rv.Set(reflect.Zero(v.rv.Type()))
	return nil
}

func (v *optionVisitor) VisitUnit() error { return v.VisitNone() }

func (v *optionVisitor) VisitSome(d Deserializer) error {
	if v.rv.IsNil() {
		v.rv.Set(reflect.New(v.rv.Type().Elem()))
	}
	return decodeValue(d, v.rv.Elem(), v.depth+1)
}

type textVisitor struct {
	BaseVisitor
	u encoding.TextUnmarshaler
}

func (v *textVisitor) VisitString(s string) error { return v.u.UnmarshalText([]byte(s)) }

type boolVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v *boolVisitor) VisitBool(b bool) error {
	v.rv.SetBool(b)
	return nil
}

type intVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v *intVisitor) VisitInt64(n int64) error {
	if v.rv.OverflowInt(n) {
		return InvalidValue(UnexpectedInt(n), v.Expected)
	}
	v.rv.SetInt(n)
	return nil
}

func (v *intVisitor) VisitUint64(n uint64) error {
	if n > math.MaxInt64 || v.rv.OverflowInt(int64(n)) {
		return InvalidValue(UnexpectedUint(n), v.Expected)
	}
	v.rv.SetInt(int64(n))
	return nil
}

type uintVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v *uintVisitor) VisitInt64(n int64) error {
	if n < 0 {
		return InvalidValue(UnexpectedInt(n), v.Expected)
	}
	return v.VisitUint64(uint64(n))
}

func (v *uintVisitor) VisitUint64(n uint64) error {
	if v.rv.OverflowUint(n) {
		return InvalidValue(UnexpectedUint(n), v.Expected)
	}
	v.rv.SetUint(n)
	return nil
}

type floatVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v *floatVisitor) VisitFloat64(f float64) error {
	if v.rv.OverflowFloat(f) {
		return InvalidValue(UnexpectedFloat(f), v.Expected)
	}
	v.rv.SetFloat(f)
	return nil
}

func (v *floatVisitor) VisitInt64(n int64) error { return v.VisitFloat64(float64(n)) }

func (v *floatVisitor) VisitUint64(n uint64) error { return v.VisitFloat64(float64(n)) }

type stringVisitor struct {
	BaseVisitor
	rv reflect.Value
}

func (v *stringVisitor) VisitString(s string) error {
	v.rv.SetString(s)
	return nil
}

type sliceVisitor struct {
	BaseVisitor
	rv    reflect.Value
	depth int
}

func (v *sliceVisitor) VisitBytes(b []byte) error {
	if v.rv.Type().Elem().Kind() != reflect.Uint8 {
		return v.BaseVisitor.VisitBytes(b)
	}
	v.rv.SetBytes(append([]byte(nil), b...))
	return nil
}

func (v *sliceVisitor) VisitSeq(a SeqAccess) error {
	t := v.rv.Type()
	n, _ := a.SizeHint()
	out := reflect.MakeSlice(t, 0, n)
	for {
		elem := reflect.New(t.Elem()).Elem()
		ok, err := a.NextElement(slot{elem, v.depth + 1})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		out = reflect.Append(out, elem)
	}
	v.rv.Set(out)
	return nil
}

type arrayVisitor struct {
	BaseVisitor
	rv    reflect.Value
	depth int
}

func (v *arrayVisitor) VisitSeq(a SeqAccess) error {
	n := v.rv.Len()
	for i := 0; i < n; i++ {
		ok, err := a.NextElement(slot{v.rv.Index(i), v.depth + 1})
		if err != nil {
			return err
		}
		if !ok {
			return InvalidLength(i, "an array of length "+strconv.Itoa(n))
		}
	}
	return nil
}

type mapVisitor struct {
	BaseVisitor
	rv    reflect.Value
	depth int
}

func (v *mapVisitor) VisitMap(a MapAccess) error {
	t := v.rv.Type()
	if v.rv.IsNil() {
		v.rv.Set(reflect.MakeMap(t))
	}
	for {
		key := reflect.New(t.Key()).Elem()
		ok, err := a.NextKey(slot{key, v.depth + 1})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		val := reflect.New(t.Elem()).Elem()
		if err := a.NextValue(slot{val, v.depth + 1}); err != nil {
			return err
		}
		v.rv.SetMapIndex(key, val)
	}
}

type structVisitor struct {
	BaseVisitor
	rv     reflect.Value
	fields *structFields
	depth  int
}

func (v *structVisitor) VisitMap(a MapAccess) error {
	seen := make([]bool, len(v.fields.list))
	for {
		var key string
		ok, err := a.NextKey(slot{reflect.ValueOf(&key).Elem(), v.depth + 1})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		i, found := v.fields.lookup(key)
		if !found {
			if err := a.NextValue(Ignore{}); err != nil {
				return err
			}
			continue
		}
		f := v.fields.list[i]
		if seen[i] {
			return DuplicateField(f.name)
		}
		seen[i] = true
		if err := a.NextValue(slot{v.rv.FieldByIndex(f.idx), v.depth + 1}); err != nil {
			return err
		}
	}
	for i, f := range v.fields.list {
		if !seen[i] && !f.optional {
			return MissingField(f.name)
		}
	}
	return nil
}

type anyVisitor struct {
	BaseVisitor
	rv    reflect.Value
	depth int
}

func (v *anyVisitor) set(x any) error {
	v.rv.Set(reflect.ValueOf(&x).Elem())
	return nil
}

func (v *anyVisitor) VisitBool(b bool) error { return v.set(b) }
func (v *anyVisitor) VisitInt64(n int64) error { return v.set(n) }
func (v *anyVisitor) VisitFloat64(f float64) error { return v.set(f) }
func (v *anyVisitor) VisitString(s string) error { return v.set(s) }
func (v *anyVisitor) VisitBytes(b []byte) error { return v.set(append([]byte(nil), b...)) }
func (v *anyVisitor) VisitNone() error { return v.set(nil) }
func (v *anyVisitor) VisitUnit() error { return v.set(nil) }

func (v *anyVisitor) VisitUint64(n uint64) error {
	if n <= math.MaxInt64 {
		return v.set(int64(n))
	}
	return v.set(n)
}

func (v *anyVisitor) VisitSome(d Deserializer) error {
	return decodeValue(d, v.rv, v.depth+1)
}

func (v *anyVisitor) VisitNewtypeStruct(d Deserializer) error {
	return decodeValue(d, v.rv, v.depth+1)
}

func (v *anyVisitor) VisitSeq(a SeqAccess) error {
	n, _ := a.SizeHint()
	out := make([]any, 0, n)
	for {
		var elem any
		ok, err := a.NextElement(slot{reflect.ValueOf(&elem).Elem(), v.depth + 1})
		if err != nil {
			return err
		}
		if !ok {
			return v.set(out)
		}
		out = append(out, elem)
	}
}

func (v *anyVisitor) VisitMap(a MapAccess) error {
	out := make(map[string]any)
	for {
		var key string
		ok, err := a.NextKey(slot{reflect.ValueOf(&key).Elem(), v.depth + 1})
		if err != nil {
			return err
		}
		if !ok {
			return v.set(out)
		}
		var val any
		if err := a.NextValue(slot{reflect.ValueOf(&val).Elem(), v.depth + 1}); err != nil {
			return err
		}
		out[key] = val
	}
}
