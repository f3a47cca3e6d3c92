package serde

import (
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// MaxDepth bounds the nesting Marshal and Into follow before giving up.
const MaxDepth = 1000

var (
	serializeType     = reflect.TypeFor[Serialize]()
	deserializeType   = reflect.TypeFor[Deserialize]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

type adapter struct {
	marshal func(reflect.Value) Serialize
	into    func(reflect.Value) Deserialize
}

var adapters sync.Map // map[reflect.Type]adapter

// Register installs conversions for a type that cannot carry its own
// Serialize and Deserialize methods, such as time.Time. marshal receives a
// value of type t, into receives a non-nil *t. Either may be nil.
func Register(t reflect.Type, marshal func(reflect.Value) Serialize, into func(reflect.Value) Deserialize) {
	adapters.Store(t, adapter{marshal: marshal, into: into})
}

func lookupAdapter(t reflect.Type) (adapter, bool) {
	a, ok := adapters.Load(t)
	if !ok {
		return adapter{}, false
	}
	return a.(adapter), true
}

// Marshal wraps an arbitrary Go value so it can be fed to a Serializer.
//
// Values implementing Serialize describe themselves. Otherwise booleans,
// numbers and strings map to the matching primitive, slices to sequences,
// arrays to tuples, maps to maps with sorted keys, structs to structs (a
// struct with no fields is a unit struct), nil pointers and interfaces to
// None and non-nil pointers to Some. encoding.TextMarshaler values are
// serialized as strings.
func Marshal(v any) Serialize {
	return reflected{rv: reflect.ValueOf(v)}
}

type reflected struct {
	rv    reflect.Value
	depth int
}

func (r reflected) child(v reflect.Value) reflected {
	return reflected{rv: v, depth: r.depth + 1}
}

func (r reflected) Serialize(s Serializer) error {
	if r.depth > MaxDepth {
		return Custom("reached max recursion depth")
	}

	rv := r.rv
	for rv.IsValid() && rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return s.SerializeNone()
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return s.SerializeNone()
	}

	t := rv.Type()
	if a, ok := lookupAdapter(t); ok && a.marshal != nil {
		return a.marshal(rv).Serialize(s)
	}
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return s.SerializeNone()
	}
	if t.Implements(serializeType) {
		return rv.Interface().(Serialize).Serialize(s)
	}
	if rv.Kind() != reflect.Ptr && rv.CanAddr() && rv.Addr().Type().Implements(serializeType) {
		return rv.Addr().Interface().(Serialize).Serialize(s)
	}
	if t.Implements(textMarshalerType) {
		text, err := rv.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return err
		}
		return s.SerializeStr(string(text))
	}

	switch rv.Kind() {
	case reflect.Bool:
		return s.SerializeBool(rv.Bool())
	case reflect.Int, reflect.Int64:
		return s.SerializeInt64(rv.Int())
	case reflect.Int8:
		return s.SerializeInt8(int8(rv.Int()))
	case reflect.Int16:
		return s.SerializeInt16(int16(rv.Int()))
	case reflect.Int32:
		return s.SerializeInt32(int32(rv.Int()))
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return s.SerializeUint64(rv.Uint())
	case reflect.Uint8:
		return s.SerializeUint8(uint8(rv.Uint()))
	case reflect.Uint16:
		return s.SerializeUint16(uint16(rv.Uint()))
	case reflect.Uint32:
		return s.SerializeUint32(uint32(rv.Uint()))
	case reflect.Float32:
		return s.SerializeFloat32(float32(rv.Float()))
	case reflect.Float64:
		return s.SerializeFloat64(rv.Float())
	case reflect.String:
		return s.SerializeStr(rv.String())
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 && !t.Elem().Implements(serializeType) {
			return s.SerializeBytes(rv.Bytes())
		}
		seq, err := s.SerializeSeq(rv.Len())
		if err != nil {
			return err
		}
		return r.elements(seq, rv)
	case reflect.Array:
		seq, err := s.SerializeTuple(rv.Len())
		if err != nil {
			return err
		}
		return r.elements(seq, rv)
	case reflect.Map:
		return r.serializeMap(s, rv)
	case reflect.Struct:
		return r.serializeStruct(s, rv)
	case reflect.Ptr:
		return s.SerializeSome(r.child(rv.Elem()))
	}
	return Custom("unsupported Go type %s", t)
}

func (r reflected) elements(seq SeqSerializer, rv reflect.Value) error {
	for i := 0; i < rv.Len(); i++ {
		if err := seq.SerializeElement(r.child(rv.Index(i))); err != nil {
			return err
		}
	}
	return seq.End()
}

func (r reflected) serializeMap(s Serializer, rv reflect.Value) error {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return sortKey(keys[i]) < sortKey(keys[j])
	})

	m, err := s.SerializeMap(len(keys))
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := m.SerializeKey(r.child(k)); err != nil {
			return err
		}
		if err := m.SerializeValue(r.child(rv.MapIndex(k))); err != nil {
			return err
		}
	}
	return m.End()
}

func sortKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}

func (r reflected) serializeStruct(s Serializer, rv reflect.Value) error {
	sf := cachedFields(rv.Type())
	if len(sf.list) == 0 {
		return s.SerializeUnitStruct(rv.Type().Name())
	}

	present := make([]field, 0, len(sf.list))
	for _, f := range sf.list {
		if f.omitEmpty && isEmptyValue(rv.FieldByIndex(f.idx)) {
			continue
		}
		present = append(present, f)
	}

	st, err := s.SerializeStruct(rv.Type().Name(), len(present))
	if err != nil {
		return err
	}
	for _, f := range present {
		if err := st.SerializeField(f.name, r.child(rv.FieldByIndex(f.idx))); err != nil {
			return err
		}
	}
	return st.End()
}
