package value

import (
	"errors"
	"math"

	"github.com/dzjyyds666/aqtoml/datetime"
	"github.com/dzjyyds666/aqtoml/serde"
)

// TryFrom serializes v into a Value. v may be a serde.Serialize or any Go
// value serde.Marshal understands. Failures are returned as *SerError.
func TryFrom(v any) (Value, error) {
	var out Value
	if err := serializable(v).Serialize(NewValueSerializer(&out)); err != nil {
		return Value{}, &SerError{Err: err}
	}
	return out, nil
}

// TableFrom serializes v, which must be table-shaped, into a Table.
func TableFrom(v any) (*Table, error) {
	out := NewTable()
	if err := serializable(v).Serialize(NewTableSerializer(out)); err != nil {
		return nil, &SerError{Err: err}
	}
	return out, nil
}

func serializable(v any) serde.Serialize {
	if s, ok := v.(serde.Serialize); ok {
		return s
	}
	return serde.Marshal(v)
}

// -------- Value as a Serialize --------

func (v Value) Serialize(s serde.Serializer) error {
	switch v.kind {
	case KindString:
		return s.SerializeStr(v.str)
	case KindInteger:
		return s.SerializeInt64(v.i)
	case KindFloat:
		return s.SerializeFloat64(v.f)
	case KindBoolean:
		return s.SerializeBool(v.b)
	case KindDatetime:
		return v.dt.Serialize(s)
	case KindArray:
		seq, err := s.SerializeSeq(len(v.arr))
		if err != nil {
			return err
		}
		for _, e := range v.arr {
			if err := seq.SerializeElement(e); err != nil {
				return err
			}
		}
		return seq.End()
	case KindTable:
		return v.tbl.Serialize(s)
	}
	return serde.Custom("unknown value kind %d", v.kind)
}

// Serialize emits t as a map in three passes: plain values first, then
// arrays holding a table, then tables. A TOML writer needs every
// assignment of a table before its sub-table headers.
func (t *Table) Serialize(s serde.Serializer) error {
	m, err := s.SerializeMap(t.Len())
	if err != nil {
		return err
	}
	passes := []func(Value) bool{
		func(v Value) bool { return !v.IsTable() && !holdsTable(v) },
		holdsTable,
		Value.IsTable,
	}
	for _, want := range passes {
		for k, v := range t.All() {
			if !want(v) {
				continue
			}
			if err := m.SerializeKey(serde.Str(k)); err != nil {
				return err
			}
			if err := m.SerializeValue(v); err != nil {
				return err
			}
		}
	}
	return m.End()
}

func holdsTable(v Value) bool {
	arr, ok := v.AsArray()
	if !ok {
		return false
	}
	for _, e := range arr {
		if e.IsTable() {
			return true
		}
	}
	return false
}

// -------- Serializers producing values --------

// rejectType names the request's type when it has one. A bare unit is
// named by its kind.
func rejectType(kind, name string) error {
	if name == "" && kind == "unit" {
		name = kind
	}
	return &UnsupportedTypeError{Type: name}
}

// ValueSerializer is a serde sink that builds a Value.
type ValueSerializer struct {
	serde.Unsupported
	out *Value
}

func NewValueSerializer(dst *Value) ValueSerializer {
	return ValueSerializer{Unsupported: serde.Unsupported{Reject: rejectType}, out: dst}
}

func (s ValueSerializer) set(v Value) error {
	*s.out = v
	return nil
}

func (s ValueSerializer) SerializeBool(v bool) error { return s.set(Boolean(v)) }

func (s ValueSerializer) SerializeInt8(v int8) error { return s.set(Integer(v)) }

func (s ValueSerializer) SerializeInt16(v int16) error { return s.set(Integer(v)) }

func (s ValueSerializer) SerializeInt32(v int32) error { return s.set(Integer(v)) }

func (s ValueSerializer) SerializeInt64(v int64) error { return s.set(Integer(v)) }

func (s ValueSerializer) SerializeUint8(v uint8) error { return s.set(Integer(v)) }

func (s ValueSerializer) SerializeUint16(v uint16) error { return s.set(Integer(v)) }

func (s ValueSerializer) SerializeUint32(v uint32) error { return s.set(Integer(v)) }

func (s ValueSerializer) SerializeUint64(v uint64) error {
	if v > math.MaxInt64 {
		return ErrOutOfRange
	}
	return s.set(Integer(int64(v)))
}

func (s ValueSerializer) SerializeFloat32(v float32) error { return s.set(Float(v)) }

func (s ValueSerializer) SerializeFloat64(v float64) error { return s.set(Float(v)) }

func (s ValueSerializer) SerializeChar(v rune) error { return s.set(String(string(v))) }

func (s ValueSerializer) SerializeStr(v string) error { return s.set(String(v)) }

// SerializeBytes stores bytes as an array of integers.
func (s ValueSerializer) SerializeBytes(v []byte) error {
	return s.set(FromSlice(v, Integer[byte]))
}

func (s ValueSerializer) SerializeNone() error { return serde.ErrUnsupportedNone }

func (s ValueSerializer) SerializeSome(v serde.Serialize) error { return v.Serialize(s) }

func (s ValueSerializer) SerializeUnitVariant(_ string, _ uint32, variant string) error {
	return s.set(String(variant))
}

func (s ValueSerializer) SerializeNewtypeStruct(_ string, v serde.Serialize) error {
	return v.Serialize(s)
}

// SerializeNewtypeVariant stores the payload in a one-entry table keyed by
// the variant name.
func (s ValueSerializer) SerializeNewtypeVariant(_ string, _ uint32, variant string, v serde.Serialize) error {
	t, err := newtypeVariant(variant, v)
	if err != nil {
		return err
	}
	return s.set(TableOf(t))
}

func newtypeVariant(variant string, v serde.Serialize) (*Table, error) {
	var inner Value
	if err := v.Serialize(NewValueSerializer(&inner)); err != nil {
		return nil, err
	}
	t := NewTable()
	t.Insert(variant, inner)
	return t, nil
}

func (s ValueSerializer) SerializeSeq(length int) (serde.SeqSerializer, error) {
	return &seqBuilder{out: s.out, arr: make([]Value, 0, max(length, 0))}, nil
}

func (s ValueSerializer) SerializeTuple(length int) (serde.SeqSerializer, error) {
	return s.SerializeSeq(length)
}

func (s ValueSerializer) SerializeTupleStruct(_ string, length int) (serde.SeqSerializer, error) {
	return s.SerializeSeq(length)
}

func (s ValueSerializer) SerializeTupleVariant(_ string, _ uint32, _ string, length int) (serde.SeqSerializer, error) {
	return s.SerializeSeq(length)
}

func (s ValueSerializer) SerializeMap(int) (serde.MapSerializer, error) {
	return s.tableBuilder(), nil
}

func (s ValueSerializer) SerializeStruct(name string, _ int) (serde.StructSerializer, error) {
	if name == datetime.StructName {
		return &datetimeBuilder{out: s.out}, nil
	}
	return s.tableBuilder(), nil
}

func (s ValueSerializer) tableBuilder() *tableBuilder {
	return &tableBuilder{t: NewTable(), done: func(t *Table) { *s.out = TableOf(t) }}
}

type seqBuilder struct {
	out *Value
	arr []Value
}

func (b *seqBuilder) SerializeElement(v serde.Serialize) error {
	var e Value
	if err := v.Serialize(NewValueSerializer(&e)); err != nil {
		return err
	}
	b.arr = append(b.arr, e)
	return nil
}

func (b *seqBuilder) End() error {
	*b.out = Value{kind: KindArray, arr: b.arr}
	return nil
}

// tableBuilder collects map entries and struct fields. A value that
// serializes to None is left out.
type tableBuilder struct {
	t    *Table
	key  *string
	done func(*Table)
}

func (b *tableBuilder) SerializeKey(k serde.Serialize) error {
	var kv Value
	if err := k.Serialize(NewValueSerializer(&kv)); err != nil {
		return err
	}
	key, ok := kv.AsStr()
	if !ok {
		return ErrKeyNotString
	}
	b.key = &key
	return nil
}

func (b *tableBuilder) SerializeValue(v serde.Serialize) error {
	if b.key == nil {
		return serde.Custom("map value serialized before its key")
	}
	key := *b.key
	b.key = nil
	return b.SerializeField(key, v)
}

func (b *tableBuilder) SerializeField(key string, v serde.Serialize) error {
	var val Value
	err := v.Serialize(NewValueSerializer(&val))
	switch {
	case errors.Is(err, serde.ErrUnsupportedNone):
		return nil
	case err != nil:
		return err
	}
	b.t.Insert(key, val)
	return nil
}

func (b *tableBuilder) End() error {
	b.done(b.t)
	return nil
}

type datetimeBuilder struct {
	out *Value
	dt  *datetime.Datetime
}

func (b *datetimeBuilder) SerializeField(key string, v serde.Serialize) error {
	if key != datetime.Field {
		return serde.Custom("unexpected datetime field `%s`", key)
	}
	var raw Value
	if err := v.Serialize(NewValueSerializer(&raw)); err != nil {
		return err
	}
	s, ok := raw.AsStr()
	if !ok {
		return serde.Custom("datetime field must be a string, found %s", raw.TypeStr())
	}
	dt, err := datetime.Parse(s)
	if err != nil {
		return err
	}
	b.dt = &dt
	return nil
}

func (b *datetimeBuilder) End() error {
	if b.dt == nil {
		return serde.Custom("datetime key not found")
	}
	*b.out = DatetimeOf(*b.dt)
	return nil
}

// TableSerializer is a serde sink that only accepts table-shaped input:
// maps, structs, newtype structs, newtype variants and Some.
type TableSerializer struct {
	serde.Unsupported
	out *Table
}

// NewTableSerializer returns a sink that fills dst, which must be empty.
func NewTableSerializer(dst *Table) TableSerializer {
	return TableSerializer{Unsupported: serde.Unsupported{Reject: rejectType}, out: dst}
}

func (s TableSerializer) fill(t *Table) { *s.out = *t }

func (s TableSerializer) SerializeNone() error { return serde.ErrUnsupportedNone }

func (s TableSerializer) SerializeSome(v serde.Serialize) error { return v.Serialize(s) }

func (s TableSerializer) SerializeNewtypeStruct(_ string, v serde.Serialize) error {
	return v.Serialize(s)
}

func (s TableSerializer) SerializeNewtypeVariant(_ string, _ uint32, variant string, v serde.Serialize) error {
	t, err := newtypeVariant(variant, v)
	if err != nil {
		return err
	}
	s.fill(t)
	return nil
}

func (s TableSerializer) SerializeMap(int) (serde.MapSerializer, error) {
	return &tableBuilder{t: NewTable(), done: s.fill}, nil
}

func (s TableSerializer) SerializeStruct(name string, _ int) (serde.StructSerializer, error) {
	if name == datetime.StructName {
		return nil, &UnsupportedTypeError{Type: KindDatetime.String()}
	}
	return &tableBuilder{t: NewTable(), done: s.fill}, nil
}
