// Package value is the in-memory model of a TOML document.
//
// A Value is one of seven kinds: string, integer, float, boolean, datetime,
// array or table. Values convert to and from any type that speaks the serde
// protocol: TryFrom serializes a Go value into a Value, TryInto decodes a
// Value into a Go value.
//
// Arrays and tables own their children. Copying a Value copies the handle,
// not the tree; use Clone for an independent copy.
package value

import (
	"iter"
	"maps"
	"slices"

	"github.com/dzjyyds666/aqtoml/datetime"
)

type Kind uint8

const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindDatetime
	KindArray
	KindTable
)

var kindNames = [...]string{
	KindString:   "string",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindBoolean:  "boolean",
	KindDatetime: "datetime",
	KindArray:    "array",
	KindTable:    "table",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a TOML value. The zero Value is the empty string.
type Value struct {
	kind Kind
	str  string
	i    int64
	f    float64
	b    bool
	dt   datetime.Datetime
	arr  []Value
	tbl  *Table
}

// Int lists the integer types that widen to a TOML integer without loss.
type Int interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
}

func String(s string) Value { return Value{kind: KindString, str: s} }

func Integer[T Int](n T) Value { return Value{kind: KindInteger, i: int64(n)} }

func Float[T ~float32 | ~float64](f T) Value { return Value{kind: KindFloat, f: float64(f)} }

func Boolean(b bool) Value { return Value{kind: KindBoolean, b: b} }

func DatetimeOf(d datetime.Datetime) Value { return Value{kind: KindDatetime, dt: d} }

// Array builds an array value from vs.
func Array(vs ...Value) Value {
	return Value{kind: KindArray, arr: slices.Clone(vs)}
}

// TableOf wraps t. A nil t becomes an empty table.
func TableOf(t *Table) Value {
	if t == nil {
		t = NewTable()
	}
	return Value{kind: KindTable, tbl: t}
}

// FromSlice converts every element with conv.
func FromSlice[T any](s []T, conv func(T) Value) Value {
	arr := make([]Value, len(s))
	for i, e := range s {
		arr[i] = conv(e)
	}
	return Value{kind: KindArray, arr: arr}
}

// FromMap converts a Go map. Keys are inserted in sorted order.
func FromMap[K ~string, V any](m map[K]V, conv func(V) Value) Value {
	t := NewTable()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		t.Insert(string(k), conv(m[k]))
	}
	return TableOf(t)
}

// FromPairs builds a table keeping the order of seq. Later duplicates
// replace earlier values in place.
func FromPairs(seq iter.Seq2[string, Value]) Value {
	t := NewTable()
	for k, v := range seq {
		t.Insert(k, v)
	}
	return TableOf(t)
}

func (v Value) Kind() Kind { return v.kind }

// TypeStr names the kind for error messages.
func (v Value) TypeStr() string { return v.kind.String() }

// SameType reports whether v and o are the same kind, whatever their
// payloads.
func (v Value) SameType(o Value) bool { return v.kind == o.kind }

func (v Value) AsStr() (string, bool) { return v.str, v.kind == KindString }

func (v Value) AsInteger() (int64, bool) { return v.i, v.kind == KindInteger }

func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBoolean }

func (v Value) AsDatetime() (datetime.Datetime, bool) { return v.dt, v.kind == KindDatetime }

func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsArrayMut returns the backing slice of an array value so elements can
// be appended or removed, or nil for any other kind.
func (v *Value) AsArrayMut() *[]Value {
	if v.kind != KindArray {
		return nil
	}
	return &v.arr
}

func (v Value) AsTable() (*Table, bool) {
	if v.kind != KindTable {
		return nil, false
	}
	return v.tbl, true
}

// AsTableMut returns the table of a table value, or nil.
func (v *Value) AsTableMut() *Table {
	if v.kind != KindTable {
		return nil
	}
	if v.tbl == nil {
		v.tbl = NewTable()
	}
	return v.tbl
}

func (v Value) IsStr() bool { return v.kind == KindString }

func (v Value) IsInteger() bool { return v.kind == KindInteger }

func (v Value) IsFloat() bool { return v.kind == KindFloat }

func (v Value) IsBool() bool { return v.kind == KindBoolean }

func (v Value) IsDatetime() bool { return v.kind == KindDatetime }

func (v Value) IsArray() bool { return v.kind == KindArray }

func (v Value) IsTable() bool { return v.kind == KindTable }

// Equal reports structural equality. Tables compare without regard to key
// order. Floats compare with ==, so NaN is never equal to itself.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindInteger:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBoolean:
		return v.b == o.b
	case KindDatetime:
		return v.dt.Equal(o.dt)
	case KindArray:
		return slices.EqualFunc(v.arr, o.arr, Value.Equal)
	case KindTable:
		return v.tbl.Equal(o.tbl)
	}
	return false
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		arr := make([]Value, len(v.arr))
		for i := range v.arr {
			arr[i] = v.arr[i].Clone()
		}
		v.arr = arr
	case KindTable:
		v.tbl = v.tbl.Clone()
	}
	return v
}
