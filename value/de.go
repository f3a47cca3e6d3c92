package value

import (
	"math"
	"strconv"

	"github.com/dzjyyds666/aqtoml/datetime"
	"github.com/dzjyyds666/aqtoml/serde"
)

// TryInto decodes v into the value pointed to by ptr. ptr may be a
// serde.Deserialize or any pointer serde.Into understands. Failures are
// returned as *DeError.
func (v Value) TryInto(ptr any) error {
	target, ok := ptr.(serde.Deserialize)
	if !ok {
		target = serde.Into(ptr)
	}
	if err := target.Deserialize(v); err != nil {
		return asDeError(err)
	}
	return nil
}

func (v Value) unexpected() serde.Unexpected {
	switch v.kind {
	case KindString:
		return serde.UnexpectedStr(v.str)
	case KindInteger:
		return serde.UnexpectedInt(v.i)
	case KindFloat:
		return serde.UnexpectedFloat(v.f)
	case KindBoolean:
		return serde.UnexpectedBool(v.b)
	case KindArray:
		return serde.UnexpectedSeq
	case KindTable:
		return serde.UnexpectedMap
	}
	return serde.Unexpected(v.TypeStr())
}

// -------- Value as a Deserializer --------

// DeserializeAny feeds v to the visitor. A datetime is fed as its string
// form. Arrays and tables must be consumed completely.
func (v Value) DeserializeAny(vis serde.Visitor) error {
	switch v.kind {
	case KindString:
		return vis.VisitString(v.str)
	case KindInteger:
		return vis.VisitInt64(v.i)
	case KindFloat:
		return vis.VisitFloat64(v.f)
	case KindBoolean:
		return vis.VisitBool(v.b)
	case KindDatetime:
		return vis.VisitString(v.dt.String())
	case KindArray:
		acc := &seqAccess{elems: v.arr}
		if err := vis.VisitSeq(acc); err != nil {
			return err
		}
		if len(acc.elems) != 0 {
			return serde.InvalidLength(len(v.arr), "fewer elements in array")
		}
		return nil
	case KindTable:
		acc := newMapAccess(v.tbl)
		if err := vis.VisitMap(acc); err != nil {
			return err
		}
		if acc.pos != len(acc.entries) {
			return serde.InvalidLength(len(acc.entries), "fewer elements in map")
		}
		return nil
	}
	return serde.Custom("unknown value kind %d", v.kind)
}

// DeserializeOption always visits Some: a present value is never null.
func (v Value) DeserializeOption(vis serde.Visitor) error { return vis.VisitSome(v) }

func (v Value) DeserializeNewtypeStruct(_ string, vis serde.Visitor) error {
	return vis.VisitNewtypeStruct(v)
}

func (v Value) DeserializeSeq(vis serde.Visitor) error { return v.DeserializeAny(vis) }

func (v Value) DeserializeTuple(_ int, vis serde.Visitor) error { return v.DeserializeAny(vis) }

func (v Value) DeserializeMap(vis serde.Visitor) error { return v.DeserializeAny(vis) }

func (v Value) DeserializeStruct(_ string, _ []string, vis serde.Visitor) error {
	return v.DeserializeAny(vis)
}

// DeserializeEnum reads a string as a unit variant and a one-entry table
// as variant name to payload.
func (v Value) DeserializeEnum(name string, variants []string, vis serde.Visitor) error {
	switch v.kind {
	case KindString:
		return serde.StrDeserializer(v.str).DeserializeEnum(name, variants, vis)
	case KindTable:
		switch v.tbl.Len() {
		case 0:
			return serde.Custom("expected exactly 1 element, found 0 elements")
		case 1:
			return vis.VisitEnum(newMapAccess(v.tbl))
		default:
			return serde.Custom("expected exactly 1 element, more than 1 element")
		}
	}
	return serde.InvalidType(v.unexpected(), "string only")
}

type seqAccess struct {
	elems []Value
}

func (a *seqAccess) NextElement(dst serde.Deserialize) (bool, error) {
	if len(a.elems) == 0 {
		return false, nil
	}
	e := a.elems[0]
	a.elems = a.elems[1:]
	return true, dst.Deserialize(e)
}

func (a *seqAccess) SizeHint() (int, bool) { return len(a.elems), true }

// mapAccess walks a table. It is also the enum access for a one-entry
// table.
type mapAccess struct {
	entries []*entry
	pos     int
	pending *entry
}

func newMapAccess(t *Table) *mapAccess {
	if t == nil {
		return &mapAccess{}
	}
	return &mapAccess{entries: t.entries}
}

func (a *mapAccess) NextKey(dst serde.Deserialize) (bool, error) {
	if a.pos >= len(a.entries) {
		return false, nil
	}
	e := a.entries[a.pos]
	a.pos++
	a.pending = e
	return true, dst.Deserialize(serde.StrDeserializer(e.key))
}

func (a *mapAccess) NextValue(dst serde.Deserialize) error {
	e := a.pending
	if e == nil {
		return serde.Custom("value is missing")
	}
	a.pending = nil
	if err := dst.Deserialize(e.value); err != nil {
		return withKey(err, e.key)
	}
	return nil
}

func (a *mapAccess) SizeHint() (int, bool) { return len(a.entries) - a.pos, true }

func (a *mapAccess) Variant(dst serde.Deserialize) (serde.VariantAccess, error) {
	if a.pos >= len(a.entries) {
		return nil, serde.Custom("expected table with exactly 1 entry, found empty table")
	}
	e := a.entries[a.pos]
	a.pos++
	if err := dst.Deserialize(serde.StrDeserializer(e.key)); err != nil {
		return nil, err
	}
	return variantAccess{key: e.key, val: e.value}, nil
}

type variantAccess struct {
	key string
	val Value
}

func (va variantAccess) UnitVariant() error {
	t, ok := va.val.AsTable()
	if !ok {
		return serde.InvalidType(serde.Unexpected(va.val.TypeStr()), "table")
	}
	if !t.IsEmpty() {
		return serde.Custom("expected empty table")
	}
	return nil
}

func (va variantAccess) NewtypeVariant(dst serde.Deserialize) error {
	if err := dst.Deserialize(va.val); err != nil {
		return withKey(err, va.key)
	}
	return nil
}

// TupleVariant accepts a table keyed "0", "1", ... in order, or an array.
func (va variantAccess) TupleVariant(length int, vis serde.Visitor) error {
	var elems []Value
	switch va.val.kind {
	case KindArray:
		elems = va.val.arr
	case KindTable:
		elems = make([]Value, 0, va.val.tbl.Len())
		for k, child := range va.val.tbl.All() {
			want := len(elems)
			if k != strconv.Itoa(want) {
				return serde.Custom("expected table key `%d`, but was `%s`", want, k)
			}
			elems = append(elems, child)
		}
	default:
		return serde.InvalidType(va.val.unexpected(), "tuple variant")
	}
	if len(elems) != length {
		return serde.Custom("expected tuple with length %d", length)
	}
	acc := &seqAccess{elems: elems}
	if err := vis.VisitSeq(acc); err != nil {
		return withKey(err, va.key)
	}
	if len(acc.elems) != 0 {
		return serde.InvalidLength(length, "fewer elements in array")
	}
	return nil
}

func (va variantAccess) StructVariant(fields []string, vis serde.Visitor) error {
	if err := va.val.DeserializeStruct("", fields, vis); err != nil {
		return withKey(err, va.key)
	}
	return nil
}

// -------- decoding into a Value --------

// Deserialize builds v from any serde source. A map whose first key is
// datetime.Field becomes a datetime; repeated map keys are an error.
func (v *Value) Deserialize(d serde.Deserializer) error {
	switch src := d.(type) {
	case Value:
		*v = src.Clone()
		return nil
	case *Value:
		*v = src.Clone()
		return nil
	}
	return d.DeserializeAny(&visitor{serde.BaseVisitor{Expected: "any valid TOML value"}, v})
}

type visitor struct {
	serde.BaseVisitor
	dst *Value
}

func (vi *visitor) VisitBool(b bool) error {
	*vi.dst = Boolean(b)
	return nil
}

func (vi *visitor) VisitInt64(n int64) error {
	*vi.dst = Integer(n)
	return nil
}

func (vi *visitor) VisitUint64(n uint64) error {
	if n > math.MaxInt64 {
		return serde.Custom("u64 value was too large")
	}
	*vi.dst = Integer(int64(n))
	return nil
}

func (vi *visitor) VisitFloat64(f float64) error {
	*vi.dst = Float(f)
	return nil
}

func (vi *visitor) VisitString(s string) error {
	*vi.dst = String(s)
	return nil
}

func (vi *visitor) VisitSome(d serde.Deserializer) error { return vi.dst.Deserialize(d) }

func (vi *visitor) VisitNewtypeStruct(d serde.Deserializer) error { return vi.dst.Deserialize(d) }

func (vi *visitor) VisitSeq(a serde.SeqAccess) error {
	n, _ := a.SizeHint()
	arr := make([]Value, 0, n)
	for {
		var e Value
		ok, err := a.NextElement(&e)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		arr = append(arr, e)
	}
	*vi.dst = Value{kind: KindArray, arr: arr}
	return nil
}

func (vi *visitor) VisitMap(a serde.MapAccess) error {
	var key string
	ok, err := a.NextKey(serde.Into(&key))
	if err != nil {
		return err
	}
	if !ok {
		*vi.dst = TableOf(nil)
		return nil
	}
	if key == datetime.Field {
		var dt datetime.Datetime
		if err := a.NextValue(&dt); err != nil {
			return err
		}
		*vi.dst = DatetimeOf(dt)
		return nil
	}

	t := NewTable()
	var first Value
	if err := a.NextValue(&first); err != nil {
		return err
	}
	t.Insert(key, first)
	for {
		ok, err := a.NextKey(serde.Into(&key))
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		e := t.Entry(key)
		if e.IsOccupied() {
			return serde.Custom("duplicate key: `%s`", key)
		}
		var val Value
		if err := a.NextValue(&val); err != nil {
			return err
		}
		e.Insert(val)
	}
	*vi.dst = TableOf(t)
	return nil
}
