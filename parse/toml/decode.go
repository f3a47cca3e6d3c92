package toml

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/dzjyyds666/aqtoml/datetime"
	"github.com/dzjyyds666/aqtoml/serde"
)

// =========================
// Decoding
// =========================

// Unmarshal parses data and stores the result in the value pointed to by v.
// v may be any Go value serde.Into understands, or a serde.Deserialize.
func Unmarshal(data []byte, v any) error {
	return Decode(bytes.NewReader(data), v)
}

// Decode parses r and stores the result in the value pointed to by v.
func Decode(r io.Reader, v any) error {
	root, err := Parse(r)
	if err != nil {
		return err
	}
	return DecodeNode(root, v)
}

// DecodeNode stores an already parsed node in the value pointed to by v.
func DecodeNode(n Node, v any) error {
	target, ok := v.(serde.Deserialize)
	if !ok {
		target = serde.Into(v)
	}
	return target.Deserialize(NewDeserializer(n))
}

// KeyError is a decoding failure annotated with the key path it happened
// under.
type KeyError struct {
	Keys []string
	Err  error
}

func (e *KeyError) Error() string {
	return "toml: " + e.Err.Error() + " for key `" + strings.Join(e.Keys, ".") + "`"
}

func (e *KeyError) Unwrap() error { return e.Err }

func withKey(err error, key string) error {
	var ke *KeyError
	if errors.As(err, &ke) {
		ke.Keys = append([]string{key}, ke.Keys...)
		return ke
	}
	return &KeyError{Keys: []string{key}, Err: err}
}

// NewDeserializer returns a serde.Deserializer over n. Datetime values
// are presented as a single-entry map keyed by datetime.Field, so a
// dynamic target can tell them apart from tables.
func NewDeserializer(n Node) serde.Deserializer {
	return nodeDeserializer{n}
}

type nodeDeserializer struct {
	n Node
}

func (d nodeDeserializer) DeserializeAny(v serde.Visitor) error {
	switch n := d.n.(type) {
	case *Value:
		switch {
		case n.Type == tomlValueKinds.ValueString:
			return v.VisitString(n.V.(string))
		case n.Type == tomlValueKinds.ValueInt:
			return v.VisitInt64(n.V.(int64))
		case n.Type == tomlValueKinds.ValueFloat:
			return v.VisitFloat64(n.V.(float64))
		case n.Type == tomlValueKinds.ValueBool:
			return v.VisitBool(n.V.(bool))
		case n.Type.IsDatetime():
			return v.VisitMap(&datetimeAccess{dt: n.V.(datetime.Datetime)})
		}
		return serde.Custom("unknown value kind %s", n.Type)
	case *Array:
		acc := &seqAccess{elems: n.Elems}
		if err := v.VisitSeq(acc); err != nil {
			return err
		}
		if len(acc.elems) != 0 {
			return serde.InvalidLength(len(n.Elems), "fewer elements in array")
		}
		return nil
	case *Table:
		acc := &mapAccess{t: n}
		if err := v.VisitMap(acc); err != nil {
			return err
		}
		if acc.pos != n.Len() {
			return serde.InvalidLength(n.Len(), "fewer elements in map")
		}
		return nil
	}
	return serde.Custom("unknown node %T", d.n)
}

func (d nodeDeserializer) DeserializeOption(v serde.Visitor) error { return v.VisitSome(d) }

func (d nodeDeserializer) DeserializeNewtypeStruct(_ string, v serde.Visitor) error {
	return v.VisitNewtypeStruct(d)
}

func (d nodeDeserializer) DeserializeSeq(v serde.Visitor) error { return d.DeserializeAny(v) }

func (d nodeDeserializer) DeserializeTuple(_ int, v serde.Visitor) error {
	return d.DeserializeAny(v)
}

func (d nodeDeserializer) DeserializeMap(v serde.Visitor) error { return d.DeserializeAny(v) }

func (d nodeDeserializer) DeserializeStruct(_ string, _ []string, v serde.Visitor) error {
	return d.DeserializeAny(v)
}

// DeserializeEnum reads a bare string as a unit variant and a
// single-entry table as variant = payload.
func (d nodeDeserializer) DeserializeEnum(name string, variants []string, v serde.Visitor) error {
	switch n := d.n.(type) {
	case *Value:
		if n.Type == tomlValueKinds.ValueString {
			return serde.StrDeserializer(n.V.(string)).DeserializeEnum(name, variants, v)
		}
	case *Table:
		switch n.Len() {
		case 0:
			return serde.Custom("expected exactly 1 element, found 0 elements")
		case 1:
			key := n.keys[0]
			return v.VisitEnum(&tableEnum{key: key, val: n.items[key]})
		default:
			return serde.Custom("expected exactly 1 element, more than 1 element")
		}
	}
	return serde.InvalidType(serde.UnexpectedUnitVariant, "string or table")
}

type seqAccess struct {
	elems []Node
}

func (a *seqAccess) NextElement(dst serde.Deserialize) (bool, error) {
	if len(a.elems) == 0 {
		return false, nil
	}
	n := a.elems[0]
	a.elems = a.elems[1:]
	return true, dst.Deserialize(nodeDeserializer{n})
}

func (a *seqAccess) SizeHint() (int, bool) { return len(a.elems), true }

type mapAccess struct {
	t       *Table
	pos     int
	pending bool
}

func (a *mapAccess) NextKey(dst serde.Deserialize) (bool, error) {
	if a.pos >= a.t.Len() {
		return false, nil
	}
	a.pending = true
	return true, dst.Deserialize(serde.StrDeserializer(a.t.keys[a.pos]))
}

func (a *mapAccess) NextValue(dst serde.Deserialize) error {
	if !a.pending {
		return serde.Custom("value is missing")
	}
	a.pending = false
	key := a.t.keys[a.pos]
	a.pos++
	if err := dst.Deserialize(nodeDeserializer{a.t.items[key]}); err != nil {
		return withKey(err, key)
	}
	return nil
}

func (a *mapAccess) SizeHint() (int, bool) { return a.t.Len() - a.pos, true }

// datetimeAccess is the one-entry sentinel map for a datetime value.
type datetimeAccess struct {
	dt   datetime.Datetime
	done bool
}

func (a *datetimeAccess) NextKey(dst serde.Deserialize) (bool, error) {
	if a.done {
		return false, nil
	}
	return true, dst.Deserialize(serde.StrDeserializer(datetime.Field))
}

func (a *datetimeAccess) NextValue(dst serde.Deserialize) error {
	if a.done {
		return serde.Custom("value is missing")
	}
	a.done = true
	return dst.Deserialize(serde.StrDeserializer(a.dt.String()))
}

func (a *datetimeAccess) SizeHint() (int, bool) {
	if a.done {
		return 0, true
	}
	return 1, true
}

type tableEnum struct {
	key string
	val Node
}

func (e *tableEnum) Variant(dst serde.Deserialize) (serde.VariantAccess, error) {
	if err := dst.Deserialize(serde.StrDeserializer(e.key)); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *tableEnum) UnitVariant() error {
	t, ok := e.val.(*Table)
	if !ok {
		return serde.Custom("expected table, found %s", e.val.Kind())
	}
	if t.Len() != 0 {
		return serde.Custom("expected empty table")
	}
	return nil
}

func (e *tableEnum) NewtypeVariant(dst serde.Deserialize) error {
	return withKeyErr(dst.Deserialize(nodeDeserializer{e.val}), e.key)
}

func (e *tableEnum) TupleVariant(_ int, v serde.Visitor) error {
	return withKeyErr(nodeDeserializer{e.val}.DeserializeSeq(v), e.key)
}

func (e *tableEnum) StructVariant(_ []string, v serde.Visitor) error {
	return withKeyErr(nodeDeserializer{e.val}.DeserializeAny(v), e.key)
}

func withKeyErr(err error, key string) error {
	if err == nil {
		return nil
	}
	return withKey(err, key)
}
