// Package serde defines a small generic (de)serialization protocol.
//
// A data structure describes itself to a Serializer by implementing
// Serialize, and materializes itself from a Deserializer by implementing
// Deserialize. Formats sit on the other side: a Serializer is a sink that
// receives one call per data shape, a Deserializer is a source that drives a
// Visitor with the shapes it finds.
//
// Ordinary Go values take part through Marshal and Into, which walk the
// value with reflection.
package serde

import "errors"

// ErrUnsupportedNone is returned by sinks that cannot represent an absent
// optional value. Map and struct sinks use it to drop the field instead of
// failing.
var ErrUnsupportedNone = errors.New("unsupported None value")

// Serialize is implemented by any value that can describe itself to a
// Serializer.
type Serialize interface {
	Serialize(s Serializer) error
}

// Serializer is a format sink. Every call describes one complete value.
//
// A length of -1 means the length is not known up front.
type Serializer interface {
	SerializeBool(v bool) error
	SerializeInt8(v int8) error
	SerializeInt16(v int16) error
	SerializeInt32(v int32) error
	SerializeInt64(v int64) error
	SerializeUint8(v uint8) error
	SerializeUint16(v uint16) error
	SerializeUint32(v uint32) error
	SerializeUint64(v uint64) error
	SerializeFloat32(v float32) error
	SerializeFloat64(v float64) error
	SerializeChar(v rune) error
	SerializeStr(v string) error
	SerializeBytes(v []byte) error

	SerializeNone() error
	SerializeSome(v Serialize) error
	SerializeUnit() error
	SerializeUnitStruct(name string) error
	SerializeUnitVariant(name string, index uint32, variant string) error
	SerializeNewtypeStruct(name string, v Serialize) error
	SerializeNewtypeVariant(name string, index uint32, variant string, v Serialize) error

	SerializeSeq(length int) (SeqSerializer, error)
	SerializeTuple(length int) (SeqSerializer, error)
	SerializeTupleStruct(name string, length int) (SeqSerializer, error)
	SerializeTupleVariant(name string, index uint32, variant string, length int) (SeqSerializer, error)
	SerializeMap(length int) (MapSerializer, error)
	SerializeStruct(name string, length int) (StructSerializer, error)
	SerializeStructVariant(name string, index uint32, variant string, length int) (StructSerializer, error)
}

// SeqSerializer receives the elements of a sequence, tuple or tuple variant.
type SeqSerializer interface {
	SerializeElement(v Serialize) error
	End() error
}

// MapSerializer receives alternating keys and values.
type MapSerializer interface {
	SerializeKey(k Serialize) error
	SerializeValue(v Serialize) error
	End() error
}

// StructSerializer receives named fields.
type StructSerializer interface {
	SerializeField(key string, v Serialize) error
	End() error
}

// Primitive adapters, handy for keys and hand-written Serialize methods.
type (
	Bool  bool
	Int   int64
	Uint  uint64
	Float float64
	Str   string
	Bytes []byte
)

func (v Bool) Serialize(s Serializer) error { return s.SerializeBool(bool(v)) }
func (v Int) Serialize(s Serializer) error { return s.SerializeInt64(int64(v)) }
func (v Uint) Serialize(s Serializer) error { return s.SerializeUint64(uint64(v)) }
func (v Float) Serialize(s Serializer) error { return s.SerializeFloat64(float64(v)) }
func (v Str) Serialize(s Serializer) error { return s.SerializeStr(string(v)) }
func (v Bytes) Serialize(s Serializer) error { return s.SerializeBytes([]byte(v)) }

// Unsupported is a Serializer that rejects every request with a
// custom error. Embed it to implement only the shapes a sink accepts.
type Unsupported struct {
	// Reject builds the error for a request. Name is the type or variant
	// name when the request carries one.
	Reject func(kind, name string) error
}

func (u Unsupported) fail(kind, name string) error {
	if u.Reject != nil {
		return u.Reject(kind, name)
	}
	if name != "" {
		return Custom("unsupported %s `%s`", kind, name)
	}
	return Custom("unsupported %s", kind)
}

func (u Unsupported) SerializeBool(bool) error { return u.fail("bool", "") }
func (u Unsupported) SerializeInt8(int8) error { return u.fail("i8", "") }
func (u Unsupported) SerializeInt16(int16) error { return u.fail("i16", "") }
func (u Unsupported) SerializeInt32(int32) error { return u.fail("i32", "") }
func (u Unsupported) SerializeInt64(int64) error { return u.fail("i64", "") }
func (u Unsupported) SerializeUint8(uint8) error { return u.fail("u8", "") }
func (u Unsupported) SerializeUint16(uint16) error { return u.fail("u16", "") }
func (u Unsupported) SerializeUint32(uint32) error { return u.fail("u32", "") }
func (u Unsupported) SerializeUint64(uint64) error { return u.fail("u64", "") }
func (u Unsupported) SerializeFloat32(float32) error { return u.fail("f32", "") }
func (u Unsupported) SerializeFloat64(float64) error { return u.fail("f64", "") }
func (u Unsupported) SerializeChar(rune) error { return u.fail("char", "") }
func (u Unsupported) SerializeStr(string) error { return u.fail("str", "") }
func (u Unsupported) SerializeBytes([]byte) error { return u.fail("bytes", "") }
func (u Unsupported) SerializeNone() error { return u.fail("none", "") }
func (u Unsupported) SerializeSome(Serialize) error { return u.fail("some", "") }
func (u Unsupported) SerializeUnit() error { return u.fail("unit", "") }

func (u Unsupported) SerializeUnitStruct(name string) error {
	return u.fail("unit struct", name)
}

func (u Unsupported) SerializeUnitVariant(name string, _ uint32, _ string) error {
	return u.fail("unit variant", name)
}

func (u Unsupported) SerializeNewtypeStruct(name string, _ Serialize) error {
	return u.fail("newtype struct", name)
}

func (u Unsupported) SerializeNewtypeVariant(name string, _ uint32, _ string, _ Serialize) error {
	return u.fail("newtype variant", name)
}

func (u Unsupported) SerializeSeq(int) (SeqSerializer, error) {
	return nil, u.fail("seq", "")
}

func (u Unsupported) SerializeTuple(int) (SeqSerializer, error) {
	return nil, u.fail("tuple", "")
}

func (u Unsupported) SerializeTupleStruct(name string, _ int) (SeqSerializer, error) {
	return nil, u.fail("tuple struct", name)
}

func (u Unsupported) SerializeTupleVariant(name string, _ uint32, _ string, _ int) (SeqSerializer, error) {
	return nil, u.fail("tuple variant", name)
}

func (u Unsupported) SerializeMap(int) (MapSerializer, error) {
	return nil, u.fail("map", "")
}

func (u Unsupported) SerializeStruct(name string, _ int) (StructSerializer, error) {
	return nil, u.fail("struct", name)
}

func (u Unsupported) SerializeStructVariant(name string, _ uint32, _ string, _ int) (StructSerializer, error) {
	return nil, u.fail("struct variant", name)
}
