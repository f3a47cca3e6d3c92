package serde

// Deserialize is implemented by pointer targets that can fill themselves
// from a Deserializer.
type Deserialize interface {
	Deserialize(d Deserializer) error
}

// Deserializer is a data source. Each method is a hint about the shape the
// caller expects; a self-describing source is free to answer every hint by
// inspecting its own data, which is what DeserializeAny does.
//
// Width-specific scalar requests are not part of the protocol. Visitors
// receive 64-bit values and narrow them themselves.
type Deserializer interface {
	DeserializeAny(v Visitor) error
	DeserializeOption(v Visitor) error
	DeserializeNewtypeStruct(name string, v Visitor) error
	DeserializeSeq(v Visitor) error
	DeserializeTuple(length int, v Visitor) error
	DeserializeMap(v Visitor) error
	DeserializeStruct(name string, fields []string, v Visitor) error
	DeserializeEnum(name string, variants []string, v Visitor) error
}

// Visitor receives whatever shape a Deserializer finds. It stores the result
// in its own target and reports failures through the returned error.
type Visitor interface {
	// Expecting names what the visitor accepts, e.g. "a string".
	Expecting() string

	VisitBool(v bool) error
	VisitInt64(v int64) error
	VisitUint64(v uint64) error
	VisitFloat64(v float64) error
	VisitString(v string) error
	VisitBytes(v []byte) error
	VisitNone() error
	VisitSome(d Deserializer) error
	VisitUnit() error
	VisitNewtypeStruct(d Deserializer) error
	VisitSeq(a SeqAccess) error
	VisitMap(a MapAccess) error
	VisitEnum(a EnumAccess) error
}

// SeqAccess hands out the elements of a sequence one at a time.
type SeqAccess interface {
	// NextElement decodes the next element into dst. It reports false once
	// the sequence is exhausted.
	NextElement(dst Deserialize) (bool, error)
	// SizeHint returns the number of remaining elements when it is known
	// exactly.
	SizeHint() (int, bool)
}

// MapAccess hands out map entries one key and one value at a time.
type MapAccess interface {
	NextKey(dst Deserialize) (bool, error)
	NextValue(dst Deserialize) error
	SizeHint() (int, bool)
}

// EnumAccess identifies the variant of an enum.
type EnumAccess interface {
	Variant(dst Deserialize) (VariantAccess, error)
}

// VariantAccess decodes the payload of the variant chosen by EnumAccess.
type VariantAccess interface {
	UnitVariant() error
	NewtypeVariant(dst Deserialize) error
	TupleVariant(length int, v Visitor) error
	StructVariant(fields []string, v Visitor) error
}

// BaseVisitor rejects every shape with an invalid type error. Embed it and
// override the methods for the shapes a visitor accepts.
type BaseVisitor struct {
	Expected string
}

func (b BaseVisitor) Expecting() string { return b.Expected }

func (b BaseVisitor) VisitBool(v bool) error {
	return InvalidType(UnexpectedBool(v), b.Expected)
}

func (b BaseVisitor) VisitInt64(v int64) error {
	return InvalidType(UnexpectedInt(v), b.Expected)
}

func (b BaseVisitor) VisitUint64(v uint64) error {
	return InvalidType(UnexpectedUint(v), b.Expected)
}

func (b BaseVisitor) VisitFloat64(v float64) error {
	return InvalidType(UnexpectedFloat(v), b.Expected)
}

func (b BaseVisitor) VisitString(v string) error {
	return InvalidType(UnexpectedStr(v), b.Expected)
}

func (b BaseVisitor) VisitBytes([]byte) error {
	return InvalidType(UnexpectedBytes, b.Expected)
}

func (b BaseVisitor) VisitNone() error {
	return InvalidType(UnexpectedOption, b.Expected)
}

func (b BaseVisitor) VisitSome(Deserializer) error {
	return InvalidType(UnexpectedOption, b.Expected)
}

func (b BaseVisitor) VisitUnit() error {
	return InvalidType(UnexpectedUnit, b.Expected)
}

func (b BaseVisitor) VisitNewtypeStruct(Deserializer) error {
	return InvalidType(UnexpectedNewtypeStruct, b.Expected)
}

func (b BaseVisitor) VisitSeq(SeqAccess) error {
	return InvalidType(UnexpectedSeq, b.Expected)
}

func (b BaseVisitor) VisitMap(MapAccess) error {
	return InvalidType(UnexpectedMap, b.Expected)
}

func (b BaseVisitor) VisitEnum(EnumAccess) error {
	return InvalidType(UnexpectedEnum, b.Expected)
}
