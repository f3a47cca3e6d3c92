package serde

// StrDeserializer presents a single string. It is what map keys and unit
// enum variants are decoded from.
type StrDeserializer string

func (s StrDeserializer) DeserializeAny(v Visitor) error { return v.VisitString(string(s)) }

func (s StrDeserializer) DeserializeOption(v Visitor) error { return v.VisitSome(s) }

func (s StrDeserializer) DeserializeNewtypeStruct(_ string, v Visitor) error {
	return v.VisitNewtypeStruct(s)
}

func (s StrDeserializer) DeserializeSeq(v Visitor) error { return s.DeserializeAny(v) }

func (s StrDeserializer) DeserializeTuple(_ int, v Visitor) error { return s.DeserializeAny(v) }

func (s StrDeserializer) DeserializeMap(v Visitor) error { return s.DeserializeAny(v) }

func (s StrDeserializer) DeserializeStruct(_ string, _ []string, v Visitor) error {
	return s.DeserializeAny(v)
}

func (s StrDeserializer) DeserializeEnum(_ string, _ []string, v Visitor) error {
	return v.VisitEnum(strEnum(s))
}

type strEnum string

func (s strEnum) Variant(dst Deserialize) (VariantAccess, error) {
	if err := dst.Deserialize(StrDeserializer(s)); err != nil {
		return nil, err
	}
	return UnitOnly{}, nil
}

// UnitOnly is the VariantAccess of an enum encoded as a bare variant name.
type UnitOnly struct{}

func (UnitOnly) UnitVariant() error { return nil }

func (UnitOnly) NewtypeVariant(Deserialize) error {
	return InvalidType(UnexpectedUnitVariant, "newtype variant")
}

func (UnitOnly) TupleVariant(int, Visitor) error {
	return InvalidType(UnexpectedUnitVariant, "tuple variant")
}

func (UnitOnly) StructVariant([]string, Visitor) error {
	return InvalidType(UnexpectedUnitVariant, "struct variant")
}

// Ignore consumes and discards any value.
type Ignore struct{}

func (Ignore) Deserialize(d Deserializer) error { return d.DeserializeAny(ignoreVisitor{}) }

type ignoreVisitor struct{}

func (ignoreVisitor) Expecting() string { return "anything at all" }
func (ignoreVisitor) VisitBool(bool) error { return nil }
func (ignoreVisitor) VisitInt64(int64) error { return nil }
func (ignoreVisitor) VisitUint64(uint64) error { return nil }
func (ignoreVisitor) VisitFloat64(float64) error { return nil }
func (ignoreVisitor) VisitString(string) error { return nil }
func (ignoreVisitor) VisitBytes([]byte) error { return nil }
func (ignoreVisitor) VisitNone() error { return nil }
func (ignoreVisitor) VisitUnit() error { return nil }
func (ignoreVisitor) VisitSome(d Deserializer) error { return Ignore{}.Deserialize(d) }
func (ignoreVisitor) VisitNewtypeStruct(d Deserializer) error { return Ignore{}.Deserialize(d) }

func (ignoreVisitor) VisitSeq(a SeqAccess) error {
	for {
		ok, err := a.NextElement(Ignore{})
		if err != nil || !ok {
			return err
		}
	}
}

func (ignoreVisitor) VisitMap(a MapAccess) error {
	for {
		ok, err := a.NextKey(Ignore{})
		if err != nil || !ok {
			return err
		}
		if err := a.NextValue(Ignore{}); err != nil {
			return err
		}
	}
}

func (ignoreVisitor) VisitEnum(a EnumAccess) error {
	va, err := a.Variant(Ignore{})
	if err != nil {
		return err
	}
	return va.NewtypeVariant(Ignore{})
}
