package value

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/dzjyyds666/aqtoml/datetime"
	"github.com/dzjyyds666/aqtoml/parse/toml"
	"github.com/dzjyyds666/aqtoml/serde"
	"github.com/smartystreets/goconvey/convey"
)

// source is a Deserializer that hands every request to one callback.
type source func(serde.Visitor) error

func (s source) DeserializeAny(v serde.Visitor) error { return s(v) }
func (s source) DeserializeOption(v serde.Visitor) error { return s(v) }
func (s source) DeserializeNewtypeStruct(_ string, v serde.Visitor) error { return s(v) }
func (s source) DeserializeSeq(v serde.Visitor) error { return s(v) }
func (s source) DeserializeTuple(_ int, v serde.Visitor) error { return s(v) }
func (s source) DeserializeMap(v serde.Visitor) error { return s(v) }

func (s source) DeserializeStruct(_ string, _ []string, v serde.Visitor) error { return s(v) }

func (s source) DeserializeEnum(_ string, _ []string, v serde.Visitor) error { return s(v) }

type event struct {
	key string
	val serde.Deserializer
}

// mapEvents replays key/value events.
func mapEvents(events ...event) source {
	return func(v serde.Visitor) error { return v.VisitMap(&eventAccess{events: events}) }
}

type eventAccess struct {
	events []event
	cur    *event
}

func (a *eventAccess) NextKey(dst serde.Deserialize) (bool, error) {
	if len(a.events) == 0 {
		return false, nil
	}
	a.cur = &a.events[0]
	a.events = a.events[1:]
	return true, dst.Deserialize(serde.StrDeserializer(a.cur.key))
}

func (a *eventAccess) NextValue(dst serde.Deserialize) error {
	return dst.Deserialize(a.cur.val)
}

func (a *eventAccess) SizeHint() (int, bool) { return len(a.events), true }

func uintSource(n uint64) source {
	return func(v serde.Visitor) error { return v.VisitUint64(n) }
}

type person struct {
	Name  string   `toml:"name"`
	Age   int      `toml:"age"`
	Email *string  `toml:"email"`
	Tags  []string `toml:"tags,omitempty"`
}

func TestRoundTrip(t *testing.T) {
	convey.Convey("a value survives serialize and deserialize", t, func() {
		v := sample()
		again, err := TryFrom(v)
		convey.So(err, convey.ShouldBeNil)
		convey.So(again.Equal(v), convey.ShouldBeTrue)

		var copied Value
		convey.So(v.TryInto(&copied), convey.ShouldBeNil)
		convey.So(copied.Equal(v), convey.ShouldBeTrue)
	})

	convey.Convey("structs go through tables", t, func() {
		email := "a@b.c"
		p := person{Name: "ann", Age: 30, Email: &email, Tags: []string{"x"}}
		v, err := TryFrom(p)
		convey.So(err, convey.ShouldBeNil)
		tbl, _ := v.AsTable()
		convey.So(tbl.Keys(), convey.ShouldResemble, []string{"name", "age", "email", "tags"})

		var back person
		convey.So(v.TryInto(&back), convey.ShouldBeNil)
		convey.So(back, convey.ShouldResemble, p)

		again, err := TryFrom(back)
		convey.So(err, convey.ShouldBeNil)
		convey.So(again.Equal(v), convey.ShouldBeTrue)
	})

	convey.Convey("generic targets see datetimes as strings", t, func() {
		v, err := Parse("when = 1979-05-27T07:32:00Z\nn = [1, 2]\n")
		convey.So(err, convey.ShouldBeNil)
		var out map[string]any
		convey.So(v.TryInto(&out), convey.ShouldBeNil)
		convey.So(out, convey.ShouldResemble, map[string]any{
			"when": "1979-05-27T07:32:00Z",
			"n":    []any{int64(1), int64(2)},
		})

		var dt datetime.Datetime
		convey.So(v.MustGet(Key("when")).TryInto(&dt), convey.ShouldBeNil)
		convey.So(dt.Kind(), convey.ShouldEqual, datetime.Kinds.OffsetDatetime)
	})
}

func TestDecodeIntoValue(t *testing.T) {
	convey.Convey("repeated keys are rejected", t, func() {
		var v Value
		err := v.Deserialize(mapEvents(event{"a", Integer(1)}, event{"a", Integer(2)}))
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(err.Error(), convey.ShouldEqual, "duplicate key: `a`")

		err = v.Deserialize(mapEvents(event{"a", Integer(1)}, event{"b", Integer(2)}))
		convey.So(err, convey.ShouldBeNil)
		tbl, ok := v.AsTable()
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(tbl.Keys(), convey.ShouldResemble, []string{"a", "b"})
	})

	convey.Convey("the datetime sentinel collapses to a datetime", t, func() {
		var v Value
		convey.So(v.Deserialize(mapEvents(event{datetime.Field, serde.StrDeserializer("1979-05-27")})), convey.ShouldBeNil)
		dt, ok := v.AsDatetime()
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(dt.String(), convey.ShouldEqual, "1979-05-27")

		convey.So(v.Deserialize(mapEvents(event{"other", serde.StrDeserializer("1979-05-27")})), convey.ShouldBeNil)
		tbl, ok := v.AsTable()
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(tbl.Len(), convey.ShouldEqual, 1)
		got, _ := tbl.Get("other")
		convey.So(got.Equal(String("1979-05-27")), convey.ShouldBeTrue)

		convey.So(v.Deserialize(mapEvents()), convey.ShouldBeNil)
		convey.So(v.IsTable(), convey.ShouldBeTrue)
		convey.So(v.Equal(TableOf(nil)), convey.ShouldBeTrue)
	})

	convey.Convey("parsed documents keep datetimes", t, func() {
		v, err := Parse("a = 1979-05-27\n[t]\nb = 07:32:00\n")
		convey.So(err, convey.ShouldBeNil)
		convey.So(v.MustGet(Key("a")).IsDatetime(), convey.ShouldBeTrue)
		convey.So(v.MustGet(Key("t")).MustGet(Key("b")).IsDatetime(), convey.ShouldBeTrue)
	})

	convey.Convey("unsigned values must fit in an int64", t, func() {
		var v Value
		convey.So(v.Deserialize(uintSource(math.MaxInt64)), convey.ShouldBeNil)
		convey.So(v.Equal(Integer(int64(math.MaxInt64))), convey.ShouldBeTrue)
		err := v.Deserialize(uintSource(math.MaxInt64 + 1))
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(err.Error(), convey.ShouldEqual, "u64 value was too large")
	})
}

func TestSerializeIntoValue(t *testing.T) {
	convey.Convey("unsigned boundary", t, func() {
		v, err := TryFrom(uint64(math.MaxInt64))
		convey.So(err, convey.ShouldBeNil)
		convey.So(v.Equal(Integer(int64(math.MaxInt64))), convey.ShouldBeTrue)

		_, err = TryFrom(uint64(math.MaxInt64) + 1)
		convey.So(errors.Is(err, ErrOutOfRange), convey.ShouldBeTrue)
		var se *SerError
		convey.So(errors.As(err, &se), convey.ShouldBeTrue)
	})

	convey.Convey("absent optional fields are omitted", t, func() {
		type opts struct {
			A *int `toml:"a"`
			B *int `toml:"b"`
		}
		b := 2
		tbl, err := TableFrom(opts{B: &b})
		convey.So(err, convey.ShouldBeNil)
		convey.So(tbl.Keys(), convey.ShouldResemble, []string{"b"})
		got, _ := tbl.Get("b")
		convey.So(got.Equal(Integer(2)), convey.ShouldBeTrue)
	})

	convey.Convey("scalar shapes widen", t, func() {
		v, err := TryFrom(map[string]any{
			"b":     []byte{1, 2},
			"c":     'x',
			"f":     float32(1.5),
			"u":     uint8(200),
			"inner": &person{Name: "n"},
		})
		convey.So(err, convey.ShouldBeNil)
		convey.So(v.MustGet(Key("b")).Equal(Array(Integer(1), Integer(2))), convey.ShouldBeTrue)
		convey.So(v.MustGet(Key("c")).Equal(Integer('x')), convey.ShouldBeTrue)
		convey.So(v.MustGet(Key("f")).Equal(Float(1.5)), convey.ShouldBeTrue)
		convey.So(v.MustGet(Key("u")).Equal(Integer(200)), convey.ShouldBeTrue)
		inner, _ := v.MustGet(Key("inner")).AsTable()
		convey.So(inner.Keys(), convey.ShouldResemble, []string{"name", "age"})
	})

	convey.Convey("datetimes stay datetimes", t, func() {
		dt, _ := datetime.Parse("2000-01-01T00:00:00Z")
		v, err := TryFrom(map[string]any{"at": dt})
		convey.So(err, convey.ShouldBeNil)
		convey.So(v.MustGet(Key("at")).IsDatetime(), convey.ShouldBeTrue)
	})

	convey.Convey("unrepresentable input fails", t, func() {
		_, err := TryFrom(map[int]string{1: "a"})
		convey.So(errors.Is(err, ErrKeyNotString), convey.ShouldBeTrue)

		_, err = TryFrom((*int)(nil))
		convey.So(errors.Is(err, serde.ErrUnsupportedNone), convey.ShouldBeTrue)

		type marker struct{}
		_, err = TryFrom(marker{})
		var ute *UnsupportedTypeError
		convey.So(errors.As(err, &ute), convey.ShouldBeTrue)
		convey.So(err.Error(), convey.ShouldEqual, "unsupported marker type")

		_, err = TryFrom(unit{})
		convey.So(errors.As(err, &ute), convey.ShouldBeTrue)
		convey.So(ute.Type, convey.ShouldEqual, "unit")
		convey.So(err.Error(), convey.ShouldEqual, "unsupported unit type")

		_, err = TableFrom(unit{})
		convey.So(err.Error(), convey.ShouldEqual, "unsupported unit type")

		_, err = TryFrom(shape{kind: "Named"})
		convey.So(errors.As(err, &ute), convey.ShouldBeTrue)
		convey.So(ute.Type, convey.ShouldEqual, "Shape")
	})

	convey.Convey("table sinks accept only table shapes", t, func() {
		_, err := TableFrom(42)
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(err.Error(), convey.ShouldEqual, "unsupported Go type")

		_, err = TableFrom([]int{1})
		convey.So(err, convey.ShouldNotBeNil)

		_, err = TableFrom((*int)(nil))
		convey.So(errors.Is(err, serde.ErrUnsupportedNone), convey.ShouldBeTrue)
		var se *SerError
		convey.So(errors.As(err, &se), convey.ShouldBeTrue)

		b := 1
		tbl, err := TableFrom(&struct {
			B *int `toml:"b"`
		}{B: &b})
		convey.So(err, convey.ShouldBeNil)
		convey.So(tbl.Keys(), convey.ShouldResemble, []string{"b"})

		tbl, err = TableFrom(shape{kind: "Circle", radius: 1})
		convey.So(err, convey.ShouldBeNil)
		convey.So(tbl.Keys(), convey.ShouldResemble, []string{"Circle"})

		tbl, err = TableFrom(map[string]int{"z": 1, "a": 2})
		convey.So(err, convey.ShouldBeNil)
		convey.So(tbl.Keys(), convey.ShouldResemble, []string{"a", "z"})
	})
}

func TestTextOrdering(t *testing.T) {
	convey.Convey("flat keys are written before headers", t, func() {
		inner := NewTable()
		inner.Insert("x", Integer(1))
		elem := NewTable()
		elem.Insert("y", Integer(2))
		tbl := NewTable()
		tbl.Insert("nested_table", TableOf(inner))
		tbl.Insert("flat_key", String("v"))
		tbl.Insert("array_of_tables", Array(TableOf(elem)))
		v := TableOf(tbl)

		convey.So(tbl.Keys(), convey.ShouldResemble, []string{"nested_table", "flat_key", "array_of_tables"})

		n, err := toml.ToNode(v)
		convey.So(err, convey.ShouldBeNil)
		convey.So(n.(*toml.Table).Keys(), convey.ShouldResemble, []string{"flat_key", "array_of_tables", "nested_table"})

		out := v.String()
		convey.So(out, convey.ShouldEqual, "flat_key = \"v\"\n\n[[array_of_tables]]\ny = 2\n\n[nested_table]\nx = 1\n")
		convey.So(strings.Index(out, "flat_key"), convey.ShouldBeLessThan, strings.Index(out, "[nested_table]"))

		var walked []string
		for k := range tbl.All() {
			walked = append(walked, k)
		}
		convey.So(walked, convey.ShouldResemble, []string{"nested_table", "flat_key", "array_of_tables"})
	})

	convey.Convey("scalars format inline", t, func() {
		convey.So(Integer(5).String(), convey.ShouldEqual, "5")
		convey.So(String("a\"b").String(), convey.ShouldEqual, `"a\"b"`)
		convey.So(Array(Float(2.0), Boolean(true)).String(), convey.ShouldEqual, "[2.0, true]")
	})

	convey.Convey("text round trip", t, func() {
		src := "title = \"x\"\nnums = [1, 2]\n\n[[items]]\nid = 1\n\n[owner]\nname = \"n\"\n"
		v, err := Parse(src)
		convey.So(err, convey.ShouldBeNil)
		convey.So(v.String(), convey.ShouldEqual, src)
		again, err := Parse(v.String())
		convey.So(err, convey.ShouldBeNil)
		convey.So(again.Equal(v), convey.ShouldBeTrue)
	})
}

func TestErrorsCarryKeys(t *testing.T) {
	convey.Convey("nested failures name their path", t, func() {
		v, err := Parse("[person]\nname = 1\n")
		convey.So(err, convey.ShouldBeNil)
		var doc struct {
			Person person `toml:"person"`
		}
		err = v.TryInto(&doc)
		convey.So(err, convey.ShouldNotBeNil)
		var de *DeError
		convey.So(errors.As(err, &de), convey.ShouldBeTrue)
		convey.So(de.Keys, convey.ShouldResemble, []string{"person", "name"})
		convey.So(err.Error(), convey.ShouldEqual, "invalid type: integer `1`, expected a string for key `person.name`")
	})

	convey.Convey("sequences and maps must be consumed", t, func() {
		var pair [2]int
		err := Array(Integer(1), Integer(2), Integer(3)).TryInto(&pair)
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(err.Error(), convey.ShouldEqual, "invalid length 3, expected fewer elements in array")
	})

	convey.Convey("a value needs its key first", t, func() {
		tbl := NewTable()
		tbl.Insert("a", Integer(1))
		for _, v := range []Value{TableOf(nil), TableOf(tbl)} {
			err := v.DeserializeAny(valueFirst{})
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldEqual, "value is missing")
		}
	})

	convey.Convey("missing fields", t, func() {
		var p person
		err := FromPairs(func(yield func(string, Value) bool) {
			yield("name", String("n"))
		}).TryInto(&p)
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(err.Error(), convey.ShouldEqual, "missing field `age`")
	})
}

// valueFirst asks a map for a value without reading a key.
type valueFirst struct{ serde.BaseVisitor }

func (valueFirst) VisitMap(a serde.MapAccess) error { return a.NextValue(serde.Ignore{}) }

// unit serializes as a bare unit.
type unit struct{}

func (unit) Serialize(s serde.Serializer) error { return s.SerializeUnit() }

var shapeVariants = []string{"Point", "Circle", "Pair", "Named"}

// shape is an enum with one variant of every payload kind.
type shape struct {
	kind   string
	radius float64
	pair   [2]int64
}

func (s shape) Serialize(ser serde.Serializer) error {
	switch s.kind {
	case "Point":
		return ser.SerializeUnitVariant("Shape", 0, s.kind)
	case "Circle":
		return ser.SerializeNewtypeVariant("Shape", 1, s.kind, serde.Float(s.radius))
	case "Pair":
		seq, err := ser.SerializeTupleVariant("Shape", 2, s.kind, 2)
		if err != nil {
			return err
		}
		for _, n := range s.pair {
			if err := seq.SerializeElement(serde.Int(n)); err != nil {
				return err
			}
		}
		return seq.End()
	}
	st, err := ser.SerializeStructVariant("Shape", 3, s.kind, 0)
	if err != nil {
		return err
	}
	return st.End()
}

func (s *shape) Deserialize(d serde.Deserializer) error {
	return d.DeserializeEnum("Shape", shapeVariants, &shapeVisitor{serde.BaseVisitor{Expected: "a shape"}, s})
}

type shapeVisitor struct {
	serde.BaseVisitor
	dst *shape
}

func (v *shapeVisitor) VisitEnum(a serde.EnumAccess) error {
	var name string
	va, err := a.Variant(serde.Into(&name))
	if err != nil {
		return err
	}
	v.dst.kind = name
	switch name {
	case "Point":
		return va.UnitVariant()
	case "Circle":
		return va.NewtypeVariant(serde.Into(&v.dst.radius))
	case "Pair":
		return va.TupleVariant(2, &pairVisitor{serde.BaseVisitor{Expected: "a pair"}, &v.dst.pair})
	}
	return serde.UnknownVariant(name, shapeVariants)
}

type pairVisitor struct {
	serde.BaseVisitor
	dst *[2]int64
}

func (v *pairVisitor) VisitSeq(a serde.SeqAccess) error {
	for i := range v.dst {
		ok, err := a.NextElement(serde.Into(&v.dst[i]))
		if err != nil {
			return err
		}
		if !ok {
			return serde.InvalidLength(i, "a pair")
		}
	}
	return nil
}

func TestEnums(t *testing.T) {
	convey.Convey("variants serialize by shape", t, func() {
		v, err := TryFrom(shape{kind: "Point"})
		convey.So(err, convey.ShouldBeNil)
		convey.So(v.Equal(String("Point")), convey.ShouldBeTrue)

		v, err = TryFrom(shape{kind: "Circle", radius: 2})
		convey.So(err, convey.ShouldBeNil)
		convey.So(v.MustGet(Key("Circle")).Equal(Float(2.0)), convey.ShouldBeTrue)

		// Tuple variants lose their name.
		v, err = TryFrom(shape{kind: "Pair", pair: [2]int64{1, 2}})
		convey.So(err, convey.ShouldBeNil)
		convey.So(v.Equal(Array(Integer(1), Integer(2))), convey.ShouldBeTrue)

		var back shape
		wrapped := NewTable()
		wrapped.Insert("Pair", v)
		convey.So(TableOf(wrapped).TryInto(&back), convey.ShouldBeNil)
		convey.So(back, convey.ShouldResemble, shape{kind: "Pair", pair: [2]int64{1, 2}})
	})

	convey.Convey("tables must hold exactly one variant", t, func() {
		var s shape
		convey.So(TableOf(nil).TryInto(&s).Error(), convey.ShouldEqual, "expected exactly 1 element, found 0 elements")

		two, _ := Parse("Point = {}\nCircle = 1.0\n")
		convey.So(two.TryInto(&s).Error(), convey.ShouldEqual, "expected exactly 1 element, more than 1 element")

		one, _ := Parse("Circle = 2.5\n")
		convey.So(one.TryInto(&s), convey.ShouldBeNil)
		convey.So(s, convey.ShouldResemble, shape{kind: "Circle", radius: 2.5})

		point, _ := Parse("Point = {}\n")
		convey.So(point.TryInto(&s), convey.ShouldBeNil)
		convey.So(s.kind, convey.ShouldEqual, "Point")

		full, _ := Parse("[Point]\nx = 1\n")
		convey.So(full.TryInto(&s).Error(), convey.ShouldEqual, "expected empty table")

		scalar, _ := Parse("Point = 1\n")
		convey.So(scalar.TryInto(&s).Error(), convey.ShouldEqual, "invalid type: integer, expected table")

		err := Integer(3).TryInto(&s)
		convey.So(err.Error(), convey.ShouldEqual, "invalid type: integer `3`, expected string only")
	})

	convey.Convey("tuple variants read numbered tables", t, func() {
		var s shape
		v, _ := Parse("[Pair]\n0 = 7\n1 = 8\n")
		convey.So(v.TryInto(&s), convey.ShouldBeNil)
		convey.So(s.pair, convey.ShouldResemble, [2]int64{7, 8})

		v, _ = Parse("[Pair]\n1 = 7\n0 = 8\n")
		convey.So(v.TryInto(&s).Error(), convey.ShouldEqual, "expected table key `0`, but was `1`")

		v, _ = Parse("Pair = [1, 2, 3]\n")
		convey.So(v.TryInto(&s).Error(), convey.ShouldEqual, "expected tuple with length 2")
	})
}
