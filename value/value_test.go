package value

import (
	"maps"
	"math"
	"testing"

	"github.com/dzjyyds666/aqtoml/datetime"
	"github.com/smartystreets/goconvey/convey"
)

func sample() Value {
	t := NewTable()
	t.Insert("name", String("aq"))
	t.Insert("port", Integer(8080))
	t.Insert("ratio", Float(float32(0.5)))
	t.Insert("on", Boolean(true))
	t.Insert("list", Array(Integer(int8(1)), Integer(uint16(2))))
	inner := NewTable()
	inner.Insert("k", String("v"))
	t.Insert("sub", TableOf(inner))
	return TableOf(t)
}

func TestKindsAndAccessors(t *testing.T) {
	convey.Convey("accessors report the kind they match", t, func() {
		var zero Value
		s, ok := zero.AsStr()
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(s, convey.ShouldEqual, "")
		convey.So(zero.TypeStr(), convey.ShouldEqual, "string")

		n := Integer(int32(-7))
		i, ok := n.AsInteger()
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(i, convey.ShouldEqual, -7)
		_, ok = n.AsFloat()
		convey.So(ok, convey.ShouldBeFalse)
		convey.So(n.IsInteger(), convey.ShouldBeTrue)
		convey.So(n.IsStr(), convey.ShouldBeFalse)

		dt, _ := datetime.Parse("1979-05-27")
		d := DatetimeOf(dt)
		convey.So(d.IsDatetime(), convey.ShouldBeTrue)
		convey.So(d.TypeStr(), convey.ShouldEqual, "datetime")

		names := []string{}
		for _, v := range []Value{String("a"), Integer(1), Float(1.0), Boolean(false), d, Array(), TableOf(nil)} {
			names = append(names, v.TypeStr())
		}
		convey.So(names, convey.ShouldResemble, []string{"string", "integer", "float", "boolean", "datetime", "array", "table"})
	})

	convey.Convey("same type ignores payloads", t, func() {
		convey.So(Integer(1).SameType(Integer(2)), convey.ShouldBeTrue)
		convey.So(Integer(1).SameType(Float(1.0)), convey.ShouldBeFalse)
		convey.So(Array(Integer(1)).SameType(Array()), convey.ShouldBeTrue)
	})

	convey.Convey("mutable accessors edit in place", t, func() {
		v := Array(Integer(1))
		*v.AsArrayMut() = append(*v.AsArrayMut(), Integer(2))
		arr, _ := v.AsArray()
		convey.So(len(arr), convey.ShouldEqual, 2)

		tv := TableOf(nil)
		tv.AsTableMut().Insert("x", Boolean(true))
		convey.So(tv.MustGet(Key("x")).Equal(Boolean(true)), convey.ShouldBeTrue)

		s := String("x")
		convey.So(s.AsArrayMut(), convey.ShouldBeNil)
		convey.So(s.AsTableMut(), convey.ShouldBeNil)
	})

	convey.Convey("slice and map conversions", t, func() {
		v := FromSlice([]string{"a", "b"}, String)
		convey.So(v.Equal(Array(String("a"), String("b"))), convey.ShouldBeTrue)

		m := FromMap(map[string]int{"b": 2, "a": 1}, Integer[int])
		tbl, _ := m.AsTable()
		convey.So(tbl.Keys(), convey.ShouldResemble, []string{"a", "b"})

		p := FromPairs(maps.All(map[string]Value{"only": Integer(1)}))
		convey.So(p.MustGet(Key("only")).Equal(Integer(1)), convey.ShouldBeTrue)
	})
}

func TestEqualAndClone(t *testing.T) {
	convey.Convey("tables compare without order", t, func() {
		a := NewTable()
		a.Insert("x", Integer(1))
		a.Insert("y", Integer(2))
		b := NewTable()
		b.Insert("y", Integer(2))
		b.Insert("x", Integer(1))
		convey.So(TableOf(a).Equal(TableOf(b)), convey.ShouldBeTrue)
		b.Insert("x", Integer(3))
		convey.So(TableOf(a).Equal(TableOf(b)), convey.ShouldBeFalse)
		convey.So(Float(math.NaN()).Equal(Float(math.NaN())), convey.ShouldBeFalse)
	})

	convey.Convey("clone is deep", t, func() {
		v := sample()
		c := v.Clone()
		convey.So(c.Equal(v), convey.ShouldBeTrue)
		c.MustGetMut(Key("sub")).AsTableMut().Insert("k", String("changed"))
		*c.MustGetMut(Key("list")).AsArrayMut() = nil
		convey.So(v.MustGet(Key("sub")).MustGet(Key("k")).Equal(String("v")), convey.ShouldBeTrue)
		list, _ := v.MustGet(Key("list")).AsArray()
		convey.So(len(list), convey.ShouldEqual, 2)
	})
}

func TestIndex(t *testing.T) {
	convey.Convey("lookups never panic", t, func() {
		v := sample()
		got, ok := v.Get(Key("port"))
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(got.Equal(Integer(8080)), convey.ShouldBeTrue)

		first, ok := v.MustGet(Key("list")).Get(At(0))
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(first.Equal(Integer(1)), convey.ShouldBeTrue)

		for _, idx := range []Index{At(0), At(-1), Key("missing")} {
			_, ok := v.Get(idx)
			convey.So(ok, convey.ShouldBeFalse)
		}
		list := v.MustGet(Key("list"))
		for _, idx := range []Index{At(2), Key("0")} {
			_, ok := list.Get(idx)
			convey.So(ok, convey.ShouldBeFalse)
		}
		_, ok = String("x").Get(At(0))
		convey.So(ok, convey.ShouldBeFalse)

		k := Key("name")
		_, ok = v.Get(&k)
		convey.So(ok, convey.ShouldBeTrue)
	})

	convey.Convey("GetMut edits the tree", t, func() {
		v := sample()
		*v.GetMut(Key("port")) = Integer(9090)
		convey.So(v.MustGet(Key("port")).Equal(Integer(9090)), convey.ShouldBeTrue)
		*v.MustGetMut(Key("list")).MustGetMut(At(1)) = String("two")
		convey.So(v.MustGet(Key("list")).MustGet(At(1)).Equal(String("two")), convey.ShouldBeTrue)
		convey.So(v.GetMut(Key("nope")), convey.ShouldBeNil)
	})

	convey.Convey("MustGet panics exactly when Get misses", t, func() {
		v := sample()
		convey.So(func() { v.MustGet(Key("missing")) }, convey.ShouldPanicWith, "index not found")
		convey.So(func() { v.MustGet(At(0)) }, convey.ShouldPanicWith, "index not found")
		convey.So(func() { v.MustGetMut(Key("name")).MustGetMut(Key("x")) }, convey.ShouldPanicWith, "index not found")
		convey.So(func() { v.MustGet(Key("name")) }, convey.ShouldNotPanic)
	})
}

func TestTable(t *testing.T) {
	convey.Convey("insert keeps positions", t, func() {
		tbl := NewTable()
		convey.So(tbl.IsEmpty(), convey.ShouldBeTrue)
		_, replaced := tbl.Insert("a", Integer(1))
		convey.So(replaced, convey.ShouldBeFalse)
		tbl.Insert("b", Integer(2))
		tbl.Insert("c", Integer(3))
		prev, replaced := tbl.Insert("a", Integer(10))
		convey.So(replaced, convey.ShouldBeTrue)
		convey.So(prev.Equal(Integer(1)), convey.ShouldBeTrue)
		convey.So(tbl.Keys(), convey.ShouldResemble, []string{"a", "b", "c"})
		convey.So(tbl.Len(), convey.ShouldEqual, 3)
		convey.So(tbl.ContainsKey("b"), convey.ShouldBeTrue)
	})

	convey.Convey("remove keeps the order of the rest", t, func() {
		tbl := NewTable()
		for _, k := range []string{"a", "b", "c", "d"} {
			tbl.Insert(k, String(k))
		}
		removed, ok := tbl.Remove("b")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(removed.Equal(String("b")), convey.ShouldBeTrue)
		_, ok = tbl.Remove("b")
		convey.So(ok, convey.ShouldBeFalse)
		convey.So(tbl.Keys(), convey.ShouldResemble, []string{"a", "c", "d"})
		d, _ := tbl.Get("d")
		convey.So(d.Equal(String("d")), convey.ShouldBeTrue)
		tbl.Insert("b", String("again"))
		convey.So(tbl.Keys(), convey.ShouldResemble, []string{"a", "c", "d", "b"})
	})

	convey.Convey("entries tell vacant from occupied", t, func() {
		tbl := NewTable()
		e := tbl.Entry("k")
		convey.So(e.IsVacant(), convey.ShouldBeTrue)
		convey.So(e.Get(), convey.ShouldBeNil)
		p := e.OrInsert(Integer(1))
		convey.So(p.Equal(Integer(1)), convey.ShouldBeTrue)
		convey.So(e.IsOccupied(), convey.ShouldBeTrue)
		convey.So(e.OrInsert(Integer(2)).Equal(Integer(1)), convey.ShouldBeTrue)
		e.Insert(Integer(3))
		got, _ := tbl.Get("k")
		convey.So(got.Equal(Integer(3)), convey.ShouldBeTrue)
		convey.So(e.Key(), convey.ShouldEqual, "k")
	})

	convey.Convey("nil tables read as empty", t, func() {
		var tbl *Table
		convey.So(tbl.Len(), convey.ShouldEqual, 0)
		_, ok := tbl.Get("x")
		convey.So(ok, convey.ShouldBeFalse)
		convey.So(tbl.Keys(), convey.ShouldBeEmpty)
	})
}
