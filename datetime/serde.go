package datetime

import (
	"reflect"
	"time"

	"github.com/dzjyyds666/aqtoml/serde"
)

func init() {
	serde.Register(reflect.TypeFor[time.Time](),
		func(rv reflect.Value) serde.Serialize { return timeSource(rv.Interface().(time.Time)) },
		func(rv reflect.Value) serde.Deserialize { return timeTarget{rv.Interface().(*time.Time)} },
	)
}

type timeSource time.Time

func (t timeSource) Serialize(s serde.Serializer) error {
	dt, err := FromTime(time.Time(t))
	if err != nil {
		return err
	}
	return dt.Serialize(s)
}

// Serialize emits d as a one-field struct named StructName whose only field
// is Field. Sinks that know the convention turn it back into a datetime.
func (d Datetime) Serialize(s serde.Serializer) error {
	st, err := s.SerializeStruct(StructName, 1)
	if err != nil {
		return err
	}
	if err := st.SerializeField(Field, serde.Str(d.String())); err != nil {
		return err
	}
	return st.End()
}

// Deserialize accepts either a datetime string or the single-entry map keyed
// by Field.
func (d *Datetime) Deserialize(de serde.Deserializer) error {
	return de.DeserializeStruct(StructName, []string{Field}, &visitor{serde.BaseVisitor{Expected: "a TOML datetime"}, d})
}

type visitor struct {
	serde.BaseVisitor
	dst *Datetime
}

func (v *visitor) VisitString(s string) error {
	dt, err := Parse(s)
	if err != nil {
		return serde.Custom("%v", err)
	}
	*v.dst = dt
	return nil
}

func (v *visitor) VisitMap(a serde.MapAccess) error {
	var key string
	ok, err := a.NextKey(serde.Into(&key))
	if err != nil {
		return err
	}
	if !ok {
		return serde.Custom("datetime key not found")
	}
	if key != Field {
		return serde.Custom("expected datetime key `%s`, found `%s`", Field, key)
	}
	var raw string
	if err := a.NextValue(serde.Into(&raw)); err != nil {
		return err
	}
	if err := v.VisitString(raw); err != nil {
		return err
	}
	more, err := a.NextKey(serde.Ignore{})
	if err != nil {
		return err
	}
	if more {
		return serde.Custom("unexpected key after datetime")
	}
	return nil
}

type timeTarget struct {
	t *time.Time
}

func (t timeTarget) Deserialize(d serde.Deserializer) error {
	var dt Datetime
	if err := dt.Deserialize(d); err != nil {
		return err
	}
	tm, err := dt.AsTime(time.Local)
	if err != nil {
		return serde.Custom("%v", err)
	}
	*t.t = tm
	return nil
}
