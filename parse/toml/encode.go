package toml

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dzjyyds666/aqtoml/datetime"
	"github.com/dzjyyds666/aqtoml/serde"
)

// =========================
// Encoding
// =========================

// Option configures an Encoder.
type Option func(*options) error

type options struct {
	indent         *int
	arrayMultiline bool
}

const defaultIndent = 4

// Indent sets the number of spaces used for elements of multi-line arrays.
func Indent(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("toml: indent must not be negative")
		}
		o.indent = &n
		return nil
	}
}

// ArrayMultiline writes every non-empty inline array with one element per
// line.
func ArrayMultiline() Option {
	return func(o *options) error {
		o.arrayMultiline = true
		return nil
	}
}

// Marshal returns the TOML document for v. v must serialize to a table.
func Marshal(v any, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf, opts...).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encoder writes TOML documents to an output stream.
type Encoder struct {
	w    io.Writer
	opts []Option
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes the TOML document for v to the stream.
func (e *Encoder) Encode(v any) error {
	o, err := buildOptions(e.opts)
	if err != nil {
		return err
	}
	n, err := ToNode(v)
	if err != nil {
		return err
	}
	t, ok := n.(*Table)
	if !ok {
		return fmt.Errorf("toml: document root must be a table, found %s", n.Kind())
	}
	f := &formatter{opts: o}
	f.table(nil, t, false)
	_, err = e.w.Write(f.buf.Bytes())
	return err
}

// FormatValue renders n the way it would appear on the right of an
// assignment.
func FormatValue(n Node, opts ...Option) (string, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return "", err
	}
	f := &formatter{opts: o}
	f.inline(n, 0)
	return f.buf.String(), nil
}

func buildOptions(opts []Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ToNode serializes v into a document tree. v may be a Node, a
// serde.Serialize or any Go value serde.Marshal understands.
func ToNode(v any) (Node, error) {
	if n, ok := v.(Node); ok {
		return n, nil
	}
	s, ok := v.(serde.Serialize)
	if !ok {
		s = serde.Marshal(v)
	}
	var out Node
	if err := s.Serialize(nodeSink{out: &out}); err != nil {
		return nil, fmt.Errorf("toml: %w", err)
	}
	return out, nil
}

// -------- tree building sink --------

type nodeSink struct {
	serde.Unsupported
	out *Node
}

func (s nodeSink) set(n Node) error {
	*s.out = n
	return nil
}

func (s nodeSink) SerializeBool(v bool) error {
	return s.set(&Value{Type: tomlValueKinds.ValueBool, V: v})
}

func (s nodeSink) SerializeInt8(v int8) error { return s.SerializeInt64(int64(v)) }
func (s nodeSink) SerializeInt16(v int16) error { return s.SerializeInt64(int64(v)) }
func (s nodeSink) SerializeInt32(v int32) error { return s.SerializeInt64(int64(v)) }

func (s nodeSink) SerializeInt64(v int64) error {
	return s.set(&Value{Type: tomlValueKinds.ValueInt, V: v})
}

func (s nodeSink) SerializeUint8(v uint8) error { return s.SerializeInt64(int64(v)) }
func (s nodeSink) SerializeUint16(v uint16) error { return s.SerializeInt64(int64(v)) }
func (s nodeSink) SerializeUint32(v uint32) error { return s.SerializeInt64(int64(v)) }

func (s nodeSink) SerializeUint64(v uint64) error {
	if v > math.MaxInt64 {
		return serde.Custom("u64 value was too large")
	}
	return s.SerializeInt64(int64(v))
}

func (s nodeSink) SerializeFloat32(v float32) error { return s.SerializeFloat64(float64(v)) }

func (s nodeSink) SerializeFloat64(v float64) error {
	return s.set(&Value{Type: tomlValueKinds.ValueFloat, V: v})
}

func (s nodeSink) SerializeChar(v rune) error { return s.SerializeStr(string(v)) }

func (s nodeSink) SerializeStr(v string) error {
	return s.set(&Value{Type: tomlValueKinds.ValueString, V: v})
}

func (s nodeSink) SerializeBytes(v []byte) error {
	arr := &Array{Elems: make([]Node, len(v))}
	for i, b := range v {
		arr.Elems[i] = &Value{Type: tomlValueKinds.ValueInt, V: int64(b)}
	}
	return s.set(arr)
}

func (s nodeSink) SerializeNone() error { return serde.ErrUnsupportedNone }

func (s nodeSink) SerializeSome(v serde.Serialize) error { return v.Serialize(s) }

func (s nodeSink) SerializeUnitVariant(_ string, _ uint32, variant string) error {
	return s.SerializeStr(variant)
}

func (s nodeSink) SerializeNewtypeStruct(_ string, v serde.Serialize) error {
	return v.Serialize(s)
}

func (s nodeSink) SerializeNewtypeVariant(_ string, _ uint32, variant string, v serde.Serialize) error {
	var inner Node
	if err := v.Serialize(nodeSink{out: &inner}); err != nil {
		return err
	}
	t := NewTable()
	t.Set(variant, inner)
	return s.set(t)
}

func (s nodeSink) SerializeSeq(length int) (serde.SeqSerializer, error) {
	return &seqSink{out: s.out, arr: &Array{Elems: make([]Node, 0, max(length, 0))}}, nil
}

func (s nodeSink) SerializeTuple(length int) (serde.SeqSerializer, error) {
	return s.SerializeSeq(length)
}

func (s nodeSink) SerializeTupleStruct(_ string, length int) (serde.SeqSerializer, error) {
	return s.SerializeSeq(length)
}

func (s nodeSink) SerializeTupleVariant(_ string, _ uint32, _ string, length int) (serde.SeqSerializer, error) {
	return s.SerializeSeq(length)
}

func (s nodeSink) SerializeMap(int) (serde.MapSerializer, error) {
	return &mapSink{out: s.out, t: NewTable()}, nil
}

func (s nodeSink) SerializeStruct(name string, _ int) (serde.StructSerializer, error) {
	if name == datetime.StructName {
		return &datetimeSink{out: s.out}, nil
	}
	return &mapSink{out: s.out, t: NewTable()}, nil
}

type seqSink struct {
	out *Node
	arr *Array
}

func (s *seqSink) SerializeElement(v serde.Serialize) error {
	var n Node
	if err := v.Serialize(nodeSink{out: &n}); err != nil {
		return err
	}
	s.arr.Elems = append(s.arr.Elems, n)
	return nil
}

func (s *seqSink) End() error {
	*s.out = s.arr
	return nil
}

type mapSink struct {
	out *Node
	t   *Table
	key *string
}

func (s *mapSink) SerializeKey(k serde.Serialize) error {
	var key string
	if err := k.Serialize(newKeySink(&key)); err != nil {
		return err
	}
	s.key = &key
	return nil
}

func (s *mapSink) SerializeValue(v serde.Serialize) error {
	if s.key == nil {
		return serde.Custom("map value serialized before its key")
	}
	key := *s.key
	s.key = nil
	return s.SerializeField(key, v)
}

func (s *mapSink) SerializeField(key string, v serde.Serialize) error {
	var n Node
	switch err := v.Serialize(nodeSink{out: &n}); err {
	case nil:
		s.t.Set(key, n)
		return nil
	case serde.ErrUnsupportedNone:
		return nil
	default:
		return err
	}
}

func (s *mapSink) End() error {
	*s.out = s.t
	return nil
}

// keySink accepts only strings.
type keySink struct {
	serde.Unsupported
	out *string
}

func newKeySink(out *string) keySink {
	return keySink{
		Unsupported: serde.Unsupported{Reject: func(string, string) error {
			return serde.Custom("key must be a string")
		}},
		out: out,
	}
}

func (k keySink) SerializeStr(v string) error {
	*k.out = v
	return nil
}

func (k keySink) SerializeChar(v rune) error { return k.SerializeStr(string(v)) }

func (k keySink) SerializeNewtypeStruct(_ string, v serde.Serialize) error {
	return v.Serialize(k)
}

// datetimeSink turns the sentinel struct back into a datetime value.
type datetimeSink struct {
	out *Node
	raw *string
}

func (s *datetimeSink) SerializeField(key string, v serde.Serialize) error {
	if key != datetime.Field {
		return serde.Custom("unexpected datetime field `%s`", key)
	}
	var raw string
	if err := v.Serialize(newKeySink(&raw)); err != nil {
		return serde.Custom("datetime field must be a string")
	}
	s.raw = &raw
	return nil
}

func (s *datetimeSink) End() error {
	if s.raw == nil {
		return serde.Custom("datetime key not found")
	}
	dt, err := datetime.Parse(*s.raw)
	if err != nil {
		return err
	}
	*s.out = datetimeValue(dt)
	return nil
}

// -------- text formatter --------

type formatter struct {
	buf  bytes.Buffer
	opts *options
}

// isTableArray reports whether a should be written as [[header]] sections.
func isTableArray(a *Array) bool {
	if len(a.Elems) == 0 {
		return false
	}
	for _, e := range a.Elems {
		if _, ok := e.(*Table); !ok {
			return false
		}
	}
	return true
}

// table writes t under path. Within a table, plain assignments come first,
// then arrays of tables, then sub-tables.
func (f *formatter) table(path []string, t *Table, arrayElem bool) {
	var flat, arrays, subs []string
	for k, n := range t.All() {
		switch n := n.(type) {
		case *Table:
			subs = append(subs, k)
		case *Array:
			if isTableArray(n) {
				arrays = append(arrays, k)
			} else {
				flat = append(flat, k)
			}
		default:
			flat = append(flat, k)
		}
	}

	if len(path) > 0 {
		switch {
		case arrayElem:
			f.section()
			fmt.Fprintf(&f.buf, "[[%s]]\n", dottedKey(path))
		case len(flat) > 0 || (len(arrays) == 0 && len(subs) == 0):
			f.section()
			fmt.Fprintf(&f.buf, "[%s]\n", dottedKey(path))
		}
	}

	for _, k := range flat {
		n, _ := t.Get(k)
		f.buf.WriteString(quoteKey(k))
		f.buf.WriteString(" = ")
		f.inline(n, 0)
		f.buf.WriteByte('\n')
	}
	for _, k := range arrays {
		n, _ := t.Get(k)
		for _, e := range n.(*Array).Elems {
			f.table(appendPath(path, k), e.(*Table), true)
		}
	}
	for _, k := range subs {
		n, _ := t.Get(k)
		f.table(appendPath(path, k), n.(*Table), false)
	}
}

func appendPath(path []string, k string) []string {
	return append(append(make([]string, 0, len(path)+1), path...), k)
}

// section separates a new header from earlier output with a blank line.
func (f *formatter) section() {
	if f.buf.Len() > 0 {
		f.buf.WriteByte('\n')
	}
}

func (f *formatter) indent() string {
	n := defaultIndent
	if f.opts.indent != nil {
		n = *f.opts.indent
	}
	return strings.Repeat(" ", n)
}

func (f *formatter) inline(n Node, depth int) {
	switch n := n.(type) {
	case *Value:
		f.buf.WriteString(formatScalar(n))
	case *Array:
		if len(n.Elems) == 0 {
			f.buf.WriteString("[]")
			return
		}
		if f.opts.arrayMultiline {
			pad := f.indent()
			f.buf.WriteString("[\n")
			for _, e := range n.Elems {
				f.buf.WriteString(strings.Repeat(pad, depth+1))
				f.inline(e, depth+1)
				f.buf.WriteString(",\n")
			}
			f.buf.WriteString(strings.Repeat(pad, depth))
			f.buf.WriteByte(']')
			return
		}
		f.buf.WriteByte('[')
		for i, e := range n.Elems {
			if i > 0 {
				f.buf.WriteString(", ")
			}
			f.inline(e, depth)
		}
		f.buf.WriteByte(']')
	case *Table:
		if n.Len() == 0 {
			f.buf.WriteString("{}")
			return
		}
		f.buf.WriteString("{ ")
		i := 0
		for k, child := range n.All() {
			if i > 0 {
				f.buf.WriteString(", ")
			}
			i++
			f.buf.WriteString(quoteKey(k))
			f.buf.WriteString(" = ")
			f.inline(child, depth)
		}
		f.buf.WriteString(" }")
	}
}

func formatScalar(v *Value) string {
	switch x := v.V.(type) {
	case string:
		return quoteString(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case bool:
		return strconv.FormatBool(x)
	case datetime.Datetime:
		return x.String()
	}
	return fmt.Sprint(v.V)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-5 || abs >= 1e16) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func dottedKey(path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = quoteKey(p)
	}
	return strings.Join(parts, ".")
}

func quoteKey(k string) string {
	if k == "" {
		return `""`
	}
	for i := 0; i < len(k); i++ {
		if !isBareKeyChar(k[i]) {
			return quoteString(k)
		}
	}
	return k
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
