package toml

// toml 包实现了一个 TOML 解析器，产出保持键插入顺序的 AST（表 / 数组 / 值），
// 并通过 serde 协议把 AST 交给任意目标类型。
//
// 范围：
// - TOML v1.0.0 核心功能
// - 显式 AST，表按插入顺序保存键
// - 安全的点分键处理
// - 表扩展语义（重复定义、内联表不可扩展）
// - 四种日期时间形态，统一为 datetime.Datetime
// - 确定性错误
//
// 非目标：
// - 注释保留
// - 格式化往返
// - 流式突变

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/dzjyyds666/aqtoml/datetime"
)

// =========================
// AST Definitions
// =========================

type ValueKind string

var tomlValueKinds = struct {
	ValueString        ValueKind
	ValueInt           ValueKind
	ValueFloat         ValueKind
	ValueBool          ValueKind
	ValueDatetime      ValueKind
	ValueLocalDate     ValueKind
	ValueLocalTime     ValueKind
	ValueLocalDatetime ValueKind
	ValueTable         ValueKind
	ValueArray         ValueKind
}{
	ValueString:        "string",
	ValueInt:           "int",
	ValueFloat:         "float",
	ValueBool:          "bool",
	ValueDatetime:      ValueKind(datetime.Kinds.OffsetDatetime),
	ValueLocalDate:     ValueKind(datetime.Kinds.LocalDate),
	ValueLocalTime:     ValueKind(datetime.Kinds.LocalTime),
	ValueLocalDatetime: ValueKind(datetime.Kinds.LocalDatetime),
	ValueTable:         "table",
	ValueArray:         "array",
}

// IsDatetime reports whether k is one of the four datetime kinds. Values of
// these kinds hold a datetime.Datetime.
func (k ValueKind) IsDatetime() bool {
	switch k {
	case tomlValueKinds.ValueDatetime, tomlValueKinds.ValueLocalDate,
		tomlValueKinds.ValueLocalTime, tomlValueKinds.ValueLocalDatetime:
		return true
	}
	return false
}

type Node interface {
	Kind() ValueKind
	Value() any
}

// -------- Table --------

// Table is a string-keyed map that remembers insertion order.
type Table struct {
	keys  []string
	items map[string]Node

	// defined is set once a [header] names this table.
	defined bool
	// inline tables are closed once their braces end.
	inline bool
}

func NewTable() *Table {
	return &Table{items: make(map[string]Node)}
}

func (*Table) Kind() ValueKind { return tomlValueKinds.ValueTable }

func (t *Table) Value() any { return ToUntyped(t) }

func (t *Table) Len() int { return len(t.keys) }

func (t *Table) Get(key string) (Node, bool) {
	n, ok := t.items[key]
	return n, ok
}

// Set stores n under key. A new key goes to the end; an existing key keeps
// its position.
func (t *Table) Set(key string, n Node) {
	if _, ok := t.items[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.items[key] = n
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []string {
	return append([]string(nil), t.keys...)
}

// All yields entries in insertion order.
func (t *Table) All() iter.Seq2[string, Node] {
	return func(yield func(string, Node) bool) {
		for _, k := range t.keys {
			if !yield(k, t.items[k]) {
				return
			}
		}
	}
}

// -------- Array --------

type Array struct {
	Elems []Node

	// tables marks an array built from [[header]] sections.
	tables bool
}

func (v *Array) Kind() ValueKind { return tomlValueKinds.ValueArray }

func (v *Array) Value() any { return v.Elems }

// -------- Value --------

type Value struct {
	Type ValueKind
	V    any
}

func (v *Value) Kind() ValueKind { return v.Type }

func (v *Value) Value() any { return v.V }

func datetimeValue(dt datetime.Datetime) *Value {
	return &Value{Type: ValueKind(dt.Kind()), V: dt}
}

// =========================
// Public API
// =========================

// Parse parses TOML input from r and returns a root Table.
func Parse(r io.Reader) (*Table, error) {
	p := &parser{
		scanner: bufio.NewScanner(r),
		root:    NewTable(),
		cur:     nil,
	}
	p.cur = p.root

	for p.scanner.Scan() {
		line := strings.TrimSpace(p.scanner.Text())
		p.lineNo++
		if p.lineNo == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "["):
			if err := p.parseTableHeader(line); err != nil {
				return nil, err
			}
		default:
			idx := findUnquotedEqual(line)
			if idx < 0 {
				return nil, p.errf("invalid syntax")
			}
			if err := p.parseKeyValue(line, idx); err != nil {
				return nil, err
			}
		}
	}

	if err := p.scanner.Err(); err != nil {
		return nil, err
	}

	return p.root, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Table, error) {
	return Parse(strings.NewReader(s))
}

// =========================
// Parser Implementation
// =========================

type parser struct {
	scanner *bufio.Scanner
	root    *Table
	cur     *Table
	lineNo  int
}

// descend returns the child table named part, creating it when missing.
// Headers may step through an array of tables into its last element.
func descend(t *Table, part string, viaArrays bool) (*Table, error) {
	n, ok := t.Get(part)
	if !ok {
		next := NewTable()
		t.Set(part, next)
		return next, nil
	}
	switch c := n.(type) {
	case *Table:
		if c.inline {
			return nil, fmt.Errorf("key %q is an inline table and cannot be extended", part)
		}
		return c, nil
	case *Array:
		if viaArrays && c.tables && len(c.Elems) > 0 {
			return c.Elems[len(c.Elems)-1].(*Table), nil
		}
	}
	return nil, fmt.Errorf("key %q already defined and is not a table", part)
}

func (p *parser) parseTableHeader(line string) error {
	s := stripCommentPreserveStrings(line)
	s = strings.TrimSpace(s)
	isArray := strings.HasPrefix(s, "[[")
	if isArray {
		if !strings.HasSuffix(s, "]]") {
			return p.errf("invalid array-of-table header")
		}
	} else {
		if !strings.HasSuffix(s, "]") {
			return p.errf("invalid table header")
		}
	}
	var name string
	if isArray {
		name = strings.TrimSpace(s[2 : len(s)-2])
	} else {
		name = strings.TrimSpace(s[1 : len(s)-1])
	}
	parts, err := parseKeyParts(name)
	if err != nil {
		return p.errf(err.Error())
	}

	parent := p.root
	for _, part := range parts[:len(parts)-1] {
		if parent, err = descend(parent, part, true); err != nil {
			return p.errf(err.Error())
		}
	}
	last := parts[len(parts)-1]
	existing, ok := parent.Get(last)

	if !isArray {
		if !ok {
			t := NewTable()
			t.defined = true
			parent.Set(last, t)
			p.cur = t
			return nil
		}
		t, isTable := existing.(*Table)
		if !isTable {
			return p.errf(fmt.Sprintf("key %q already defined and is not a table", last))
		}
		if t.defined || t.inline {
			return p.errf(fmt.Sprintf("table %q already defined", name))
		}
		t.defined = true
		p.cur = t
		return nil
	}

	var arr *Array
	if !ok {
		arr = &Array{Elems: make([]Node, 0), tables: true}
		parent.Set(last, arr)
	} else {
		a, isArr := existing.(*Array)
		if !isArr || !a.tables {
			return p.errf(fmt.Sprintf("key %q already defined and is not an array of tables", last))
		}
		arr = a
	}
	newTbl := NewTable()
	newTbl.defined = true
	arr.Elems = append(arr.Elems, newTbl)
	p.cur = newTbl
	return nil
}

func (p *parser) parseKeyValue(line string, idx int) error {
	key := strings.TrimSpace(line[:idx])
	val := strings.TrimSpace(line[idx+1:])

	parts, err := parseKeyParts(key)
	if err != nil {
		return p.errf(err.Error())
	}

	fullVal, err := p.consumeValue(val)
	if err != nil {
		return p.errf(err.Error())
	}
	v, err := parseValue(fullVal)
	if err != nil {
		return p.errf(err.Error())
	}
	if err := assign(p.cur, parts, v); err != nil {
		return p.errf(err.Error())
	}
	return nil
}

// assign stores v under a dotted key path relative to t.
func assign(t *Table, parts []string, v Node) error {
	var err error
	for _, part := range parts[:len(parts)-1] {
		if t, err = descend(t, part, false); err != nil {
			return err
		}
	}
	last := parts[len(parts)-1]
	if _, exists := t.Get(last); exists {
		return fmt.Errorf("duplicate key %q", last)
	}
	t.Set(last, v)
	return nil
}

func (p *parser) errf(msg string) error {
	return fmt.Errorf("toml:%d: %s", p.lineNo, msg)
}

// =========================
// Value Parsing
// =========================

func parseValue(s string) (Node, error) {
	s = strings.TrimSpace(stripCommentPreserveStrings(s))
	if s == "" {
		return nil, errors.New("empty value")
	}
	if strings.HasPrefix(s, `"""`) {
		content, ok := extractTripleQuoted(s, '"')
		if !ok {
			return nil, errors.New("unterminated multiline string")
		}
		decoded, err := decodeBasicString(content, true)
		if err != nil {
			return nil, err
		}
		return &Value{Type: tomlValueKinds.ValueString, V: decoded}, nil
	}
	if strings.HasPrefix(s, `'''`) {
		content, ok := extractTripleQuoted(s, '\'')
		if !ok {
			return nil, errors.New("unterminated multiline literal string")
		}
		return &Value{Type: tomlValueKinds.ValueString, V: content}, nil
	}
	if strings.HasPrefix(s, `"`) {
		content, ok := extractSingleQuoted(s, '"')
		if !ok {
			return nil, errors.New("unterminated string")
		}
		decoded, err := decodeBasicString(content, false)
		if err != nil {
			return nil, err
		}
		return &Value{Type: tomlValueKinds.ValueString, V: decoded}, nil
	}
	if strings.HasPrefix(s, `'`) {
		content, ok := extractSingleQuoted(s, '\'')
		if !ok {
			return nil, errors.New("unterminated literal string")
		}
		return &Value{Type: tomlValueKinds.ValueString, V: content}, nil
	}
	if strings.HasPrefix(s, "[") {
		return parseArrayToken(s)
	}
	if strings.HasPrefix(s, "{") {
		return parseInlineTableToken(s)
	}
	if s == "true" || s == "false" {
		return &Value{Type: tomlValueKinds.ValueBool, V: s == "true"}, nil
	}
	if looksLikeDatetime(s) {
		dt, err := datetime.Parse(s)
		if err != nil {
			return nil, err
		}
		return datetimeValue(dt), nil
	}
	if i, err := parseIntToken(s); err == nil {
		return &Value{Type: tomlValueKinds.ValueInt, V: i}, nil
	}
	if f, err := parseFloatToken(s); err == nil {
		return &Value{Type: tomlValueKinds.ValueFloat, V: f}, nil
	}
	return nil, fmt.Errorf("unsupported value %q", s)
}

func looksLikeDatetime(s string) bool {
	return (len(s) >= 10 && s[4] == '-' && s[7] == '-') || (len(s) >= 8 && s[2] == ':' && s[5] == ':')
}

// =========================
// Utilities
// =========================

func isBareKeyChar(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' || ch == '_' || ch == '-'
}

func parseKeyParts(s string) ([]string, error) {
	var parts []string
	var cur strings.Builder
	inQuote := byte(0)
	escape := false
	quoted := false

	flush := func() error {
		part := cur.String()
		if !quoted {
			part = strings.TrimSpace(part)
			if part == "" {
				return errors.New("empty key")
			}
			for i := 0; i < len(part); i++ {
				if !isBareKeyChar(part[i]) {
					return fmt.Errorf("invalid bare key %q", part)
				}
			}
		}
		parts = append(parts, part)
		cur.Reset()
		quoted = false
		return nil
	}

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inQuote != 0 {
			if inQuote == '"' && ch == '\\' && !escape {
				escape = true
				cur.WriteByte(ch)
				continue
			}
			if escape {
				cur.WriteByte(ch)
				escape = false
				continue
			}
			if ch == inQuote {
				if inQuote == '"' {
					decoded, err := decodeBasicString(cur.String(), false)
					if err != nil {
						return nil, err
					}
					cur.Reset()
					cur.WriteString(decoded)
				}
				inQuote = 0
				continue
			}
			cur.WriteByte(ch)
			continue
		}
		if ch == '"' || ch == '\'' {
			if quoted || strings.TrimSpace(cur.String()) != "" {
				return nil, errors.New("invalid quoted key position")
			}
			inQuote = ch
			quoted = true
			cur.Reset()
			continue
		}
		if ch == '.' {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if quoted && ch != ' ' && ch != '\t' {
			return nil, errors.New("invalid quoted key position")
		}
		if !quoted {
			cur.WriteByte(ch)
		}
	}
	if inQuote != 0 {
		return nil, errors.New("unterminated quoted key")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return parts, nil
}

// scanState tracks whether the scanner sits inside a string literal.
type scanState struct {
	basic   bool
	literal bool
	multi   bool
}

func (st *scanState) inString() bool { return st.basic || st.literal }

func hasTriple(s string, i int, q byte) bool {
	return i+2 < len(s) && s[i] == q && s[i+1] == q && s[i+2] == q
}

// step consumes the token at s[i] and returns its width. Comment, bracket
// and separator handling is left to the caller, which must only look at
// s[i] while st.inString() is false.
func (st *scanState) step(s string, i int) int {
	ch := s[i]
	switch {
	case st.basic:
		if ch == '\\' {
			return min(2, len(s)-i)
		}
		if st.multi && hasTriple(s, i, '"') {
			st.basic, st.multi = false, false
			return 3
		}
		if !st.multi && ch == '"' {
			st.basic = false
		}
		return 1
	case st.literal:
		if st.multi && hasTriple(s, i, '\'') {
			st.literal, st.multi = false, false
			return 3
		}
		if !st.multi && ch == '\'' {
			st.literal = false
		}
		return 1
	case ch == '"':
		st.basic = true
		if hasTriple(s, i, '"') {
			st.multi = true
			return 3
		}
		return 1
	case ch == '\'':
		st.literal = true
		if hasTriple(s, i, '\'') {
			st.multi = true
			return 3
		}
		return 1
	}
	return 1
}

// stripCommentPreserveStrings drops every # comment up to its end of line.
func stripCommentPreserveStrings(s string) string {
	var b strings.Builder
	var st scanState
	for i := 0; i < len(s); {
		if !st.inString() && s[i] == '#' {
			nl := strings.IndexByte(s[i:], '\n')
			if nl < 0 {
				break
			}
			i += nl
			continue
		}
		n := st.step(s, i)
		b.WriteString(s[i : i+n])
		i += n
	}
	return b.String()
}

func findUnquotedEqual(s string) int {
	var st scanState
	for i := 0; i < len(s); {
		if !st.inString() && s[i] == '=' {
			return i
		}
		i += st.step(s, i)
	}
	return -1
}

// consumeValue pulls further lines from the scanner until the value that
// starts with initial is complete: open multi-line strings are closed and
// brackets are balanced.
func (p *parser) consumeValue(initial string) (string, error) {
	if strings.TrimSpace(stripCommentPreserveStrings(initial)) == "" {
		return "", errors.New("empty value")
	}

	var b strings.Builder
	var st scanState
	depth := 0
	line := initial
	for {
		b.WriteString(line)
		for i := 0; i < len(line); {
			if !st.inString() {
				ch := line[i]
				if ch == '#' {
					break
				}
				switch ch {
				case '[', '{':
					depth++
				case ']', '}':
					depth--
				}
			}
			i += st.step(line, i)
		}
		if st.inString() && !st.multi {
			return "", errors.New("unterminated string")
		}
		if !st.inString() && depth <= 0 {
			return b.String(), nil
		}
		if !p.scanner.Scan() {
			if st.inString() {
				return "", errors.New("unterminated multiline string")
			}
			return "", errors.New("unterminated compound value")
		}
		line = p.scanner.Text()
		p.lineNo++
		b.WriteString("\n")
	}
}

func extractTripleQuoted(s string, quote byte) (string, bool) {
	if len(s) < 6 {
		return "", false
	}
	end := strings.Repeat(string(quote), 3)
	if !strings.HasPrefix(s, end) || !strings.HasSuffix(s, end) {
		return "", false
	}
	content := s[3 : len(s)-3]
	content = strings.TrimPrefix(content, "\r")
	content = strings.TrimPrefix(content, "\n")
	return content, true
}

func extractSingleQuoted(s string, quote byte) (string, bool) {
	if len(s) < 2 || s[0] != quote || s[len(s)-1] != quote {
		return "", false
	}
	return s[1 : len(s)-1], true
}

func decodeBasicString(s string, multiline bool) (string, error) {
	if multiline {
		var b strings.Builder
		for i := 0; i < len(s); i++ {
			if s[i] == '\\' {
				j := i + 1
				for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\r') {
					j++
				}
				if j < len(s) && s[j] == '\n' {
					i = j
					for i+1 < len(s) && (s[i+1] == ' ' || s[i+1] == '\t' || s[i+1] == '\n' || s[i+1] == '\r') {
						i++
					}
					continue
				}
				b.WriteByte(s[i])
				if i+1 < len(s) {
					i++
					b.WriteByte(s[i])
				}
				continue
			}
			b.WriteByte(s[i])
		}
		s = b.String()
	}
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' {
			out.WriteByte(ch)
			continue
		}
		if i+1 >= len(s) {
			return "", errors.New("invalid escape")
		}
		i++
		switch s[i] {
		case 'b':
			out.WriteByte('\b')
		case 't':
			out.WriteByte('\t')
		case 'n':
			out.WriteByte('\n')
		case 'f':
			out.WriteByte('\f')
		case 'r':
			out.WriteByte('\r')
		case 'e':
			out.WriteByte(0x1b)
		case '"':
			out.WriteByte('"')
		case '\\':
			out.WriteByte('\\')
		case 'u':
			if i+4 >= len(s) {
				return "", errors.New("invalid unicode escape")
			}
			r, err := parseHexRune(s[i+1 : i+5])
			if err != nil {
				return "", err
			}
			out.WriteRune(r)
			i += 4
		case 'U':
			if i+8 >= len(s) {
				return "", errors.New("invalid unicode escape")
			}
			r, err := parseHexRune(s[i+1 : i+9])
			if err != nil {
				return "", err
			}
			out.WriteRune(r)
			i += 8
		default:
			return "", fmt.Errorf("unsupported escape \\%c", s[i])
		}
	}
	return out.String(), nil
}

func parseHexRune(h string) (rune, error) {
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, err
	}
	return rune(v), nil
}

func parseArrayToken(s string) (*Array, error) {
	content := strings.TrimSpace(stripCommentPreserveStrings(s))
	if !strings.HasPrefix(content, "[") || !strings.HasSuffix(content, "]") {
		return nil, errors.New("invalid array")
	}
	content = strings.TrimSpace(content[1 : len(content)-1])
	parts := splitTopLevel(content, ',')
	arr := &Array{Elems: make([]Node, 0, len(parts))}
	for i, part := range parts {
		if strings.TrimSpace(part) == "" {
			if i == len(parts)-1 && i > 0 {
				continue
			}
			return nil, errors.New("empty array element")
		}
		v, err := parseValue(part)
		if err != nil {
			return nil, err
		}
		arr.Elems = append(arr.Elems, v)
	}
	return arr, nil
}

func parseInlineTableToken(s string) (*Table, error) {
	content := strings.TrimSpace(stripCommentPreserveStrings(s))
	if !strings.HasPrefix(content, "{") || !strings.HasSuffix(content, "}") {
		return nil, errors.New("invalid inline table")
	}
	inner := strings.TrimSpace(content[1 : len(content)-1])
	pairs := splitTopLevel(inner, ',')
	t := NewTable()
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idx := findUnquotedEqual(pair)
		if idx < 0 {
			return nil, errors.New("invalid inline table kv")
		}
		parts, err := parseKeyParts(strings.TrimSpace(pair[:idx]))
		if err != nil {
			return nil, err
		}
		v, err := parseValue(strings.TrimSpace(pair[idx+1:]))
		if err != nil {
			return nil, err
		}
		if err := assign(t, parts, v); err != nil {
			return nil, fmt.Errorf("inline table: %w", err)
		}
	}
	sealInline(t)
	return t, nil
}

func sealInline(t *Table) {
	t.inline = true
	for _, n := range t.items {
		if child, ok := n.(*Table); ok {
			sealInline(child)
		}
	}
}

func splitTopLevel(s string, sep byte) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var parts []string
	var st scanState
	depth := 0
	start := 0
	for i := 0; i < len(s); {
		if !st.inString() {
			switch s[i] {
			case '[', '{':
				depth++
			case ']', '}':
				depth--
			case sep:
				if depth == 0 {
					parts = append(parts, strings.TrimSpace(s[start:i]))
					start = i + 1
				}
			}
		}
		i += st.step(s, i)
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

func parseIntToken(s string) (int64, error) {
	if strings.HasPrefix(s, "_") || strings.HasSuffix(s, "_") || strings.Contains(s, "__") {
		return 0, errors.New("invalid underscore placement")
	}
	s = strings.ReplaceAll(s, "_", "")
	for _, pfx := range []struct {
		p    string
		base int
	}{{"0x", 16}, {"0o", 8}, {"0b", 2}} {
		if strings.HasPrefix(s, pfx.p) {
			v, err := strconv.ParseUint(s[2:], pfx.base, 64)
			if err != nil {
				return 0, err
			}
			if v > math.MaxInt64 {
				return 0, errors.New("integer out of range")
			}
			return int64(v), nil
		}
	}
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' {
		return 0, errors.New("leading zeros are not allowed")
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseFloatToken(s string) (float64, error) {
	switch s {
	case "inf", "+inf":
		return math.Inf(+1), nil
	case "-inf":
		return math.Inf(-1), nil
	case "nan", "+nan", "-nan":
		return math.NaN(), nil
	}
	if strings.HasPrefix(s, "_") || strings.HasSuffix(s, "_") || strings.Contains(s, "__") {
		return 0, errors.New("invalid underscore placement")
	}
	s = strings.ReplaceAll(s, "_", "")
	if strings.HasPrefix(strings.TrimLeft(s, "+-"), ".") || strings.HasSuffix(s, ".") {
		return 0, errors.New("invalid float")
	}
	if strings.ContainsAny(s, "xXpPiInN") {
		return 0, errors.New("invalid float")
	}
	if d := strings.TrimLeft(s, "+-"); len(d) > 1 && d[0] == '0' && d[1] >= '0' && d[1] <= '9' {
		return 0, errors.New("leading zeros are not allowed")
	}
	return strconv.ParseFloat(s, 64)
}

// =========================
// Safe Access Helpers
// =========================

func Get(root *Table, path ...string) (Node, bool) {
	var cur Node = root
	for _, p := range path {
		if len(p) == 0 {
			continue
		}
		t, ok := cur.(*Table)
		if !ok {
			return nil, false
		}
		cur, ok = t.Get(p)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func GetUntyped(root *Table, path ...string) (any, bool) {
	n, ok := Get(root, path...)
	if !ok {
		return nil, false
	}
	return ToUntyped(n), true
}

// ToUntyped converts n to plain Go values. Datetimes stay datetime.Datetime.
func ToUntyped(n Node) any {
	switch v := n.(type) {
	case *Value:
		return v.V
	case *Array:
		out := make([]any, len(v.Elems))
		for i := range v.Elems {
			out[i] = ToUntyped(v.Elems[i])
		}
		return out
	case *Table:
		m := make(map[string]any, v.Len())
		for k, child := range v.All() {
			m[k] = ToUntyped(child)
		}
		return m
	default:
		return nil
	}
}

func MustString(n Node) string {
	v := n.(*Value)
	return v.V.(string)
}

func MustInt(n Node) int64 {
	v := n.(*Value)
	return v.V.(int64)
}
