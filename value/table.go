package value

import "iter"

type entry struct {
	key   string
	value Value
}

// Table is a string-keyed map of values that remembers insertion order.
// A nil *Table reads as empty.
type Table struct {
	entries []*entry
	index   map[string]int
}

func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func (t *Table) IsEmpty() bool { return t.Len() == 0 }

func (t *Table) lookup(key string) *entry {
	if t == nil {
		return nil
	}
	i, ok := t.index[key]
	if !ok {
		return nil
	}
	return t.entries[i]
}

func (t *Table) Get(key string) (Value, bool) {
	e := t.lookup(key)
	if e == nil {
		return Value{}, false
	}
	return e.value, true
}

// GetMut returns a pointer to the value stored under key, or nil. The
// pointer stays valid until the key is removed.
func (t *Table) GetMut(key string) *Value {
	e := t.lookup(key)
	if e == nil {
		return nil
	}
	return &e.value
}

func (t *Table) ContainsKey(key string) bool { return t.lookup(key) != nil }

// Insert stores v under key. A replaced key keeps its position; the
// previous value is returned with true.
func (t *Table) Insert(key string, v Value) (Value, bool) {
	if e := t.lookup(key); e != nil {
		prev := e.value
		e.value = v
		return prev, true
	}
	if t.index == nil {
		t.index = make(map[string]int)
	}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, &entry{key: key, value: v})
	return Value{}, false
}

// Remove deletes key, keeping the order of the remaining keys.
func (t *Table) Remove(key string) (Value, bool) {
	if t == nil {
		return Value{}, false
	}
	i, ok := t.index[key]
	if !ok {
		return Value{}, false
	}
	prev := t.entries[i].value
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	delete(t.index, key)
	for j := i; j < len(t.entries); j++ {
		t.index[t.entries[j].key] = j
	}
	return prev, true
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, t.Len())
	for k := range t.All() {
		keys = append(keys, k)
	}
	return keys
}

// All yields entries in insertion order.
func (t *Table) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if t == nil {
			return
		}
		for _, e := range t.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	out := &Table{
		entries: make([]*entry, 0, t.Len()),
		index:   make(map[string]int, t.Len()),
	}
	for k, v := range t.All() {
		out.Insert(k, v.Clone())
	}
	return out
}

// Equal reports whether both tables hold the same keys with equal values,
// in any order.
func (t *Table) Equal(o *Table) bool {
	if t.Len() != o.Len() {
		return false
	}
	for k, v := range t.All() {
		ov, ok := o.Get(k)
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Entry is a view of one key of a table, present or not.
type Entry struct {
	t   *Table
	key string
}

// Entry returns the entry for key. t must not be nil.
func (t *Table) Entry(key string) Entry { return Entry{t: t, key: key} }

func (e Entry) Key() string { return e.key }

func (e Entry) IsVacant() bool { return !e.t.ContainsKey(e.key) }

func (e Entry) IsOccupied() bool { return e.t.ContainsKey(e.key) }

// Get returns the stored value, or nil for a vacant entry.
func (e Entry) Get() *Value { return e.t.GetMut(e.key) }

// Insert stores v and returns a pointer to it.
func (e Entry) Insert(v Value) *Value {
	e.t.Insert(e.key, v)
	return e.t.GetMut(e.key)
}

// OrInsert stores v only when the entry is vacant and returns the value
// now held.
func (e Entry) OrInsert(v Value) *Value {
	if p := e.t.GetMut(e.key); p != nil {
		return p
	}
	return e.Insert(v)
}
