package value

// Index selects a child of a Value. Only At and Key implement it.
type Index interface {
	index(v *Value) *Value
}

// At indexes an array by position.
type At int

// Key indexes a table by key.
type Key string

func (i At) index(v *Value) *Value {
	if v.kind != KindArray || i < 0 || int(i) >= len(v.arr) {
		return nil
	}
	return &v.arr[i]
}

func (k Key) index(v *Value) *Value {
	if v.kind != KindTable {
		return nil
	}
	return v.tbl.GetMut(string(k))
}

// Get returns the child selected by i. It reports false when v is the
// wrong kind for i or the child does not exist.
func (v Value) Get(i Index) (Value, bool) {
	p := i.index(&v)
	if p == nil {
		return Value{}, false
	}
	return *p, true
}

// GetMut returns a pointer to the child selected by i, or nil.
func (v *Value) GetMut(i Index) *Value {
	return i.index(v)
}

// MustGet is Get for trusted paths. It panics with "index not found".
func (v Value) MustGet(i Index) Value {
	p := i.index(&v)
	if p == nil {
		panic("index not found")
	}
	return *p
}

// MustGetMut is GetMut for trusted paths. It panics with "index not found".
func (v *Value) MustGetMut(i Index) *Value {
	p := i.index(v)
	if p == nil {
		panic("index not found")
	}
	return p
}
