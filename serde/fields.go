package serde

import (
	"reflect"
	"strings"
	"sync"
)

// A field represents a single exported struct field.
type field struct {
	name      string
	idx       []int
	depth     int
	omitEmpty bool
	optional  bool
}

type structFields struct {
	list  []field
	exact map[string]int
	fold  map[string]int
	names []string
}

func (sf *structFields) lookup(key string) (int, bool) {
	if i, ok := sf.exact[key]; ok {
		return i, true
	}
	i, ok := sf.fold[strings.ToLower(key)]
	return i, ok
}

// fieldCache caches the field layout per struct type.
var fieldCache sync.Map // map[reflect.Type]*structFields

// cachedFields lists the encodable fields of t in declaration order.
// Untagged embedded structs are flattened; a field closer to the top level
// shadows a deeper one with the same name. Fields tagged `toml:"-"` and
// unexported fields are skipped.
func cachedFields(t reflect.Type) *structFields {
	if f, ok := fieldCache.Load(t); ok {
		return f.(*structFields)
	}

	var list []field
	pos := make(map[string]int)
	var walk func(t reflect.Type, idx []int, depth int)
	walk = func(t reflect.Type, idx []int, depth int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			tag := sf.Tag.Get("toml")
			if tag == "-" {
				continue
			}
			name, opts, _ := strings.Cut(tag, ",")
			path := append(append([]int(nil), idx...), i)

			if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
				walk(sf.Type, path, depth+1)
				continue
			}
			if !sf.IsExported() {
				continue
			}

			f := field{name: name, idx: path, depth: depth}
			if f.name == "" {
				f.name = sf.Name
			}
			for opts != "" {
				var opt string
				opt, opts, _ = strings.Cut(opts, ",")
				if strings.TrimSpace(opt) == "omitempty" {
					f.omitEmpty = true
				}
			}
			switch sf.Type.Kind() {
			case reflect.Ptr, reflect.Interface:
				f.optional = true
			}
			f.optional = f.optional || f.omitEmpty

			if at, dup := pos[f.name]; dup {
				if list[at].depth > depth {
					list[at] = f
				}
				continue
			}
			pos[f.name] = len(list)
			list = append(list, f)
		}
	}
	walk(t, nil, 0)

	sf := &structFields{
		list:  list,
		exact: make(map[string]int, len(list)),
		fold:  make(map[string]int, len(list)),
		names: make([]string, len(list)),
	}
	for i, f := range list {
		sf.exact[f.name] = i
		sf.names[i] = f.name
		lower := strings.ToLower(f.name)
		if _, ok := sf.fold[lower]; !ok {
			sf.fold[lower] = i
		}
	}

	fieldCache.Store(t, sf)
	return sf
}

// isEmptyValue reports whether v is the zero value for omitempty purposes.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	case reflect.Struct:
		return v.IsZero()
	}
	return false
}
