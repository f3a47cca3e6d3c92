// Package parse loads documents from disk into the value model and walks
// them with dotted paths.
package parse

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dzjyyds666/aqtoml/pkg"
	"github.com/dzjyyds666/aqtoml/value"
)

var (
	ErrNoInput  = errors.New("no input file path")
	ErrNotExist = errors.New("input file not exist")
)

// NotFoundError is returned by Lookup when a path segment does not resolve.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("key %q not found", e.Path) }

// ParseToml reads a whole TOML document from r.
func ParseToml(r io.Reader) (value.Value, error) {
	return value.ParseReader(r)
}

// ParseFile checks that path exists and parses it.
func ParseFile(path string) (value.Value, error) {
	if path == "" {
		return value.Value{}, ErrNoInput
	}
	exist, err := pkg.CheckFileExist(path)
	if err != nil {
		return value.Value{}, fmt.Errorf("check file exist: %w", err)
	}
	if !exist {
		return value.Value{}, ErrNotExist
	}
	f, err := os.Open(path)
	if err != nil {
		return value.Value{}, err
	}
	defer f.Close()

	v, err := ParseToml(f)
	if err != nil {
		return value.Value{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Segments splits a dotted path. A segment made only of digits indexes an
// array when the value at that point is one, otherwise it is a table key.
func Segments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Lookup resolves a dotted path such as "servers.0.host" against v. The
// empty path returns v itself.
func Lookup(v value.Value, path string) (value.Value, error) {
	cur := v
	for _, seg := range Segments(path) {
		var idx value.Index = value.Key(seg)
		if n, err := strconv.Atoi(seg); err == nil && cur.IsArray() {
			idx = value.At(n)
		}
		next, ok := cur.Get(idx)
		if !ok {
			return value.Value{}, &NotFoundError{Path: path}
		}
		cur = next
	}
	return cur, nil
}
