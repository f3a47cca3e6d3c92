package value

import (
	"fmt"
	"io"
	"strings"

	"github.com/dzjyyds666/aqtoml/parse/toml"
)

// Parse reads a TOML document into a table value.
func Parse(s string) (Value, error) {
	return ParseReader(strings.NewReader(s))
}

func ParseReader(r io.Reader) (Value, error) {
	root, err := toml.Parse(r)
	if err != nil {
		return Value{}, err
	}
	var v Value
	if err := v.Deserialize(toml.NewDeserializer(root)); err != nil {
		return Value{}, asDeError(err)
	}
	return v, nil
}

// Format renders v as TOML text. A table becomes a document; any other
// value is written as it would appear after "key = ".
func Format(v Value, opts ...toml.Option) (string, error) {
	if v.IsTable() {
		out, err := toml.Marshal(v, opts...)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	n, err := toml.ToNode(v)
	if err != nil {
		return "", err
	}
	return toml.FormatValue(n, opts...)
}

func (v Value) String() string {
	s, err := Format(v)
	if err != nil {
		return fmt.Sprintf("%%!(toml: %v)", err)
	}
	return s
}
