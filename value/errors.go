package value

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKeyNotString is returned when a map key does not serialize to a
	// string.
	ErrKeyNotString = errors.New("key must be a string")
	// ErrOutOfRange is returned for unsigned integers above math.MaxInt64.
	ErrOutOfRange = errors.New("u64 value was too large")
)

// UnsupportedTypeError reports a shape the value model cannot hold, such
// as a unit or a struct variant.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Type == "" {
		return "unsupported Go type"
	}
	return fmt.Sprintf("unsupported %s type", e.Type)
}

// SerError is a failure converting a Go value into a Value.
type SerError struct {
	Err error
}

func (e *SerError) Error() string { return e.Err.Error() }

func (e *SerError) Unwrap() error { return e.Err }

// DeError is a failure converting a Value into a Go value. Keys is the
// path of table keys leading to the failing value, outermost first.
type DeError struct {
	Message string
	Keys    []string
	Err     error
}

func (e *DeError) Error() string {
	if len(e.Keys) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s for key `%s`", e.Message, strings.Join(e.Keys, "."))
}

func (e *DeError) Unwrap() error { return e.Err }

// AddKey prepends key to the path.
func (e *DeError) AddKey(key string) {
	e.Keys = append([]string{key}, e.Keys...)
}

func asDeError(err error) *DeError {
	var de *DeError
	if errors.As(err, &de) {
		return de
	}
	return &DeError{Message: err.Error(), Err: err}
}

func withKey(err error, key string) error {
	de := asDeError(err)
	de.AddKey(key)
	return de
}
