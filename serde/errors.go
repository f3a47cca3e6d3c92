package serde

import (
	"fmt"
	"strconv"
)

// Error is the error produced by the protocol helpers below.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

// Custom builds an Error from a format string.
func Custom(format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// Unexpected describes the value a source actually found, for use in
// InvalidType and InvalidValue messages.
type Unexpected string

const (
	UnexpectedUnit           Unexpected = "unit value"
	UnexpectedOption         Unexpected = "Option value"
	UnexpectedNewtypeStruct  Unexpected = "newtype struct"
	UnexpectedSeq            Unexpected = "sequence"
	UnexpectedMap            Unexpected = "map"
	UnexpectedEnum           Unexpected = "enum"
	UnexpectedUnitVariant    Unexpected = "unit variant"
	UnexpectedNewtypeVariant Unexpected = "newtype variant"
	UnexpectedTupleVariant   Unexpected = "tuple variant"
	UnexpectedStructVariant  Unexpected = "struct variant"
	UnexpectedBytes          Unexpected = "byte array"
)

func UnexpectedBool(v bool) Unexpected {
	return Unexpected("boolean `" + strconv.FormatBool(v) + "`")
}

func UnexpectedInt(v int64) Unexpected {
	return Unexpected("integer `" + strconv.FormatInt(v, 10) + "`")
}

func UnexpectedUint(v uint64) Unexpected {
	return Unexpected("integer `" + strconv.FormatUint(v, 10) + "`")
}

func UnexpectedFloat(v float64) Unexpected {
	return Unexpected("floating point `" + strconv.FormatFloat(v, 'g', -1, 64) + "`")
}

func UnexpectedStr(v string) Unexpected {
	return Unexpected("string " + strconv.Quote(v))
}

// InvalidType reports that a source produced a shape the visitor does not
// accept.
func InvalidType(got Unexpected, expected string) error {
	return Custom("invalid type: %s, expected %s", got, expected)
}

// InvalidValue reports a value of the right shape but the wrong content.
func InvalidValue(got Unexpected, expected string) error {
	return Custom("invalid value: %s, expected %s", got, expected)
}

// InvalidLength reports a sequence or map with the wrong number of entries.
func InvalidLength(n int, expected string) error {
	return Custom("invalid length %d, expected %s", n, expected)
}

func MissingField(name string) error {
	return Custom("missing field `%s`", name)
}

func DuplicateField(name string) error {
	return Custom("duplicate field `%s`", name)
}

func UnknownVariant(variant string, expected []string) error {
	if len(expected) == 0 {
		return Custom("unknown variant `%s`, there are no variants", variant)
	}
	return Custom("unknown variant `%s`, expected one of %s", variant, quoteList(expected))
}

func quoteList(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += "`" + n + "`"
	}
	return out
}
