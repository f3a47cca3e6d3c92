// Package datetime holds the TOML date and time primitive.
//
// A TOML datetime is one of four shapes: an offset datetime, a local
// datetime, a local date or a local time. Datetime keeps the parts that were
// present and formats exactly those back out.
package datetime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Field is the single key of the map a Datetime presents itself as to a
// generic deserializer. Decoders that build dynamic values look for it to
// tell a datetime apart from a one-entry table.
const Field = "$__toml_private_datetime"

// StructName is the struct name a Datetime serializes under.
const StructName = "$__toml_private_Datetime"

type Kind string

var Kinds = struct {
	OffsetDatetime Kind
	LocalDatetime  Kind
	LocalDate      Kind
	LocalTime      Kind
}{
	OffsetDatetime: "datetime",
	LocalDatetime:  "local_datetime",
	LocalDate:      "local_date",
	LocalTime:      "local_time",
}

type Date struct {
	Year  uint16
	Month uint8
	Day   uint8
}

type Time struct {
	Hour       uint8
	Minute     uint8
	Second     uint8
	Nanosecond uint32
}

// Offset is either Z or a signed number of minutes east of UTC.
type Offset struct {
	Z       bool
	Minutes int16
}

type Datetime struct {
	Date   *Date
	Time   *Time
	Offset *Offset
}

// ErrInvalid is wrapped by every Parse and FromTime failure.
var ErrInvalid = errors.New("invalid datetime")

func (d Datetime) Kind() Kind {
	switch {
	case d.Date != nil && d.Time != nil && d.Offset != nil:
		return Kinds.OffsetDatetime
	case d.Date != nil && d.Time != nil:
		return Kinds.LocalDatetime
	case d.Date != nil:
		return Kinds.LocalDate
	default:
		return Kinds.LocalTime
	}
}

// Equal compares the present parts.
func (d Datetime) Equal(o Datetime) bool {
	return eqPtr(d.Date, o.Date) && eqPtr(d.Time, o.Time) && eqPtr(d.Offset, o.Offset)
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (d Datetime) String() string {
	var b strings.Builder
	if d.Date != nil {
		fmt.Fprintf(&b, "%04d-%02d-%02d", d.Date.Year, d.Date.Month, d.Date.Day)
	}
	if d.Time != nil {
		if d.Date != nil {
			b.WriteByte('T')
		}
		fmt.Fprintf(&b, "%02d:%02d:%02d", d.Time.Hour, d.Time.Minute, d.Time.Second)
		if d.Time.Nanosecond != 0 {
			frac := fmt.Sprintf("%09d", d.Time.Nanosecond)
			b.WriteByte('.')
			b.WriteString(strings.TrimRight(frac, "0"))
		}
	}
	if d.Offset != nil {
		if d.Offset.Z {
			b.WriteByte('Z')
		} else {
			m := int(d.Offset.Minutes)
			sign := byte('+')
			if m < 0 {
				sign = '-'
				m = -m
			}
			b.WriteByte(sign)
			fmt.Fprintf(&b, "%02d:%02d", m/60, m%60)
		}
	}
	return b.String()
}

func (d Datetime) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Datetime) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Parse reads any of the four TOML datetime shapes. The date and time may
// be separated by 'T', 't' or a space; 'z' is accepted for Z.
func Parse(s string) (Datetime, error) {
	src := s
	var dt Datetime

	if len(s) >= 10 && s[4] == '-' {
		date, err := parseDate(s[:10])
		if err != nil {
			return Datetime{}, invalid(src, err)
		}
		dt.Date = &date
		s = s[10:]
		if s == "" {
			return dt, nil
		}
		if s[0] != 'T' && s[0] != 't' && s[0] != ' ' {
			return Datetime{}, invalid(src, errors.New("expected 'T' between date and time"))
		}
		s = s[1:]
	}

	tm, rest, err := parseTime(s)
	if err != nil {
		return Datetime{}, invalid(src, err)
	}
	dt.Time = &tm
	if rest == "" {
		return dt, nil
	}
	if dt.Date == nil {
		return Datetime{}, invalid(src, errors.New("offset without date"))
	}
	off, err := parseOffset(rest)
	if err != nil {
		return Datetime{}, invalid(src, err)
	}
	dt.Offset = &off
	return dt, nil
}

func invalid(s string, err error) error {
	return fmt.Errorf("%w %q: %v", ErrInvalid, s, err)
}

func parseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Year: uint16(t.Year()), Month: uint8(t.Month()), Day: uint8(t.Day())}, nil
}

func parseTime(s string) (Time, string, error) {
	if len(s) < 8 || s[2] != ':' || s[5] != ':' {
		return Time{}, "", errors.New("expected HH:MM:SS")
	}
	hour, err1 := digits(s[0:2])
	minute, err2 := digits(s[3:5])
	second, err3 := digits(s[6:8])
	if err := errors.Join(err1, err2, err3); err != nil {
		return Time{}, "", err
	}
	if hour > 23 || minute > 59 || second > 60 {
		return Time{}, "", errors.New("time out of range")
	}
	t := Time{Hour: uint8(hour), Minute: uint8(minute), Second: uint8(second)}
	s = s[8:]

	if len(s) > 0 && s[0] == '.' {
		end := 1
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
		frac := s[1:end]
		if frac == "" {
			return Time{}, "", errors.New("missing fractional digits")
		}
		if len(frac) > 9 {
			frac = frac[:9]
		}
		frac += strings.Repeat("0", 9-len(frac))
		ns, err := strconv.ParseUint(frac, 10, 32)
		if err != nil {
			return Time{}, "", err
		}
		t.Nanosecond = uint32(ns)
		s = s[end:]
	}
	return t, s, nil
}

func parseOffset(s string) (Offset, error) {
	if s == "Z" || s == "z" {
		return Offset{Z: true}, nil
	}
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return Offset{}, errors.New("expected Z or ±HH:MM offset")
	}
	h, err1 := digits(s[1:3])
	m, err2 := digits(s[4:6])
	if err := errors.Join(err1, err2); err != nil {
		return Offset{}, err
	}
	if h > 23 || m > 59 {
		return Offset{}, errors.New("offset out of range")
	}
	minutes := int16(h*60 + m)
	if s[0] == '-' {
		minutes = -minutes
	}
	return Offset{Minutes: minutes}, nil
}

func digits(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("unexpected %q", s[i])
		}
	}
	return strconv.Atoi(s)
}

// FromTime converts t to an offset datetime. TOML years have four digits,
// so years outside 0..9999 fail with ErrInvalid. An offset that is not a
// whole number of minutes cannot be written, so such a t is converted to
// UTC first; the instant survives AsTime but the zone does not.
func FromTime(t time.Time) (Datetime, error) {
	if y := t.Year(); y < 0 || y > 9999 {
		return Datetime{}, fmt.Errorf("%w: year %d out of range", ErrInvalid, y)
	}
	off := Offset{Z: true}
	if t.Location() != time.UTC {
		_, secs := t.Zone()
		if secs%60 != 0 {
			t = t.UTC()
		} else {
			off = Offset{Minutes: int16(secs / 60)}
		}
	}
	date := Date{Year: uint16(t.Year()), Month: uint8(t.Month()), Day: uint8(t.Day())}
	tm := Time{
		Hour:       uint8(t.Hour()),
		Minute:     uint8(t.Minute()),
		Second:     uint8(t.Second()),
		Nanosecond: uint32(t.Nanosecond()),
	}
	return Datetime{Date: &date, Time: &tm, Offset: &off}, nil
}

// AsTime converts d to a time.Time. Parts without an offset are placed in loc.
// A local time has no date and cannot be converted.
func (d Datetime) AsTime(loc *time.Location) (time.Time, error) {
	if d.Date == nil {
		return time.Time{}, fmt.Errorf("datetime %s has no date", d)
	}
	var tm Time
	if d.Time != nil {
		tm = *d.Time
	}
	if d.Offset != nil {
		if d.Offset.Z {
			loc = time.UTC
		} else {
			loc = time.FixedZone("", int(d.Offset.Minutes)*60)
		}
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(int(d.Date.Year), time.Month(d.Date.Month), int(d.Date.Day),
		int(tm.Hour), int(tm.Minute), int(tm.Second), int(tm.Nanosecond), loc), nil
}
