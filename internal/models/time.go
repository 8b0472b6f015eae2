package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Display layouts used across views
const (
	DateTimeLayout = "Jan 2, 2006 3:04 PM"
	DateLayout     = "Jan 2, 2006"
	InputDate      = "2006-01-02"
	InputTime      = "15:04"
)

// naive layouts carry no zone and are read as wall-clock time in the viewer's zone
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp is an instant as sent by the service. Values without a zone
// are kept as wall-clock fields and resolved against a location on use.
type Timestamp struct {
	raw   string
	t     time.Time
	naive bool
	valid bool
}

// ParseTimestamp parses s. It never fails: unparseable input yields a
// present but invalid Timestamp that still carries the raw text.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{raw: s, t: t, valid: true}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{raw: s, t: t, naive: true, valid: true}
		}
	}
	return Timestamp{raw: s}
}

// TimestampOf wraps an absolute time
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{raw: t.Format(time.RFC3339), t: t, valid: true}
}

// Present reports whether the service sent a non-empty value
func (ts Timestamp) Present() bool { return ts.raw != "" }

// Valid reports whether the value could be parsed
func (ts Timestamp) Valid() bool { return ts.valid }

// Raw returns the text the service sent
func (ts Timestamp) Raw() string { return ts.raw }

// In resolves the instant in loc. The second result is false when the
// value is absent or unparseable.
func (ts Timestamp) In(loc *time.Location) (time.Time, bool) {
	if !ts.valid {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if ts.naive {
		t := ts.t
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), true
	}
	return ts.t.In(loc), true
}

// Format renders the value for display in loc, or fallback when absent or invalid
func (ts Timestamp) Format(loc *time.Location, layout, fallback string) string {
	t, ok := ts.In(loc)
	if !ok {
		return fallback
	}
	return t.Format(layout)
}

// UnmarshalJSON accepts a string or null
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// keep foreign shapes around for display rather than failing the whole list
		*ts = Timestamp{raw: string(b)}
		return nil
	}
	*ts = ParseTimestamp(s)
	return nil
}

// MarshalJSON writes the raw text back, or null when absent
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(ts.raw)
}

// Date is a calendar date with no zone
type Date struct {
	Year  int
	Month time.Month
	Day   int
	raw   string
	valid bool
}

// ParseDate parses YYYY-MM-DD, or the date prefix of a longer timestamp
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	head := s
	if len(head) > len(InputDate) {
		head = head[:len(InputDate)]
	}
	t, err := time.Parse(InputDate, head)
	if err != nil {
		return Date{raw: s}
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day(), raw: s, valid: true}
}

// Present reports whether the service sent a non-empty value
func (d Date) Present() bool { return d.raw != "" }

// Valid reports whether the value could be parsed
func (d Date) Valid() bool { return d.valid }

// String returns YYYY-MM-DD, or the raw text when invalid
func (d Date) String() string {
	if !d.valid {
		return d.raw
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(InputDate)
}

// Format renders the date with layout, or fallback when absent or invalid
func (d Date) Format(layout, fallback string) string {
	if !d.valid {
		return fallback
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(layout)
}

// StartIn is midnight at the start of the date in loc
func (d Date) StartIn(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// EndIn is the last instant of the date in loc
func (d Date) EndIn(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day+1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)
}

// UnmarshalJSON accepts a string or null
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*d = Date{raw: string(b)}
		return nil
	}
	*d = ParseDate(s)
	return nil
}

// MarshalJSON writes YYYY-MM-DD, or null when absent
func (d Date) MarshalJSON() ([]byte, error) {
	if d.raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// FreeText is a text field the service may send as a string or a list of strings
type FreeText string

// UnmarshalJSON joins lists with ", " and maps null to empty
func (f *FreeText) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FreeText(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*f = FreeText(strings.Join(list, ", "))
	return nil
}

// Clock supplies the current time and the viewer's zone
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// SystemClock uses the wall clock and the process's local zone
func SystemClock() Clock {
	return Clock{Now: time.Now, Location: time.Local}
}

// FixedClock always reports t, in t's location
func FixedClock(t time.Time) Clock {
	return Clock{Now: func() time.Time { return t }, Location: t.Location()}
}

// Time returns the current time in the clock's zone
func (c Clock) Time() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().In(c.Loc())
}

// Loc returns the clock's zone, defaulting to local
func (c Clock) Loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}
