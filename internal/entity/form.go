package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/kairo/internal/models"
)

// Form holds raw input values by field name
type Form map[string]string

// Get returns the trimmed value of name
func (f Form) Get(name string) string {
	return strings.TrimSpace(f[name])
}

// ValidationError is a form problem caught before any request is made
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func parseDateInput(field, date string) (time.Time, error) {
	t, err := time.Parse(models.InputDate, date)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD.", date)}
	}
	return t, nil
}

func parseTimeInput(field, clock string) (time.Time, error) {
	t, err := time.Parse(models.InputTime, clock)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: fmt.Sprintf("Invalid time %q, expected HH:MM.", clock)}
	}
	return t, nil
}

// combine joins separate date and time inputs into one timestamp.
// A date alone means the end of that day. No date means no value; a time
// without a date is ignored.
func combine(dateField, timeField string, f Form) (*string, error) {
	date, clock := f.Get(dateField), f.Get(timeField)
	if date == "" {
		return nil, nil
	}
	d, err := parseDateInput(dateField, date)
	if err != nil {
		return nil, err
	}
	var out string
	if clock == "" {
		out = d.Format(models.InputDate) + "T23:59:59"
	} else {
		t, err := parseTimeInput(timeField, clock)
		if err != nil {
			return nil, err
		}
		out = d.Format(models.InputDate) + "T" + t.Format(models.InputTime) + ":00"
	}
	return &out, nil
}

// combineStrict is combine for values that need both a date and a time
func combineStrict(dateField, timeField string, f Form) (*string, error) {
	if f.Get(dateField) == "" || f.Get(timeField) == "" {
		return nil, nil
	}
	return combine(dateField, timeField, f)
}

// dateOnly normalizes a date input, nil when empty
func dateOnly(field string, f Form) (*string, error) {
	date := f.Get(field)
	if date == "" {
		return nil, nil
	}
	d, err := parseDateInput(field, date)
	if err != nil {
		return nil, err
	}
	out := d.Format(models.InputDate)
	return &out, nil
}

// split breaks a timestamp into date and time inputs in loc
func split(ts models.Timestamp, loc *time.Location) (date, clock string) {
	t, ok := ts.In(loc)
	if !ok {
		return "", ""
	}
	return t.Format(models.InputDate), t.Format(models.InputTime)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
