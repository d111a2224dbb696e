// Package date provides a day-granularity Date and chronological value
// series with "as-of" lookup semantics.
package date

import (
	"encoding/json"
	"fmt"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02"

// Date represents a date with no lower than day granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

// Compare returns -1, 0 or 1 depending on whether d is before, equal to or
// after x.
func (d Date) Compare(x Date) int {
	if d.Before(x) {
		return -1
	}
	if d.After(x) {
		return 1
	}
	return 0
}

// String formats the date in its standard format.
func (d Date) String() string { return d.time().Format(DateFormat) }

// Parse parses a Date from a string. It is lenient and accepts formats like "2025-7-1".
func Parse(str string) (Date, error) {
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, readDateFormat, err)
	}
	return New(on.Date()), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON implements json.Unmarshaler for a date as a json string.
func (j *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	d, err := Parse(str)
	if err != nil {
		return err
	}
	*j = d
	return nil
}

// MarshalJSON implements json.Marshaler.
func (j Date) MarshalJSON() ([]byte, error) {
	str := j.String()
	return json.Marshal(&str)
}

var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
