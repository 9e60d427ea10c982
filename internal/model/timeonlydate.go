package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/sanjshine99/carepath/internal/geo"
)

const dateLayout = "2006-01-02"

// TimeOnlyDate is a calendar date, always normalized to 00:00:00 UTC of its
// calendar date. It is used for every date-only column: AvailabilityVersion
// boundaries, TimeOffWindow endpoints, and Appointment.Date.
type TimeOnlyDate struct {
	t time.Time
}

// NewTimeOnlyDate normalizes d to its UTC calendar day.
func NewTimeOnlyDate(d time.Time) TimeOnlyDate {
	return TimeOnlyDate{t: geo.UTCDay(d)}
}

// Time returns the underlying UTC-midnight instant.
func (d TimeOnlyDate) Time() time.Time { return d.t }

// Weekday returns the en-GB weekday of the date.
func (d TimeOnlyDate) Weekday() geo.Weekday { return geo.WeekdayOf(d.t) }

// Before reports whether d is strictly earlier than other.
func (d TimeOnlyDate) Before(other TimeOnlyDate) bool { return d.t.Before(other.t) }

// After reports whether d is strictly later than other.
func (d TimeOnlyDate) After(other TimeOnlyDate) bool { return d.t.After(other.t) }

// Equal reports whether d and other name the same calendar day.
func (d TimeOnlyDate) Equal(other TimeOnlyDate) bool { return d.t.Equal(other.t) }

// AddDays returns the date n days after d.
func (d TimeOnlyDate) AddDays(n int) TimeOnlyDate {
	return TimeOnlyDate{t: d.t.AddDate(0, 0, n)}
}

// DaysSince returns the whole number of days between other and d (d − other).
func (d TimeOnlyDate) DaysSince(other TimeOnlyDate) int {
	return int(d.t.Sub(other.t).Hours() / 24)
}

func (d TimeOnlyDate) String() string { return d.t.Format(dateLayout) }

// MarshalJSON encodes the date as an ISO-8601 calendar date.
func (d TimeOnlyDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.t.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON decodes an ISO-8601 date or full timestamp, normalizing to
// its UTC calendar day.
func (d *TimeOnlyDate) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		d.t = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		parsed, err = time.Parse(dateLayout, s)
		if err != nil {
			return fmt.Errorf("parsing date %q: %w", s, err)
		}
	}
	d.t = geo.UTCDay(parsed)
	return nil
}

// Value implements driver.Valuer for the GORM "date" column type.
func (d TimeOnlyDate) Value() (driver.Value, error) {
	if d.t.IsZero() {
		return nil, nil
	}
	return d.t, nil
}

// Scan implements sql.Scanner.
func (d *TimeOnlyDate) Scan(src interface{}) error {
	if src == nil {
		d.t = time.Time{}
		return nil
	}
	t, ok := src.(time.Time)
	if !ok {
		return fmt.Errorf("unsupported Scan source for TimeOnlyDate: %T", src)
	}
	d.t = geo.UTCDay(t)
	return nil
}
