package geo

import (
	"errors"
	"fmt"
)

// Visit and slot boundaries are 24-hour "HH:MM" clock times carried as
// minutes from midnight. A visit occupies a single calendar day, so every
// clock value this package produces or accepts lies in [00:00, 23:59].

// maxMinuteOfDay is 23:59 expressed in minutes from midnight.
const maxMinuteOfDay = 23*60 + 59

// ErrInvalidClockTime indicates a string is not a 24-hour "HH:MM" clock time.
var ErrInvalidClockTime = errors.New(`invalid clock time: expected 24-hour "HH:MM"`)

// ErrCrossesMidnight indicates a visit window would extend past 23:59.
// Visits are required not to cross midnight.
var ErrCrossesMidnight = errors.New("visit window must not cross midnight")

// ParseHHMM parses a 24-hour "HH:MM" clock time into minutes from midnight.
// It accepts exactly the wire format: two zero-padded digit pairs separated
// by a colon, hours 00-23, minutes 00-59.
func ParseHHMM(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidClockTime
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrInvalidClockTime
		}
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	if hh > 23 || mm > 59 {
		return 0, ErrInvalidClockTime
	}
	return hh*60 + mm, nil
}

// FormatHHMM formats minutes from midnight as a zero-padded "HH:MM".
func FormatHHMM(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// HHMMAdd adds a duration in minutes to an "HH:MM" clock time, carrying
// hours. A result past 23:59 returns ErrCrossesMidnight so a visit template
// whose preferred time plus duration would wrap the day is rejected instead
// of producing an unparseable end time.
func HHMMAdd(t string, minutes int) (string, error) {
	base, err := ParseHHMM(t)
	if err != nil {
		return "", err
	}
	end := base + minutes
	if end > maxMinuteOfDay {
		return "", ErrCrossesMidnight
	}
	return FormatHHMM(end), nil
}
