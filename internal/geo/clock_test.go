package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanjshine99/carepath/internal/geo"
)

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"midnight", "00:00", 0},
		{"morning visit", "08:30", 510},
		{"last minute of day", "23:59", 1439},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := geo.ParseHHMM(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseHHMMRejectsOffWireFormats(t *testing.T) {
	// The wire format is exactly two zero-padded digit pairs; anything a
	// client could not legally send is rejected rather than coerced.
	for _, input := range []string{
		"9:00",   // hour not zero-padded
		"09:0",   // minute not zero-padded
		"24:00",  // hour out of range
		"09:60",  // minute out of range
		"0900",   // missing separator
		"ab:cd",  // not digits
		"+9:30",  // sign sneaking past Atoi-style parsing
		" 09:00", // leading whitespace
		"",
	} {
		_, err := geo.ParseHHMM(input)
		assert.ErrorIs(t, err, geo.ErrInvalidClockTime, "input %q", input)
	}
}

func TestFormatHHMM(t *testing.T) {
	assert.Equal(t, "00:00", geo.FormatHHMM(0))
	assert.Equal(t, "09:05", geo.FormatHHMM(545))
	assert.Equal(t, "23:59", geo.FormatHHMM(1439))
}

func TestHHMMAdd(t *testing.T) {
	got, err := geo.HHMMAdd("09:00", 45)
	require.NoError(t, err)
	assert.Equal(t, "09:45", got)

	got, err = geo.HHMMAdd("10:30", 90)
	require.NoError(t, err)
	assert.Equal(t, "12:00", got)
}

func TestHHMMAddRejectsCrossingMidnight(t *testing.T) {
	// A 23:30 visit can run at most 29 minutes; at 30 it would wrap the
	// day, which no visit is allowed to do.
	got, err := geo.HHMMAdd("23:30", 29)
	require.NoError(t, err)
	assert.Equal(t, "23:59", got)

	_, err = geo.HHMMAdd("23:30", 30)
	assert.ErrorIs(t, err, geo.ErrCrossesMidnight)
}

func TestHHMMAddInvalidBase(t *testing.T) {
	_, err := geo.HHMMAdd("9am", 30)
	assert.ErrorIs(t, err, geo.ErrInvalidClockTime)
}
