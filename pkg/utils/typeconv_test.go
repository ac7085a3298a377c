package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventTime(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"12/1/2010 8:26", time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)},
		{"12/1/2010 8:26:45", time.Date(2010, 12, 1, 8, 26, 45, 0, time.UTC)},
		{"2010-12-01 08:26:00", time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)},
		{"2011-03-15", time.Date(2011, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2011-03-15T10:00:00Z", time.Date(2011, 3, 15, 10, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, err := ParseEventTime(tc.in)
		require.NoError(t, err, tc.in)
		assert.True(t, tc.want.Equal(got), "%s parsed to %v", tc.in, got)
	}
}

func TestParseEventTimeRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "not a date", "13/32/2010 8:26", "2010-14-01"} {
		_, err := ParseEventTime(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal("2.55")
	require.NoError(t, err)
	assert.Equal(t, "2.55", d.String())

	d, err = ParseDecimal("-4.95")
	require.NoError(t, err)
	assert.True(t, d.IsNegative())

	for _, in := range []string{"", "abc", "NaN", "Inf"} {
		_, err := ParseDecimal(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseQuantity(t *testing.T) {
	n, err := ParseQuantity("6")
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	// Returns come through as negative counts.
	n, err = ParseQuantity("-3")
	require.NoError(t, err)
	assert.Equal(t, int64(-3), n)

	// Some exports format integer counts with a decimal point.
	n, err = ParseQuantity("6.0")
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	for _, in := range []string{"", "abc", "6.5"} {
		_, err := ParseQuantity(in)
		assert.Error(t, err, "input %q", in)
	}
}
