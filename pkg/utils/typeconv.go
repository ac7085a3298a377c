package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// eventTimeFormats is the ordered list of date layouts seen across the source
// extracts. First match wins, so the most common layout goes first.
var eventTimeFormats = []string{
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// ParseEventTime parses a source date string against the known layouts.
func ParseEventTime(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty date value")
	}
	for _, f := range eventTimeFormats {
		if t, err := time.Parse(f, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse datetime: %s", s)
}

// ParseDecimal parses a money or price field. decimal.NewFromString rejects
// anything non-numeric, which also rules out NaN/Inf sentinels from upstream
// exports.
func ParseDecimal(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return decimal.Decimal{}, fmt.Errorf("empty numeric value")
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid numeric %q: %w", s, err)
	}
	return d, nil
}

// ParseQuantity parses an integer quantity. Negative values are valid
// (returns and cancellations). A fractional string like "6.5" is rejected, but
// an integral one like "6.0" is accepted since some exports format counts that
// way.
func ParseQuantity(s string) (int64, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return 0, fmt.Errorf("empty quantity value")
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("fractional quantity %q", s)
	}
	return d.IntPart(), nil
}
