package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GenDate is a genealogical date with GEDCOM-style partial precision: Year,
// Month, or Day may each be unknown (nil). Raw preserves the original input
// string, qualifier and all, for display and export; parsing only extracts
// the numeric year/month/day ParseGenDate can recover from it (§3 DateInfo).
type GenDate struct {
	Raw   string `json:"raw,omitempty"`
	Year  *int   `json:"year,omitempty"`
	Month *int   `json:"month,omitempty"`
	Day   *int   `json:"day,omitempty"`
}

// GEDCOM month abbreviations.
var monthMap = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

var reverseMonthMap = map[int]string{
	1: "JAN", 2: "FEB", 3: "MAR", 4: "APR", 5: "MAY", 6: "JUN",
	7: "JUL", 8: "AUG", 9: "SEP", 10: "OCT", 11: "NOV", 12: "DEC",
}

// qualifierPrefixes are GEDCOM precision qualifiers stripped before parsing
// the underlying simple date. The qualifier itself isn't modeled separately;
// Raw is what keeps a record of it.
var qualifierPrefixes = []string{
	"ABOUT ", "ABT ", "CAL ", "EST ", "BEFORE ", "BEF ", "AFTER ", "AFT ",
}

// ParseGenDate parses a GEDCOM-format date string into a GenDate. Range
// qualifiers (BET ... AND ..., FROM ... TO ...) aren't reducible to a single
// year/month/day and are left unparsed: Raw keeps the original text, Year
// stays nil.
func ParseGenDate(s string) GenDate {
	s = strings.TrimSpace(s)
	if s == "" {
		return GenDate{}
	}

	gd := GenDate{Raw: s}

	upper := strings.ToUpper(s)
	for _, prefix := range qualifierPrefixes {
		if strings.HasPrefix(upper, prefix) {
			upper = strings.TrimPrefix(upper, prefix)
			break
		}
	}

	parseSimpleDate(upper, &gd.Year, &gd.Month, &gd.Day)
	return gd
}

// parseSimpleDate parses a simple date like "1 JAN 1850", "JAN 1850", or "1850".
func parseSimpleDate(s string, year, month, day **int) {
	s = strings.TrimSpace(s)
	parts := strings.Fields(s)

	switch len(parts) {
	case 1:
		// Year only: "1850"
		if y, err := strconv.Atoi(parts[0]); err == nil {
			*year = &y
		}
	case 2:
		// Month Year: "JAN 1850"
		if m, ok := monthMap[parts[0]]; ok {
			*month = &m
			if y, err := strconv.Atoi(parts[1]); err == nil {
				*year = &y
			}
		}
	case 3:
		// Day Month Year: "1 JAN 1850"
		if d, err := strconv.Atoi(parts[0]); err == nil {
			*day = &d
		}
		if m, ok := monthMap[parts[1]]; ok {
			*month = &m
		}
		if y, err := strconv.Atoi(parts[2]); err == nil {
			*year = &y
		}
	}
}

// String returns the GEDCOM-format string representation.
func (g GenDate) String() string {
	if g.Raw != "" {
		return g.Raw
	}
	return g.Format()
}

// Format generates a GEDCOM-format date string from the parsed components.
func (g GenDate) Format() string {
	if g.Year == nil {
		return ""
	}
	var parts []string
	if g.Day != nil {
		parts = append(parts, strconv.Itoa(*g.Day))
	}
	if g.Month != nil && *g.Month >= 1 && *g.Month <= 12 {
		parts = append(parts, reverseMonthMap[*g.Month])
	}
	parts = append(parts, strconv.Itoa(*g.Year))
	return strings.Join(parts, " ")
}

// IsEmpty returns true if the date has no meaningful data.
func (g GenDate) IsEmpty() bool {
	return g.Year == nil && g.Month == nil && g.Day == nil
}

// toTime converts the GenDate to a time.Time for Before comparisons,
// defaulting unknown month/day to the earliest possible value.
func (g GenDate) toTime() time.Time {
	if g.Year == nil {
		return time.Time{}
	}
	year := *g.Year
	month := time.January
	day := 1
	if g.Month != nil {
		month = time.Month(*g.Month)
	}
	if g.Day != nil {
		day = *g.Day
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Validate checks if the date components are valid.
func (g GenDate) Validate() error {
	if g.Month != nil && (*g.Month < 1 || *g.Month > 12) {
		return fmt.Errorf("invalid month: %d", *g.Month)
	}
	if g.Day != nil && (*g.Day < 1 || *g.Day > 31) {
		return fmt.Errorf("invalid day: %d", *g.Day)
	}
	return nil
}

// Before returns true if this date is before the other date.
func (g GenDate) Before(other GenDate) bool {
	return g.toTime().Before(other.toTime())
}
