// Package daterange computes calendar-aligned windows (week, month) and
// calendar-aware interval arithmetic shared by the scheduler engine and the
// transaction listing.
package daterange

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Granularity is the unit of a calendar window.
type Granularity string

const (
	Week  Granularity = "week"
	Month Granularity = "month"
)

// IsValid reports whether g is a known granularity.
func (g Granularity) IsValid() bool {
	return g == Week || g == Month
}

// Window returns the inclusive [start, end] calendar window containing date.
// Both bounds are at midnight in date's location.
func Window(date time.Time, g Granularity, weekStart time.Weekday) (time.Time, time.Time) {
	day := StartOfDay(date)
	switch g {
	case Week:
		offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6)
	default:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return start, start.AddDate(0, 1, -1)
	}
}

// Start returns only the first day of the window containing date.
func Start(date time.Time, g Granularity, weekStart time.Weekday) time.Time {
	start, _ := Window(date, g, weekStart)
	return start
}

// Shift returns the window n periods away from the one containing date.
// Negative n moves backwards.
func Shift(date time.Time, g Granularity, n int, weekStart time.Weekday) (time.Time, time.Time) {
	start := Start(date, g, weekStart)
	if g == Week {
		return Window(start.AddDate(0, 0, 7*n), g, weekStart)
	}
	// start is the 1st of the month so AddDate cannot overflow into the next month.
	return Window(start.AddDate(0, n, 0), g, weekStart)
}

// AddInterval advances t by one period: one calendar month (clamped to the last
// valid day) or seven days.
func AddInterval(t time.Time, g Granularity) time.Time {
	if g == Week {
		return t.AddDate(0, 0, 7)
	}
	return AddMonths(t, 1)
}

// AddMonths adds n calendar months to t, clamping the day to the last day of the
// target month: Jan 31 + 1 month is Feb 28 (or Feb 29 in a leap year).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := DaysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DaysIn returns the number of days of the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Regions whose week starts on Sunday or Saturday (CLDR weekData); all others start on Monday.
var (
	sundayRegions = map[string]struct{}{
		"AG": {}, "AS": {}, "BD": {}, "BR": {}, "BS": {}, "BT": {}, "BW": {}, "BZ": {}, "CA": {},
		"CN": {}, "CO": {}, "DM": {}, "DO": {}, "ET": {}, "GT": {}, "GU": {}, "HK": {}, "HN": {},
		"ID": {}, "IL": {}, "IN": {}, "JM": {}, "JP": {}, "KE": {}, "KH": {}, "KR": {}, "LA": {},
		"MH": {}, "MM": {}, "MO": {}, "MT": {}, "MX": {}, "MZ": {}, "NI": {}, "NP": {}, "PA": {},
		"PE": {}, "PH": {}, "PK": {}, "PR": {}, "PT": {}, "PY": {}, "SA": {}, "SG": {}, "SV": {},
		"TH": {}, "TT": {}, "TW": {}, "UM": {}, "US": {}, "VE": {}, "VI": {}, "WS": {}, "YE": {},
		"ZA": {}, "ZW": {},
	}
	saturdayRegions = map[string]struct{}{
		"AE": {}, "AF": {}, "BH": {}, "DJ": {}, "DZ": {}, "EG": {}, "IQ": {}, "IR": {}, "JO": {},
		"KW": {}, "LY": {}, "OM": {}, "QA": {}, "SD": {}, "SY": {},
	}
)

// WeekStartForLocale derives the first day of the week from a BCP 47 locale
// such as "fr-FR" or "en_US". A locale without a region uses its most likely
// region ("en" -> US, "fr" -> FR).
func WeekStartForLocale(locale string) (time.Weekday, error) {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return time.Monday, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	region, _ := tag.Region()
	code := region.String()
	if _, ok := sundayRegions[code]; ok {
		return time.Sunday, nil
	}
	if _, ok := saturdayRegions[code]; ok {
		return time.Saturday, nil
	}
	return time.Monday, nil
}

// ParseWeekday parses an English weekday name ("monday", "Sun").
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return time.Sunday, fmt.Errorf("invalid weekday %q", s)
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.HasPrefix(strings.ToLower(d.String()), s) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday %q", s)
}
