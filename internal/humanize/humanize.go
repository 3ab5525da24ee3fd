// Package humanize renders day counts and dates for people.
package humanize

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// Duration spells out a number of days in years, weeks and days.
func Duration(days int) string {
	if days == 0 {
		return "never"
	}
	if days < 0 {
		days = -days
	}

	var parts []string
	if years := days / 365; years > 0 {
		parts = append(parts, plural(years, "year"))
		days %= 365
	}
	if weeks := days / 7; weeks > 0 {
		parts = append(parts, plural(weeks, "week"))
		days %= 7
	}
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	return strings.Join(parts, ", ")
}

// Relative describes d relative to today, e.g. "tomorrow" or "3 weeks ago".
func Relative(d, today civil.Date) string {
	if d.IsZero() {
		return "never"
	}

	delta := d.DaysSince(today)
	switch delta {
	case 0:
		return "today"
	case -1:
		return "yesterday"
	case 1:
		return "tomorrow"
	}

	days := delta
	if days < 0 {
		days = -days
	}

	var span string
	switch {
	case days < 7:
		span = plural(days, "day")
	case days < 30:
		span = plural(days/7, "week")
	case days < 365:
		span = plural(days/30, "month")
	default:
		span = plural(int(float64(days)/365.25), "year")
	}

	if delta < 0 {
		return span + " ago"
	}
	return "in " + span
}

// Date formats d like "Oct 19, 2026".
func Date(d civil.Date) string {
	if d.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%s %02d, %d", d.Month.String()[:3], d.Day, d.Year)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
