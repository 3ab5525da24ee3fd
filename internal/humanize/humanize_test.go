package humanize

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func TestDuration(t *testing.T) {
	cases := map[int]string{
		0:   "never",
		1:   "1 day",
		3:   "3 days",
		7:   "1 week",
		10:  "1 week, 3 days",
		14:  "2 weeks",
		365: "1 year",
		366: "1 year, 1 day",
		380: "1 year, 2 weeks, 1 day",
		-3:  "3 days",
	}
	for days, want := range cases {
		assert.Equal(t, want, Duration(days), "days=%d", days)
	}
}

func TestRelative(t *testing.T) {
	today := civil.Date{Year: 2026, Month: time.October, Day: 19}
	cases := []struct {
		offset int
		want   string
	}{
		{0, "today"},
		{-1, "yesterday"},
		{1, "tomorrow"},
		{3, "in 3 days"},
		{-6, "6 days ago"},
		{7, "in 1 week"},
		{-20, "2 weeks ago"},
		{45, "in 1 month"},
		{-200, "6 months ago"},
		{400, "in 1 year"},
		{-800, "2 years ago"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Relative(today.AddDays(tc.offset), today), "offset=%d", tc.offset)
	}
	assert.Equal(t, "never", Relative(civil.Date{}, today))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "Oct 09, 2026", Date(civil.Date{Year: 2026, Month: time.October, Day: 9}))
	assert.Equal(t, "never", Date(civil.Date{}))
}
