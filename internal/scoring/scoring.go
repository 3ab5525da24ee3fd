// Package scoring turns a completion date into points and a display color.
package scoring

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/lucasb-eyer/go-colorful"
)

// PointWorth returns how many points completing a task on completedOn earns.
//
// Credit decays linearly over decayDays on both sides of the due date. An
// early completion is worth nothing when allowEarly is false. The decayed
// amount is rounded up, so partial days always cost a whole point.
func PointWorth(due, completedOn civil.Date, decayDays, maxPoints int, allowEarly bool) int {
	if completedOn.Before(due) && !allowEarly {
		return 0
	}
	if maxPoints <= 0 {
		return 0
	}

	daysOff := completedOn.DaysSince(due)
	if daysOff < 0 {
		daysOff = -daysOff
	}
	if daysOff == 0 {
		return maxPoints
	}

	// Task construction rejects a zero decay length.
	if decayDays < 1 {
		return 0
	}

	// ceil(maxPoints/decayDays * daysOff) in integer arithmetic
	decayed := (maxPoints*daysOff + decayDays - 1) / decayDays
	return max(0, maxPoints-decayed)
}

// HSL is a color in hue (degrees), saturation and lightness (percent).
type HSL struct {
	H float64
	S float64
	L float64
}

// String formats the color the way CSS hsl() arguments are written.
func (c HSL) String() string {
	return fmt.Sprintf("%.0f,%.0f%%,%.0f%%", c.H, c.S, c.L)
}

// Hex converts the color to a #rrggbb string usable by terminal styles.
func (c HSL) Hex() string {
	return colorful.Hsl(c.H, c.S/100, c.L/100).Clamped().Hex()
}

// Hue maps earned points to a color. Tasks that are not due yet run from grey
// to green; due tasks run from red (nothing left to earn) to green.
func Hue(pointsEarned, maxPoints int, notDue bool) HSL {
	ratio := 1.0
	if maxPoints > 0 {
		ratio = float64(pointsEarned) / float64(maxPoints)
	}
	ratio = min(1, max(0, ratio))

	if notDue {
		return HSL{H: 120, S: 100 * ratio, L: 75}
	}
	return HSL{H: 120 * ratio, S: 100, L: 50}
}
