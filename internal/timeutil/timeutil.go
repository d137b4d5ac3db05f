// Package timeutil provides the fixed-zone date arithmetic used across the
// agenda engine. All schedule instants are normalized into the conference's
// target timezone once, at the edge, so that calendar field extraction is
// deterministic regardless of the host machine's local timezone.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Fields holds the calendar components of an instant in its own location.
// Month is 1-based and no component is zero padded.
type Fields struct {
	Year   int
	Month  int
	Date   int
	Day    time.Weekday
	Hour   int
	Minute int
}

// NormalizeToZone returns the same instant expressed in a fixed zone
// offsetMinutes east of UTC. The instant itself is unchanged; only the
// location used for field extraction moves, which composes correctly with
// whatever offset the host happens to run under.
func NormalizeToZone(t time.Time, offsetMinutes int) time.Time {
	return t.In(time.FixedZone(zoneName(offsetMinutes), offsetMinutes*60))
}

// ExtractFields returns the calendar components of t in t's location.
func ExtractFields(t time.Time) Fields {
	return Fields{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Date:   t.Day(),
		Day:    t.Weekday(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
	}
}

// FormatDate renders the year, month, and date of t joined by sep.
// Month and date are zero padded to two digits; padding is applied only
// here, never during computation.
func FormatDate(t time.Time, sep string) string {
	f := ExtractFields(t)
	return strings.Join([]string{
		fmt.Sprintf("%04d", f.Year),
		pad2(f.Month),
		pad2(f.Date),
	}, sep)
}

// FormatTime renders the hour and minute of t joined by sep, zero padded.
func FormatTime(t time.Time, sep string) string {
	f := ExtractFields(t)
	return strings.Join([]string{pad2(f.Hour), pad2(f.Minute)}, sep)
}

func pad2(n int) string {
	return fmt.Sprintf("%02d", n)
}

func zoneName(offsetMinutes int) string {
	sign := "+"
	if offsetMinutes < 0 {
		sign = "-"
		offsetMinutes = -offsetMinutes
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, offsetMinutes/60, offsetMinutes%60)
}
