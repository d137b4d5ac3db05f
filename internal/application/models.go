package application

import (
	"github.com/example/conference-agenda/internal/schedule"
)

// DaySchedule is one day of the filtered agenda: the timetable grid plus the
// linear list, both built from the same filtered element subset.
type DaySchedule struct {
	Day   schedule.Day
	Table schedule.Table
	List  schedule.List
}
