// Package schedule builds per-day table and list views from the ordered
// element sequence produced by the transformer.
package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/conference-agenda/internal/agenda"
	"github.com/example/conference-agenda/internal/timeutil"
)

// DefaultSlotGranularity is used when a day has too few interval boundaries
// to derive one.
const DefaultSlotGranularity = 30 * time.Minute

// Day identifies one calendar day bucket on the conference wall clock.
type Day struct {
	Year  int
	Month int
	Date  int
}

// String renders the day as yyyy-mm-dd.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Date)
}

// Before reports whether d falls before other.
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Date < other.Date
}

// DayElements groups the elements that start on one day.
type DayElements struct {
	Day      Day
	Elements []agenda.Element
}

// GroupByDay buckets elements by their start day. An element spanning
// midnight belongs to the day it starts on. Days come out chronologically
// and elements keep their incoming order within each day.
func GroupByDay(elements []agenda.Element) []DayElements {
	byDay := make(map[Day][]agenda.Element)
	for _, el := range elements {
		day := dayOf(el.Start)
		byDay[day] = append(byDay[day], el)
	}

	out := make([]DayElements, 0, len(byDay))
	for day, els := range byDay {
		out = append(out, DayElements{Day: day, Elements: els})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// Cell is one occupied position in the timetable grid.
type Cell struct {
	Element agenda.Element
	// Span is how many consecutive slots the element covers, at least 1.
	Span int
}

// Table is a sparse timetable grid keyed by room and slot index. Columns
// run between consecutive interval boundaries of the day, so they are not
// necessarily uniform.
type Table struct {
	// Rooms holds the room ids appearing in the day, ascending.
	Rooms []string
	// Slots holds the start instant of each column.
	Slots []time.Time
	// Granularity is the narrowest column width of the day.
	Granularity time.Duration
	// Cells maps room id to slot index to the occupying element.
	Cells map[string]map[int]Cell
}

// OverlapError reports elements that occupy the same room at the same time.
// The grid keeps the earlier element; overlaps are surfaced, never silently
// overwritten.
type OverlapError struct {
	RoomID string
	Kept   agenda.Element
	Lost   agenda.Element
}

// Error implements the error interface.
func (e *OverlapError) Error() string {
	return fmt.Sprintf("schedule: sessions %s and %s overlap in room %s",
		e.Kept.Session, e.Lost.Session, e.RoomID)
}

// OverlapErrors aggregates every overlap found while building one table.
type OverlapErrors struct {
	Overlaps []*OverlapError
}

// Error implements the error interface.
func (e *OverlapErrors) Error() string {
	parts := make([]string, 0, len(e.Overlaps))
	for _, o := range e.Overlaps {
		parts = append(parts, o.Error())
	}
	return strings.Join(parts, "; ")
}

// BuildTable lays one day's elements out on a room-by-slot grid. Column
// edges are the distinct interval boundaries observed across the day, so
// every element starts and ends exactly on a column edge regardless of how
// uneven the gaps are. Overlap is judged on the real intervals; the grid
// keeps the earlier element and the table is returned even when overlaps
// are reported.
func BuildTable(elements []agenda.Element) (Table, error) {
	table := Table{Cells: make(map[string]map[int]Cell)}
	if len(elements) == 0 {
		return table, nil
	}

	roomSet := make(map[string]struct{})
	for _, el := range elements {
		roomSet[el.Room] = struct{}{}
	}
	for room := range roomSet {
		table.Rooms = append(table.Rooms, room)
	}
	sort.Strings(table.Rooms)

	boundaries := intervalBoundaries(elements)
	table.Granularity = slotGranularity(boundaries)
	if len(boundaries) > 1 {
		table.Slots = boundaries[:len(boundaries)-1]
	} else {
		table.Slots = boundaries
	}

	slotIndex := make(map[int64]int, len(boundaries))
	for i, boundary := range boundaries {
		slotIndex[boundary.UnixNano()] = i
	}

	overlaps := &OverlapErrors{}
	for _, el := range elements {
		row := table.Cells[el.Room]
		if row == nil {
			row = make(map[int]Cell)
			table.Cells[el.Room] = row
		}

		if kept, conflict := conflicting(row, el); conflict {
			overlaps.Overlaps = append(overlaps.Overlaps, &OverlapError{
				RoomID: el.Room,
				Kept:   kept.Element,
				Lost:   el,
			})
			continue
		}

		start := slotIndex[el.Start.UnixNano()]
		span := slotIndex[el.End.UnixNano()] - start
		if span < 1 {
			span = 1
		}
		// Zero-length duplicates at the same instant collapse onto one
		// slot; the first stays.
		if _, taken := row[start]; taken {
			continue
		}
		row[start] = Cell{Element: el, Span: span}
	}

	if len(overlaps.Overlaps) > 0 {
		return table, overlaps
	}
	return table, nil
}

// List is the linear view of one day's elements.
type List struct {
	Items []agenda.Element
}

// BuildList sorts elements for linear display. Empty input yields an empty
// list.
func BuildList(elements []agenda.Element) List {
	items := make([]agenda.Element, len(elements))
	copy(items, elements)
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Start.Equal(items[j].Start) {
			return items[i].Start.Before(items[j].Start)
		}
		return items[i].Room < items[j].Room
	})
	return List{Items: items}
}

func dayOf(t time.Time) Day {
	fields := timeutil.ExtractFields(t)
	return Day{Year: fields.Year, Month: fields.Month, Date: fields.Date}
}

// intervalBoundaries returns the distinct start and end instants of the
// elements in ascending order.
func intervalBoundaries(elements []agenda.Element) []time.Time {
	all := make([]time.Time, 0, len(elements)*2)
	for _, el := range elements {
		all = append(all, el.Start, el.End)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Before(all[j]) })

	boundaries := all[:0]
	for i, boundary := range all {
		if i == 0 || !boundary.Equal(boundaries[len(boundaries)-1]) {
			boundaries = append(boundaries, boundary)
		}
	}
	return boundaries
}

// slotGranularity derives the narrowest column width from the sorted,
// distinct boundaries, falling back to DefaultSlotGranularity when fewer
// than two exist.
func slotGranularity(boundaries []time.Time) time.Duration {
	minimum := time.Duration(0)
	for i := 1; i < len(boundaries); i++ {
		gap := boundaries[i].Sub(boundaries[i-1])
		if minimum == 0 || gap < minimum {
			minimum = gap
		}
	}
	if minimum == 0 {
		return DefaultSlotGranularity
	}
	return minimum
}

// conflicting reports a cell in the row whose element truly overlaps el in
// time, half-open interval semantics.
func conflicting(row map[int]Cell, el agenda.Element) (Cell, bool) {
	for _, cell := range row {
		if el.Start.Before(cell.Element.End) && cell.Element.Start.Before(el.End) {
			return cell, true
		}
	}
	return Cell{}, false
}
