package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/example/conference-agenda/internal/agenda"
)

var conferenceZone = time.FixedZone("UTC+08:00", 8*3600)

func element(session, room string, start, end time.Time) agenda.Element {
	return agenda.Element{Session: session, Room: room, Start: start, End: end}
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 8, day, hour, minute, 0, 0, conferenceZone)
}

func TestGroupByDay(t *testing.T) {
	t.Run("buckets by start day in chronological order", func(t *testing.T) {
		elements := []agenda.Element{
			element("S1", "TR211", at(3, 9, 0), at(3, 10, 0)),
			element("S2", "TR411", at(3, 10, 0), at(3, 11, 0)),
			element("S3", "TR211", at(4, 9, 0), at(4, 10, 0)),
		}

		days := GroupByDay(elements)

		if len(days) != 2 {
			t.Fatalf("expected 2 days, got %d", len(days))
		}
		if days[0].Day != (Day{2024, 8, 3}) || days[1].Day != (Day{2024, 8, 4}) {
			t.Fatalf("unexpected day order: %v, %v", days[0].Day, days[1].Day)
		}
		if len(days[0].Elements) != 2 || days[0].Elements[0].Session != "S1" {
			t.Fatalf("day one lost incoming order: %+v", days[0].Elements)
		}
	})

	t.Run("midnight-spanning element belongs to its start day", func(t *testing.T) {
		elements := []agenda.Element{
			element("S1", "RB105", at(3, 23, 30), at(4, 0, 30)),
		}

		days := GroupByDay(elements)

		if len(days) != 1 {
			t.Fatalf("expected a single day, got %d", len(days))
		}
		if days[0].Day != (Day{2024, 8, 3}) {
			t.Fatalf("expected start-day bucket, got %v", days[0].Day)
		}
	})

	t.Run("empty input yields no days", func(t *testing.T) {
		if days := GroupByDay(nil); len(days) != 0 {
			t.Fatalf("expected no days, got %d", len(days))
		}
	})
}

func TestBuildTable(t *testing.T) {
	t.Run("derives granularity from the closest boundaries", func(t *testing.T) {
		elements := []agenda.Element{
			element("S1", "TR211", at(3, 9, 0), at(3, 10, 0)),
			element("S2", "TR411", at(3, 9, 0), at(3, 9, 30)),
			element("S3", "TR411", at(3, 9, 30), at(3, 10, 0)),
		}

		table, err := BuildTable(elements)
		if err != nil {
			t.Fatalf("BuildTable returned error: %v", err)
		}

		if table.Granularity != 30*time.Minute {
			t.Fatalf("expected 30m granularity, got %s", table.Granularity)
		}
		if len(table.Slots) != 2 {
			t.Fatalf("expected 2 slots, got %d", len(table.Slots))
		}
		if got := table.Rooms; len(got) != 2 || got[0] != "TR211" || got[1] != "TR411" {
			t.Fatalf("unexpected room order: %v", got)
		}

		hourTalk := table.Cells["TR211"][0]
		if hourTalk.Element.Session != "S1" || hourTalk.Span != 2 {
			t.Fatalf("expected S1 spanning 2 slots, got %+v", hourTalk)
		}
		if table.Cells["TR411"][1].Element.Session != "S3" {
			t.Fatalf("expected S3 in the second slot, got %+v", table.Cells["TR411"][1])
		}
	})

	t.Run("falls back to the default granularity", func(t *testing.T) {
		elements := []agenda.Element{
			element("S1", "TR211", at(3, 9, 0), at(3, 9, 0)),
		}

		table, err := BuildTable(elements)
		if err != nil {
			t.Fatalf("BuildTable returned error: %v", err)
		}
		if table.Granularity != DefaultSlotGranularity {
			t.Fatalf("expected default granularity, got %s", table.Granularity)
		}
	})

	t.Run("back-to-back elements with uneven gaps never collide", func(t *testing.T) {
		elements := []agenda.Element{
			element("S1", "TR211", at(3, 9, 0), at(3, 9, 25)),
			element("S2", "TR211", at(3, 9, 25), at(3, 9, 40)),
		}

		table, err := BuildTable(elements)
		if err != nil {
			t.Fatalf("non-overlapping elements reported as overlap: %v", err)
		}

		if table.Granularity != 15*time.Minute {
			t.Fatalf("expected 15m granularity, got %s", table.Granularity)
		}
		if len(table.Slots) != 2 {
			t.Fatalf("expected 2 slots, got %d", len(table.Slots))
		}
		if cell := table.Cells["TR211"][0]; cell.Element.Session != "S1" || cell.Span != 1 {
			t.Fatalf("expected S1 in the first slot, got %+v", cell)
		}
		if cell := table.Cells["TR211"][1]; cell.Element.Session != "S2" || cell.Span != 1 {
			t.Fatalf("expected S2 in the second slot, got %+v", cell)
		}
	})

	t.Run("columns snap to the observed boundaries", func(t *testing.T) {
		elements := []agenda.Element{
			element("S1", "TR211", at(3, 9, 0), at(3, 10, 0)),
			element("S2", "TR411", at(3, 9, 50), at(3, 10, 0)),
		}

		table, err := BuildTable(elements)
		if err != nil {
			t.Fatalf("BuildTable returned error: %v", err)
		}

		// Boundaries 9:00, 9:50, 10:00 give two uneven columns.
		if len(table.Slots) != 2 {
			t.Fatalf("expected 2 slots, got %d", len(table.Slots))
		}
		if !table.Slots[1].Equal(at(3, 9, 50)) {
			t.Fatalf("expected second column at 9:50, got %s", table.Slots[1])
		}
		if cell := table.Cells["TR211"][0]; cell.Span != 2 {
			t.Fatalf("expected S1 to span both columns, got %+v", cell)
		}
		if cell := table.Cells["TR411"][1]; cell.Element.Session != "S2" || cell.Span != 1 {
			t.Fatalf("expected S2 in the 9:50 column, got %+v", cell)
		}
	})

	t.Run("same-room overlap is reported and the first element kept", func(t *testing.T) {
		elements := []agenda.Element{
			element("S1", "TR211", at(3, 9, 0), at(3, 10, 0)),
			element("S2", "TR211", at(3, 9, 30), at(3, 10, 30)),
		}

		table, err := BuildTable(elements)

		var overlaps *OverlapErrors
		if !errors.As(err, &overlaps) {
			t.Fatalf("expected *OverlapErrors, got %v", err)
		}
		if len(overlaps.Overlaps) != 1 {
			t.Fatalf("expected one overlap, got %d", len(overlaps.Overlaps))
		}
		if o := overlaps.Overlaps[0]; o.RoomID != "TR211" || o.Kept.Session != "S1" || o.Lost.Session != "S2" {
			t.Fatalf("unexpected overlap detail: %+v", o)
		}
		if cell := table.Cells["TR211"][0]; cell.Element.Session != "S1" {
			t.Fatalf("overlap must not overwrite the kept element, got %+v", cell)
		}
	})

	t.Run("empty input yields an empty table", func(t *testing.T) {
		table, err := BuildTable(nil)
		if err != nil {
			t.Fatalf("BuildTable returned error: %v", err)
		}
		if len(table.Rooms) != 0 || len(table.Slots) != 0 {
			t.Fatalf("expected empty table, got %+v", table)
		}
	})
}

func TestBuildList(t *testing.T) {
	t.Run("sorts by start then room", func(t *testing.T) {
		elements := []agenda.Element{
			element("S2", "TR411", at(3, 10, 0), at(3, 11, 0)),
			element("S3", "TR211", at(3, 10, 0), at(3, 11, 0)),
			element("S1", "RB105", at(3, 9, 0), at(3, 10, 0)),
		}

		list := BuildList(elements)

		got := []string{list.Items[0].Session, list.Items[1].Session, list.Items[2].Session}
		want := []string{"S1", "S3", "S2"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("unexpected order: got %v want %v", got, want)
			}
		}
	})

	t.Run("empty input yields an empty list", func(t *testing.T) {
		list := BuildList(nil)
		if len(list.Items) != 0 {
			t.Fatalf("expected empty list, got %d items", len(list.Items))
		}
	})
}
