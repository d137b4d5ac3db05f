package tracker

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/example/conference-agenda/internal/agenda"
	"github.com/example/conference-agenda/internal/attendance"
	"github.com/example/conference-agenda/internal/testfixtures"
)

func loadedSnapshot(t *testing.T) *agenda.Snapshot {
	t.Helper()
	snap, err := agenda.Transform(testfixtures.SampleRawSnapshot(), testfixtures.OffsetMinutes)
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	return snap
}

func newTestTracker(t *testing.T, feed Feed) (*Tracker, *testfixtures.Clock) {
	t.Helper()
	snap := loadedSnapshot(t)
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	return New(feed, func() *agenda.Snapshot { return snap }, clock.NowFunc(), nil), clock
}

func TestTracker_Tick(t *testing.T) {
	t.Run("attendance above capacity flags the room full", func(t *testing.T) {
		// TR411 holds 38; S001 occupies it at the reference time.
		feed := testfixtures.NewStubFeed(attendance.Counts{"S001": 40})
		tracker, _ := newTestTracker(t, feed)

		tracker.Tick(context.Background())

		status, err := tracker.StatusByID("TR411")
		if err != nil {
			t.Fatalf("StatusByID returned error: %v", err)
		}
		if !status.IsFull {
			t.Fatal("expected TR411 to be full at attendance 40 over capacity 38")
		}
		if status.CurrentSession != "S001" {
			t.Fatalf("expected current session S001, got %q", status.CurrentSession)
		}
	})

	t.Run("attendance under capacity leaves the room open", func(t *testing.T) {
		feed := testfixtures.NewStubFeed(attendance.Counts{"S001": 30})
		tracker, _ := newTestTracker(t, feed)

		tracker.Tick(context.Background())

		status, err := tracker.StatusByID("TR411")
		if err != nil {
			t.Fatalf("StatusByID returned error: %v", err)
		}
		if status.IsFull {
			t.Fatal("expected TR411 open at attendance 30 under capacity 38")
		}
	})

	t.Run("rooms without an active element default to not full", func(t *testing.T) {
		feed := testfixtures.NewStubFeed(attendance.Counts{"S001": 999})
		tracker, _ := newTestTracker(t, feed)

		tracker.Tick(context.Background())

		// RB105 hosts nothing at the reference time.
		status, err := tracker.StatusByID("RB105")
		if err != nil {
			t.Fatalf("StatusByID returned error: %v", err)
		}
		if status.IsFull {
			t.Fatal("inactive room must default to not full")
		}
		if status.CurrentSession != "" {
			t.Fatalf("inactive room must have no current session, got %q", status.CurrentSession)
		}
	})

	t.Run("missing attendance entry counts as zero", func(t *testing.T) {
		feed := testfixtures.NewStubFeed(attendance.Counts{})
		tracker, _ := newTestTracker(t, feed)

		tracker.Tick(context.Background())

		status, err := tracker.StatusByID("TR411")
		if err != nil {
			t.Fatalf("StatusByID returned error: %v", err)
		}
		if status.IsFull {
			t.Fatal("absent attendance must not flag the room full")
		}
	})

	t.Run("view is rebuilt wholesale as time advances", func(t *testing.T) {
		feed := testfixtures.NewStubFeed(attendance.Counts{"S001": 40})
		tracker, clock := newTestTracker(t, feed)

		tracker.Tick(context.Background())
		status, err := tracker.StatusByID("TR411")
		if err != nil {
			t.Fatalf("StatusByID returned error: %v", err)
		}
		if !status.IsFull || status.CurrentSession != "S001" {
			t.Fatalf("unexpected status at the reference time: %+v", status)
		}

		// By mid-afternoon every day-one session has ended.
		clock.Advance(5 * time.Hour)
		tracker.Tick(context.Background())

		status, err = tracker.StatusByID("TR411")
		if err != nil {
			t.Fatalf("StatusByID returned error: %v", err)
		}
		if status.IsFull || status.CurrentSession != "" {
			t.Fatalf("stale status survived the later tick: %+v", status)
		}
	})

	t.Run("interval bounds are inclusive", func(t *testing.T) {
		feed := testfixtures.NewStubFeed(attendance.Counts{"S001": 40})
		tracker, clock := newTestTracker(t, feed)

		// 11:00 wall clock is exactly the end of S001 and the start of S003.
		clock.Set(testfixtures.ReferenceTime().Add(time.Hour))
		tracker.Tick(context.Background())

		tr411, err := tracker.StatusByID("TR411")
		if err != nil {
			t.Fatalf("StatusByID returned error: %v", err)
		}
		if tr411.CurrentSession != "S001" {
			t.Fatalf("session ending now must still be current, got %q", tr411.CurrentSession)
		}
		rb105, err := tracker.StatusByID("RB105")
		if err != nil {
			t.Fatalf("StatusByID returned error: %v", err)
		}
		if rb105.CurrentSession != "S003" {
			t.Fatalf("session starting now must be current, got %q", rb105.CurrentSession)
		}
	})
}

func TestTracker_FeedFailureKeepsPreviousView(t *testing.T) {
	feed := testfixtures.NewStubFeed(attendance.Counts{"S001": 40})
	tracker, _ := newTestTracker(t, feed)

	tracker.Tick(context.Background())
	before := tracker.StatusMap()

	feed.Fail(errors.New("feed down"))
	tracker.Tick(context.Background())
	after := tracker.StatusMap()

	if !reflect.DeepEqual(before, after) {
		t.Fatalf("failed tick changed the view:\nbefore: %v\nafter: %v", before, after)
	}

	// Next successful tick heals the view.
	feed.Fail(nil)
	feed.SetCounts(attendance.Counts{"S001": 10})
	tracker.Tick(context.Background())

	status, err := tracker.StatusByID("TR411")
	if err != nil {
		t.Fatalf("StatusByID returned error: %v", err)
	}
	if status.IsFull {
		t.Fatal("expected recovery on the next successful tick")
	}
}

func TestTracker_StatusByID_UnknownRoom(t *testing.T) {
	tracker, _ := newTestTracker(t, testfixtures.NewStubFeed(nil))

	_, err := tracker.StatusByID("NOPE")

	var notFound *agenda.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *agenda.NotFoundError, got %v", err)
	}
	if notFound.ID != "NOPE" {
		t.Fatalf("error must carry the requested id, got %q", notFound.ID)
	}
}

func TestTracker_StartStop(t *testing.T) {
	tracker, _ := newTestTracker(t, testfixtures.NewStubFeed(nil))

	if tracker.State() != StateIdle {
		t.Fatalf("expected idle before start, got %s", tracker.State())
	}
	if err := tracker.Start("@every 1h"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if tracker.State() != StatePolling {
		t.Fatalf("expected polling after start, got %s", tracker.State())
	}
	// Second start is a no-op.
	if err := tracker.Start("@every 1h"); err != nil {
		t.Fatalf("repeated Start returned error: %v", err)
	}

	tracker.Stop()
	if tracker.State() != StateIdle {
		t.Fatalf("expected idle after stop, got %s", tracker.State())
	}
	// Second stop is a no-op.
	tracker.Stop()
}

func TestTracker_StartRejectsBadSchedule(t *testing.T) {
	tracker, _ := newTestTracker(t, testfixtures.NewStubFeed(nil))

	if err := tracker.Start("not a schedule"); err == nil {
		t.Fatal("expected error for malformed schedule")
	}
	if tracker.State() != StateIdle {
		t.Fatalf("failed start must stay idle, got %s", tracker.State())
	}
}
