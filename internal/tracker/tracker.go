// Package tracker reconciles live attendance against static room capacities
// to derive a per-room status view. It runs on its own timer and only reads
// the normalized snapshot; the derived view is rebuilt wholesale each tick.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/conference-agenda/internal/agenda"
	"github.com/example/conference-agenda/internal/attendance"
	"github.com/example/conference-agenda/internal/timeutil"
)

// State names the tracker's polling state.
type State string

const (
	// StateIdle means no timer is armed.
	StateIdle State = "idle"
	// StatePolling means the recurring tick is armed.
	StatePolling State = "polling"
)

// RoomStatus is the derived value per room. CurrentSession is empty when no
// session currently occupies the room.
type RoomStatus struct {
	IsFull         bool
	CurrentSession string
}

// Feed is the attendance source polled on each tick.
type Feed interface {
	Fetch(ctx context.Context) (attendance.Counts, error)
}

// SnapshotProvider yields the currently loaded snapshot, or nil before the
// first load completes.
type SnapshotProvider func() *agenda.Snapshot

// Tracker polls the feed and maintains the room status view.
type Tracker struct {
	feed     Feed
	snapshot SnapshotProvider
	now      func() time.Time
	logger   *slog.Logger

	mu        sync.RWMutex
	state     State
	cron      *cron.Cron
	fullRooms map[string]bool
	current   map[string]string
	lastTick  time.Time
}

// New constructs a tracker. The snapshot provider must be safe for
// concurrent use; the tracker never mutates what it returns.
func New(feed Feed, snapshot SnapshotProvider, now func() time.Time, logger *slog.Logger) *Tracker {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		feed:     feed,
		snapshot: snapshot,
		now:      now,
		logger:   logger.With("component", "tracker"),
		state:    StateIdle,
	}
}

// Start arms the recurring tick with a cron schedule such as "@every 10s".
// Polls never overlap: a tick that is still in flight makes the next one a
// no-op rather than a second concurrent request. Starting an already polling
// tracker is a no-op.
func (t *Tracker) Start(schedule string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StatePolling {
		return nil
	}

	runner := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := runner.AddFunc(schedule, func() {
		t.Tick(context.Background())
	}); err != nil {
		return err
	}
	runner.Start()

	t.cron = runner
	t.state = StatePolling
	t.logger.Info("room status polling started", "schedule", schedule)
	return nil
}

// Stop disarms the timer. It blocks until an in-flight tick finishes, so no
// tick leaks past teardown. Stopping an idle tracker is a no-op.
func (t *Tracker) Stop() {
	t.mu.Lock()
	runner := t.cron
	t.cron = nil
	t.state = StateIdle
	t.mu.Unlock()

	if runner != nil {
		<-runner.Stop().Done()
		t.logger.Info("room status polling stopped")
	}
}

// State reports whether the tracker is idle or polling.
func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Tick runs one reconciliation: compute the sessions active at the corrected
// current time, fetch attendance, and flag rooms whose active element drew
// more people than the room holds. A feed failure leaves the previous view
// untouched; it is logged and self-heals on the next tick.
func (t *Tracker) Tick(ctx context.Context) {
	snap := t.snapshot()
	if snap == nil {
		return
	}

	now := timeutil.NormalizeToZone(t.now(), snap.OffsetMinutes)

	current := make(map[string]string)
	var active []agenda.Element
	for _, el := range snap.Elements {
		if el.Start.After(now) || el.End.Before(now) {
			continue
		}
		active = append(active, el)
		if _, taken := current[el.Room]; !taken {
			current[el.Room] = el.Session
		}
	}

	counts, err := t.feed.Fetch(ctx)
	if err != nil {
		t.logger.Warn("attendance fetch failed, keeping previous room status", "error", err)
		return
	}

	// Rooms with no active element stay absent; lookups default them to
	// not full.
	fullRooms := make(map[string]bool, len(active))
	for _, el := range active {
		capacity := 0
		if room, ok := snap.RoomsByID[el.Room]; ok {
			capacity = room.Capacity
		}
		fullRooms[el.Room] = counts[el.Session] > capacity
	}

	t.mu.Lock()
	t.fullRooms = fullRooms
	t.current = current
	t.lastTick = now
	t.mu.Unlock()

	t.logger.Debug("room status updated",
		"active_elements", len(active),
		"full_rooms", len(fullRooms),
	)
}

// StatusByID returns the derived status of one room. Rooms absent from the
// loaded snapshot yield a *agenda.NotFoundError; rooms absent from the
// full-rooms view default to not full.
func (t *Tracker) StatusByID(roomID string) (RoomStatus, error) {
	snap := t.snapshot()
	if snap == nil || snap.RoomsByID[roomID] == nil {
		return RoomStatus{}, &agenda.NotFoundError{Kind: "room", ID: roomID}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	return RoomStatus{
		IsFull:         t.fullRooms[roomID],
		CurrentSession: t.current[roomID],
	}, nil
}

// StatusMap returns the status of every room in the loaded snapshot.
func (t *Tracker) StatusMap() map[string]RoomStatus {
	snap := t.snapshot()
	if snap == nil {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]RoomStatus, len(snap.RoomsByID))
	for id := range snap.RoomsByID {
		out[id] = RoomStatus{
			IsFull:         t.fullRooms[id],
			CurrentSession: t.current[id],
		}
	}
	return out
}
