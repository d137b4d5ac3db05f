// Package testfixtures provides deterministic snapshot, clock, and feed
// fixtures shared by the engine's test suites.
package testfixtures

import (
	"context"
	"sync"
	"time"

	"github.com/example/conference-agenda/internal/agenda"
	"github.com/example/conference-agenda/internal/attendance"
)

// OffsetMinutes is the conference timezone offset used by all fixtures.
const OffsetMinutes = 480

var referenceTime = time.Date(2024, time.August, 3, 2, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline instant used by fixtures:
// 2024-08-03 10:00 on the conference wall clock (UTC+8).
func ReferenceTime() time.Time {
	return referenceTime
}

// RawSessionOption configures a generated raw session row.
type RawSessionOption func(*agenda.RawSession)

// WithSpeakers overrides the speaker foreign keys.
func WithSpeakers(ids ...string) RawSessionOption {
	return func(s *agenda.RawSession) {
		s.Speakers = ids
	}
}

// WithTags overrides the tag foreign keys.
func WithTags(ids ...string) RawSessionOption {
	return func(s *agenda.RawSession) {
		s.Tags = ids
	}
}

// WithInterval overrides the start and end timestamps.
func WithInterval(start, end string) RawSessionOption {
	return func(s *agenda.RawSession) {
		s.Start = start
		s.End = end
	}
}

// WithTitleEN overrides the English title.
func WithTitleEN(title string) RawSessionOption {
	return func(s *agenda.RawSession) {
		s.TitleEN = title
	}
}

// NewRawSession returns a deterministic raw session row placed in the given
// room and type with optional overrides. The default interval covers the
// reference time.
func NewRawSession(id, room, sessionType string, opts ...RawSessionOption) agenda.RawSession {
	row := agenda.RawSession{
		ID:            id,
		Type:          sessionType,
		Room:          room,
		Start:         "2024-08-03T10:00:00+08:00",
		End:           "2024-08-03T11:00:00+08:00",
		Language:      "en",
		TitleEN:       "Session " + id,
		TitleZH:       "議程 " + id,
		DescriptionEN: "Description of " + id,
		DescriptionZH: "議程說明 " + id,
		Speakers:      []string{"SP01"},
		Tags:          []string{"security"},
	}
	for _, opt := range opts {
		opt(&row)
	}
	return row
}

// SampleRawSnapshot returns a small but fully cross-referenced snapshot:
// three rooms, two days, one zero-speaker session, and the TR411 room whose
// static capacity the room-status tests rely on.
func SampleRawSnapshot() *agenda.RawSnapshot {
	return &agenda.RawSnapshot{
		Rooms: []agenda.RawRoom{
			{ID: "TR211", NameEN: "Hall TR211", NameZH: "會議室 TR211"},
			{ID: "TR411", NameEN: "Hall TR411", NameZH: "會議室 TR411"},
			{ID: "RB105", NameEN: "Auditorium", NameZH: "大會堂"},
		},
		SessionTypes: []agenda.RawSessionType{
			{ID: "keynote", NameEN: "Keynote", NameZH: "主題演講"},
			{ID: "talk", NameEN: "Talk", NameZH: "一般議程"},
		},
		Tags: []agenda.RawTag{
			{ID: "security", NameEN: "Security", NameZH: "資訊安全"},
			{ID: "cloud", NameEN: "Cloud", NameZH: "雲端"},
		},
		Speakers: []agenda.RawSpeaker{
			{ID: "SP01", NameEN: "Ada Chen", NameZH: "陳艾達", BioEN: "Kernel hacker", BioZH: "核心開發者"},
			{ID: "SP02", NameEN: "Bo Lin", NameZH: "林博", BioEN: "SRE at large", BioZH: "網站可靠性工程師"},
		},
		Sessions: []agenda.RawSession{
			NewRawSession("S001", "TR411", "talk"),
			NewRawSession("S002", "TR211", "keynote",
				WithInterval("2024-08-03T09:30:00+08:00", "2024-08-03T10:30:00+08:00"),
				WithSpeakers("SP01", "SP02"),
				WithTags("cloud"),
			),
			NewRawSession("S003", "RB105", "talk",
				WithInterval("2024-08-03T11:00:00+08:00", "2024-08-03T12:00:00+08:00"),
				WithSpeakers(),
				WithTitleEN("Lightning round"),
			),
			NewRawSession("S004", "TR211", "talk",
				WithInterval("2024-08-04T10:00:00+08:00", "2024-08-04T11:00:00+08:00"),
			),
		},
	}
}

// StubFeed is an attendance feed whose counts and failure mode tests control
// directly.
type StubFeed struct {
	mu     sync.Mutex
	counts attendance.Counts
	err    error
	calls  int
}

// NewStubFeed returns a feed that serves the provided counts.
func NewStubFeed(counts attendance.Counts) *StubFeed {
	return &StubFeed{counts: counts}
}

// Fetch implements the tracker's feed dependency.
func (f *StubFeed) Fetch(ctx context.Context) (attendance.Counts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(attendance.Counts, len(f.counts))
	for id, n := range f.counts {
		out[id] = n
	}
	return out, nil
}

// SetCounts replaces the served counts.
func (f *StubFeed) SetCounts(counts attendance.Counts) {
	f.mu.Lock()
	f.counts = counts
	f.mu.Unlock()
}

// Fail makes subsequent fetches return err; pass nil to heal the feed.
func (f *StubFeed) Fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// Calls reports how many fetches were attempted.
func (f *StubFeed) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
