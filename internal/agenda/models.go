// Package agenda holds the normalized conference data model and the
// transformer that builds it from a raw snapshot export.
package agenda

import "time"

// Locale selects which localized variant of a bilingual field is read.
type Locale string

const (
	// LocaleEN selects the English variant.
	LocaleEN Locale = "en"
	// LocaleZH selects the Traditional Chinese variant.
	LocaleZH Locale = "zh-TW"
)

// Text is a bilingual string field.
type Text struct {
	EN string
	ZH string
}

// Localize returns the variant for the requested locale, falling back to
// English for unknown locales.
func (t Text) Localize(locale Locale) string {
	if locale == LocaleZH {
		return t.ZH
	}
	return t.EN
}

// Speaker is a normalized speaker record.
type Speaker struct {
	ID     string
	Name   Text
	Bio    Text
	Avatar string
}

// Tag is a normalized tag record.
type Tag struct {
	ID   string
	Name Text
}

// SessionType is a normalized session type record.
type SessionType struct {
	ID   string
	Name Text
}

// Room is a normalized room record. Capacity comes from the static capacity
// table; rooms absent from the table carry an explicit zero.
type Room struct {
	ID       string
	Name     Text
	Capacity int
}

// Session is a normalized session with foreign keys resolved into shared
// references. Start and End are absolute instants already expressed in the
// conference timezone, with Start <= End. Favorite is derived by the query
// layer from the favorite set; it is always false on a freshly transformed
// snapshot.
type Session struct {
	ID          string
	Title       Text
	Description Text
	Start       time.Time
	End         time.Time
	Room        *Room
	Type        *SessionType
	Tags        []*Tag
	Speakers    []*Speaker
	Language    string
	CoWrite     string
	QA          string
	Slide       string
	Record      string
	URI         string
	Favorite    bool
}

// Element is one placement of a session into a room for a fixed interval.
// A session commonly maps to exactly one element, but nothing may assume
// that: cancelled or duplicated slots yield zero or several elements.
type Element struct {
	Session string
	Room    string
	Start   time.Time
	End     time.Time
}

// FilterOptions lists the distinct rooms, tags, and types of a snapshot in
// raw declaration order, for building filter selectors.
type FilterOptions struct {
	Rooms []*Room
	Tags  []*Tag
	Types []*SessionType
}

// Snapshot is one immutable load of the full dataset. Two snapshots loaded
// with different offsets are fully independent; nothing here is shared or
// cached across loads.
type Snapshot struct {
	// OffsetMinutes is the conference timezone offset the snapshot was
	// normalized with.
	OffsetMinutes int

	// Elements is ordered by start time, ties broken by room id. Other
	// components rely on this ordering.
	Elements []Element

	SessionsByID map[string]*Session
	RoomsByID    map[string]*Room
	SpeakersByID map[string]*Speaker
	TagsByID     map[string]*Tag
	TypesByID    map[string]*SessionType

	rooms []*Room
	tags  []*Tag
	types []*SessionType
}

// FilterOptions returns the selectable filter values of the snapshot.
func (s *Snapshot) FilterOptions() FilterOptions {
	if s == nil {
		return FilterOptions{}
	}
	return FilterOptions{Rooms: s.rooms, Tags: s.tags, Types: s.types}
}
