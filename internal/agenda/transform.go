package agenda

import (
	"sort"
	"time"

	"github.com/example/conference-agenda/internal/timeutil"
)

// Transform normalizes a raw snapshot using the default capacity table.
// See TransformWithCapacities.
func Transform(raw *RawSnapshot, offsetMinutes int) (*Snapshot, error) {
	return TransformWithCapacities(raw, offsetMinutes, DefaultRoomCapacities)
}

// TransformWithCapacities converts the flat export rows into normalized
// entity maps plus the ordered element sequence. Every timestamp is pushed
// through the supplied timezone offset, so snapshots built with different
// offsets never share instants.
//
// Integrity problems (duplicate ids, unresolved foreign keys, malformed
// intervals, unparseable timestamps) are collected rather than aborting the
// run: the affected rows are dropped, the valid subset is returned, and a
// single *IntegrityError enumerating every violation accompanies it. The
// returned snapshot is usable whether or not the error is non-nil.
func TransformWithCapacities(raw *RawSnapshot, offsetMinutes int, capacities map[string]int) (*Snapshot, error) {
	snap := &Snapshot{
		OffsetMinutes: offsetMinutes,
		SessionsByID:  make(map[string]*Session),
		RoomsByID:     make(map[string]*Room),
		SpeakersByID:  make(map[string]*Speaker),
		TagsByID:      make(map[string]*Tag),
		TypesByID:     make(map[string]*SessionType),
	}
	integ := &IntegrityError{}
	if raw == nil {
		return snap, nil
	}

	for _, r := range raw.Rooms {
		if _, exists := snap.RoomsByID[r.ID]; exists {
			integ.add(ViolationDuplicateID, "room:"+r.ID, "", "")
			continue
		}
		room := &Room{
			ID:       r.ID,
			Name:     Text{EN: r.NameEN, ZH: r.NameZH},
			Capacity: CapacityFor(capacities, r.ID),
		}
		snap.RoomsByID[r.ID] = room
		snap.rooms = append(snap.rooms, room)
	}

	for _, s := range raw.Speakers {
		if _, exists := snap.SpeakersByID[s.ID]; exists {
			integ.add(ViolationDuplicateID, "speaker:"+s.ID, "", "")
			continue
		}
		snap.SpeakersByID[s.ID] = &Speaker{
			ID:     s.ID,
			Name:   Text{EN: s.NameEN, ZH: s.NameZH},
			Bio:    Text{EN: s.BioEN, ZH: s.BioZH},
			Avatar: s.Avatar,
		}
	}

	for _, t := range raw.Tags {
		if _, exists := snap.TagsByID[t.ID]; exists {
			integ.add(ViolationDuplicateID, "tag:"+t.ID, "", "")
			continue
		}
		tag := &Tag{ID: t.ID, Name: Text{EN: t.NameEN, ZH: t.NameZH}}
		snap.TagsByID[t.ID] = tag
		snap.tags = append(snap.tags, tag)
	}

	for _, t := range raw.SessionTypes {
		if _, exists := snap.TypesByID[t.ID]; exists {
			integ.add(ViolationDuplicateID, "session_type:"+t.ID, "", "")
			continue
		}
		st := &SessionType{ID: t.ID, Name: Text{EN: t.NameEN, ZH: t.NameZH}}
		snap.TypesByID[t.ID] = st
		snap.types = append(snap.types, st)
	}

	for _, r := range raw.Sessions {
		session, ok := buildSession(snap, r, offsetMinutes, integ)
		if !ok {
			continue
		}
		snap.SessionsByID[session.ID] = session
		snap.Elements = append(snap.Elements, Element{
			Session: session.ID,
			Room:    session.Room.ID,
			Start:   session.Start,
			End:     session.End,
		})
	}

	sort.Slice(snap.Elements, func(i, j int) bool {
		a, b := snap.Elements[i], snap.Elements[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.Room != b.Room {
			return a.Room < b.Room
		}
		return a.Session < b.Session
	})

	if len(integ.Violations) > 0 {
		return snap, integ
	}
	return snap, nil
}

// buildSession resolves one raw session row. It records every violation the
// row carries and reports ok=false when any was found, so a single bad
// foreign key never produces a half-resolved session.
func buildSession(snap *Snapshot, r RawSession, offsetMinutes int, integ *IntegrityError) (*Session, bool) {
	record := "session:" + r.ID
	valid := true

	if _, exists := snap.SessionsByID[r.ID]; exists {
		integ.add(ViolationDuplicateID, record, "", "")
		return nil, false
	}

	start, err := time.Parse(time.RFC3339, r.Start)
	if err != nil {
		integ.add(ViolationBadTimestamp, record, "start", r.Start)
		valid = false
	}
	end, err := time.Parse(time.RFC3339, r.End)
	if err != nil {
		integ.add(ViolationBadTimestamp, record, "end", r.End)
		valid = false
	}
	if valid && start.After(end) {
		integ.add(ViolationMalformedInterval, record, "", "")
		valid = false
	}

	room, ok := snap.RoomsByID[r.Room]
	if !ok {
		integ.add(ViolationUnresolvedReference, record, "room", r.Room)
		valid = false
	}
	sessionType, ok := snap.TypesByID[r.Type]
	if !ok {
		integ.add(ViolationUnresolvedReference, record, "type", r.Type)
		valid = false
	}

	tags := make([]*Tag, 0, len(r.Tags))
	for _, id := range r.Tags {
		tag, ok := snap.TagsByID[id]
		if !ok {
			integ.add(ViolationUnresolvedReference, record, "tags", id)
			valid = false
			continue
		}
		tags = append(tags, tag)
	}

	speakers := make([]*Speaker, 0, len(r.Speakers))
	for _, id := range r.Speakers {
		speaker, ok := snap.SpeakersByID[id]
		if !ok {
			integ.add(ViolationUnresolvedReference, record, "speakers", id)
			valid = false
			continue
		}
		speakers = append(speakers, speaker)
	}

	if !valid {
		return nil, false
	}

	return &Session{
		ID:          r.ID,
		Title:       Text{EN: r.TitleEN, ZH: r.TitleZH},
		Description: Text{EN: r.DescriptionEN, ZH: r.DescriptionZH},
		Start:       timeutil.NormalizeToZone(start, offsetMinutes),
		End:         timeutil.NormalizeToZone(end, offsetMinutes),
		Room:        room,
		Type:        sessionType,
		Tags:        tags,
		Speakers:    speakers,
		Language:    r.Language,
		CoWrite:     r.CoWrite,
		QA:          r.QA,
		Slide:       r.Slide,
		Record:      r.Record,
		URI:         r.URI,
	}, true
}
