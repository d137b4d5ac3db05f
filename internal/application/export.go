package application

import (
	"fmt"
	"io"
	"sort"

	ics "github.com/arran4/golang-ical"

	"github.com/example/conference-agenda/internal/agenda"
	"github.com/example/conference-agenda/internal/filter"
)

// ExportScope selects which sessions an ICS export contains.
type ExportScope string

const (
	// ExportFiltered exports the sessions admitted by the active filter.
	ExportFiltered ExportScope = "filtered"
	// ExportFavorites exports the favorite set regardless of the filter.
	ExportFavorites ExportScope = "favorites"
)

// WriteICS serializes the selected sessions as an iCalendar document.
func (s *AgendaService) WriteICS(w io.Writer, scope ExportScope) error {
	s.mu.RLock()
	if !s.loaded {
		s.mu.RUnlock()
		return ErrNotLoaded
	}

	spec := s.spec
	if scope == ExportFavorites {
		spec = filter.Default()
		spec.Collection = filter.CollectionFavorites
	}

	sessions := make([]*agenda.Session, 0, len(s.snapshot.SessionsByID))
	for _, session := range s.snapshot.SessionsByID {
		if filter.Matches(session, s.favoriteIDs, spec, s.locale) {
			sessions = append(sessions, session)
		}
	}
	locale := s.locale
	s.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].Start.Equal(sessions[j].Start) {
			return sessions[i].Start.Before(sessions[j].Start)
		}
		return sessions[i].ID < sessions[j].ID
	})

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//conference-agenda//schedule//EN")

	for _, session := range sessions {
		event := cal.AddEvent(fmt.Sprintf("%s@conference-agenda", session.ID))
		event.SetDtStampTime(session.Start)
		event.SetStartAt(session.Start)
		event.SetEndAt(session.End)
		event.SetSummary(session.Title.Localize(locale))
		if desc := session.Description.Localize(locale); desc != "" {
			event.SetDescription(desc)
		}
		if session.Room != nil {
			event.SetLocation(session.Room.Name.Localize(locale))
		}
	}

	return cal.SerializeTo(w)
}
