// Package filter evaluates compound filter specifications against sessions.
package filter

import (
	"strings"

	"github.com/example/conference-agenda/internal/agenda"
)

// Wildcard is the sentinel meaning "do not filter on this key".
const Wildcard = "*"

// CollectionFavorites restricts results to the user's favorite set.
const CollectionFavorites = "favorites"

// Spec is an immutable snapshot of the current filter criteria. A key set to
// the wildcard sentinel (or a set containing it) is skipped entirely; the
// remaining keys combine with logical AND.
type Spec struct {
	// Rooms restricts to sessions held in any of the listed rooms.
	Rooms []string
	// Tag requires at least one session tag with this id.
	Tag string
	// Type requires the session type id to match exactly.
	Type string
	// Collection is either CollectionFavorites or the wildcard.
	Collection string
	// IDs is an explicit allow-list of session ids, used for deep links.
	IDs []string
	// Search is a case-insensitive substring query; empty means no filter.
	Search string
}

// Default returns the identity filter that admits every session.
func Default() Spec {
	return Spec{
		Rooms:      []string{Wildcard},
		Tag:        Wildcard,
		Type:       Wildcard,
		Collection: Wildcard,
		IDs:        []string{Wildcard},
		Search:     "",
	}
}

// Matches reports whether the session passes every active key of the spec.
// Evaluation short-circuits on the first failing key. The locale selects
// which localized fields the search key reads; the substring comparison
// itself is ordinal and case-insensitive.
func Matches(session *agenda.Session, favoriteIDs map[string]bool, spec Spec, locale agenda.Locale) bool {
	if session == nil {
		return false
	}

	if !isAnySet(spec.Rooms) {
		if session.Room == nil || !contains(spec.Rooms, session.Room.ID) {
			return false
		}
	}

	if spec.Tag != Wildcard && spec.Tag != "" {
		if !hasTag(session, spec.Tag) {
			return false
		}
	}

	if spec.Type != Wildcard && spec.Type != "" {
		if session.Type == nil || session.Type.ID != spec.Type {
			return false
		}
	}

	if spec.Collection != Wildcard && spec.Collection != "" {
		if !favoriteIDs[session.ID] {
			return false
		}
	}

	if !isAnySet(spec.IDs) {
		if !contains(spec.IDs, session.ID) {
			return false
		}
	}

	if spec.Search != "" {
		if !matchesSearch(session, spec.Search, locale) {
			return false
		}
	}

	return true
}

// matchesSearch accepts a session when its localized title or description
// contains the query, or when the session has at least one speaker and every
// speaker's localized name or bio contains it. A session with zero speakers
// can only match through its title or description.
func matchesSearch(session *agenda.Session, query string, locale agenda.Locale) bool {
	needle := strings.ToLower(query)

	if containsFold(session.Title.Localize(locale), needle) {
		return true
	}
	if containsFold(session.Description.Localize(locale), needle) {
		return true
	}

	if len(session.Speakers) == 0 {
		return false
	}
	for _, speaker := range session.Speakers {
		if speaker == nil {
			return false
		}
		if !containsFold(speaker.Name.Localize(locale), needle) &&
			!containsFold(speaker.Bio.Localize(locale), needle) {
			return false
		}
	}
	return true
}

func containsFold(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}

func hasTag(session *agenda.Session, id string) bool {
	for _, tag := range session.Tags {
		if tag != nil && tag.ID == id {
			return true
		}
	}
	return false
}

// isAnySet reports whether a set-valued key is inactive: empty or containing
// the wildcard sentinel.
func isAnySet(values []string) bool {
	if len(values) == 0 {
		return true
	}
	return contains(values, Wildcard)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
