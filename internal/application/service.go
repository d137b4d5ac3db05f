package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/example/conference-agenda/internal/agenda"
	"github.com/example/conference-agenda/internal/filter"
	"github.com/example/conference-agenda/internal/persistence"
	"github.com/example/conference-agenda/internal/schedule"
	"github.com/example/conference-agenda/internal/tracker"
)

// RoomStatusProvider yields the derived live status of one room. The room
// status tracker implements it; queries before the tracker is attached see
// the zero status.
type RoomStatusProvider interface {
	StatusByID(roomID string) (tracker.RoomStatus, error)
}

// AgendaService is the single read/query surface over the loaded snapshot:
// it composes the transformer, schedule builder, filter engine, favorite
// store, and room status tracker. Presentation code talks only to it.
type AgendaService struct {
	source      SnapshotSource
	favorites   persistence.FavoriteStore
	logger      *slog.Logger
	idGenerator func() string

	// toggleMu serializes favorite mutation together with its persist, so
	// the store never receives a set older than one already written.
	toggleMu sync.Mutex

	mu              sync.RWMutex
	offsetMinutes   int
	locale          agenda.Locale
	loaded          bool
	loadToken       string
	snapshot        *agenda.Snapshot
	integrity       *agenda.IntegrityError
	days            []schedule.DayElements
	spec            filter.Spec
	favoriteIDs     map[string]bool
	favoriteOrder   []string
	currentDayIndex int
	capacities      map[string]int
	status          RoomStatusProvider
}

// NewAgendaService constructs the façade around a snapshot source and a
// favorite store, normalizing timestamps with the given offset.
func NewAgendaService(source SnapshotSource, favorites persistence.FavoriteStore, offsetMinutes int) *AgendaService {
	return NewAgendaServiceWithLogger(source, favorites, offsetMinutes, nil)
}

// NewAgendaServiceWithLogger constructs the façade with a specified logger.
func NewAgendaServiceWithLogger(source SnapshotSource, favorites persistence.FavoriteStore, offsetMinutes int, logger *slog.Logger) *AgendaService {
	if favorites == nil {
		favorites = persistence.NewMemoryFavoriteStore()
	}
	return &AgendaService{
		source:        source,
		favorites:     favorites,
		logger:        defaultLogger(logger),
		idGenerator:   uuid.NewString,
		offsetMinutes: offsetMinutes,
		locale:        agenda.LocaleEN,
		spec:          filter.Default(),
		favoriteIDs:   make(map[string]bool),
		capacities:    agenda.DefaultRoomCapacities,
	}
}

// SetCapacities overrides the static room capacity table. It applies to the
// next load.
func (s *AgendaService) SetCapacities(capacities map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if capacities == nil {
		capacities = agenda.DefaultRoomCapacities
	}
	s.capacities = capacities
}

// SetStatusProvider attaches the room status tracker.
func (s *AgendaService) SetStatusProvider(provider RoomStatusProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = provider
}

// Loaded reports whether a snapshot is currently loaded.
func (s *AgendaService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Load fetches, transforms, and installs the snapshot. A second call while
// already loaded is a no-op. When loads race (a reload is requested while a
// fetch is in flight), the last requested load wins: each attempt takes a
// fresh generation token and only the holder of the newest token installs
// its result.
func (s *AgendaService) Load(ctx context.Context) (err error) {
	logger := serviceLogger(ctx, s.logger, "Load")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load snapshot", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return nil
	}
	token := s.idGenerator()
	s.loadToken = token
	offset := s.offsetMinutes
	capacities := s.capacities
	s.mu.Unlock()

	raw, err := s.source.Fetch(ctx)
	if err != nil {
		return err
	}

	snap, terr := agenda.TransformWithCapacities(raw, offset, capacities)
	var integ *agenda.IntegrityError
	if terr != nil && !errors.As(terr, &integ) {
		return terr
	}

	favoriteIDs, ferr := s.favorites.Load(ctx)
	if ferr != nil {
		logger.WarnContext(ctx, "favorite store unreadable, starting with an empty set", "error", ferr)
		favoriteIDs = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadToken != token {
		logger.InfoContext(ctx, "load superseded by a newer load")
		return nil
	}

	s.snapshot = snap
	s.integrity = integ
	s.days = schedule.GroupByDay(snap.Elements)
	s.favoriteOrder = favoriteIDs
	s.favoriteIDs = make(map[string]bool, len(favoriteIDs))
	for _, id := range favoriteIDs {
		s.favoriteIDs[id] = true
	}
	s.currentDayIndex = 0
	s.loaded = true

	if integ != nil {
		logger.WarnContext(ctx, "snapshot loaded with integrity violations",
			"sessions", len(snap.SessionsByID),
			"violations", len(integ.Violations),
		)
	} else {
		logger.InfoContext(ctx, "snapshot loaded",
			"sessions", len(snap.SessionsByID),
			"rooms", len(snap.RoomsByID),
			"elements", len(snap.Elements),
		)
	}
	return nil
}

// Reload discards the current snapshot and loads again.
func (s *AgendaService) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.loaded = false
	s.mu.Unlock()
	return s.Load(ctx)
}

// SetTimezoneOffset switches the conference offset and rebuilds the whole
// snapshot under it. Setting the current offset again is a no-op.
func (s *AgendaService) SetTimezoneOffset(ctx context.Context, offsetMinutes int) error {
	s.mu.Lock()
	if s.offsetMinutes == offsetMinutes {
		s.mu.Unlock()
		return nil
	}
	s.offsetMinutes = offsetMinutes
	s.loaded = false
	s.mu.Unlock()
	return s.Load(ctx)
}

// TimezoneOffset returns the active offset in minutes.
func (s *AgendaService) TimezoneOffset() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offsetMinutes
}

// IntegrityReport returns the violations collected by the last load, or nil
// when the snapshot was clean.
func (s *AgendaService) IntegrityReport() *agenda.IntegrityError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.integrity
}

// Snapshot returns the currently loaded snapshot, or nil. The tracker uses
// it as its read-only snapshot provider.
func (s *AgendaService) Snapshot() *agenda.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil
	}
	return s.snapshot
}

// Filter returns the active filter spec.
func (s *AgendaService) Filter() filter.Spec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spec
}

// SetFilter installs a new filter spec; subsequent schedule queries see it.
func (s *AgendaService) SetFilter(spec filter.Spec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spec = spec
}

// Locale returns the locale used for localized field selection.
func (s *AgendaService) Locale() agenda.Locale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locale
}

// SetLocale switches the localized field selection.
func (s *AgendaService) SetLocale(locale agenda.Locale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locale = locale
}

// DaysSchedule evaluates the active filter against every day and returns
// the per-day table and list views. When the current day ends up empty under
// the filter, the current day index advances to the first non-empty day.
// Same-room overlaps found while laying out a grid are logged, not fatal.
func (s *AgendaService) DaysSchedule(ctx context.Context) []DaySchedule {
	logger := serviceLogger(ctx, s.logger, "DaysSchedule")

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil
	}

	out := make([]DaySchedule, 0, len(s.days))
	for _, day := range s.days {
		filtered := make([]agenda.Element, 0, len(day.Elements))
		for _, el := range day.Elements {
			session := s.snapshot.SessionsByID[el.Session]
			if filter.Matches(session, s.favoriteIDs, s.spec, s.locale) {
				filtered = append(filtered, el)
			}
		}

		table, err := schedule.BuildTable(filtered)
		if err != nil {
			logger.WarnContext(ctx, "timetable has overlapping elements",
				"day", day.Day.String(), "error", err)
		}
		out = append(out, DaySchedule{
			Day:   day.Day,
			Table: table,
			List:  schedule.BuildList(filtered),
		})
	}

	if s.currentDayIndex < len(out) && len(out[s.currentDayIndex].List.Items) == 0 {
		for i := range out {
			if len(out[i].List.Items) > 0 {
				s.currentDayIndex = i
				break
			}
		}
	}
	return out
}

// CurrentDayIndex returns the selected day index.
func (s *AgendaService) CurrentDayIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentDayIndex
}

// SetCurrentDayIndex selects a day of the loaded schedule.
func (s *AgendaService) SetCurrentDayIndex(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || (s.loaded && index >= len(s.days)) {
		return ErrDayIndexOutOfRange
	}
	s.currentDayIndex = index
	return nil
}

// SessionByID returns a copy of the session with its derived favorite flag
// set. An id absent from the snapshot is a caller bug and fails fast with a
// *agenda.NotFoundError.
func (s *AgendaService) SessionByID(id string) (agenda.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return agenda.Session{}, ErrNotLoaded
	}
	session, ok := s.snapshot.SessionsByID[id]
	if !ok {
		return agenda.Session{}, &agenda.NotFoundError{Kind: "session", ID: id}
	}
	out := *session
	out.Favorite = s.favoriteIDs[id]
	return out, nil
}

// RoomByID returns a copy of the room record.
func (s *AgendaService) RoomByID(id string) (agenda.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return agenda.Room{}, ErrNotLoaded
	}
	room, ok := s.snapshot.RoomsByID[id]
	if !ok {
		return agenda.Room{}, &agenda.NotFoundError{Kind: "room", ID: id}
	}
	return *room, nil
}

// RoomStatusByID returns the live status of a room. Before a tracker is
// attached every known room reads as open with no current session.
func (s *AgendaService) RoomStatusByID(id string) (tracker.RoomStatus, error) {
	s.mu.RLock()
	loaded := s.loaded
	var known bool
	if loaded {
		_, known = s.snapshot.RoomsByID[id]
	}
	provider := s.status
	s.mu.RUnlock()

	if !loaded {
		return tracker.RoomStatus{}, ErrNotLoaded
	}
	if !known {
		return tracker.RoomStatus{}, &agenda.NotFoundError{Kind: "room", ID: id}
	}
	if provider == nil {
		return tracker.RoomStatus{}, nil
	}
	return provider.StatusByID(id)
}

// FilterOptions returns the selectable rooms, tags, and types of the loaded
// snapshot.
func (s *AgendaService) FilterOptions() agenda.FilterOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return agenda.FilterOptions{}
	}
	return s.snapshot.FilterOptions()
}

// Favorites returns the favorite session ids in toggle order.
func (s *AgendaService) Favorites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.favoriteOrder))
	copy(out, s.favoriteOrder)
	return out
}

// ToggleFavorite flips membership of the id in the favorite set, persists
// the new set, and reports the resulting membership. Toggling the same id
// twice restores the original set.
func (s *AgendaService) ToggleFavorite(ctx context.Context, id string) (favorite bool, err error) {
	logger := serviceLogger(ctx, s.logger, "ToggleFavorite", "session_id", id)

	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()

	s.mu.Lock()
	if s.favoriteIDs[id] {
		delete(s.favoriteIDs, id)
		for i, existing := range s.favoriteOrder {
			if existing == id {
				s.favoriteOrder = append(s.favoriteOrder[:i], s.favoriteOrder[i+1:]...)
				break
			}
		}
		favorite = false
	} else {
		s.favoriteIDs[id] = true
		s.favoriteOrder = append(s.favoriteOrder, id)
		favorite = true
	}
	ids := make([]string, len(s.favoriteOrder))
	copy(ids, s.favoriteOrder)
	s.mu.Unlock()

	if serr := s.favorites.Save(ctx, ids); serr != nil {
		logger.ErrorContext(ctx, "failed to persist favorites", "error", serr)
		return favorite, fmt.Errorf("application: persist favorites: %w", serr)
	}
	return favorite, nil
}
