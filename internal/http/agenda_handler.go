package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/conference-agenda/internal/agenda"
	"github.com/example/conference-agenda/internal/application"
	"github.com/example/conference-agenda/internal/filter"
	"github.com/example/conference-agenda/internal/tracker"
)

type agendaService interface {
	DaysSchedule(ctx context.Context) []application.DaySchedule
	CurrentDayIndex() int
	Filter() filter.Spec
	SetFilter(spec filter.Spec)
	SessionByID(id string) (agenda.Session, error)
	RoomByID(id string) (agenda.Room, error)
	RoomStatusByID(id string) (tracker.RoomStatus, error)
	FilterOptions() agenda.FilterOptions
	Favorites() []string
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	WriteICS(w io.Writer, scope application.ExportScope) error
	Loaded() bool
}

// AgendaHandler serves the read surface over the loaded schedule.
type AgendaHandler struct {
	service   agendaService
	responder responder
	logger    *slog.Logger
}

func NewAgendaHandler(service agendaService, logger *slog.Logger) *AgendaHandler {
	base := defaultLogger(logger)
	return &AgendaHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AgendaHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AgendaHandler", operation, attrs...)
}

// Schedule returns the per-day tables and lists under the filter described
// by the query string. A request with no filter parameters reads the active
// filter unchanged.
func (h *AgendaHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if spec, ok := specFromQuery(r); ok {
		h.service.SetFilter(spec)
	}

	logger := h.log(r.Context(), "Schedule")
	if !h.service.Loaded() {
		h.responder.handleServiceError(r.Context(), w, application.ErrNotLoaded)
		return
	}

	days := h.service.DaysSchedule(r.Context())
	logger.With("days", len(days)).InfoContext(r.Context(), "schedule served")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newScheduleResponse(days, h.service.CurrentDayIndex()))
}

func (h *AgendaHandler) Session(w http.ResponseWriter, r *http.Request, id string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	session, err := h.service.SessionByID(id)
	if err != nil {
		h.log(r.Context(), "Session", "session_id", id).ErrorContext(r.Context(), "session lookup failed",
			"error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newSessionResponse(session))
}

func (h *AgendaHandler) Room(w http.ResponseWriter, r *http.Request, id string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	room, err := h.service.RoomByID(id)
	if err != nil {
		h.log(r.Context(), "Room", "room_id", id).ErrorContext(r.Context(), "room lookup failed",
			"error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomResponse{
		ID:       room.ID,
		Name:     newTextDTO(room.Name),
		Capacity: room.Capacity,
	})
}

func (h *AgendaHandler) RoomStatus(w http.ResponseWriter, r *http.Request, id string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	status, err := h.service.RoomStatusByID(id)
	if err != nil {
		h.log(r.Context(), "RoomStatus", "room_id", id).ErrorContext(r.Context(), "room status lookup failed",
			"error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newRoomStatusResponse(status))
}

func (h *AgendaHandler) Options(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if !h.service.Loaded() {
		h.responder.handleServiceError(r.Context(), w, application.ErrNotLoaded)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newFilterOptionsResponse(h.service.FilterOptions()))
}

func (h *AgendaHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, favoritesResponse{Favorites: h.service.Favorites()})
}

func (h *AgendaHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request, id string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "ToggleFavorite", "session_id", id)
	favorite, err := h.service.ToggleFavorite(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "favorite toggle failed",
			"error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("favorite", favorite).InfoContext(r.Context(), "favorite toggled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, favoriteToggleResponse{SessionID: id, Favorite: favorite})
}

// Export writes the selected sessions as an iCalendar document. The scope
// query parameter picks between the active filter and the favorite set.
func (h *AgendaHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scope := application.ExportFiltered
	if r.URL.Query().Get("scope") == string(application.ExportFavorites) {
		scope = application.ExportFavorites
	}

	if !h.service.Loaded() {
		h.responder.handleServiceError(r.Context(), w, application.ErrNotLoaded)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="agenda.ics"`)
	if err := h.service.WriteICS(w, scope); err != nil {
		h.log(r.Context(), "Export").ErrorContext(r.Context(), "ics export failed", "error", err)
	}
}

func (h *AgendaHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if h == nil || h.service == nil || !h.service.Loaded() {
		status = http.StatusServiceUnavailable
	}
	h.responder.writeJSON(r.Context(), w, status, map[string]bool{"loaded": status == http.StatusOK})
}

// specFromQuery builds a filter spec from query parameters. It reports false
// when the request carries none of them, leaving the active filter alone.
func specFromQuery(r *http.Request) (filter.Spec, bool) {
	query := r.URL.Query()
	spec := filter.Default()
	present := false

	if rooms, ok := query["room"]; ok {
		spec.Rooms = rooms
		present = true
	}
	if tag := query.Get("tags"); tag != "" {
		spec.Tag = tag
		present = true
	}
	if sessionType := query.Get("type"); sessionType != "" {
		spec.Type = sessionType
		present = true
	}
	if collection := query.Get("collection"); collection != "" {
		spec.Collection = collection
		present = true
	}
	if ids := query.Get("filter"); ids != "" {
		spec.IDs = strings.Split(ids, ",")
		present = true
	}
	if search := query.Get("search"); search != "" {
		spec.Search = search
		present = true
	}
	return spec, present
}
