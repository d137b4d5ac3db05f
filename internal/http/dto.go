package http

import (
	"time"

	"github.com/example/conference-agenda/internal/agenda"
	"github.com/example/conference-agenda/internal/application"
	"github.com/example/conference-agenda/internal/schedule"
	"github.com/example/conference-agenda/internal/tracker"
)

type textDTO struct {
	EN string `json:"en"`
	ZH string `json:"zh-TW"`
}

func newTextDTO(t agenda.Text) textDTO {
	return textDTO{EN: t.EN, ZH: t.ZH}
}

type speakerDTO struct {
	ID   string  `json:"id"`
	Name textDTO `json:"name"`
	Bio  textDTO `json:"bio"`
}

type sessionResponse struct {
	ID          string       `json:"id"`
	Title       textDTO      `json:"title"`
	Description textDTO      `json:"description"`
	Start       string       `json:"start"`
	End         string       `json:"end"`
	Room        string       `json:"room"`
	Type        string       `json:"type"`
	Tags        []string     `json:"tags"`
	Speakers    []speakerDTO `json:"speakers"`
	Language    string       `json:"language,omitempty"`
	URI         string       `json:"uri,omitempty"`
	Favorite    bool         `json:"favorite"`
}

func newSessionResponse(s agenda.Session) sessionResponse {
	out := sessionResponse{
		ID:          s.ID,
		Title:       newTextDTO(s.Title),
		Description: newTextDTO(s.Description),
		Start:       s.Start.Format(time.RFC3339),
		End:         s.End.Format(time.RFC3339),
		Language:    s.Language,
		URI:         s.URI,
		Favorite:    s.Favorite,
		Tags:        make([]string, 0, len(s.Tags)),
		Speakers:    make([]speakerDTO, 0, len(s.Speakers)),
	}
	if s.Room != nil {
		out.Room = s.Room.ID
	}
	if s.Type != nil {
		out.Type = s.Type.ID
	}
	for _, tag := range s.Tags {
		out.Tags = append(out.Tags, tag.ID)
	}
	for _, speaker := range s.Speakers {
		out.Speakers = append(out.Speakers, speakerDTO{
			ID:   speaker.ID,
			Name: newTextDTO(speaker.Name),
			Bio:  newTextDTO(speaker.Bio),
		})
	}
	return out
}

type roomResponse struct {
	ID       string  `json:"id"`
	Name     textDTO `json:"name"`
	Capacity int     `json:"capacity"`
}

type roomStatusResponse struct {
	IsFull         bool   `json:"is_full"`
	CurrentSession string `json:"current_session,omitempty"`
}

func newRoomStatusResponse(s tracker.RoomStatus) roomStatusResponse {
	return roomStatusResponse{IsFull: s.IsFull, CurrentSession: s.CurrentSession}
}

type elementDTO struct {
	Session string `json:"session"`
	Room    string `json:"room"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

func newElementDTO(el agenda.Element) elementDTO {
	return elementDTO{
		Session: el.Session,
		Room:    el.Room,
		Start:   el.Start.Format(time.RFC3339),
		End:     el.End.Format(time.RFC3339),
	}
}

type cellDTO struct {
	Room    string `json:"room"`
	Slot    int    `json:"slot"`
	Session string `json:"session"`
	Span    int    `json:"span"`
}

type tableDTO struct {
	Rooms []string  `json:"rooms"`
	Slots []string  `json:"slots"`
	Cells []cellDTO `json:"cells"`
}

func newTableDTO(t schedule.Table) tableDTO {
	out := tableDTO{
		Rooms: t.Rooms,
		Slots: make([]string, 0, len(t.Slots)),
		Cells: make([]cellDTO, 0),
	}
	for _, slot := range t.Slots {
		out.Slots = append(out.Slots, slot.Format(time.RFC3339))
	}
	for _, room := range t.Rooms {
		for slot, cell := range t.Cells[room] {
			out.Cells = append(out.Cells, cellDTO{
				Room:    room,
				Slot:    slot,
				Session: cell.Element.Session,
				Span:    cell.Span,
			})
		}
	}
	return out
}

type dayScheduleResponse struct {
	Day   string       `json:"day"`
	Table tableDTO     `json:"table"`
	List  []elementDTO `json:"list"`
}

type scheduleResponse struct {
	Days            []dayScheduleResponse `json:"days"`
	CurrentDayIndex int                   `json:"current_day_index"`
}

func newScheduleResponse(days []application.DaySchedule, currentDayIndex int) scheduleResponse {
	out := scheduleResponse{
		Days:            make([]dayScheduleResponse, 0, len(days)),
		CurrentDayIndex: currentDayIndex,
	}
	for _, day := range days {
		items := make([]elementDTO, 0, len(day.List.Items))
		for _, el := range day.List.Items {
			items = append(items, newElementDTO(el))
		}
		out.Days = append(out.Days, dayScheduleResponse{
			Day:   day.Day.String(),
			Table: newTableDTO(day.Table),
			List:  items,
		})
	}
	return out
}

type optionDTO struct {
	ID   string  `json:"id"`
	Name textDTO `json:"name"`
}

type filterOptionsResponse struct {
	Rooms []optionDTO `json:"rooms"`
	Tags  []optionDTO `json:"tags"`
	Types []optionDTO `json:"types"`
}

func newFilterOptionsResponse(options agenda.FilterOptions) filterOptionsResponse {
	out := filterOptionsResponse{
		Rooms: make([]optionDTO, 0, len(options.Rooms)),
		Tags:  make([]optionDTO, 0, len(options.Tags)),
		Types: make([]optionDTO, 0, len(options.Types)),
	}
	for _, room := range options.Rooms {
		out.Rooms = append(out.Rooms, optionDTO{ID: room.ID, Name: newTextDTO(room.Name)})
	}
	for _, tag := range options.Tags {
		out.Tags = append(out.Tags, optionDTO{ID: tag.ID, Name: newTextDTO(tag.Name)})
	}
	for _, sessionType := range options.Types {
		out.Types = append(out.Types, optionDTO{ID: sessionType.ID, Name: newTextDTO(sessionType.Name)})
	}
	return out
}

type favoriteToggleResponse struct {
	SessionID string `json:"session_id"`
	Favorite  bool   `json:"favorite"`
}

type favoritesResponse struct {
	Favorites []string `json:"favorites"`
}
