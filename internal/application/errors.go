package application

import (
	"errors"

	"github.com/example/conference-agenda/internal/agenda"
	"github.com/example/conference-agenda/internal/attendance"
)

var (
	// ErrNotLoaded is returned when a query runs before a snapshot load.
	ErrNotLoaded = errors.New("application: snapshot not loaded")
	// ErrDayIndexOutOfRange is returned for an invalid current-day index.
	ErrDayIndexOutOfRange = errors.New("application: day index out of range")
)

// ErrorKind maps errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	var notFound *agenda.NotFoundError
	if errors.As(err, &notFound) {
		return "not_found"
	}
	var integ *agenda.IntegrityError
	if errors.As(err, &integ) {
		return "integrity"
	}
	var fetch *attendance.FetchError
	if errors.As(err, &fetch) {
		return "feed"
	}

	switch {
	case errors.Is(err, ErrNotLoaded):
		return "not_loaded"
	case errors.Is(err, ErrDayIndexOutOfRange):
		return "validation"
	}
	return "unexpected"
}
