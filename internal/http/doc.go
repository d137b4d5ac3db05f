// Package http exposes the query façade as a small read-mostly JSON API:
// the filtered schedule, session and room lookups, live room status, filter
// options, favorite toggling, and an iCalendar export.
package http
