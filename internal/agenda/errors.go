package agenda

import (
	"fmt"
	"strings"
)

// ViolationKind labels one class of data-integrity problem found while
// transforming a raw snapshot.
type ViolationKind string

const (
	// ViolationDuplicateID marks a record whose id is already taken.
	ViolationDuplicateID ViolationKind = "duplicate_id"
	// ViolationUnresolvedReference marks a foreign key with no target.
	ViolationUnresolvedReference ViolationKind = "unresolved_reference"
	// ViolationMalformedInterval marks a session whose start is after its end.
	ViolationMalformedInterval ViolationKind = "malformed_interval"
	// ViolationBadTimestamp marks a start or end value that does not parse.
	ViolationBadTimestamp ViolationKind = "bad_timestamp"
)

// Violation describes one integrity problem on one record.
type Violation struct {
	Kind   ViolationKind
	Record string
	Field  string
	Ref    string
}

// String renders the violation for logs and error output.
func (v Violation) String() string {
	var b strings.Builder
	b.WriteString(string(v.Kind))
	b.WriteString(" record=")
	b.WriteString(v.Record)
	if v.Field != "" {
		b.WriteString(" field=")
		b.WriteString(v.Field)
	}
	if v.Ref != "" {
		b.WriteString(" ref=")
		b.WriteString(v.Ref)
	}
	return b.String()
}

// IntegrityError aggregates every violation found in one transform run.
// The transform still returns the valid subset of the snapshot; callers
// report the error once per load instead of failing per row.
type IntegrityError struct {
	Violations []Violation
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "agenda: snapshot integrity error"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("agenda: snapshot integrity: %s", strings.Join(parts, "; "))
}

func (e *IntegrityError) add(kind ViolationKind, record, field, ref string) {
	e.Violations = append(e.Violations, Violation{Kind: kind, Record: record, Field: field, Ref: ref})
}

// NotFoundError reports a lookup for an id absent from the loaded snapshot.
// Ids are expected to come only from already loaded data, so this indicates
// a caller bug rather than a user-facing condition.
type NotFoundError struct {
	Kind string
	ID   string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("agenda: %s %q not found in snapshot", e.Kind, e.ID)
}
