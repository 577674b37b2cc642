package reconcile

import "fmt"

// Stage is a step of the reconciliation state machine.
type Stage string

const (
	StageReceived   Stage = "received"
	StageNormalized Stage = "normalized"
	StageMerged     Stage = "merged"
	StagePersisted  Stage = "persisted"
	StageRejected   Stage = "rejected"
)

// UnsupportedSectionError rejects an unknown section token. HandledElsewhere is
// set for sections that are valid but persisted by another component.
type UnsupportedSectionError struct {
	Section          string
	HandledElsewhere bool
	Stage            Stage
}

func (e *UnsupportedSectionError) Error() string {
	if e.HandledElsewhere {
		return fmt.Sprintf("section %q is handled elsewhere", e.Section)
	}
	return fmt.Sprintf("unsupported section %q", e.Section)
}

// MalformedPayloadError rejects a payload that is not an object or array.
type MalformedPayloadError struct {
	Section string
	Reason  string
	Stage   Stage
	Err     error
}

func (e *MalformedPayloadError) Error() string {
	msg := "malformed payload"
	if e.Section != "" {
		msg += " for section " + e.Section
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// DocumentNotFoundError rejects a partial update of a project that has no
// document yet. Callers route to the create path instead.
type DocumentNotFoundError struct {
	ProjectRef string
	Stage      Stage
}

func (e *DocumentNotFoundError) Error() string {
	if e.ProjectRef == "" {
		return "architecture document not found"
	}
	return fmt.Sprintf("architecture document not found for project %q", e.ProjectRef)
}

// ValidationError rejects a create payload whose required list carries no
// identifiable item.
type ValidationError struct {
	Field  string
	Reason string
	Stage  Stage
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid architecture: " + e.Reason
	}
	return fmt.Sprintf("invalid architecture field %s: %s", e.Field, e.Reason)
}
