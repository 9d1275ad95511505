package domain

import "github.com/google/uuid"

// ValidationIssue reports one check a proposed mapping was run against,
// whether or not it caused rejection (§3, §4.7). Shape grounded on the
// teacher's dependency `cacack/gedcom-go`'s validator.Issue: severity + a
// stable code + a human message + the record(s) it concerns.
type ValidationIssue struct {
	Severity Severity       `json:"severity"`
	Kind     ValidationKind `json:"kind"`
	SourceID *uuid.UUID     `json:"sourceId,omitempty"`
	DestID   *uuid.UUID     `json:"destId,omitempty"`
	Message  string         `json:"message"`
}

// Rejects reports whether this issue, on its own, rejects the mapping it
// was raised for. Only High severity is rejecting (§4.7).
func (v ValidationIssue) Rejects() bool {
	return v.Severity == SeverityHigh
}
