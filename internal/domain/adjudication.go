package domain

import "github.com/google/uuid"

// AdjudicationOutcome is what an Adjudicator returns for one ambiguous
// proposal the engine hands it (§4.10).
type AdjudicationOutcome struct {
	Decision DecisionType
	// DestID is the destination the user actually confirmed, which may
	// differ from the proposed DestID if they picked an alternate candidate
	// from the presented list. Nil for Rejected/Skipped.
	DestID *uuid.UUID
}
