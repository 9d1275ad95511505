package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConfirmedDecision is one record in the confirmed-mappings store's JSON
// document (§6 "{ sourceFile, destinationFile, mappings: [...] }"). DestID
// is nil for a Rejected or Skipped decision made without ever picking a
// destination.
type ConfirmedDecision struct {
	SourceID      uuid.UUID    `json:"sourceId"`
	DestID        *uuid.UUID   `json:"destId,omitempty"`
	Type          DecisionType `json:"type"`
	ConfirmedAt   time.Time    `json:"confirmedAt"`
	OriginalScore int          `json:"originalScore"`
}

// ConfirmedMappingsDocument is the on-disk shape of the confirmed-mappings
// store (§6).
type ConfirmedMappingsDocument struct {
	SourceFile      string              `json:"sourceFile"`
	DestinationFile string              `json:"destinationFile"`
	Mappings        []ConfirmedDecision `json:"mappings"`
}
