package domain

import (
	"time"

	"github.com/google/uuid"
)

// PersonMapping asserts that a source person corresponds to a destination
// person, annotated with provenance (§3, §9 "Polymorphism over relation").
type PersonMapping struct {
	SourceID          uuid.UUID    `json:"sourceId"`
	DestID            uuid.UUID    `json:"destId"`
	Score             int          `json:"score"`
	Level             int          `json:"level"`
	FoundVia          RelationType `json:"foundVia"`
	FoundInFamilyID   *uuid.UUID   `json:"foundInFamilyId,omitempty"`
	FoundFromPersonID *uuid.UUID   `json:"foundFromPersonId,omitempty"`
	FoundAt           time.Time    `json:"foundAt"`
}

// IsAnchor reports whether this mapping was seeded as an anchor (never
// rewritten by conflict resolution, §4.9).
func (m PersonMapping) IsAnchor() bool {
	return m.FoundVia == RelationAnchor
}

// MappingTable maps sourceId → PersonMapping. Anchor mappings are locked:
// callers that mutate a MappingTable directly (outside the engine and the
// conflict resolver) must preserve that invariant themselves — MappingTable
// itself is a plain map, deliberately not a guarded type, per §9 "confine
// mutation to the engine; expose read-only snapshots to the validator and
// matchers via a parameter".
type MappingTable map[uuid.UUID]PersonMapping

// Snapshot returns a shallow copy safe to hand to validators and matchers
// while the engine continues to mutate the original table.
func (t MappingTable) Snapshot() MappingTable {
	out := make(MappingTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// DestIDs returns the set of destination ids currently occupied, excluding
// nothing — anchors occupy a slot like any other mapping.
func (t MappingTable) DestIDs() map[uuid.UUID]uuid.UUID {
	out := make(map[uuid.UUID]uuid.UUID, len(t))
	for src, m := range t {
		out[m.DestID] = src
	}
	return out
}

// FindBySourceAndRelative looks up the mapping, if any, for a relative's
// source id — used by the validator's family-consistency check (§4.7.6).
func (t MappingTable) FindBySourceAndRelative(relativeID uuid.UUID) (PersonMapping, bool) {
	m, ok := t[relativeID]
	return m, ok
}
