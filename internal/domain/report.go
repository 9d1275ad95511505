package domain

import "github.com/google/uuid"

// FieldDiff is one differing field between an already-mapped source and
// destination person.
type FieldDiff struct {
	Field       string `json:"field"`
	SourceValue string `json:"sourceValue"`
	DestValue   string `json:"destValue"`
}

// UpdateRecord describes one existing high-confidence mapping whose
// destination record should be updated with source-side field values
// (§3, §4.11).
type UpdateRecord struct {
	SourceID       uuid.UUID    `json:"sourceId"`
	DestID         uuid.UUID    `json:"destId"`
	Score          int          `json:"score"`
	MatchedBy      RelationType `json:"matchedBy"`
	FieldsToUpdate []FieldDiff  `json:"fieldsToUpdate"`
}

// RelationPointer names the mapped relative an AddRecord is anchored to.
type RelationPointer struct {
	RelatedSourceID uuid.UUID    `json:"relatedToNodeId"`
	RelationType    RelationType `json:"relationType"`
}

// AddRecord describes an unmatched source person that should be created in
// the destination tree, anchored to an already-mapped relative (§3, §4.11).
type AddRecord struct {
	Person              Person            `json:"person"`
	PrimaryRelation     RelationPointer   `json:"primaryRelation"`
	AdditionalRelations []RelationPointer `json:"additionalRelations,omitempty"`
	SourceFamilyID      *uuid.UUID        `json:"sourceFamilyId,omitempty"`
	DepthFromExisting   int               `json:"depthFromExisting"`
}

// HighConfidenceReport is the engine's final, actionable diff (§3, §4.11).
type HighConfidenceReport struct {
	NodesToUpdate []UpdateRecord `json:"nodesToUpdate"`
	NodesToAdd    []AddRecord    `json:"nodesToAdd"`
}
