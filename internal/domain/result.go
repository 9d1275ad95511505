package domain

import "github.com/google/uuid"

// LevelStats captures one BFS level's progress for the detailed log (§4.8,
// §6).
type LevelStats struct {
	Level            int   `json:"level"`
	PersonsProcessed int   `json:"personsProcessed"`
	FamiliesExamined int   `json:"familiesExamined"`
	NewMappings      int   `json:"newMappings"`
	ElapsedMillis    int64 `json:"elapsedMillis"`
}

// CompareResult is the engine's full output (§3, §6).
type CompareResult struct {
	AnchorSourceID     uuid.UUID         `json:"anchorSourceId"`
	AnchorDestID       uuid.UUID         `json:"anchorDestId"`
	Options            CompareOptions    `json:"options"`
	Mappings           MappingTable      `json:"mappings"`
	UnmatchedSourceIDs []uuid.UUID       `json:"unmatchedSourceIds"`
	UnmatchedDestIDs   []uuid.UUID       `json:"unmatchedDestinationIds"`
	ValidationIssues   []ValidationIssue `json:"validationIssues"`
	LevelStats         []LevelStats      `json:"levelStats"`
	Interrupted        bool              `json:"interrupted"`
}

// TotalMappings returns the number of persons mapped, including the anchor.
func (r CompareResult) TotalMappings() int {
	return len(r.Mappings)
}
