// Package domain contains the core domain types shared by both trees: persons,
// families, genealogical dates, and the vocabularies the Wave Compare Engine
// reasons over (gender, mapping provenance, validation severity/kind,
// threshold strategy).
package domain

// Gender represents the gender of a person.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// IsValid checks if the gender value is valid.
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderUnknown, "":
		return true
	default:
		return false
	}
}

// Conflicts reports whether two genders are definitely different — i.e.
// both are known and unequal. Unknown is compatible with anything (§4.7).
func (g Gender) Conflicts(other Gender) bool {
	if g == "" || other == "" || g == GenderUnknown || other == GenderUnknown {
		return false
	}
	return g != other
}

// NameType distinguishes name variants recorded for a person (birth name,
// married name, alias).
type NameType string

const (
	NameTypeBirth   NameType = "birth"
	NameTypeMarried NameType = "married"
	NameTypeAKA     NameType = "aka"
)

// IsValid checks if the name type value is valid.
func (n NameType) IsValid() bool {
	switch n {
	case NameTypeBirth, NameTypeMarried, NameTypeAKA, "":
		return true
	default:
		return false
	}
}

// RelationType tags the relation through which a PersonMapping was
// discovered during BFS (§3, §9 "polymorphism over relation"). It is the
// sum-type the design notes call for: a tagged variant rather than a class
// hierarchy.
type RelationType string

const (
	RelationAnchor  RelationType = "anchor"
	RelationSpouse  RelationType = "spouse"
	RelationParent  RelationType = "parent"
	RelationChild   RelationType = "child"
	RelationSibling RelationType = "sibling"
)

// IsValid checks if the relation type value is valid.
func (r RelationType) IsValid() bool {
	switch r {
	case RelationAnchor, RelationSpouse, RelationParent, RelationChild, RelationSibling:
		return true
	default:
		return false
	}
}

// ThresholdStrategy selects how ThresholdCalculator derives accept
// thresholds (§4.3).
type ThresholdStrategy string

const (
	StrategyFixed        ThresholdStrategy = "fixed"
	StrategyAdaptive     ThresholdStrategy = "adaptive"
	StrategyAggressive   ThresholdStrategy = "aggressive"
	StrategyConservative ThresholdStrategy = "conservative"
)

// IsValid checks if the threshold strategy value is valid.
func (s ThresholdStrategy) IsValid() bool {
	switch s {
	case StrategyFixed, StrategyAdaptive, StrategyAggressive, StrategyConservative:
		return true
	default:
		return false
	}
}

// Severity classifies how serious a ValidationIssue is (§3).
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ValidationKind identifies the specific check a ValidationIssue reports
// (§3, §4.7).
type ValidationKind string

const (
	KindInvalidSourceID     ValidationKind = "invalid_source_id"
	KindInvalidDestID       ValidationKind = "invalid_dest_id"
	KindGenderMismatch      ValidationKind = "gender_mismatch"
	KindBirthYearMismatch   ValidationKind = "birth_year_mismatch"
	KindDeathYearMismatch   ValidationKind = "death_year_mismatch"
	KindDuplicateMapping    ValidationKind = "duplicate_mapping"
	KindLowMatchScore       ValidationKind = "low_match_score"
	KindFamilyInconsistency ValidationKind = "family_inconsistency"
)

// DecisionType is the outcome of an interactive adjudication, persisted in
// the confirmed-mappings store (§6, §4.10).
type DecisionType string

const (
	DecisionConfirmed DecisionType = "confirmed"
	DecisionRejected  DecisionType = "rejected"
	DecisionSkipped   DecisionType = "skipped"
)
