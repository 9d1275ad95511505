package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Person represents an individual in either the source or the destination
// tree (§3). Forward edges (FatherID, MotherID, SpouseIDs, ChildrenIDs) are
// populated by TreeIndexer from the families the person belongs to;
// SiblingIDs is derived the same way. NormalizedLastName is precomputed so
// FuzzyMatcher and the acceleration indices never re-normalize per compare.
type Person struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"first_name,omitempty"`
	MiddleName  string    `json:"middle_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	MaidenName  string    `json:"maiden_name,omitempty"`
	Suffix      string    `json:"suffix,omitempty"`
	Nickname    string    `json:"nickname,omitempty"`
	Gender      Gender    `json:"gender,omitempty"`

	BirthDate   *GenDate `json:"birth_date,omitempty"`
	BirthPlace  string   `json:"birth_place,omitempty"`
	DeathDate   *GenDate `json:"death_date,omitempty"`
	DeathPlace  string   `json:"death_place,omitempty"`
	BurialPlace string   `json:"burial_place,omitempty"`
	Occupation  string   `json:"occupation,omitempty"`

	// PhotoFingerprints holds raw, comparator-specific fingerprints (e.g.
	// difference-hash strings) for photos attached to this person. The core
	// never decodes the underlying images; it only hands fingerprints to an
	// injected PhotoComparator (§4.11, §6, §9).
	PhotoFingerprints []string `json:"photo_fingerprints,omitempty"`

	// Forward edges, populated once by TreeIndexer (§4.1). nil means
	// "unknown", not "no parent" — genealogical data is routinely partial.
	FatherID    *uuid.UUID  `json:"father_id,omitempty"`
	MotherID    *uuid.UUID  `json:"mother_id,omitempty"`
	SpouseIDs   []uuid.UUID `json:"spouse_ids,omitempty"`
	ChildrenIDs []uuid.UUID `json:"children_ids,omitempty"`
	SiblingIDs  []uuid.UUID `json:"sibling_ids,omitempty"`

	// NormalizedLastName is precomputed (lowercased, trimmed) for the
	// surname acceleration index (§3 personsByNormalizedLastName).
	NormalizedLastName string `json:"normalized_last_name,omitempty"`
}

// PersonValidationError represents a validation error for a Person.
type PersonValidationError struct {
	Field   string
	Message string
}

func (e PersonValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewPerson creates a new Person with the given required fields and
// precomputes NormalizedLastName.
func NewPerson(firstName, lastName string) *Person {
	p := &Person{
		ID:        uuid.New(),
		FirstName: firstName,
		LastName:  lastName,
	}
	p.Renormalize()
	return p
}

// Renormalize recomputes NormalizedLastName from LastName. Callers that set
// LastName directly (e.g. a TreeLoader adapter) must call this before the
// person is indexed.
func (p *Person) Renormalize() {
	p.NormalizedLastName = NormalizeSurname(p.LastName)
}

// NormalizeSurname lowercases and trims a surname for use as an index key
// or fuzzy-comparison term.
func NormalizeSurname(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Validate checks if the person has valid data.
func (p *Person) Validate() error {
	var errs []error

	if len(p.FirstName) > 100 {
		errs = append(errs, PersonValidationError{Field: "first_name", Message: "cannot exceed 100 characters"})
	}
	if len(p.LastName) > 100 {
		errs = append(errs, PersonValidationError{Field: "last_name", Message: "cannot exceed 100 characters"})
	}

	if !p.Gender.IsValid() {
		errs = append(errs, PersonValidationError{Field: "gender", Message: fmt.Sprintf("invalid value: %s", p.Gender)})
	}

	if p.BirthDate != nil {
		if err := p.BirthDate.Validate(); err != nil {
			errs = append(errs, PersonValidationError{Field: "birth_date", Message: err.Error()})
		}
	}
	if p.DeathDate != nil {
		if err := p.DeathDate.Validate(); err != nil {
			errs = append(errs, PersonValidationError{Field: "death_date", Message: err.Error()})
		}
	}
	if p.BirthDate != nil && p.DeathDate != nil && !p.BirthDate.IsEmpty() && !p.DeathDate.IsEmpty() {
		if p.DeathDate.Before(*p.BirthDate) {
			errs = append(errs, PersonValidationError{Field: "death_date", Message: "cannot be before birth_date"})
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// FullName returns the full name of the person.
func (p *Person) FullName() string {
	parts := make([]string, 0, 3)
	if p.FirstName != "" {
		parts = append(parts, p.FirstName)
	}
	if p.MiddleName != "" {
		parts = append(parts, p.MiddleName)
	}
	if p.LastName != "" {
		parts = append(parts, p.LastName)
	}
	return strings.Join(parts, " ")
}

// HasName reports whether the person has either a first or a last name.
// HighConfidenceReportBuilder drops AddRecords for persons with neither
// (§4.11).
func (p *Person) HasName() bool {
	return p.FirstName != "" || p.LastName != ""
}

// BirthYear returns the birth year, or nil if unknown.
func (p *Person) BirthYear() *int {
	if p.BirthDate == nil {
		return nil
	}
	return p.BirthDate.Year
}

// DeathYear returns the death year, or nil if unknown.
func (p *Person) DeathYear() *int {
	if p.DeathDate == nil {
		return nil
	}
	return p.DeathDate.Year
}
