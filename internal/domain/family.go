package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Family represents a family unit linking a couple and their children.
// ChildIDs is an ordered slice — birth order is significant for the
// combined-score child comparator (§4.6) and is preserved exactly as the
// tree loader supplies it.
type Family struct {
	ID            uuid.UUID   `json:"id"`
	HusbandID     *uuid.UUID  `json:"husband_id,omitempty"`
	WifeID        *uuid.UUID  `json:"wife_id,omitempty"`
	ChildIDs      []uuid.UUID `json:"child_ids,omitempty"`
	MarriageDate  *GenDate    `json:"marriage_date,omitempty"`
	MarriagePlace string      `json:"marriage_place,omitempty"`
	DivorceDate   *GenDate    `json:"divorce_date,omitempty"`
	DivorcePlace  string      `json:"divorce_place,omitempty"`
}

// FamilyValidationError represents a validation error for a Family.
type FamilyValidationError struct {
	Field   string
	Message string
}

func (e FamilyValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewFamily creates a new Family with a generated ID.
func NewFamily() *Family {
	return &Family{ID: uuid.New()}
}

// NewFamilyWithSpouses creates a new Family with the specified spouses.
func NewFamilyWithSpouses(husband, wife *uuid.UUID) *Family {
	return &Family{
		ID:        uuid.New(),
		HusbandID: husband,
		WifeID:    wife,
	}
}

// Validate checks if the family has valid data.
func (f *Family) Validate() error {
	var errs []error

	if f.HusbandID == nil && f.WifeID == nil && len(f.ChildIDs) == 0 {
		errs = append(errs, FamilyValidationError{Field: "family", Message: "at least one spouse or child must be set"})
	}

	if f.HusbandID != nil && f.WifeID != nil && *f.HusbandID == *f.WifeID {
		errs = append(errs, FamilyValidationError{Field: "wife_id", Message: "cannot be the same as husband_id"})
	}

	if f.MarriageDate != nil {
		if err := f.MarriageDate.Validate(); err != nil {
			errs = append(errs, FamilyValidationError{Field: "marriage_date", Message: err.Error()})
		}
	}
	if f.DivorceDate != nil {
		if err := f.DivorceDate.Validate(); err != nil {
			errs = append(errs, FamilyValidationError{Field: "divorce_date", Message: err.Error()})
		}
	}
	if f.MarriageDate != nil && f.DivorceDate != nil && !f.MarriageDate.IsEmpty() && !f.DivorceDate.IsEmpty() {
		if f.DivorceDate.Before(*f.MarriageDate) {
			errs = append(errs, FamilyValidationError{Field: "divorce_date", Message: "cannot be before marriage_date"})
		}
	}

	seen := make(map[uuid.UUID]bool, len(f.ChildIDs))
	for _, c := range f.ChildIDs {
		if c == uuid.Nil {
			errs = append(errs, FamilyValidationError{Field: "child_ids", Message: "child id cannot be empty"})
			continue
		}
		if seen[c] {
			errs = append(errs, FamilyValidationError{Field: "child_ids", Message: fmt.Sprintf("duplicate child id: %s", c)})
		}
		seen[c] = true
		if f.HasSpouse(c) {
			errs = append(errs, FamilyValidationError{Field: "child_ids", Message: "child cannot also be a spouse in the same family"})
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasSpouse checks if the given person ID is a spouse in this family.
func (f *Family) HasSpouse(personID uuid.UUID) bool {
	return (f.HusbandID != nil && *f.HusbandID == personID) ||
		(f.WifeID != nil && *f.WifeID == personID)
}

// SetMarriageDate sets the marriage date from a string.
func (f *Family) SetMarriageDate(dateStr string) {
	if dateStr == "" {
		f.MarriageDate = nil
		return
	}
	gd := ParseGenDate(dateStr)
	f.MarriageDate = &gd
}

// SetDivorceDate sets the divorce date from a string.
func (f *Family) SetDivorceDate(dateStr string) {
	if dateStr == "" {
		f.DivorceDate = nil
		return
	}
	gd := ParseGenDate(dateStr)
	f.DivorceDate = &gd
}

// ChildPosition returns the zero-based birth-order position of childID
// within ChildIDs, or -1 if childID is not a child of this family.
func (f *Family) ChildPosition(childID uuid.UUID) int {
	for i, c := range f.ChildIDs {
		if c == childID {
			return i
		}
	}
	return -1
}
