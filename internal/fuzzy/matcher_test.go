package fuzzy

import (
	"testing"

	"github.com/makhin/gedsync/internal/domain"
)

func personWithBirth(first, last string, year int, gender domain.Gender) *domain.Person {
	p := domain.NewPerson(first, last)
	p.Gender = gender
	bd := domain.ParseGenDate(itoa(year))
	p.BirthDate = &bd
	return p
}

func itoa(i int) string {
	// avoid pulling in strconv just for one int-to-string conversion
	digits := []byte{}
	if i == 0 {
		return "0"
	}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

func TestMatcher_Compare_ExactMatch(t *testing.T) {
	a := personWithBirth("John", "Smith", 1850, domain.GenderMale)
	b := personWithBirth("John", "Smith", 1850, domain.GenderMale)

	m := NewMatcher()
	r := m.Compare(a, b)
	if r.Score != 100 {
		t.Errorf("identical persons Score = %d, want 100", r.Score)
	}
}

func TestMatcher_Compare_SoundexSurname(t *testing.T) {
	a := personWithBirth("John", "Smith", 1850, domain.GenderMale)
	b := personWithBirth("John", "Smyth", 1850, domain.GenderMale)

	m := NewMatcher()
	r := m.Compare(a, b)
	if r.Score < 80 {
		t.Errorf("Smith/Smyth (soundex match) Score = %d, want a high score", r.Score)
	}
}

func TestMatcher_Compare_GenderConflictPenalizes(t *testing.T) {
	a := personWithBirth("John", "Smith", 1850, domain.GenderMale)
	b := personWithBirth("John", "Smith", 1850, domain.GenderFemale)

	m := NewMatcher()
	r := m.Compare(a, b)
	if r.Score >= 100 {
		t.Errorf("gender-conflicting persons Score = %d, want it penalized below 100", r.Score)
	}
}

func TestMatcher_FindMatches_FiltersByMinScoreAndSortsDescending(t *testing.T) {
	target := personWithBirth("John", "Smith", 1850, domain.GenderMale)
	good := personWithBirth("John", "Smith", 1850, domain.GenderMale)
	poor := personWithBirth("Xavier", "Zorblat", 1700, domain.GenderFemale)

	m := NewMatcher()
	matches := m.FindMatches(target, []*domain.Person{poor, good}, 50)

	if len(matches) != 1 || matches[0].Person.ID != good.ID {
		t.Fatalf("expected only the good match, got %+v", matches)
	}
}

func TestMatcher_FindMatches_ExcludesSelf(t *testing.T) {
	target := personWithBirth("John", "Smith", 1850, domain.GenderMale)
	m := NewMatcher()
	matches := m.FindMatches(target, []*domain.Person{target}, 0)
	if len(matches) != 0 {
		t.Errorf("expected self to be excluded, got %d matches", len(matches))
	}
}
