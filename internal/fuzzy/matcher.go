// Package fuzzy provides the default, deterministic FuzzyMatcher
// implementation the engine drives BFS with (§4.4). The contract itself is
// an external collaborator per the spec; this package supplies a concrete,
// side-effect-free reference implementation blending exact comparison,
// Soundex, and Levenshtein edit distance.
package fuzzy

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/makhin/gedsync/internal/domain"
)

// Reason is one scored field comparison contributing to a match's total
// score (§4.4).
type Reason struct {
	Field   string
	Points  int
	Details string
}

// Result is the outcome of comparing two persons.
type Result struct {
	Score   int
	Reasons []Reason
}

// Candidate pairs a destination person with its score and reasons, as
// returned by FindMatches.
type Candidate struct {
	Person  *domain.Person
	Score   int
	Reasons []Reason
}

// Matcher is the default FuzzyMatcher: deterministic, side-effect-free,
// symmetric up to rounding (§4.4).
type Matcher struct{}

// NewMatcher constructs the default Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Compare scores two persons 0..100 across first name, last name, maiden
// name, birth date, birth place, and gender.
func (m *Matcher) Compare(a, b *domain.Person) Result {
	var reasons []Reason
	total := 0

	if pts, details := nameScore(a.FirstName, b.FirstName, 25); pts > 0 {
		reasons = append(reasons, Reason{Field: "FirstName", Points: pts, Details: details})
		total += pts
	}
	if pts, details := surnameScore(a, b, 20); pts > 0 {
		reasons = append(reasons, Reason{Field: "LastName", Points: pts, Details: details})
		total += pts
	}
	if a.MaidenName != "" || b.MaidenName != "" {
		if pts, details := nameScore(a.MaidenName, b.MaidenName, 10); pts > 0 {
			reasons = append(reasons, Reason{Field: "MaidenName", Points: pts, Details: details})
			total += pts
		}
	}
	if pts, details := dateScore(a.BirthDate, b.BirthDate, 15); pts > 0 {
		reasons = append(reasons, Reason{Field: "BirthDate", Points: pts, Details: details})
		total += pts
	}
	if pts, details := placeScore(a.BirthPlace, b.BirthPlace, 10); pts > 0 {
		reasons = append(reasons, Reason{Field: "BirthPlace", Points: pts, Details: details})
		total += pts
	}
	if pts, details := genderScore(a.Gender, b.Gender, 5); pts != 0 {
		reasons = append(reasons, Reason{Field: "Gender", Points: pts, Details: details})
		total += pts
	}

	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return Result{Score: total, Reasons: reasons}
}

// FindMatches scores candidates against person, returning those at or
// above minScore sorted by descending score (§4.4).
func (m *Matcher) FindMatches(person *domain.Person, candidates []*domain.Person, minScore int) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == person.ID {
			continue
		}
		r := m.Compare(person, c)
		if r.Score >= minScore {
			out = append(out, Candidate{Person: c, Score: r.Score, Reasons: r.Reasons})
		}
	}
	sortCandidatesDesc(out)
	return out
}

func sortCandidatesDesc(cands []Candidate) {
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0 && cands[j].Score > cands[j-1].Score; j-- {
			cands[j], cands[j-1] = cands[j-1], cands[j]
		}
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// similarity returns 0..1: 1 for an exact normalized match, a Soundex-aware
// blend of edit-distance proximity otherwise.
func similarity(a, b string) float64 {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	dist := levenshtein.ComputeDistance(na, nb)
	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}
	editSim := 1 - float64(dist)/float64(maxLen)
	if editSim < 0 {
		editSim = 0
	}

	if SoundexMatch(a, b) {
		// Phonetic agreement raises the floor: two names that sound the
		// same but spell differently (e.g. Smith/Smyth) should not be
		// scored as if they were unrelated strings.
		if editSim < 0.6 {
			editSim = 0.6
		}
	}
	return editSim
}

func nameScore(a, b string, weight int) (int, string) {
	sim := similarity(a, b)
	if sim <= 0 {
		return 0, ""
	}
	pts := int(sim*float64(weight) + 0.5)
	return pts, "edit-distance/soundex blend"
}

func surnameScore(a, b *domain.Person, weight int) (int, string) {
	sim := similarity(a.LastName, b.LastName)

	// A maiden-name cross-match (one side's last name equals the other's
	// recorded maiden name) covers a married daughter recorded under her
	// birth surname on one tree and her married name on the other.
	if crossSim := similarity(a.LastName, b.MaidenName); crossSim > sim {
		sim = crossSim
	}
	if crossSim := similarity(a.MaidenName, b.LastName); crossSim > sim {
		sim = crossSim
	}

	if sim <= 0 {
		return 0, ""
	}
	return int(sim*float64(weight) + 0.5), "edit-distance/soundex blend, maiden-name cross-check"
}

func dateScore(a, b *domain.GenDate, weight int) (int, string) {
	if a == nil || b == nil || a.IsEmpty() || b.IsEmpty() {
		return 0, ""
	}
	if a.Year == nil || b.Year == nil {
		return 0, ""
	}
	diff := *a.Year - *b.Year
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff == 0:
		return weight, "exact year match"
	case diff <= 1:
		return int(float64(weight) * 0.7), "within 1 year"
	case diff <= 3:
		return int(float64(weight) * 0.4), "within 3 years"
	default:
		return 0, ""
	}
}

func placeScore(a, b string, weight int) (int, string) {
	sim := similarity(a, b)
	if sim <= 0 {
		return 0, ""
	}
	return int(sim*float64(weight) + 0.5), "place string similarity"
}

func genderScore(a, b domain.Gender, weight int) (int, string) {
	if a == "" || b == "" || a == domain.GenderUnknown || b == domain.GenderUnknown {
		return 0, ""
	}
	if a == b {
		return weight, "gender agrees"
	}
	return -weight * 4, "gender conflicts"
}
