// Package gedcomload adapts github.com/cacack/gedcom-go into the domain
// model this system compares (§4.1 "TreeLoader"). Parsing the GEDCOM wire
// format itself is out of scope (§1 non-goal); this package only maps an
// already-decoded gedcom.Document onto []*domain.Person / []*domain.Family
// and hands the result to treeindex.Build.
package gedcomload

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/cacack/gedcom-go/decoder"
	"github.com/cacack/gedcom-go/gedcom"

	"github.com/makhin/gedsync/internal/domain"
	"github.com/makhin/gedsync/internal/treeindex"
)

// LoadedTree is the result of loading one genealogical file: an indexed
// graph ready for TreeIndexer's consumers, plus anything the decode step
// flagged along the way.
type LoadedTree struct {
	Graph     *treeindex.TreeGraph
	XRefByID  map[uuid.UUID]string
	IDByXRef  map[string]uuid.UUID
	SkippedFamilyIssues []string
}

// Loader reads a GEDCOM file and builds a LoadedTree. It is a thin
// translation layer: gedcom-go owns every parsing decision, this package
// only owns the field mapping onto domain.Person/domain.Family.
type Loader struct{}

// New constructs a Loader.
func New() *Loader {
	return &Loader{}
}

// Load decodes r as a GEDCOM document and builds the indexed tree graph.
func (l *Loader) Load(r io.Reader) (*LoadedTree, error) {
	doc, err := decoder.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode gedcom: %w", err)
	}
	return buildTree(doc), nil
}

// buildTree maps an already-decoded gedcom.Document onto a LoadedTree. Split
// out from Load so tests can exercise the mapping against a Document built
// directly from gedcom-go types, without needing real GEDCOM file bytes.
func buildTree(doc *gedcom.Document) *LoadedTree {
	idByXRef := make(map[string]uuid.UUID, len(doc.Individuals()))
	for _, ind := range doc.Individuals() {
		idByXRef[ind.XRef] = uuid.New()
	}

	persons := make([]*domain.Person, 0, len(idByXRef))
	xrefByID := make(map[uuid.UUID]string, len(idByXRef))
	for _, ind := range doc.Individuals() {
		p := mapIndividual(ind, idByXRef[ind.XRef])
		persons = append(persons, p)
		xrefByID[p.ID] = ind.XRef
	}

	families := make([]*domain.Family, 0, len(doc.Families()))
	for _, fam := range doc.Families() {
		families = append(families, mapFamily(fam, idByXRef))
	}

	graph := treeindex.Build(persons, families)

	return &LoadedTree{
		Graph:               graph,
		XRefByID:            xrefByID,
		IDByXRef:            idByXRef,
		SkippedFamilyIssues: graph.SkippedFamilyIssues,
	}
}

// mapIndividual translates a gedcom.Individual into a domain.Person. Only
// the fields the comparison engine actually reasons over are carried
// across (§3); everything else in the GEDCOM object graph (sources,
// notes, media, LDS ordinances) has no counterpart here.
func mapIndividual(ind *gedcom.Individual, id uuid.UUID) *domain.Person {
	p := &domain.Person{ID: id}

	if len(ind.Names) > 0 {
		name := ind.Names[0]
		p.FirstName = name.Given
		p.LastName = name.Surname
		if p.FirstName == "" && p.LastName == "" && name.Full != "" {
			p.FirstName, p.LastName = splitFullName(name.Full)
		}
	}

	p.Gender = mapSex(ind.Sex)

	for _, ev := range ind.Events {
		switch ev.Type {
		case gedcom.EventBirth:
			d := eventGenDate(ev)
			p.BirthDate = &d
			p.BirthPlace = ev.Place
		case gedcom.EventDeath:
			d := eventGenDate(ev)
			p.DeathDate = &d
			p.DeathPlace = ev.Place
		case "BURI":
			p.BurialPlace = ev.Place
		}
	}

	p.Renormalize()
	return p
}

// eventGenDate prefers the library's own parsed date over re-parsing the
// raw string; ParsedDate is nil for events gedcom-go could not parse, so
// this falls back to domain.ParseGenDate on the raw Date string.
func eventGenDate(ev *gedcom.Event) domain.GenDate {
	if ev.ParsedDate != nil {
		gd := domain.GenDate{Raw: ev.ParsedDate.Original}
		if ev.ParsedDate.Year != 0 {
			y := ev.ParsedDate.Year
			gd.Year = &y
		}
		if ev.ParsedDate.Month != 0 {
			m := ev.ParsedDate.Month
			gd.Month = &m
		}
		if ev.ParsedDate.Day != 0 {
			d := ev.ParsedDate.Day
			gd.Day = &d
		}
		if gd.Raw == "" {
			gd.Raw = domain.ParseGenDate(ev.Date).Raw
		}
		return gd
	}
	return domain.ParseGenDate(ev.Date)
}

func mapSex(sex string) domain.Gender {
	switch sex {
	case "M":
		return domain.GenderMale
	case "F":
		return domain.GenderFemale
	default:
		return domain.GenderUnknown
	}
}

// splitFullName falls back to a GEDCOM "Given /Surname/" style Full value
// when a library version populates only Full and not Given/Surname.
func splitFullName(full string) (given, surname string) {
	start, end := -1, -1
	for i, r := range full {
		if r == '/' {
			if start == -1 {
				start = i
			} else {
				end = i
				break
			}
		}
	}
	if start == -1 {
		return trimSpace(full), ""
	}
	given = trimSpace(full[:start])
	if end != -1 {
		surname = trimSpace(full[start+1 : end])
	}
	return given, surname
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] == ' ' {
		start++
	}
	for end > start && s[end-1] == ' ' {
		end--
	}
	return s[start:end]
}

// mapFamily translates a gedcom.Family into a domain.Family. Husband/Wife/
// Children are gedcom-go xrefs; idByXRef resolves them to the uuids
// assigned to the matching individuals. A child or spouse xref with no
// matching individual is dropped rather than failing the whole family —
// treeindex.Build separately drops families referencing ids that were
// never assigned at all.
func mapFamily(fam *gedcom.Family, idByXRef map[string]uuid.UUID) *domain.Family {
	f := &domain.Family{ID: uuid.New()}

	if fam.Husband != "" {
		if id, ok := idByXRef[fam.Husband]; ok {
			f.HusbandID = &id
		}
	}
	if fam.Wife != "" {
		if id, ok := idByXRef[fam.Wife]; ok {
			f.WifeID = &id
		}
	}
	for _, childXRef := range fam.Children {
		if id, ok := idByXRef[childXRef]; ok {
			f.ChildIDs = append(f.ChildIDs, id)
		}
	}

	for _, ev := range fam.Events {
		switch ev.Type {
		case gedcom.EventMarriage:
			d := eventGenDate(ev)
			f.MarriageDate = &d
			f.MarriagePlace = ev.Place
		case "DIV":
			d := eventGenDate(ev)
			f.DivorceDate = &d
			f.DivorcePlace = ev.Place
		}
	}

	return f
}
