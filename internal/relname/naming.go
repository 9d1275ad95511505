package relname

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/treeindex"
)

// maxAncestorGenerations bounds the ancestor walk to guard against
// malformed trees with a parent cycle.
const maxAncestorGenerations = 15

// ancestorInfo records how far back an ancestor sits and the path used to
// reach it, for building a human-readable relationship name.
type ancestorInfo struct {
	generation int
	path       []uuid.UUID
}

// Path describes one line of descent from a person to a common ancestor.
type Path struct {
	Name                string
	PathFromA           []uuid.UUID
	PathFromB           []uuid.UUID
	CommonAncestor      uuid.UUID
	GenerationDistanceA int
	GenerationDistanceB int
}

// Describe names every relationship path between a and b in g, same-person
// and direct-line cases included. Returns no paths if the two persons share
// no ancestor within maxAncestorGenerations.
func Describe(g *treeindex.TreeGraph, a, b uuid.UUID) []Path {
	if a == b {
		return []Path{{Name: "self", PathFromA: []uuid.UUID{a}, PathFromB: []uuid.UUID{b}}}
	}

	ancestorsA := buildAncestorMap(g, a)
	ancestorsB := buildAncestorMap(g, b)

	var paths []Path

	if info, ok := ancestorsB[a]; ok {
		paths = append(paths, Path{
			Name: name(0, info.generation), PathFromA: []uuid.UUID{a}, PathFromB: info.path,
			CommonAncestor: a, GenerationDistanceA: 0, GenerationDistanceB: info.generation,
		})
	}
	if info, ok := ancestorsA[b]; ok {
		paths = append(paths, Path{
			Name: name(info.generation, 0), PathFromA: info.path, PathFromB: []uuid.UUID{b},
			CommonAncestor: b, GenerationDistanceA: info.generation, GenerationDistanceB: 0,
		})
	}

	for _, ca := range lowestCommonAncestors(ancestorsA, ancestorsB) {
		infoA := ancestorsA[ca]
		infoB := ancestorsB[ca]
		paths = append(paths, Path{
			Name: name(infoA.generation, infoB.generation), PathFromA: infoA.path, PathFromB: infoB.path,
			CommonAncestor: ca, GenerationDistanceA: infoA.generation, GenerationDistanceB: infoB.generation,
		})
	}

	return paths
}

// Summarize collapses Describe's output to one label, joining distinct
// names when more than one path exists (e.g. double cousins).
func Summarize(paths []Path) string {
	if len(paths) == 0 {
		return "not related"
	}
	if len(paths) == 1 {
		return paths[0].Name
	}
	seen := make(map[string]bool)
	var names []string
	for _, p := range paths {
		if !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	}
	if len(names) == 1 {
		return fmt.Sprintf("%s (via %d paths)", names[0], len(paths))
	}
	return strings.Join(names, "; ")
}

func buildAncestorMap(g *treeindex.TreeGraph, id uuid.UUID) map[uuid.UUID]ancestorInfo {
	ancestors := make(map[uuid.UUID]ancestorInfo)
	visited := make(map[uuid.UUID]bool)
	collectAncestors(g, id, 0, []uuid.UUID{id}, visited, ancestors)
	return ancestors
}

func collectAncestors(g *treeindex.TreeGraph, id uuid.UUID, generation int, path []uuid.UUID, visited map[uuid.UUID]bool, ancestors map[uuid.UUID]ancestorInfo) {
	if generation >= maxAncestorGenerations || visited[id] {
		return
	}
	visited[id] = true

	p, ok := g.Persons[id]
	if !ok {
		return
	}

	walk := func(parentID *uuid.UUID) {
		if parentID == nil {
			return
		}
		parentPath := append(append([]uuid.UUID{}, path...), *parentID)
		if existing, ok := ancestors[*parentID]; !ok || generation+1 < existing.generation {
			ancestors[*parentID] = ancestorInfo{generation: generation + 1, path: parentPath}
		}
		collectAncestors(g, *parentID, generation+1, parentPath, visited, ancestors)
	}
	walk(p.FatherID)
	walk(p.MotherID)
}

// lowestCommonAncestors returns, in deterministic order, the common
// ancestors of ancestorsA/ancestorsB that are not themselves ancestors of
// another common ancestor.
func lowestCommonAncestors(ancestorsA, ancestorsB map[uuid.UUID]ancestorInfo) []uuid.UUID {
	var common []uuid.UUID
	for id := range ancestorsA {
		if _, ok := ancestorsB[id]; ok {
			common = append(common, id)
		}
	}
	sortByTotalGeneration(common, ancestorsA, ancestorsB)

	if len(common) <= 1 {
		return common
	}

	var lowest []uuid.UUID
	for _, id := range common {
		infoA, infoB := ancestorsA[id], ancestorsB[id]
		isLowest := true
		for _, other := range common {
			if other == id {
				continue
			}
			otherA, otherB := ancestorsA[other], ancestorsB[other]
			if otherA.generation < infoA.generation && otherB.generation < infoB.generation {
				isLowest = false
				break
			}
		}
		if isLowest {
			lowest = append(lowest, id)
		}
	}
	return lowest
}

func sortByTotalGeneration(ids []uuid.UUID, ancestorsA, ancestorsB map[uuid.UUID]ancestorInfo) {
	total := func(id uuid.UUID) int { return ancestorsA[id].generation + ancestorsB[id].generation }
	for i := 0; i < len(ids)-1; i++ {
		for j := i + 1; j < len(ids); j++ {
			if total(ids[j]) < total(ids[i]) {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
}

// name renders the human-readable relationship name for generation
// distances genA (person A to common ancestor) and genB (person B to
// common ancestor) — adapted verbatim from the teacher's cousin/removed
// arithmetic.
func name(genA, genB int) string {
	if genA == 0 && genB == 0 {
		return "self"
	}
	if genA == 0 {
		return descendantName(genB)
	}
	if genB == 0 {
		return ancestorName(genA)
	}
	if genA == 1 && genB == 1 {
		return "sibling"
	}
	if genA == 2 && genB == 1 {
		return "uncle/aunt"
	}
	if genA == 1 && genB == 2 {
		return "nephew/niece"
	}
	if genB == 1 && genA > 2 {
		return greatPrefix(genA-3) + "grand-uncle/aunt"
	}
	if genA == 1 && genB > 2 {
		return greatPrefix(genB-3) + "grand-nephew/niece"
	}

	minGen := genA
	if genB < minGen {
		minGen = genB
	}
	degree := minGen - 1
	removed := genA - genB
	if removed < 0 {
		removed = -removed
	}
	return cousinName(degree, removed)
}

func ancestorName(gen int) string {
	switch gen {
	case 1:
		return "parent"
	case 2:
		return "grandparent"
	default:
		return greatPrefix(gen-2) + "grandparent"
	}
}

func descendantName(gen int) string {
	switch gen {
	case 1:
		return "child"
	case 2:
		return "grandchild"
	default:
		return greatPrefix(gen-2) + "grandchild"
	}
}

func greatPrefix(count int) string {
	switch {
	case count <= 0:
		return ""
	case count == 1:
		return "great-"
	case count == 2:
		return "great-great-"
	default:
		return fmt.Sprintf("%s great-", ordinal(count))
	}
}

func cousinName(degree, removed int) string {
	if degree <= 0 {
		return "related"
	}
	ord := ordinal(degree)
	if removed == 0 {
		return ord + " cousin"
	}
	removedStr := "once"
	switch {
	case removed == 2:
		removedStr = "twice"
	case removed == 3:
		removedStr = "thrice"
	case removed > 3:
		removedStr = fmt.Sprintf("%d times", removed)
	}
	return fmt.Sprintf("%s cousin %s removed", ord, removedStr)
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 10 {
	case 1:
		if n%100 != 11 {
			suffix = "st"
		}
	case 2:
		if n%100 != 12 {
			suffix = "nd"
		}
	case 3:
		if n%100 != 13 {
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
