// Package threshold computes accept thresholds for proposed mappings
// (§4.3). It is the sole source of threshold numbers in the system; no
// other component hard-codes one.
package threshold

import "github.com/makhin/gedsync/internal/domain"

var baseByRelation = map[domain.RelationType]int{
	domain.RelationAnchor:  100,
	domain.RelationSpouse:  40,
	domain.RelationParent:  45,
	domain.RelationChild:   50,
	domain.RelationSibling: 55,
}

const defaultBase = 60

func candidateCountAdjustment(n int) int {
	switch {
	case n <= 1:
		return -5
	case n == 2:
		return 0
	case n <= 4:
		return 5
	case n <= 8:
		return 10
	default:
		return 15
	}
}

func strategyBias(s domain.ThresholdStrategy) int {
	switch s {
	case domain.StrategyAggressive:
		return -10
	case domain.StrategyConservative:
		return 15
	default:
		return 0
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Calculator computes threshold(relation, candidateCount) → int per §4.3.
type Calculator struct {
	Strategy      domain.ThresholdStrategy
	BaseThreshold int
}

// NewCalculator builds a Calculator from CompareOptions.
func NewCalculator(opts domain.CompareOptions) *Calculator {
	return &Calculator{Strategy: opts.ThresholdStrategy, BaseThreshold: opts.BaseThreshold}
}

// Threshold returns the accept threshold for a relation given how many
// candidates were under consideration.
func (c *Calculator) Threshold(relation domain.RelationType, candidateCount int) int {
	if c.Strategy == domain.StrategyFixed {
		return c.BaseThreshold
	}

	base, ok := baseByRelation[relation]
	if !ok {
		base = defaultBase
	}
	t := base + candidateCountAdjustment(candidateCount) + strategyBias(c.Strategy)
	return clamp(t, 30, 85)
}

// Spouse is a convenience wrapper fixing relation=Spouse.
func (c *Calculator) Spouse(candidateCount int) int {
	return c.Threshold(domain.RelationSpouse, candidateCount)
}

// Child is a convenience wrapper fixing relation=Child.
func (c *Calculator) Child(candidateCount int) int {
	return c.Threshold(domain.RelationChild, candidateCount)
}

// Parent is a convenience wrapper fixing relation=Parent.
func (c *Calculator) Parent(candidateCount int) int {
	return c.Threshold(domain.RelationParent, candidateCount)
}
