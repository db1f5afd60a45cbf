package scoring

import (
	"github.com/sukilabs/suki/internal/model"
	"github.com/sukilabs/suki/internal/rules"
)

// Confidence scoring constants.
const (
	basePriority1    = 0.95
	basePriority2    = 0.85
	basePriorityElse = 0.75

	// A candidate with any exclude hit gets this flat score, replacing the
	// base entirely rather than subtracting from it.
	excludeOverrideScore = 0.50

	includeBonusStep = 0.01
	includeBonusCap  = 0.04
	bulkBonus        = 0.02
)

// Engine scores one transaction's signals against a rule snapshot.
type Engine struct {
	gates []Gate
}

// NewEngine creates a scoring engine with the standard gate chain.
func NewEngine() *Engine {
	return &Engine{gates: defaultGates()}
}

// Score evaluates every active rule against the transaction and returns the
// candidates that passed all gates, in ascending rule ID order. A rule with
// zero include hits is excluded entirely, never scored at zero.
func (e *Engine) Score(txn *model.TransactionContext, sig *model.Signals, snap *rules.Snapshot) []model.Candidate {
	var candidates []model.Candidate

	for _, idx := range snap.CandidateRules(sig.Tokens) {
		rule := snap.Rule(idx)

		includeHits := countHits(sig, rule.IncludeTerms)
		if includeHits == 0 {
			continue
		}

		passed := true
		for _, gate := range e.gates {
			if !gate.Pass(rule, sig, txn) {
				passed = false
				break
			}
		}
		if !passed {
			continue
		}

		excludeHits := countHits(sig, rule.ExcludeTerms)

		candidates = append(candidates, model.Candidate{
			RuleID:      rule.ID,
			RoleName:    rule.RoleName,
			Priority:    rule.Priority,
			IncludeHits: includeHits,
			ExcludeHits: excludeHits,
			HourOK:      true,
			CategoryOK:  true,
			Confidence:  confidence(rule.Priority, includeHits, excludeHits, sig.BasketBucket),
		})
	}

	return candidates
}

// countHits counts how many terms are present in the token set.
func countHits(sig *model.Signals, terms []string) int {
	hits := 0
	for _, term := range terms {
		if sig.HasToken(term) {
			hits++
		}
	}
	return hits
}

// confidence computes the candidate score. Exclude hits override everything
// with a flat 0.50; otherwise the priority base is raised by the extra-include
// bonus (capped) and the bulk-basket bonus, clamped to [0,1].
func confidence(priority, includeHits, excludeHits int, bucket model.BasketBucket) float64 {
	if excludeHits > 0 {
		return excludeOverrideScore
	}

	var score float64
	switch priority {
	case 1:
		score = basePriority1
	case 2:
		score = basePriority2
	default:
		score = basePriorityElse
	}

	bonus := includeBonusStep * float64(includeHits-1)
	if bonus > includeBonusCap {
		bonus = includeBonusCap
	}
	score += bonus

	if bucket == model.BasketBulk {
		score += bulkBonus
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}
