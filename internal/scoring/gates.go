// Package scoring evaluates transaction signals against persona rules and
// resolves competing matches into a single result.
package scoring

import (
	"strings"

	"github.com/sukilabs/suki/internal/model"
)

// Gate is one boolean precondition a rule must satisfy to become a candidate.
// Gates are pure predicates over (rule, signals, transaction); new gate types
// slot in here without touching the resolver.
type Gate interface {
	Name() string
	Pass(rule *model.PersonaRule, sig *model.Signals, txn *model.TransactionContext) bool
}

// temporalGate checks the rule's active hours against the transaction hour.
// An empty hour set is wildcard; ranges with lo > hi wrap across midnight.
type temporalGate struct{}

func (temporalGate) Name() string { return "temporal" }

func (temporalGate) Pass(rule *model.PersonaRule, sig *model.Signals, _ *model.TransactionContext) bool {
	if len(rule.ActiveHours) == 0 {
		return true
	}
	for _, hr := range rule.ActiveHours {
		if hr.Contains(sig.HourOfDay) {
			return true
		}
	}
	return false
}

// categoryGate checks the derived category group against the rule's required
// set. An empty set is wildcard.
type categoryGate struct{}

func (categoryGate) Name() string { return "category" }

func (categoryGate) Pass(rule *model.PersonaRule, sig *model.Signals, _ *model.TransactionContext) bool {
	if len(rule.RequiredCategories) == 0 {
		return true
	}
	for _, cat := range rule.RequiredCategories {
		if strings.EqualFold(cat, sig.CategoryGroup) {
			return true
		}
	}
	return false
}

// demographicGate checks age and gender constraints. A constrained rule fails
// closed when the transaction is missing the field.
type demographicGate struct{}

func (demographicGate) Name() string { return "demographic" }

func (demographicGate) Pass(rule *model.PersonaRule, _ *model.Signals, txn *model.TransactionContext) bool {
	if rule.MinAge != nil || rule.MaxAge != nil {
		if txn.Age == nil {
			return false
		}
		if rule.MinAge != nil && *txn.Age < *rule.MinAge {
			return false
		}
		if rule.MaxAge != nil && *txn.Age > *rule.MaxAge {
			return false
		}
	}

	if len(rule.AllowedGenders) > 0 {
		if txn.Gender == "" {
			return false
		}
		allowed := false
		for _, g := range rule.AllowedGenders {
			if strings.EqualFold(g, txn.Gender) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	return true
}

// basketGate checks the minimum basket size constraint.
type basketGate struct{}

func (basketGate) Name() string { return "basket" }

func (basketGate) Pass(rule *model.PersonaRule, _ *model.Signals, txn *model.TransactionContext) bool {
	if rule.MinBasketItems == nil {
		return true
	}
	return txn.ItemCount >= *rule.MinBasketItems
}

// defaultGates returns the standard gate chain. The text gate is not here:
// include/exclude hit counting feeds the confidence computation, so the
// engine evaluates it inline.
func defaultGates() []Gate {
	return []Gate{temporalGate{}, categoryGate{}, demographicGate{}, basketGate{}}
}
