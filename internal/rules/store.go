// Package rules loads persona rule definitions into immutable snapshots.
// A snapshot is built once at the start of a batch run and used read-only for
// the run's lifetime, so every transaction in the run is scored against the
// same rule set.
package rules

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sukilabs/suki/internal/model"
)

// Snapshot is an immutable, validated view of the active rule set plus an
// inverted include-term index used to prune scoring.
type Snapshot struct {
	loadedAt time.Time
	byTerm   map[string][]int
	rules    []model.PersonaRule
	rejected int
}

// NewSnapshot validates and normalizes the given rules. Invalid or inactive
// rules are excluded; invalid ones are logged and counted but never abort the
// load; a single bad rule must not take down the whole batch.
func NewSnapshot(raw []model.PersonaRule) *Snapshot {
	snap := &Snapshot{
		loadedAt: time.Now(),
		byTerm:   make(map[string][]int),
	}

	seenIDs := make(map[int64]struct{}, len(raw))
	for _, rule := range raw {
		if !rule.IsActive {
			continue
		}
		if err := rule.Validate(); err != nil {
			snap.rejected++
			slog.Warn("Excluding invalid rule from run",
				"rule_id", rule.ID,
				"role", rule.RoleName,
				"error", err)
			continue
		}
		// The rule ID is the final tie-break key; a duplicate would make
		// conflict resolution depend on load order.
		if _, dup := seenIDs[rule.ID]; dup {
			snap.rejected++
			slog.Warn("Excluding rule with duplicate id from run",
				"rule_id", rule.ID,
				"role", rule.RoleName)
			continue
		}
		seenIDs[rule.ID] = struct{}{}

		rule.IncludeTerms = normalizeTerms(rule.IncludeTerms)
		rule.ExcludeTerms = normalizeTerms(rule.ExcludeTerms)
		rule.RequiredCategories = normalizeWildcardSet(rule.RequiredCategories)
		rule.AllowedGenders = normalizeWildcardSet(rule.AllowedGenders)
		snap.rules = append(snap.rules, rule)
	}

	// Deterministic evaluation order regardless of source ordering.
	sort.Slice(snap.rules, func(i, j int) bool {
		return snap.rules[i].ID < snap.rules[j].ID
	})

	for i, rule := range snap.rules {
		for _, term := range rule.IncludeTerms {
			snap.byTerm[term] = append(snap.byTerm[term], i)
		}
	}

	return snap
}

// normalizeTerms lowercases and trims terms, dropping blanks and duplicates.
func normalizeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// normalizeWildcardSet trims entries and collapses an explicit "*" entry (or
// an empty set) to nil, the wildcard representation.
func normalizeWildcardSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "*" {
			return nil
		}
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Len returns the number of active, valid rules in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.rules)
}

// RejectedCount returns how many rules failed validation at load time.
func (s *Snapshot) RejectedCount() int {
	return s.rejected
}

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Rules returns the validated rules in ascending ID order. Callers must treat
// the slice as read-only.
func (s *Snapshot) Rules() []model.PersonaRule {
	return s.rules
}

// Rule returns the rule at the given snapshot index.
func (s *Snapshot) Rule(idx int) *model.PersonaRule {
	return &s.rules[idx]
}

// CandidateRules returns the snapshot indexes of every rule with at least one
// include term present in the token set, in ascending order. Because a rule
// with zero include hits can never become a candidate, pruning through the
// inverted index produces results identical to evaluating every rule.
func (s *Snapshot) CandidateRules(tokens map[string]struct{}) []int {
	if len(tokens) == 0 {
		return nil
	}

	hit := make(map[int]struct{})
	for token := range tokens {
		for _, idx := range s.byTerm[token] {
			hit[idx] = struct{}{}
		}
	}

	out := make([]int, 0, len(hit))
	for idx := range hit {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}
