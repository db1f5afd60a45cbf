package scoring

import (
	"strings"
	"time"

	"github.com/sukilabs/suki/internal/model"
)

// Fallback confidence when a configured fallback role is assigned to an
// otherwise unmatched transaction.
const fallbackConfidence = 0.30

// Resolver selects a single winning candidate per transaction.
type Resolver struct {
	fallbackRole string
}

// NewResolver creates a resolver. A non-empty fallbackRole is assigned to
// transactions with no winning candidate (legacy parity mode); the default
// empty value leaves them unassigned.
func NewResolver(fallbackRole string) *Resolver {
	return &Resolver{fallbackRole: strings.TrimSpace(fallbackRole)}
}

// Resolve picks the winner for one transaction. An explicit role on the
// transaction wins unconditionally and skips scoring. A nil return means no
// result: no row is written for the transaction.
func (r *Resolver) Resolve(txn *model.TransactionContext, candidates []model.Candidate, now time.Time) *model.InferenceResult {
	if txn.HasExplicitRole() {
		return &model.InferenceResult{
			TransactionID: txn.ID,
			Role:          strings.TrimSpace(txn.ExplicitRole),
			Confidence:    1.0,
			RuleSource:    model.RuleSourceExplicit,
			UpdatedAt:     now,
		}
	}

	if len(candidates) == 0 {
		if r.fallbackRole == "" {
			return nil
		}
		return &model.InferenceResult{
			TransactionID: txn.ID,
			Role:          r.fallbackRole,
			Confidence:    fallbackConfidence,
			RuleSource:    model.RuleSourceFallback,
			UpdatedAt:     now,
		}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if beats(c, best) {
			best = c
		}
	}

	return &model.InferenceResult{
		TransactionID: txn.ID,
		Role:          best.RoleName,
		Confidence:    best.Confidence,
		RuleSource:    model.RuleSourceFor(best.RuleID, best.Priority),
		UpdatedAt:     now,
	}
}

// beats reports whether a wins over b under the strict lexicographic
// ordering: fewer exclude hits, then stronger (lower) priority, then more
// include hits, then higher confidence, then lower rule ID.
func beats(a, b model.Candidate) bool {
	if a.ExcludeHits != b.ExcludeHits {
		return a.ExcludeHits < b.ExcludeHits
	}
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if a.IncludeHits != b.IncludeHits {
		return a.IncludeHits > b.IncludeHits
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return a.RuleID < b.RuleID
}
