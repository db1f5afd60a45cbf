package model

import (
	"fmt"
	"time"
)

// Rule source labels for results not produced by scoring.
const (
	RuleSourceExplicit = "explicit"
	RuleSourceFallback = "fallback"
)

// RuleSourceFor formats the rule_source label for a result produced by a
// scored rule win.
func RuleSourceFor(ruleID int64, priority int) string {
	return fmt.Sprintf("rule:%d/p%d", ruleID, priority)
}

// InferenceResult is the persisted outcome of persona inference for one
// transaction. At most one row exists per transaction ID; re-running
// inference overwrites, never duplicates.
type InferenceResult struct {
	UpdatedAt     time.Time
	TransactionID string
	Role          string
	RuleSource    string
	Confidence    float64
}
