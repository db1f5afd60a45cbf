package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sukilabs/suki/internal/model"
)

// histogramBuckets are the confidence histogram bounds: [0,0.2) [0.2,0.4)
// [0.4,0.6) [0.6,0.8) [0.8,1.0].
var histogramBuckets = [5]string{"0.0-0.2", "0.2-0.4", "0.4-0.6", "0.6-0.8", "0.8-1.0"}

// RunReport summarizes one recompute run.
type RunReport struct {
	PerRole       map[string]int
	Duration      time.Duration
	Histogram     [5]int
	Total         int
	Resolved      int
	Unresolved    int
	Errors        int
	RulesActive   int
	RulesRejected int
	DryRun        bool
}

func newRunReport(dryRun bool) *RunReport {
	return &RunReport{
		PerRole: make(map[string]int),
		DryRun:  dryRun,
	}
}

// observe folds one transaction outcome into the report. A nil result is an
// unresolved transaction; that is not an error, just uncovered.
func (r *RunReport) observe(res *model.InferenceResult) {
	if res == nil {
		r.Unresolved++
		return
	}

	r.Resolved++
	r.PerRole[res.Role]++

	bucket := int(res.Confidence / 0.2)
	if bucket > 4 {
		bucket = 4
	}
	r.Histogram[bucket]++
}

// Coverage returns the fraction of in-scope transactions that resolved.
func (r *RunReport) Coverage() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Resolved) / float64(r.Total)
}

// Render formats the report as plain text lines for terminal display.
func (r *RunReport) Render() string {
	var b strings.Builder

	mode := "recompute"
	if r.DryRun {
		mode = "dry-run (nothing written)"
	}
	fmt.Fprintf(&b, "Mode: %s\n", mode)
	fmt.Fprintf(&b, "Rules: %d active, %d rejected\n", r.RulesActive, r.RulesRejected)
	fmt.Fprintf(&b, "Transactions: %d\n", r.Total)
	fmt.Fprintf(&b, "Resolved: %d (%.1f%% coverage)\n", r.Resolved, r.Coverage()*100)
	fmt.Fprintf(&b, "Unresolved: %d\n", r.Unresolved)
	fmt.Fprintf(&b, "Errors: %d\n", r.Errors)
	fmt.Fprintf(&b, "Duration: %s\n", r.Duration.Round(time.Millisecond))

	if len(r.PerRole) > 0 {
		b.WriteString("\nPer-role counts:\n")
		roles := make([]string, 0, len(r.PerRole))
		for role := range r.PerRole {
			roles = append(roles, role)
		}
		sort.Strings(roles)
		for _, role := range roles {
			fmt.Fprintf(&b, "  %-24s %d\n", role, r.PerRole[role])
		}
	}

	if r.Resolved > 0 {
		b.WriteString("\nConfidence distribution:\n")
		for i, label := range histogramBuckets {
			fmt.Fprintf(&b, "  %s  %d\n", label, r.Histogram[i])
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
