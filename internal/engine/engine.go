// Package engine orchestrates batch persona inference runs: it loads an
// immutable rule snapshot, fans transaction scoring out over a worker pool,
// and flushes winning results to the cache through idempotent upserts.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sukilabs/suki/internal/common"
	"github.com/sukilabs/suki/internal/model"
	"github.com/sukilabs/suki/internal/rules"
	"github.com/sukilabs/suki/internal/scoring"
	"github.com/sukilabs/suki/internal/service"
	"github.com/sukilabs/suki/internal/signal"
)

// InferenceEngine runs persona inference over a scope of transactions.
type InferenceEngine struct {
	storage service.Storage
	scorer  *scoring.Engine
	config  Config
}

// Config holds configuration options for the inference engine.
type Config struct {
	// FallbackRole, when non-empty, is assigned to transactions no rule
	// matches. The default leaves them unassigned.
	FallbackRole string
	Workers      int
	// FlushBatchSize bounds how many results are written between
	// cancellation checks.
	FlushBatchSize int
	// Retry governs result writes; zero values use WithRetry defaults.
	Retry service.RetryOptions
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Workers:        4,
		FlushBatchSize: 250,
	}
}

// New creates an inference engine with the default configuration.
func New(storage service.Storage) *InferenceEngine {
	return NewWithConfig(storage, DefaultConfig())
}

// NewWithConfig creates an inference engine with custom configuration.
func NewWithConfig(storage service.Storage, config Config) *InferenceEngine {
	if config.Workers <= 0 {
		config.Workers = DefaultConfig().Workers
	}
	if config.FlushBatchSize <= 0 {
		config.FlushBatchSize = DefaultConfig().FlushBatchSize
	}
	return &InferenceEngine{
		storage: storage,
		scorer:  scoring.NewEngine(),
		config:  config,
	}
}

// RecomputeOptions control a single run.
type RecomputeOptions struct {
	// Progress, when set, is called after each scored transaction.
	Progress func(done int)
	Scope    service.Scope
	// DryRun computes the full report without writing any results.
	DryRun bool
}

// Recompute evaluates every transaction in scope against the current rule
// snapshot and upserts the winners. Evaluation is a pure function of
// (transaction, snapshot), so re-running over unchanged inputs produces
// identical result values for every row.
func (e *InferenceEngine) Recompute(ctx context.Context, opts RecomputeOptions) (*RunReport, error) {
	started := time.Now()

	// The snapshot is loaded once, before any transaction is scored; rule
	// edits during the run cannot leak in.
	ruleRows, err := e.storage.GetActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSourceUnavailable, err)
	}
	snap := rules.NewSnapshot(ruleRows)

	slog.Info("Loaded rule snapshot",
		"active_rules", snap.Len(),
		"rejected_rules", snap.RejectedCount())

	txns, err := e.storage.GetTransactions(ctx, opts.Scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSourceUnavailable, err)
	}

	report := newRunReport(opts.DryRun)
	report.Total = len(txns)
	report.RulesActive = snap.Len()
	report.RulesRejected = snap.RejectedCount()

	if len(txns) == 0 {
		slog.Info("No transactions in scope")
		report.Duration = time.Since(started)
		return report, nil
	}

	slog.Info("Starting inference run",
		"transactions", len(txns),
		"workers", e.config.Workers,
		"dry_run", opts.DryRun)

	results := e.scoreAll(ctx, txns, snap, opts.Progress)

	for _, res := range results {
		report.observe(res)
	}

	if !opts.DryRun {
		if err := e.flush(ctx, results, report); err != nil {
			return nil, err
		}
	}

	report.Duration = time.Since(started)
	slog.Info("Inference run complete",
		"total", report.Total,
		"resolved", report.Resolved,
		"unresolved", report.Unresolved,
		"errors", report.Errors,
		"duration", report.Duration)

	return report, nil
}

// scoreAll evaluates all transactions concurrently. Scoring shares only the
// read-only snapshot, so workers need no locking; results land at their
// transaction's index to keep output ordering deterministic.
func (e *InferenceEngine) scoreAll(ctx context.Context, txns []model.TransactionContext, snap *rules.Snapshot, progress func(done int)) []*model.InferenceResult {
	resolver := scoring.NewResolver(e.config.FallbackRole)
	resolvedAt := time.Now()

	results := make([]*model.InferenceResult, len(txns))
	var done int
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	for i := range txns {
		g.Go(func() error {
			txn := &txns[i]

			var candidates []model.Candidate
			if !txn.HasExplicitRole() {
				sig := signal.Extract(txn)
				candidates = e.scorer.Score(txn, &sig, snap)
			}
			results[i] = resolver.Resolve(txn, candidates, resolvedAt)

			if progress != nil {
				mu.Lock()
				done++
				progress(done)
				mu.Unlock()
			}
			return nil
		})
	}

	// Workers never return errors; scoring is pure.
	_ = g.Wait()
	return results
}

// flush writes results in batches. A failed upsert skips that transaction and
// counts as an error; cancellation is honored between batches, leaving the
// cache valid but incomplete.
func (e *InferenceEngine) flush(ctx context.Context, results []*model.InferenceResult, report *RunReport) error {
	written := 0
	for i, res := range results {
		if i%e.config.FlushBatchSize == 0 {
			select {
			case <-ctx.Done():
				slog.Warn("Run canceled mid-flush; cache is valid but incomplete",
					"written", written)
				return ctx.Err()
			default:
			}
		}

		if res == nil {
			continue
		}

		err := common.WithRetry(ctx, func() error {
			return e.storage.SaveResult(ctx, res)
		}, e.config.Retry)
		if err != nil {
			report.Errors++
			common.LogError(fmt.Errorf("%w: %v", common.ErrSinkUnavailable, err),
				"Failed to save result",
				common.Fields{"transaction_id": res.TransactionID})
			continue
		}
		written++
	}
	return nil
}
