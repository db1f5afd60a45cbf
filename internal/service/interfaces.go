// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/sukilabs/suki/internal/model"
)

// Scope selects which transactions a run considers. Zero value means all;
// a non-empty ID list takes precedence over the date range.
type Scope struct {
	From *time.Time
	To   *time.Time
	IDs  []string
}

// All reports whether the scope selects every transaction.
func (s Scope) All() bool {
	return s.From == nil && s.To == nil && len(s.IDs) == 0
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Transaction feed (read side, plus intake from warehouse extracts)
	SaveTransactions(ctx context.Context, txns []model.TransactionContext) (int, error)
	GetTransactions(ctx context.Context, scope Scope) ([]model.TransactionContext, error)
	GetTransactionByID(ctx context.Context, id string) (*model.TransactionContext, error)

	// Rule definitions
	GetActiveRules(ctx context.Context) ([]model.PersonaRule, error)
	SaveRule(ctx context.Context, rule *model.PersonaRule) error

	// Inference results (the cache sink)
	SaveResult(ctx context.Context, result *model.InferenceResult) error
	GetResult(ctx context.Context, transactionID string) (*model.InferenceResult, error)
	CountResults(ctx context.Context) (int, error)

	// Diagnostic signals export
	SaveSignals(ctx context.Context, sig *model.Signals) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
