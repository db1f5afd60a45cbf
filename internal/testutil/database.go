// Package testutil provides test utilities for the suki project: an
// in-memory database harness with migrations applied and helpers for seeding
// rules and transactions.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/sukilabs/suki/internal/model"
	"github.com/sukilabs/suki/internal/service"
	"github.com/sukilabs/suki/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database with migrations applied.
// Cleanup is registered automatically.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// SeedRules saves the given rules, failing the test on error.
func (db *TestDB) SeedRules(rules ...model.PersonaRule) {
	db.t.Helper()
	ctx := context.Background()
	for i := range rules {
		if err := db.Storage.SaveRule(ctx, &rules[i]); err != nil {
			db.t.Fatalf("failed to seed rule %d: %v", rules[i].ID, err)
		}
	}
}

// SeedTransactions saves the given transactions, failing the test on error.
func (db *TestDB) SeedTransactions(txns ...model.TransactionContext) {
	db.t.Helper()
	if _, err := db.Storage.SaveTransactions(context.Background(), txns); err != nil {
		db.t.Fatalf("failed to seed transactions: %v", err)
	}
}

// Txn builds a minimal valid transaction for tests.
func Txn(id string, ts time.Time, mutate ...func(*model.TransactionContext)) model.TransactionContext {
	txn := model.TransactionContext{
		ID:        id,
		Timestamp: ts,
		ItemCount: 1,
	}
	for _, m := range mutate {
		m(&txn)
	}
	return txn
}
