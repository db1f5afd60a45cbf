package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sukilabs/suki/internal/common"
	"github.com/sukilabs/suki/internal/model"
	"github.com/sukilabs/suki/internal/service"
)

func setupStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleTxn(id string, ts time.Time) model.TransactionContext {
	return model.TransactionContext{
		ID:        id,
		Timestamp: ts,
		Category:  "Snacks",
		ItemCount: 2,
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	// Running migrations again is a no-op.
	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestSaveTransactions_DeduplicatesOnID(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()
	ts := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	inserted, err := store.SaveTransactions(ctx, []model.TransactionContext{
		sampleTxn("t1", ts),
		sampleTxn("t2", ts),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Re-importing the same extract inserts nothing.
	inserted, err = store.SaveTransactions(ctx, []model.TransactionContext{
		sampleTxn("t1", ts),
		sampleTxn("t3", ts),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	all, err := store.GetTransactions(ctx, service.Scope{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSaveTransactions_RejectsInvalid(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	_, err := store.SaveTransactions(ctx, []model.TransactionContext{{ID: ""}})
	assert.ErrorIs(t, err, ErrInvalidTransaction)

	_, err = store.SaveTransactions(ctx, []model.TransactionContext{})
	assert.ErrorIs(t, err, ErrEmptySlice)
}

func TestGetTransactions_Scope(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2025, 6, d, 12, 0, 0, 0, time.UTC) }
	_, err := store.SaveTransactions(ctx, []model.TransactionContext{
		sampleTxn("t1", day(1)),
		sampleTxn("t2", day(5)),
		sampleTxn("t3", day(9)),
	})
	require.NoError(t, err)

	from := day(2)
	to := day(6)
	got, err := store.GetTransactions(ctx, service.Scope{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t2", got[0].ID)

	got, err = store.GetTransactions(ctx, service.Scope{IDs: []string{"t1", "t3"}})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Inverted range is rejected.
	_, err = store.GetTransactions(ctx, service.Scope{From: &to, To: &from})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestGetTransactions_NullableFieldsRoundTrip(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()
	age := 42

	txn := model.TransactionContext{
		ID:           "t1",
		Timestamp:    time.Date(2025, 6, 2, 22, 30, 0, 0, time.UTC),
		Category:     "Energy Drinks",
		Brand:        "Cobra",
		ItemCount:    9,
		Transcript:   "pabili po, shift ko mamayang gabi",
		Age:          &age,
		Gender:       "Male",
		ExplicitRole: "Night-Shift Worker",
	}
	_, err := store.SaveTransactions(ctx, []model.TransactionContext{txn})
	require.NoError(t, err)

	got, err := store.GetTransactionByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, txn.Transcript, got.Transcript)
	assert.Equal(t, txn.ExplicitRole, got.ExplicitRole)
	require.NotNil(t, got.Age)
	assert.Equal(t, 42, *got.Age)

	// Missing optionals come back as zero values.
	bare := sampleTxn("t2", txn.Timestamp)
	bare.Category = ""
	_, err = store.SaveTransactions(ctx, []model.TransactionContext{bare})
	require.NoError(t, err)

	got, err = store.GetTransactionByID(ctx, "t2")
	require.NoError(t, err)
	assert.Nil(t, got.Age)
	assert.Empty(t, got.Transcript)
	assert.Empty(t, got.Category)
}

func TestGetTransactionByID_NotFound(t *testing.T) {
	store := setupStorage(t)

	_, err := store.GetTransactionByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveRule_RoundTrip(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()
	minAge := 18

	rule := model.PersonaRule{
		ID:                 7,
		RoleName:           "Night-Shift Worker",
		Priority:           1,
		IncludeTerms:       []string{"shift", "gabi"},
		ExcludeTerms:       []string{"school"},
		RequiredCategories: []string{"Energy Drinks"},
		ActiveHours:        []model.HourRange{{Lo: 22, Hi: 5}},
		AllowedGenders:     []string{"Male", "Female"},
		MinAge:             &minAge,
		IsActive:           true,
	}
	require.NoError(t, store.SaveRule(ctx, &rule))

	rules, err := store.GetActiveRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	got := rules[0]
	assert.Equal(t, rule.RoleName, got.RoleName)
	assert.Equal(t, rule.IncludeTerms, got.IncludeTerms)
	assert.Equal(t, rule.ExcludeTerms, got.ExcludeTerms)
	assert.Equal(t, rule.RequiredCategories, got.RequiredCategories)
	assert.Equal(t, rule.ActiveHours, got.ActiveHours)
	require.NotNil(t, got.MinAge)
	assert.Equal(t, 18, *got.MinAge)
	assert.Nil(t, got.MaxAge)
}

func TestSaveRule_UpsertsAndFiltersInactive(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	rule := model.PersonaRule{
		ID: 1, RoleName: "Student", Priority: 2,
		IncludeTerms: []string{"school"}, IsActive: true,
	}
	require.NoError(t, store.SaveRule(ctx, &rule))

	rule.Priority = 1
	require.NoError(t, store.SaveRule(ctx, &rule))

	rules, err := store.GetActiveRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1, "upsert must not duplicate")
	assert.Equal(t, 1, rules[0].Priority)

	rule.IsActive = false
	require.NoError(t, store.SaveRule(ctx, &rule))

	rules, err = store.GetActiveRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules, "inactive rules are not loaded")
}

func TestSaveRule_RefusesInvalid(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	err := store.SaveRule(ctx, &model.PersonaRule{
		ID: 1, RoleName: "Broken", Priority: 0,
		IncludeTerms: []string{"x"}, IsActive: true,
	})
	assert.ErrorContains(t, err, "priority")
}

func TestSaveRule_RefusesUnsetID(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	// Unset IDs would all land on the same row, each save silently
	// replacing the previous rule.
	for _, role := range []string{"Student", "Reseller"} {
		err := store.SaveRule(ctx, &model.PersonaRule{
			RoleName: role, Priority: 1,
			IncludeTerms: []string{"x"}, IsActive: true,
		})
		assert.ErrorContains(t, err, "rule id")
	}

	rules, err := store.GetActiveRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestSaveResult_UpsertNeverDuplicates(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()
	ts := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	_, err := store.SaveTransactions(ctx, []model.TransactionContext{sampleTxn("t1", ts)})
	require.NoError(t, err)

	first := model.InferenceResult{
		TransactionID: "t1",
		Role:          "Student",
		Confidence:    0.95,
		RuleSource:    "rule:1/p1",
		UpdatedAt:     ts,
	}
	require.NoError(t, store.SaveResult(ctx, &first))

	second := first
	second.Role = "Reseller"
	second.Confidence = 0.97
	second.RuleSource = "rule:2/p1"
	require.NoError(t, store.SaveResult(ctx, &second))

	count, err := store.CountResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "re-run overwrites, never duplicates")

	got, err := store.GetResult(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Reseller", got.Role)
	assert.InDelta(t, 0.97, got.Confidence, 1e-9)
	assert.Equal(t, "rule:2/p1", got.RuleSource)
}

func TestGetResult_NotFound(t *testing.T) {
	store := setupStorage(t)

	_, err := store.GetResult(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveResult_RejectsInvalid(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	err := store.SaveResult(ctx, &model.InferenceResult{
		TransactionID: "t1", Role: "Student", Confidence: 1.5, RuleSource: "rule:1/p1",
	})
	assert.ErrorIs(t, err, ErrInvalidResult)

	err = store.SaveResult(ctx, &model.InferenceResult{
		TransactionID: "t1", Role: "", Confidence: 0.5, RuleSource: "rule:1/p1",
	})
	assert.ErrorIs(t, err, ErrInvalidResult)
}

func TestSaveSignals_Upsert(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()
	ts := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	_, err := store.SaveTransactions(ctx, []model.TransactionContext{sampleTxn("t1", ts)})
	require.NoError(t, err)

	sig := model.Signals{
		TransactionID: "t1",
		Tokens:        map[string]struct{}{"school": {}, "pabili": {}},
		HourOfDay:     8,
		Daypart:       model.DaypartMorning,
		CategoryGroup: "Snacks",
		BasketBucket:  model.BasketSmall,
		Weekday:       "Monday",
	}
	require.NoError(t, store.SaveSignals(ctx, &sig))
	require.NoError(t, store.SaveSignals(ctx, &sig), "second save overwrites")
}
