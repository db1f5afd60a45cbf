package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sukilabs/suki/internal/common"
	"github.com/sukilabs/suki/internal/model"
)

// SaveResult upserts an inference result keyed by transaction ID: insert if
// absent, otherwise overwrite role, confidence, rule source, and updated_at.
// Re-running a batch produces exactly one row per transaction regardless of
// how many runs happened or in which order workers finished.
func (s *SQLiteStorage) SaveResult(ctx context.Context, result *model.InferenceResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateResult(result); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inference_results (
			transaction_id, role, confidence, rule_source, updated_at
		) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(transaction_id) DO UPDATE SET
			role = excluded.role,
			confidence = excluded.confidence,
			rule_source = excluded.rule_source,
			updated_at = excluded.updated_at
	`,
		result.TransactionID,
		result.Role,
		result.Confidence,
		result.RuleSource,
		result.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save result for %s: %w", result.TransactionID, err)
	}
	return nil
}

// GetResult fetches the inference result for one transaction.
func (s *SQLiteStorage) GetResult(ctx context.Context, transactionID string) (*model.InferenceResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return nil, err
	}

	var result model.InferenceResult
	err := s.db.QueryRowContext(ctx, `
		SELECT transaction_id, role, confidence, rule_source, updated_at
		FROM inference_results WHERE transaction_id = ?
	`, transactionID).Scan(&result.TransactionID, &result.Role,
		&result.Confidence, &result.RuleSource, &result.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result for %s: %w", transactionID, err)
	}
	return &result, nil
}

// CountResults returns the total number of cached results.
func (s *SQLiteStorage) CountResults(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inference_results`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}
