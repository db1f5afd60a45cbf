package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sukilabs/suki/internal/common"
	"github.com/sukilabs/suki/internal/model"
	"github.com/sukilabs/suki/internal/service"
)

// SaveTransactions inserts transaction records, skipping IDs that already
// exist. Returns the number of newly inserted rows.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, txns []model.TransactionContext) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(txns); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, ts, category, brand, item_count,
			transcript, age, gender, explicit_role
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, txn := range txns {
		res, execErr := stmt.ExecContext(ctx,
			txn.ID,
			txn.Timestamp,
			nullString(txn.Category),
			nullString(txn.Brand),
			txn.ItemCount,
			nullString(txn.Transcript),
			nullInt(txn.Age),
			nullString(txn.Gender),
			nullString(txn.ExplicitRole),
		)
		if execErr != nil {
			return 0, fmt.Errorf("failed to insert transaction %s: %w", txn.ID, execErr)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transactions: %w", err)
	}
	return inserted, nil
}

// GetTransactions fetches transactions matching the given scope, ordered by
// timestamp then ID for stable batch ordering.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, scope service.Scope) ([]model.TransactionContext, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if scope.From != nil && scope.To != nil && scope.To.Before(*scope.From) {
		return nil, fmt.Errorf("%w: %v after %v", ErrInvalidDateRange, scope.From, scope.To)
	}

	query := `
		SELECT id, ts, category, brand, item_count, transcript, age, gender, explicit_role
		FROM transactions`
	var (
		conds []string
		args  []any
	)

	switch {
	case len(scope.IDs) > 0:
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(scope.IDs)), ",")
		conds = append(conds, fmt.Sprintf("id IN (%s)", placeholders))
		for _, id := range scope.IDs {
			args = append(args, id)
		}
	default:
		if scope.From != nil {
			conds = append(conds, "ts >= ?")
			args = append(args, *scope.From)
		}
		if scope.To != nil {
			conds = append(conds, "ts <= ?")
			args = append(args, *scope.To)
		}
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ts, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.TransactionContext
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

// GetTransactionByID fetches a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.TransactionContext, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, ts, category, brand, item_count, transcript, age, gender, explicit_role
		FROM transactions WHERE id = ?
	`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (model.TransactionContext, error) {
	var (
		txn          model.TransactionContext
		ts           time.Time
		category     sql.NullString
		brand        sql.NullString
		transcript   sql.NullString
		age          sql.NullInt64
		gender       sql.NullString
		explicitRole sql.NullString
	)

	err := row.Scan(&txn.ID, &ts, &category, &brand, &txn.ItemCount,
		&transcript, &age, &gender, &explicitRole)
	if err != nil {
		return txn, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.Timestamp = ts
	txn.Category = category.String
	txn.Brand = brand.String
	txn.Transcript = transcript.String
	txn.Gender = gender.String
	txn.ExplicitRole = explicitRole.String
	if age.Valid {
		v := int(age.Int64)
		txn.Age = &v
	}
	return txn, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}
