package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sukilabs/suki/internal/model"
)

// SaveSignals upserts the diagnostic signal export row for one transaction.
// Consumed by downstream rule-tuning analysis; never read by the engine.
func (s *SQLiteStorage) SaveSignals(ctx context.Context, sig *model.Signals) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if sig == nil {
		return fmt.Errorf("%w: signals", ErrNilParameter)
	}
	if err := validateString(sig.TransactionID, "signals.TransactionID"); err != nil {
		return err
	}

	tokens := make([]string, 0, len(sig.Tokens))
	for t := range sig.Tokens {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO signal_exports (
			transaction_id, tokens, hour_of_day, daypart,
			category_group, basket_bucket, weekday, exported_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(transaction_id) DO UPDATE SET
			tokens = excluded.tokens,
			hour_of_day = excluded.hour_of_day,
			daypart = excluded.daypart,
			category_group = excluded.category_group,
			basket_bucket = excluded.basket_bucket,
			weekday = excluded.weekday,
			exported_at = excluded.exported_at
	`,
		sig.TransactionID,
		strings.Join(tokens, " "),
		sig.HourOfDay,
		string(sig.Daypart),
		sig.CategoryGroup,
		string(sig.BasketBucket),
		sig.Weekday,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save signals for %s: %w", sig.TransactionID, err)
	}
	return nil
}
