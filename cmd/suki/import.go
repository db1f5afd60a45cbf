package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sukilabs/suki/internal/cli"
	"github.com/sukilabs/suki/internal/common"
	"github.com/sukilabs/suki/internal/model"
)

// CSV timestamp layouts accepted by the importer, tried in order.
var importTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import transactions from a warehouse CSV extract",
		Long: `Load cleaned transaction records from a CSV extract into the local
database. Rows are deduplicated on transaction ID: importing the same
extract twice inserts nothing new.

Expected header:
  transaction_id,timestamp,category,brand,item_count,transcript,age,gender,explicit_role`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "Parse and validate without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	f, err := os.Open(args[0])
	if err != nil {
		return common.NewUserError("could not open import file", err)
	}
	defer func() { _ = f.Close() }()

	txns, skipped, err := readTransactionsCSV(f)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		slog.Warn("No importable rows found", "skipped", skipped)
		return nil
	}

	if dryRun {
		fmt.Println(cli.FormatInfo(fmt.Sprintf("Dry run: %d rows parsed, %d skipped, nothing saved", len(txns), skipped)))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	inserted, err := store.SaveTransactions(ctx, txns)
	if err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	common.LogInfo("Import complete", common.Fields{
		"inserted":   inserted,
		"duplicates": len(txns) - inserted,
		"skipped":    skipped,
	})
	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Imported %d transactions (%d duplicates ignored, %d rows skipped)",
		inserted, len(txns)-inserted, skipped)))
	return nil
}

// readTransactionsCSV parses the extract. Malformed rows are skipped with a
// log line rather than aborting the import.
func readTransactionsCSV(r io.Reader) ([]model.TransactionContext, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"transaction_id", "timestamp"} {
		if _, ok := col[required]; !ok {
			return nil, 0, fmt.Errorf("CSV is missing required column %q", required)
		}
	}

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var (
		txns    []model.TransactionContext
		skipped int
		line    = 1
	)
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		line++
		if readErr != nil {
			skipped++
			slog.Warn("Skipping malformed CSV row", "line", line, "error", readErr)
			continue
		}

		id := field(record, "transaction_id")
		if id == "" {
			skipped++
			slog.Warn("Skipping row without transaction_id", "line", line)
			continue
		}

		ts, tsErr := parseImportTime(field(record, "timestamp"))
		if tsErr != nil {
			skipped++
			slog.Warn("Skipping row with bad timestamp", "line", line, "error", tsErr)
			continue
		}

		txn := model.TransactionContext{
			ID:           id,
			Timestamp:    ts,
			Category:     field(record, "category"),
			Brand:        field(record, "brand"),
			Transcript:   field(record, "transcript"),
			Gender:       field(record, "gender"),
			ExplicitRole: field(record, "explicit_role"),
			ItemCount:    1,
		}

		if raw := field(record, "item_count"); raw != "" {
			n, convErr := strconv.Atoi(raw)
			if convErr != nil || n < 0 {
				skipped++
				slog.Warn("Skipping row with bad item_count", "line", line, "value", raw)
				continue
			}
			txn.ItemCount = n
		}
		if raw := field(record, "age"); raw != "" {
			age, convErr := strconv.Atoi(raw)
			if convErr == nil && age >= 0 {
				txn.Age = &age
			}
		}

		txns = append(txns, txn)
	}

	return txns, skipped, nil
}

func parseImportTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range importTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
