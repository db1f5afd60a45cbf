package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sukilabs/suki/internal/cli"
	"github.com/sukilabs/suki/internal/signal"
)

func signalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Inspect derived signals for transactions",
		Long: `Compute and display the normalized signals (tokens, daypart, category
group, basket bucket) the engine derives for the given transactions.
Useful when tuning rules: it shows exactly what the gates see.

With --save the signals are also written to the diagnostic export table
for downstream analysis.`,
		RunE: runSignals,
	}

	cmd.Flags().String("ids", "", "Transaction IDs to inspect (comma-separated, required)")
	cmd.Flags().Bool("save", false, "Persist signals to the diagnostic export table")
	_ = cmd.MarkFlagRequired("ids")

	return cmd
}

func runSignals(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	ids, _ := cmd.Flags().GetString("ids")
	save, _ := cmd.Flags().GetBool("save")

	scope, err := parseScope("", "", ids)
	if err != nil {
		return err
	}
	if len(scope.IDs) == 0 {
		return fmt.Errorf("no transaction IDs given")
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	txns, err := store.GetTransactions(ctx, scope)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}
	if len(txns) == 0 {
		fmt.Println(cli.FormatWarning("No matching transactions found"))
		return nil
	}

	for i := range txns {
		sig := signal.Extract(&txns[i])

		tokens := make([]string, 0, len(sig.Tokens))
		for t := range sig.Tokens {
			tokens = append(tokens, t)
		}
		sort.Strings(tokens)

		content := fmt.Sprintf(
			"Hour: %d (%s)\nCategory group: %s\nBasket: %s (%d items)\nWeekday: %s\nTokens: %s",
			sig.HourOfDay, sig.Daypart,
			sig.CategoryGroup,
			sig.BasketBucket, txns[i].ItemCount,
			sig.Weekday,
			strings.Join(tokens, " "))

		if utterances := signal.Segment(txns[i].Transcript); len(utterances) > 0 {
			content += "\nTranscript:"
			for _, u := range utterances {
				content += fmt.Sprintf("\n  [%s] %s", u.Speaker, u.Text)
			}
		}
		fmt.Println(cli.RenderBox("Signals: "+sig.TransactionID, content))

		if save {
			if err := store.SaveSignals(ctx, &sig); err != nil {
				return fmt.Errorf("failed to save signals for %s: %w", sig.TransactionID, err)
			}
		}
	}

	if save {
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported signals for %d transactions", len(txns))))
	}
	return nil
}
