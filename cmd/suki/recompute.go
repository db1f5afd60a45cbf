package main

import (
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sukilabs/suki/internal/cli"
	"github.com/sukilabs/suki/internal/common"
	"github.com/sukilabs/suki/internal/engine"
)

func recomputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Re-run persona inference over transactions",
		Long: `Evaluate every active rule against every transaction in scope and
upsert the winning persona per transaction.

Re-running over unchanged rules and transactions produces identical
results; a dry run reports coverage and confidence statistics without
writing anything.`,
		RunE: runRecompute,
	}

	cmd.Flags().String("from", "", "Start date of scope (format: 2006-01-02)")
	cmd.Flags().String("to", "", "End date of scope (format: 2006-01-02)")
	cmd.Flags().String("ids", "", "Explicit transaction IDs (comma-separated, overrides date range)")
	cmd.Flags().Bool("dry-run", false, "Compute and report without writing results")
	cmd.Flags().IntP("workers", "w", 4, "Number of scoring workers")
	cmd.Flags().String("fallback-role", "", "Role assigned when no rule matches (default: leave unassigned)")

	_ = viper.BindPFlag("recompute.workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("inference.fallback_role", cmd.Flags().Lookup("fallback-role"))

	return cmd
}

func runRecompute(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	ids, _ := cmd.Flags().GetString("ids")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	scope, err := parseScope(from, to, ids)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	cfg := engine.DefaultConfig()
	cfg.Workers = viper.GetInt("recompute.workers")
	cfg.FallbackRole = viper.GetString("inference.fallback_role")

	eng := engine.NewWithConfig(store, cfg)

	slog.Info(cli.FormatTitle("Recomputing personas..."))

	var bar *progressbar.ProgressBar
	opts := engine.RecomputeOptions{
		Scope:  scope,
		DryRun: dryRun,
		Progress: func(done int) {
			if bar != nil {
				_ = bar.Set(done)
			}
		},
	}

	// Rough progress over the scope; the engine reports exact totals.
	bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("scoring"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	report, err := eng.Recompute(ctx, opts)
	if err != nil {
		if common.IsRetryable(err) {
			fmt.Println(cli.FormatWarning("Transient failure; nothing was corrupted, re-run to retry"))
		}
		return fmt.Errorf("recompute failed: %w", err)
	}
	_ = bar.Finish()
	fmt.Println()

	title := "Inference Run"
	if report.DryRun {
		title = "Inference Run (dry run)"
	}
	fmt.Println(cli.RenderBox(title, report.Render()))

	if report.Errors > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("%d results failed to persist; re-run to fill the gaps", report.Errors)))
	}
	return nil
}
