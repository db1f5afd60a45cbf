package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sukilabs/suki/internal/cli"
	"github.com/sukilabs/suki/internal/common"
	"github.com/sukilabs/suki/internal/rules"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and load persona rules",
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesCheckCmd())
	cmd.AddCommand(rulesLoadCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the active rule snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			raw, err := store.GetActiveRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to load rules: %w", err)
			}

			snap := rules.NewSnapshot(raw)
			if snap.Len() == 0 {
				fmt.Println(cli.FormatWarning("No active rules. Load some with 'suki rules load'."))
				return nil
			}

			var b strings.Builder
			for _, rule := range snap.Rules() {
				fmt.Fprintf(&b, "%4d  p%-2d  %-24s  include=%s\n",
					rule.ID, rule.Priority, rule.RoleName,
					strings.Join(rule.IncludeTerms, ","))
			}
			if snap.RejectedCount() > 0 {
				fmt.Fprintf(&b, "\n%d invalid rules excluded (see log)\n", snap.RejectedCount())
			}
			fmt.Println(cli.RenderBox(fmt.Sprintf("Active Rules (%d)", snap.Len()), strings.TrimRight(b.String(), "\n")))
			return nil
		},
	}
}

func rulesCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a rules file without loading it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("file")

			raw, err := rules.LoadFile(path)
			if err != nil {
				return common.NewUserError("could not read rules file", err)
			}

			valid := 0
			for _, rule := range raw {
				if !rule.IsActive {
					fmt.Println(cli.FormatInfo(fmt.Sprintf("rule %d (%s): inactive, skipped", rule.ID, rule.RoleName)))
					continue
				}
				if vErr := rule.Validate(); vErr != nil {
					fmt.Println(cli.FormatError(fmt.Sprintf("rule %d (%s): %v", rule.ID, rule.RoleName, vErr)))
					continue
				}
				valid++
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%d of %d rules valid", valid, len(raw))))
			return nil
		},
	}
	cmd.Flags().String("file", "rules.yaml", "Rules file to validate")
	return cmd
}

func rulesLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load rules from a file into the database",
		Long: `Read persona rules from a YAML file and upsert them into the local
database. Invalid rules are reported and skipped; valid ones replace
any existing rule with the same ID.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			path, _ := cmd.Flags().GetString("file")

			raw, err := rules.LoadFile(path)
			if err != nil {
				return common.NewUserError("could not read rules file", err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			loaded, rejected := 0, 0
			for i := range raw {
				rule := &raw[i]
				if vErr := rule.Validate(); vErr != nil {
					rejected++
					fmt.Println(cli.FormatError(fmt.Sprintf("rule %d (%s): %v", rule.ID, rule.RoleName, vErr)))
					continue
				}
				if sErr := store.SaveRule(ctx, rule); sErr != nil {
					return fmt.Errorf("failed to save rule %d: %w", rule.ID, sErr)
				}
				loaded++
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Loaded %d rules (%d rejected)", loaded, rejected)))
			return nil
		},
	}
	cmd.Flags().String("file", "rules.yaml", "Rules file to load")
	return cmd
}
