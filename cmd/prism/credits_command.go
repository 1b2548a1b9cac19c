package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prism/internal/logging"
	"prism/internal/store"
)

func newCreditsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "credits",
		Short: "Show provider balances and today's video quota",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() { _ = st.Close() }()

			_, orClient := buildOrchestrator(cfg, st, logging.NewNop())
			svc := buildCreditsService(cfg, st, orClient, logging.NewNop())

			report, err := svc.Report(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{
				{"OpenRouter", fmt.Sprintf("%.2f", report.OpenRouter.TotalCredits),
					fmt.Sprintf("%.2f", report.OpenRouter.TotalUsage),
					fmt.Sprintf("%.2f", report.OpenRouter.Remaining)},
				{"Kling (daily)", fmt.Sprintf("%d", report.Kling.Total),
					fmt.Sprintf("%d", report.Kling.Used),
					fmt.Sprintf("%d", report.Kling.Remaining)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Provider", "Total", "Used", "Remaining"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}
