package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"prism/internal/logging"
	"prism/internal/mode"
	"prism/internal/providers"
	"prism/internal/search"
	"prism/internal/store"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string
	var langFlag string
	var qualityFlag string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a one-shot query without the HTTP server",
		Args:  cobra.MinimumNArgs(1),
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

			orchestrator, _ := buildOrchestrator(cfg, st, logging.NewNop())

			query := strings.Join(args, " ")
			result, err := orchestrator.Execute(search.WithRequestID(cmd.Context(), ""), search.Request{
				Messages: []providers.ChatMessage{{Role: "user", Content: query}},
				Mode:     mode.Parse(modeFlag),
				Lang:     langFlag,
				Quality:  providers.ParseQuality(qualityFlag),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if providers.IsMedia(result.Detailed) {
				fmt.Fprintln(out, result.Direct)
				fmt.Fprintln(out, providers.StripMedia(result.Detailed))
			} else {
				fmt.Fprintln(out, result.Detailed)
			}

			if _, err := st.AddHistory(cmd.Context(), query, result.Detailed); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: history not saved: %v\n", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "chat", "Mode: chat, flash, think, code, pro, analyze, image, video")
	cmd.Flags().StringVarP(&langFlag, "lang", "l", "", "Response language (BCP 47 tag)")
	cmd.Flags().StringVarP(&qualityFlag, "quality", "q", "standard", "Media quality: standard or hd")
	return cmd
}
