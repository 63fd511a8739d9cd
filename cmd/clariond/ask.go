package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	clarion "github.com/clarionhq/clarion"
	"github.com/clarionhq/clarion/core"
	"github.com/clarionhq/clarion/logging"
)

func newAskCmd() *cobra.Command {
	var showActivity bool
	var logLevel string

	cmd := &cobra.Command{
		Use:   "ask [text...]",
		Short: "Route a single request and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := core.ConfigFromEnv()
			logger := logging.NewSlogLogger(parseLevel(logLevel), "text", false)

			app, err := clarion.New(func(o *clarion.Options) {
				o.Config = cfg
				o.Logger = logger
				o.Backend = pickBackend(ctx, cfg, logger)
				o.Searcher = buildSearcher(cfg, logger)
				o.Verifier = buildVerifier(cfg, logger)
			})
			if err != nil {
				return err
			}
			defer app.Close()

			resp, err := app.Respond(ctx, uuid.NewString(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.SummaryText)
			if len(resp.Contacts) > 0 {
				fmt.Fprintln(out)
				for _, c := range resp.Contacts {
					label := c.Label
					if label == "" {
						label = string(c.Kind)
					}
					fmt.Fprintf(out, "  %s: %s\n", label, c.Value)
				}
			}
			if resp.UsedFallback {
				fmt.Fprintln(out, "\n(answer includes offline fallback data)")
			}
			if showActivity {
				fmt.Fprintln(out)
				for _, ev := range app.Activity() {
					fmt.Fprintf(out, "[%s] %s %s: %s\n",
						ev.Timestamp.Format("15:04:05.000"), ev.Agent, ev.Stage, ev.Description)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showActivity, "activity", false, "print the agent activity trail")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	return cmd
}
