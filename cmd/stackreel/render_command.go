package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"stackreel/internal/preflight"
	"stackreel/internal/render"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "render <project.toml>",
		Short: "Render a project to its output file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			proj, err := loadProject(args[0])
			if err != nil {
				return err
			}

			if !skipPreflight {
				results := preflight.RunAll(cmd.Context(), cfg)
				if preflight.Failed(results) {
					var failed []string
					for _, r := range results {
						if !r.Passed {
							failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
						}
					}
					return fmt.Errorf("preflight failed (run 'stackreel doctor' for details):\n  %s", strings.Join(failed, "\n  "))
				}
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runner, err := ctx.newRunner(store, nil)
			if err != nil {
				return err
			}
			result, err := runner.Render(cmd.Context(), proj)
			if err != nil {
				return err
			}
			if result == nil {
				return errors.New("render produced no result")
			}
			if jsonOut {
				return writeJSON(cmd, result.Record)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatRenderSummary(result))
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip directory and filter checks")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the history record as JSON")
	return cmd
}

func formatRenderSummary(result *render.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rendered %s\n", result.Output.Path)
	fmt.Fprintf(&b, "  Resolution: %s\n", result.Plan.Resolution)
	fmt.Fprintf(&b, "  Duration:   %.2fs\n", result.Output.Duration)
	fmt.Fprintf(&b, "  Size:       %s\n", humanize.Bytes(uint64(max(result.Output.Bytes, 0))))
	fmt.Fprintf(&b, "  Pages:      %d\n", len(result.Pages))
	fmt.Fprintf(&b, "  Elapsed:    %s\n", result.Output.Elapsed.Round(time.Millisecond))
	if result.ArchivePath != "" {
		fmt.Fprintf(&b, "  Archive:    %s\n", result.ArchivePath)
	}
	if result.Record != nil {
		fmt.Fprintf(&b, "  History:    #%d\n", result.Record.ID)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(&b, "  Warning:    %s\n", w)
	}
	return b.String()
}
