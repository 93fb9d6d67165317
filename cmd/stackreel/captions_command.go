package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stackreel/internal/captions"
)

type captionsOutput struct {
	Pages []pageOutput `json:"pages"`
	Fixes int          `json:"fixes"`
}

type pageOutput struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Cues  int     `json:"cues"`
}

func newCaptionsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "captions <project.toml>",
		Short: "Show the caption pages a project's subtitles produce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject(args[0])
			if err != nil {
				return err
			}
			runner, err := ctx.newRunner(nil, nil)
			if err != nil {
				return err
			}
			pages, fixes, err := runner.Captions(cmd.Context(), proj)
			if err != nil {
				return err
			}
			if jsonOut {
				out := captionsOutput{Pages: make([]pageOutput, 0, len(pages)), Fixes: len(fixes)}
				for _, p := range pages {
					out.Pages = append(out.Pages, pageOutput{Start: p.Start, End: p.End, Text: p.Text, Cues: len(p.Cues)})
				}
				return writeJSON(cmd, out)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatPages(pages))
			if len(fixes) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nInterpunction fixes applied: %d\n", len(fixes))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print pages as JSON")
	return cmd
}

func formatPages(pages []captions.Page) string {
	rows := make([][]string, 0, len(pages))
	for i, p := range pages {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			captions.FormatTimestamp(p.Start),
			captions.FormatTimestamp(p.End),
			strconv.Itoa(len(p.Cues)),
			p.Text,
		})
	}
	return renderTable(
		[]string{"#", "Start", "End", "Cues", "Text"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	) + "\n"
}
