package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"stackreel/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded renders",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := history.ListOptions{Limit: limit}
			for _, raw := range statusFlags {
				status, ok := history.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q", raw)
				}
				opts.Statuses = append(opts.Statuses, status)
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			renders, err := store.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if jsonOut {
				if renders == nil {
					renders = []*history.Render{}
				}
				return writeJSON(cmd, renders)
			}
			out := cmd.OutOrStdout()
			if len(renders) == 0 {
				fmt.Fprintln(out, "No renders recorded")
				return nil
			}
			fmt.Fprintln(out, formatHistoryTable(renders, time.Now()))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by status (running, succeeded, failed, rejected)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of renders to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print renders as JSON")
	return cmd
}

func formatHistoryTable(renders []*history.Render, now time.Time) string {
	rows := make([][]string, 0, len(renders))
	for _, r := range renders {
		size := "-"
		if r.OutputBytes > 0 {
			size = humanize.Bytes(uint64(r.OutputBytes))
		}
		resolution := r.Resolution
		if resolution == "" {
			resolution = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			string(r.Status),
			r.Project,
			resolution,
			size,
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
		})
	}
	return renderTable(
		[]string{"ID", "Status", "Project", "Resolution", "Size", "Started"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id|session>",
		Short: "Show one render in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			key := strings.TrimSpace(args[0])
			var record *history.Render
			if id, parseErr := strconv.ParseInt(key, 10, 64); parseErr == nil {
				record, err = store.Get(cmd.Context(), id)
			} else {
				record, err = store.GetBySession(cmd.Context(), key)
			}
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf("render %s not found", key)
			}
			if jsonOut {
				return writeJSON(cmd, record)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatRenderDetail(record))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the render as JSON")
	return cmd
}

func formatRenderDetail(r *history.Render) string {
	var b strings.Builder
	line := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%-12s %s\n", label+":", value)
	}
	line("ID", strconv.FormatInt(r.ID, 10))
	line("Session", r.SessionID)
	line("Status", string(r.Status))
	line("Stage", r.Stage)
	line("Project", r.Project)
	line("Output", r.Output)
	line("Resolution", r.Resolution)
	if r.DurationSeconds > 0 {
		line("Duration", fmt.Sprintf("%.2fs", r.DurationSeconds))
	}
	line("Sources", strconv.Itoa(r.Sources))
	line("Pages", strconv.Itoa(r.Pages))
	if r.OutputBytes > 0 {
		line("Size", humanize.Bytes(uint64(r.OutputBytes)))
	}
	line("Archive", r.ArchivePath)
	line("Started", r.StartedAt.Local().Format(time.DateTime))
	if !r.FinishedAt.IsZero() {
		line("Finished", r.FinishedAt.Local().Format(time.DateTime))
		line("Elapsed", r.Elapsed().Round(time.Millisecond).String())
	}
	line("Error", r.ErrorMessage)
	for _, w := range r.Warnings {
		line("Warning", w)
	}
	return b.String()
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete finished renders older than a cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d render(s)\n", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age cutoff, e.g. 720h")
	return cmd
}
