package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stackreel/internal/deps"
	"stackreel/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, directories and ffmpeg filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := newStatusReport(cmd.OutOrStdout())

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			report.section("Dependencies", dependencyLines(statuses, report.colorize))

			results := preflight.RunAll(cmd.Context(), cfg)
			report.section("Checks", checkLines(results, report.colorize))

			report.section("Features", []string{
				renderStatusLine("Captions", statusInfo, yesNo(cfg.Captions.Enabled), report.colorize),
				renderStatusLine("Reconcile", statusInfo, yesNo(cfg.Captions.Reconcile), report.colorize),
				renderStatusLine("Archive", statusInfo, yesNo(cfg.Archive.Enabled), report.colorize),
			})

			if preflight.Failed(results) || missingRequired(statuses) {
				return errors.New("doctor found problems")
			}
			return nil
		},
	}
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	missing := make([]string, 0)
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Version != "" {
				message = fmt.Sprintf("Ready (%s)", dep.Version)
			} else if dep.Path != "" {
				message = fmt.Sprintf("Ready (%s)", dep.Path)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		missing = append(missing, dep.Name)
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines
}

func checkLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, renderStatusLine(r.Name, passFail(r.Passed), r.Detail, colorize))
	}
	return lines
}

func missingRequired(statuses []deps.Status) bool {
	for _, dep := range statuses {
		if !dep.Available && !dep.Optional {
			return true
		}
	}
	return false
}
