package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stackreel/internal/api"
	"stackreel/internal/layout"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "plan <project.toml>",
		Short: "Show the crop, resize and resolution plan for a project",
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
			plan, err := runner.Plan(cmd.Context(), proj)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, api.FromPlan(plan))
			}
			fmt.Fprint(cmd.OutOrStdout(), formatPlan(plan))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the plan as JSON")
	return cmd
}

func formatPlan(plan *layout.Plan) string {
	rows := make([][]string, 0, len(plan.Elements))
	for i, el := range plan.Elements {
		crop := "-"
		if el.Kind == layout.KindSource {
			crop = fmt.Sprintf("%dx%d+%d+%d", el.Crop.Width, el.Crop.Height, el.Crop.X, el.Crop.Y)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			el.Kind.String(),
			el.Name,
			strconv.Itoa(el.Weight),
			strconv.FormatFloat(el.EffectiveRatio, 'f', 3, 64),
			crop,
			el.Size.String(),
		})
	}
	var b strings.Builder
	b.WriteString(renderTitledTable(
		fmt.Sprintf("%s stack, weight %d", plan.Orientation, plan.TotalWeight),
		[]string{"#", "Kind", "Name", "Weight", "Ratio", "Crop", "Size"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Resolution: %s (canvas %s)\n", plan.Resolution, plan.Canvas)
	fmt.Fprintf(&b, "Duration:   %.2fs\n", plan.Duration)
	if d := plan.Downgrade; d != nil {
		fmt.Fprintf(&b, "Downgraded: %s -> %s because of %s\n", d.From, d.To, d.Clip)
	}
	for _, w := range plan.Warnings {
		fmt.Fprintf(&b, "Warning:    %s\n", w)
	}
	return b.String()
}
