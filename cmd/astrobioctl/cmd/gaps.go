package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var gapsThreshold int

var gapsCmd = &cobra.Command{
	Use:   "gaps <topic>",
	Short: "Report under-explored organism and mission combinations",
	Long: `Report which (organism, mission) pairs lack studies on a topic, have
fewer than --threshold studies, or leave holes in their year coverage.

Examples:
  astrobioctl gaps radiation
  astrobioctl gaps "bone density" --threshold 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGaps,
}

func init() {
	rootCmd.AddCommand(gapsCmd)

	gapsCmd.Flags().IntVar(&gapsThreshold, "threshold", 1, "Minimum studies per pair")
}

func runGaps(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	report, err := client.Gaps(ctx, strings.Join(args, " "), gapsThreshold)
	if err != nil {
		return fmt.Errorf("gap analysis failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if handled, err := printJSON(out, report); handled {
		return err
	}

	fmt.Fprintf(out, "%s %s  %s\n", heading("Gaps for"), report.Topic, modeLine(report.Usage))
	if report.Narrative != "" {
		fmt.Fprintln(out, report.Narrative)
		return nil
	}
	if len(report.Items) == 0 {
		fmt.Fprintln(out, "No gaps found.")
		return nil
	}
	for _, g := range report.Items {
		line := fmt.Sprintf("  %-10s %-16s %d studies  %s", g.Organism, g.Mission, g.Count, g.Reason)
		if len(g.MissingYears) > 0 {
			line += dim(fmt.Sprintf(" (missing %v)", g.MissingYears))
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
