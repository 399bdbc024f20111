package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Group studies by mission, ordered by year",
	RunE:  runTimeline,
}

func init() {
	rootCmd.AddCommand(timelineCmd)
}

func runTimeline(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	tl, err := client.Timeline(ctx)
	if err != nil {
		return fmt.Errorf("timeline failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if handled, err := printJSON(out, tl); handled {
		return err
	}

	fmt.Fprintln(out, modeLine(tl.Usage))
	for _, m := range tl.Missions {
		fmt.Fprintf(out, "\n%s %s\n", heading(m.Mission), dim(fmt.Sprintf("(%d studies)", m.Count)))
		if m.Summary != "" {
			fmt.Fprintf(out, "  %s\n", m.Summary)
		}
		for _, it := range m.Items {
			fmt.Fprintf(out, "  %d  %-8s %s\n", it.Year, it.Organism, it.Title)
		}
	}
	return nil
}
