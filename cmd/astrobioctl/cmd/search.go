package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	astrobio "github.com/kailas-cloud/astrobio/pkg/sdk"
)

var (
	searchOrganism string
	searchMission  string
	searchYear     int
	searchLimit    int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Rank studies against a query and filters",
	Long: `Rank corpus studies against a free-text query. Filters match exactly.
Without a query the filtered corpus is listed in its stored order.

Examples:
  astrobioctl search "plant growth"
  astrobioctl search --mission ISS --year 2018`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchOrganism, "organism", "", "Filter by organism")
	searchCmd.Flags().StringVar(&searchMission, "mission", "", "Filter by mission")
	searchCmd.Flags().IntVar(&searchYear, "year", 0, "Filter by publication year")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 10, "Maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	f := astrobio.Filter{Organism: searchOrganism, Mission: searchMission, Year: searchYear}
	res, err := client.Search(ctx, strings.Join(args, " "), f, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if handled, err := printJSON(out, res); handled {
		return err
	}

	fmt.Fprintf(out, "%s  %s\n", heading(res.Note), modeLine(res.Usage))
	if len(res.Results) == 0 {
		fmt.Fprintln(out, "No matching studies.")
		return nil
	}
	for i, r := range res.Results {
		fmt.Fprintf(out, "\n%d. %s %s\n", i+1, heading(r.Title), dim(fmt.Sprintf("[%s]", r.ID)))
		fmt.Fprintf(out, "   %s\n", dim(fmt.Sprintf("score %.3f  %s / %s / %d", r.Score, r.Organism, r.Mission, r.Year)))
		fmt.Fprintf(out, "   %s\n", r.Snippet)
	}
	return nil
}
