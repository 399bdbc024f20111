package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	summarizeFile      string
	summarizeLanguage  string
	summarizeTakeaways int
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [text]",
	Short: "Summarize text into an abstract, takeaways and tags",
	Long: `Summarize text given as arguments, from --file, or from stdin.

Examples:
  astrobioctl summarize --file paper.txt --takeaways 5
  cat abstract.txt | astrobioctl summarize`,
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringVarP(&summarizeFile, "file", "f", "", "Read text from file")
	summarizeCmd.Flags().StringVar(&summarizeLanguage, "language", "en", "Target language code")
	summarizeCmd.Flags().IntVarP(&summarizeTakeaways, "takeaways", "k", 3, "Number of key takeaways (3-5)")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd.InOrStdin(), args, summarizeFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	s, err := client.Summarize(ctx, text, summarizeLanguage, summarizeTakeaways)
	if err != nil {
		return fmt.Errorf("summarize failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if handled, err := printJSON(out, s); handled {
		return err
	}

	fmt.Fprintf(out, "%s  %s\n%s\n\n", heading("Abstract"), modeLine(s.Usage), s.Abstract)
	fmt.Fprintln(out, heading("Key takeaways"))
	for _, t := range s.KeyTakeaways {
		fmt.Fprintf(out, "  - %s\n", t)
	}
	if len(s.Tags) > 0 {
		fmt.Fprintf(out, "\n%s %s\n", heading("Tags:"), strings.Join(s.Tags, ", "))
	}
	return nil
}

// readInput prefers args, then file, then stdin.
func readInput(stdin io.Reader, args []string, file string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
