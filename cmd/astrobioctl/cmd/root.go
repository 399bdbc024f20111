package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	astrobio "github.com/kailas-cloud/astrobio/pkg/sdk"
)

var (
	// providerName selects the AI backend: gemini, openai, anthropic or none
	providerName string
	// apiKey overrides the provider key read from the environment
	apiKey string
	// baseURL points the openai provider at a compatible endpoint
	baseURL string
	// corpusPath loads documents from a YAML file instead of the sample corpus
	corpusPath string
	// outputFormat is the output format (text, json)
	outputFormat string
)

var (
	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	dim     = color.New(color.Faint).SprintFunc()
	aiMode  = color.New(color.FgGreen).SprintFunc()
	offline = color.New(color.FgYellow).SprintFunc()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "astrobioctl",
	Short: "Explore space bioscience studies from the terminal",
	Long: `astrobioctl runs the astrobio discovery engine in-process.

Every command works offline with deterministic heuristics. Set an API key
to let an AI provider answer, with automatic fallback on provider errors.

Examples:
  # Rank studies about bone loss in humans
  astrobioctl search "bone density" --organism Human

  # Summarize a text file with the Gemini provider
  GEMINI_API_KEY=... astrobioctl summarize --file abstract.txt

  # Report coverage gaps for a topic
  astrobioctl gaps radiation`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		// .env is optional; real environment variables win.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&providerName, "provider", "p", "gemini", "AI provider: gemini, openai, anthropic, none")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Provider API key (defaults to GEMINI_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "OpenAI-compatible base URL")
	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "", "Path to a YAML corpus file (defaults to the built-in sample)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json")
}

// clientOptions maps global flags onto SDK options.
func clientOptions() ([]astrobio.Option, error) {
	var opts []astrobio.Option
	if corpusPath != "" {
		opts = append(opts, astrobio.WithCorpusFile(corpusPath))
	}

	key := apiKey
	switch providerName {
	case "none", "":
		return opts, nil
	case "gemini":
		if key == "" {
			key = os.Getenv("GEMINI_API_KEY")
		}
		if key != "" {
			opts = append(opts, astrobio.WithGemini(key))
		}
	case "openai":
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key != "" {
			opts = append(opts, astrobio.WithOpenAI(key, baseURL))
		}
	case "anthropic":
		if key == "" {
			key = os.Getenv("ANTHROPIC_API_KEY")
		}
		if key != "" {
			opts = append(opts, astrobio.WithAnthropic(key))
		}
	default:
		return nil, fmt.Errorf("unknown provider %q", providerName)
	}
	return opts, nil
}

func newClient(ctx context.Context) (*astrobio.Client, error) {
	opts, err := clientOptions()
	if err != nil {
		return nil, err
	}
	client, err := astrobio.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start astrobio: %w", err)
	}
	return client, nil
}

// printJSON writes v as indented JSON when -o json is set. It reports
// whether it handled the output.
func printJSON(w io.Writer, v any) (bool, error) {
	if outputFormat != "json" {
		return false, nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return true, fmt.Errorf("failed to encode output: %w", err)
	}
	return true, nil
}

// modeLine renders how a result was served.
func modeLine(u astrobio.Usage) string {
	label := offline(string(u.Mode))
	if u.Mode == astrobio.ModeAI {
		label = aiMode(string(u.Mode))
	}
	parts := []string{"mode: " + label}
	if u.ProviderCalls > 0 {
		parts = append(parts, fmt.Sprintf("calls: %d", u.ProviderCalls), fmt.Sprintf("tokens: %d", u.Tokens))
	}
	if u.Fallbacks > 0 {
		parts = append(parts, fmt.Sprintf("fallbacks: %d", u.Fallbacks))
	}
	return dim(strings.Join(parts, "  "))
}
