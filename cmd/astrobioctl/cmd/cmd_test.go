package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	astrobio "github.com/kailas-cloud/astrobio/pkg/sdk"
)

func resetFlags() {
	providerName = "gemini"
	apiKey = ""
	baseURL = ""
	corpusPath = ""
	outputFormat = "text"
	searchOrganism, searchMission, searchYear, searchLimit = "", "", 0, 10
	summarizeFile, summarizeLanguage, summarizeTakeaways = "", "en", 3
	gapsThreshold = 1
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--provider", "none"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "astrobio ") {
		t.Errorf("expected version line, got %q", out)
	}
}

func TestSearch_JSON(t *testing.T) {
	out, err := run(t, "", "search", "plant", "growth", "-o", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp astrobio.SearchResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected results")
	}
	if resp.Results[0].ID != "astro-2" {
		t.Errorf("expected astro-2 first, got %s", resp.Results[0].ID)
	}
	if resp.Usage.Mode != astrobio.ModeHeuristic {
		t.Errorf("expected heuristic mode, got %s", resp.Usage.Mode)
	}
}

func TestSearch_TextWithFilter(t *testing.T) {
	out, err := run(t, "", "search", "--mission", "Ground Analog")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Microbial Behavior in Low-Shear Environments") {
		t.Errorf("expected ground analog study in output:\n%s", out)
	}
	if strings.Contains(out, "Plant Growth") {
		t.Errorf("filter leaked ISS studies:\n%s", out)
	}
	if !strings.Contains(out, "mode: heuristic") {
		t.Errorf("expected mode line:\n%s", out)
	}
}

func TestSearch_NoMatches(t *testing.T) {
	out, err := run(t, "", "search", "--year", "1999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No matching studies.") {
		t.Errorf("expected empty notice:\n%s", out)
	}
}

func TestSummarize_Stdin(t *testing.T) {
	text := "Astronauts lose bone density in microgravity. Resistive exercise slows the loss. " +
		"Bone density recovers slowly after landing. Diet also affects bone density in orbit."
	out, err := run(t, text, "summarize")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Abstract", "Key takeaways", "Astronauts lose bone density in microgravity."} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSummarize_EmptyText(t *testing.T) {
	if _, err := run(t, "", "summarize"); err == nil {
		t.Fatal("expected validation error for empty text")
	}
}

func TestChat_OneShot(t *testing.T) {
	out, err := run(t, "", "chat", "plant", "growth")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Plant Growth Dynamics in Spaceflight") {
		t.Errorf("expected nearest study in reply:\n%s", out)
	}
}

func TestChat_Interactive(t *testing.T) {
	out, err := run(t, "\nplant growth\n/quit\nignored\n", "chat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Count(out, "buddy>"); got != 1 {
		t.Errorf("expected one reply, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "Plant Growth Dynamics in Spaceflight") {
		t.Errorf("expected nearest study in reply:\n%s", out)
	}
}

func TestGaps_JSON(t *testing.T) {
	out, err := run(t, "", "gaps", "radiation", "-o", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var report astrobio.GapReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if report.Topic != "radiation" {
		t.Errorf("expected topic radiation, got %q", report.Topic)
	}
	if report.Narrative != "" {
		t.Errorf("expected no narrative in heuristic mode, got %q", report.Narrative)
	}
	if len(report.Items) == 0 {
		t.Error("expected gap items")
	}
}

func TestGaps_RequiresTopic(t *testing.T) {
	if _, err := run(t, "", "gaps"); err == nil {
		t.Fatal("expected error without topic")
	}
}

func TestTimeline_JSON(t *testing.T) {
	out, err := run(t, "", "timeline", "-o", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var tl astrobio.Timeline
	if err := json.Unmarshal([]byte(out), &tl); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	total := 0
	for _, m := range tl.Missions {
		total += m.Count
		if m.Summary != "" {
			t.Errorf("mission %s: unexpected summary in heuristic mode", m.Mission)
		}
		for i := 1; i < len(m.Items); i++ {
			if m.Items[i-1].Year > m.Items[i].Year {
				t.Errorf("mission %s: items not sorted by year", m.Mission)
			}
		}
	}
	if total != 5 {
		t.Errorf("expected 5 studies across missions, got %d", total)
	}
}

func TestCorpusFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	data := `documents:
  - id: c-1
    title: Yeast Aging in Orbit
    abstract: Yeast cultures aged faster aboard the station.
    year: 2020
    organism: Microbe
    mission: ISS
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "search", "yeast", "--corpus", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Yeast Aging in Orbit") {
		t.Errorf("expected file corpus study:\n%s", out)
	}
}

func TestClientOptions(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		key      string
		corpus   string
		want     int
		wantErr  bool
	}{
		{name: "none", provider: "none", want: 0},
		{name: "none with corpus", provider: "none", corpus: "docs.yaml", want: 1},
		{name: "gemini with key", provider: "gemini", key: "k", want: 1},
		{name: "openai with key and corpus", provider: "openai", key: "k", corpus: "docs.yaml", want: 2},
		{name: "anthropic with key", provider: "anthropic", key: "k", want: 1},
		{name: "unknown", provider: "cohere", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			providerName, apiKey, corpusPath = tt.provider, tt.key, tt.corpus

			opts, err := clientOptions()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(opts) != tt.want {
				t.Errorf("expected %d options, got %d", tt.want, len(opts))
			}
		})
	}
}

func TestClientOptions_KeyFromEnv(t *testing.T) {
	resetFlags()
	t.Setenv("OPENAI_API_KEY", "from-env")
	providerName = "openai"

	opts, err := clientOptions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts) != 1 {
		t.Errorf("expected provider option from env, got %d options", len(opts))
	}
}

func TestReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	if err := os.WriteFile(path, []byte("from file"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got, _ := readInput(strings.NewReader("stdin"), []string{"a", "b"}, path); got != "a b" {
		t.Errorf("args: got %q", got)
	}
	if got, _ := readInput(strings.NewReader("stdin"), nil, path); got != "from file" {
		t.Errorf("file: got %q", got)
	}
	if got, _ := readInput(strings.NewReader("stdin"), nil, ""); got != "stdin" {
		t.Errorf("stdin: got %q", got)
	}
	if _, err := readInput(nil, nil, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
