package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/astrobio/internal/domain"
	"github.com/kailas-cloud/astrobio/internal/domain/summary"
	"github.com/kailas-cloud/astrobio/internal/repository/corpus"
	chatuc "github.com/kailas-cloud/astrobio/internal/usecase/chat"
	documentuc "github.com/kailas-cloud/astrobio/internal/usecase/document"
	gapuc "github.com/kailas-cloud/astrobio/internal/usecase/gap"
	healthuc "github.com/kailas-cloud/astrobio/internal/usecase/health"
	searchuc "github.com/kailas-cloud/astrobio/internal/usecase/search"
	"github.com/kailas-cloud/astrobio/internal/usecase/selector"
	summarizeuc "github.com/kailas-cloud/astrobio/internal/usecase/summarize"
	timelineuc "github.com/kailas-cloud/astrobio/internal/usecase/timeline"
	usageuc "github.com/kailas-cloud/astrobio/internal/usecase/usage"
)

// --- Helpers ---

type failingAI struct{}

func (failingAI) Name() string             { return "failing" }
func (failingAI) SupportsEmbeddings() bool { return true }
func (failingAI) Summarize(context.Context, summary.Request) (summary.Summary, error) {
	return summary.Summary{}, domain.ErrProviderError
}
func (failingAI) Embed(context.Context, string) ([]float32, error) { return nil, domain.ErrProviderError }
func (failingAI) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, domain.ErrProviderError
}
func (failingAI) Generate(context.Context, domain.GenerateRequest) (string, error) {
	return "", domain.ErrProviderError
}

func newTestServer(t *testing.T, store *corpus.Store, sel *selector.Selector) http.Handler {
	t.Helper()
	svc := Services{
		Summarize: summarizeuc.New(sel),
		Search:    searchuc.New(store, sel),
		Chat:      chatuc.New(store, sel),
		Gap:       gapuc.New(store, sel),
		Timeline:  timelineuc.New(store, sel),
		Documents: documentuc.New(store),
		Health:    healthuc.New(store, nil, nil, sel.ProviderName()),
		Usage:     usageuc.New(nil, sel.ProviderName()),
	}
	return NewServer(svc, zap.NewNop()).Handler()
}

func builtinStore(t *testing.T) *corpus.Store {
	t.Helper()
	store, err := corpus.Load(context.Background(), corpus.BuiltinLoader{})
	if err != nil {
		t.Fatalf("load builtin corpus: %v", err)
	}
	return store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

// --- Tests ---

func TestSearch_Heuristic(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))

	rec := do(t, h, http.MethodPost, "/api/v1/search", `{"query":"microgravity bone","filters":{"organism":"Human"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp SearchResponse
	decodeBody(t, rec, &resp)
	if resp.Note != "Heuristic keyword search" {
		t.Errorf("unexpected note %q", resp.Note)
	}
	if len(resp.Results) == 0 || resp.Results[0].ID != "astro-1" {
		t.Fatalf("expected astro-1 first, got %+v", resp.Results)
	}
	for _, r := range resp.Results {
		if r.Meta.Organism != "Human" {
			t.Errorf("filter leak: %+v", r)
		}
	}
	if rec.Header().Get(HeaderMode) != "heuristic" {
		t.Errorf("mode header = %q", rec.Header().Get(HeaderMode))
	}
}

func TestSearch_NoMatchingFilterIsEmptyList(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))

	rec := do(t, h, http.MethodPost, "/api/v1/search", `{"query":"","filters":{"mission":"Artemis"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"results":[]`) {
		t.Errorf("expected an empty results array, got %s", rec.Body.String())
	}
}

func TestSearch_FallbackHeaders(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.New(failingAI{}, zap.NewNop()))

	rec := do(t, h, http.MethodPost, "/api/v1/search", `{"query":"radiation seeds"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(HeaderMode) != "heuristic" || rec.Header().Get(HeaderFallbacks) != "1" {
		t.Errorf("unexpected headers %v", rec.Header())
	}
}

func TestSearch_ValidationErrors(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"query":`},
		{"negative year", `{"query":"x","filters":{"year":-1}}`},
		{"negative limit", `{"query":"x","limit":-5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/search", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var e ErrorResponse
			decodeBody(t, rec, &e)
			if e.Code == "" || e.Message == "" {
				t.Errorf("expected code and message, got %+v", e)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))

	body := `{"text":"Microgravity accelerates bone loss. Exercise helps. Nutrition matters too. Recovery is slow.","language":"en"}`
	rec := do(t, h, http.MethodPost, "/api/v1/summarize", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp SummaryResponse
	decodeBody(t, rec, &resp)
	if resp.Abstract == "" || len(resp.KeyTakeaways) != 3 || resp.AITags == nil {
		t.Errorf("unexpected summary %+v", resp)
	}
}

func TestSummarize_MissingText(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))
	rec := do(t, h, http.MethodPost, "/api/v1/summarize", `{"language":"en"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChat(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))

	rec := do(t, h, http.MethodPost, "/api/v1/chat", `{"messages":[{"role":"user","content":"Tell me about plant growth"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ChatResponse
	decodeBody(t, rec, &resp)
	if !strings.Contains(resp.Reply, "Plant Growth Dynamics in Spaceflight") {
		t.Errorf("unexpected reply %q", resp.Reply)
	}
}

func TestChat_Validation(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))

	for _, body := range []string{`{"messages":[]}`, `{"messages":[{"role":"robot","content":"hi"}]}`} {
		rec := do(t, h, http.MethodPost, "/api/v1/chat", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestGapAnalyze_HeuristicList(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))

	rec := do(t, h, http.MethodPost, "/api/v1/gap_analyze", `{"topic":"radiation"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Topic string    `json:"topic"`
		Mode  string    `json:"mode"`
		Gaps  []GapItem `json:"gaps"`
	}
	decodeBody(t, rec, &resp)
	if resp.Topic != "radiation" || resp.Mode != "heuristic" || len(resp.Gaps) == 0 {
		t.Errorf("unexpected gap response %+v", resp)
	}
}

func TestGapAnalyze_MissingTopic(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))
	rec := do(t, h, http.MethodPost, "/api/v1/gap_analyze", `{"topic":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTimeline(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))

	rec := do(t, h, http.MethodGet, "/api/v1/timeline", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp TimelineResponse
	decodeBody(t, rec, &resp)
	total := 0
	for _, m := range resp.Missions {
		total += m.Count
		for i := 1; i < len(m.Items); i++ {
			if m.Items[i-1].Year > m.Items[i].Year {
				t.Errorf("mission %s items not sorted by year", m.Mission)
			}
		}
	}
	if total != 5 {
		t.Errorf("expected 5 studies, got %d", total)
	}
	if strings.Contains(rec.Body.String(), `"summary"`) {
		t.Error("heuristic timeline must omit summary")
	}
}

func TestDocuments(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))

	rec := do(t, h, http.MethodGet, "/api/v1/documents?organism=Plant&limit=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var list DocumentListResponse
	decodeBody(t, rec, &list)
	if len(list.Items) != 1 || !list.HasMore || list.NextCursor == nil {
		t.Fatalf("unexpected page %+v", list)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/documents?year=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a malformed year, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/documents/astro-3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc DocumentResponse
	decodeBody(t, rec, &doc)
	if doc.ID != "astro-3" || doc.Mission != "ISS" {
		t.Errorf("unexpected document %+v", doc)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/documents/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))

	rec := do(t, h, http.MethodGet, "/api/v1/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var st StatsResponse
	decodeBody(t, rec, &st)
	if st.Total != 5 || st.ByMission["ISS"] != 4 || st.ByYear[2014] != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestCorpusUnavailable(t *testing.T) {
	h := newTestServer(t, corpus.Unavailable(errors.New("redis down")), selector.Heuristic(nil))

	rec := do(t, h, http.MethodPost, "/api/v1/search", `{"query":"bone"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "redis down") {
		t.Error("internal detail leaked to the client")
	}

	rec = do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 health, got %d", rec.Code)
	}
	var hr HealthResponse
	decodeBody(t, rec, &hr)
	if hr.Status != "degraded" || hr.Checks["corpus"] != "error" {
		t.Errorf("unexpected health %+v", hr)
	}
}

func TestHealth_OK(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))
	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

type quotaChecker struct{}

func (quotaChecker) HealthCheck(context.Context) error { return errors.New("quota exceeded") }

func TestHealth_ProviderFailureKeepsServing(t *testing.T) {
	store := builtinStore(t)
	svc := Services{Health: healthuc.New(store, nil, quotaChecker{}, "gemini")}
	h := NewServer(svc, zap.NewNop()).Handler()

	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 while heuristic mode serves, got %d", rec.Code)
	}
	var hr HealthResponse
	decodeBody(t, rec, &hr)
	if hr.Status != "ok" || hr.Checks["corpus"] != "ok" || hr.Checks["provider"] != "error" {
		t.Errorf("unexpected health %+v", hr)
	}
}

func TestSummarize_ServerDefaults(t *testing.T) {
	store := builtinStore(t)
	sel := selector.Heuristic(nil)
	svc := Services{
		Summarize: summarizeuc.New(sel),
		Health:    healthuc.New(store, nil, nil, ""),
	}
	h := NewServer(svc, zap.NewNop()).WithDefaults(Defaults{Takeaways: 4}).Handler()

	body := `{"text":"One sentence here. Two sentences here. Three sentences here. Four sentences here. Five."}`
	rec := do(t, h, http.MethodPost, "/api/v1/summarize", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp SummaryResponse
	decodeBody(t, rec, &resp)
	if len(resp.KeyTakeaways) != 4 {
		t.Errorf("expected 4 takeaways from server default, got %d", len(resp.KeyTakeaways))
	}
}

func TestUsage_Unlimited(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))

	rec := do(t, h, http.MethodGet, "/api/v1/usage?period=month", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp UsageResponse
	decodeBody(t, rec, &resp)
	if resp.Period != "month" {
		t.Errorf("expected month, got %q", resp.Period)
	}
	if resp.TokensLimit != 0 || resp.TokensRemaining != -1 || resp.Exhausted {
		t.Errorf("expected unlimited report, got %+v", resp)
	}
	if resp.PeriodEndMs <= resp.PeriodStartMs {
		t.Errorf("expected period end after start, got %d..%d", resp.PeriodStartMs, resp.PeriodEndMs)
	}
}

func TestUsage_DefaultsToDay(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))

	rec := do(t, h, http.MethodGet, "/api/v1/usage", "")
	var resp UsageResponse
	decodeBody(t, rec, &resp)
	if resp.Period != "day" {
		t.Errorf("expected day, got %q", resp.Period)
	}
}

func TestUsage_InvalidPeriod(t *testing.T) {
	h := newTestServer(t, builtinStore(t), selector.Heuristic(nil))

	rec := do(t, h, http.MethodGet, "/api/v1/usage?period=year", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var e ErrorResponse
	decodeBody(t, rec, &e)
	if e.Code != ErrorResponseCodeValidationFailed {
		t.Errorf("expected validation code, got %q", e.Code)
	}
}
