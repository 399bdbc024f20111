package chi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/astrobio/internal/domain/budget"
	domchat "github.com/kailas-cloud/astrobio/internal/domain/chat"
	domdoc "github.com/kailas-cloud/astrobio/internal/domain/document"
	domgap "github.com/kailas-cloud/astrobio/internal/domain/gap"
	"github.com/kailas-cloud/astrobio/internal/domain/search/filter"
	"github.com/kailas-cloud/astrobio/internal/domain/search/request"
	"github.com/kailas-cloud/astrobio/internal/domain/search/result"
	"github.com/kailas-cloud/astrobio/internal/domain/summary"
	domtl "github.com/kailas-cloud/astrobio/internal/domain/timeline"
	"github.com/kailas-cloud/astrobio/internal/usecase/health"
	searchuc "github.com/kailas-cloud/astrobio/internal/usecase/search"
)

// ErrorResponseCode is the machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest        ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed  ErrorResponseCode = "validation_failed"
	ErrorResponseCodeNotFound          ErrorResponseCode = "not_found"
	ErrorResponseCodeCorpusUnavailable ErrorResponseCode = "corpus_unavailable"
	ErrorResponseCodeInternalError     ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// --- Requests ---

// SummarizeRequest is the body of POST /summarize.
type SummarizeRequest struct {
	Text      string `json:"text" validate:"required,max=65536"`
	Language  string `json:"language" validate:"omitempty,max=16"`
	Takeaways int    `json:"takeaways" validate:"gte=0"`
}

// SearchFilters narrows search candidates by exact metadata match.
type SearchFilters struct {
	Organism string `json:"organism,omitempty"`
	Mission  string `json:"mission,omitempty"`
	Year     *int   `json:"year,omitempty" validate:"omitempty,gt=0"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query   string         `json:"query" validate:"max=4096"`
	Filters *SearchFilters `json:"filters,omitempty"`
	Limit   int            `json:"limit,omitempty" validate:"gte=0"`
}

// ChatMessage is a single turn in a chat request.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"max=16384"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,max=200,dive"`
	System   string        `json:"system,omitempty" validate:"max=16384"`
}

// GapRequest is the body of POST /gap_analyze.
type GapRequest struct {
	Topic     string `json:"topic" validate:"required,max=512"`
	Threshold int    `json:"threshold,omitempty" validate:"gte=0"`
}

// ListDocumentsParams are the query parameters of GET /documents.
type ListDocumentsParams struct {
	Organism *string
	Mission  *string
	Year     *int
	Cursor   *string
	Limit    *int
}

// --- Responses ---

// SummaryResponse is the mode-agnostic summary body.
type SummaryResponse struct {
	Abstract     string   `json:"abstract"`
	KeyTakeaways []string `json:"key_takeaways"`
	AITags       []string `json:"ai_tags"`
}

// ResultMeta carries document metadata for a search hit.
type ResultMeta struct {
	Organism string `json:"organism"`
	Mission  string `json:"mission"`
	Year     int    `json:"year"`
}

// SearchResultItem is a single ranked document.
type SearchResultItem struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Snippet string     `json:"snippet"`
	Score   float64    `json:"score"`
	Meta    ResultMeta `json:"meta"`
}

// SearchResponse is the body of POST /search.
type SearchResponse struct {
	Results []SearchResultItem `json:"results"`
	Note    string             `json:"note"`
}

// ChatResponse is the body of POST /chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// GapItem is an under-covered (organism, mission) pair.
type GapItem struct {
	Organism     string `json:"organism"`
	Mission      string `json:"mission"`
	Count        int    `json:"count"`
	YearFrom     int    `json:"year_from,omitempty"`
	YearTo       int    `json:"year_to,omitempty"`
	MissingYears []int  `json:"missing_years,omitempty"`
	Reason       string `json:"reason"`
}

// GapResponse is the body of POST /gap_analyze.
// Gaps is a narrative string in AI mode and a []GapItem in heuristic mode.
type GapResponse struct {
	Topic string `json:"topic"`
	Mode  string `json:"mode"`
	Gaps  any    `json:"gaps"`
}

// TimelineItem is a single study in a mission.
type TimelineItem struct {
	ID       string `json:"id"`
	Year     int    `json:"year"`
	Organism string `json:"organism"`
	Title    string `json:"title"`
}

// MissionEntry groups the studies of one mission.
type MissionEntry struct {
	Mission string         `json:"mission"`
	Count   int            `json:"count"`
	Summary string         `json:"summary,omitempty"`
	Items   []TimelineItem `json:"items"`
}

// TimelineResponse is the body of GET /timeline.
type TimelineResponse struct {
	Missions []MissionEntry `json:"missions"`
}

// DocumentResponse is a single corpus document.
type DocumentResponse struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	Organism string   `json:"organism"`
	Mission  string   `json:"mission"`
	Year     int      `json:"year"`
	Tags     []string `json:"tags"`
}

// DocumentListResponse is a page of documents.
type DocumentListResponse struct {
	Items      []DocumentResponse `json:"items"`
	NextCursor *string            `json:"next_cursor,omitempty"`
	HasMore    bool               `json:"has_more"`
}

// StatsResponse aggregates the corpus.
type StatsResponse struct {
	Total      int            `json:"total"`
	ByOrganism map[string]int `json:"by_organism"`
	ByMission  map[string]int `json:"by_mission"`
	ByYear     map[int]int    `json:"by_year"`
}

// UsageResponse is the provider token budget for one period.
// TokensLimit 0 means unlimited, in which case TokensRemaining is -1.
type UsageResponse struct {
	Period          string `json:"period"`
	Provider        string `json:"provider,omitempty"`
	PeriodStartMs   int64  `json:"period_start_ms"`
	PeriodEndMs     int64  `json:"period_end_ms"`
	TokensUsed      int64  `json:"tokens_used"`
	TokensLimit     int64  `json:"tokens_limit"`
	TokensRemaining int64  `json:"tokens_remaining"`
	Exhausted       bool   `json:"exhausted"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Documents int               `json:"documents"`
	Provider  string            `json:"provider,omitempty"`
}

// --- Converters ---

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func summaryRequestFromDTO(req SummarizeRequest) (summary.Request, error) {
	r, err := summary.NewRequest(req.Text, req.Language, req.Takeaways)
	if err != nil {
		return summary.Request{}, fmt.Errorf("build summary request: %w", err)
	}
	return r, nil
}

func searchRequestFromDTO(req SearchRequest) (request.Request, error) {
	var f filter.Filter
	if req.Filters != nil {
		var err error
		f, err = filter.New(req.Filters.Organism, req.Filters.Mission, req.Filters.Year)
		if err != nil {
			return request.Request{}, fmt.Errorf("parse filters: %w", err)
		}
	}
	r, err := request.New(req.Query, f, req.Limit)
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return r, nil
}

func conversationFromDTO(msgs []ChatMessage) (domchat.Conversation, error) {
	turns := make([]domchat.Turn, 0, len(msgs))
	for i, m := range msgs {
		t, err := domchat.NewTurn(domchat.Role(m.Role), m.Content)
		if err != nil {
			return domchat.Conversation{}, fmt.Errorf("message %d: %w", i, err)
		}
		turns = append(turns, t)
	}
	c, err := domchat.NewConversation(turns)
	if err != nil {
		return domchat.Conversation{}, fmt.Errorf("build conversation: %w", err)
	}
	return c, nil
}

func summaryToDTO(s summary.Summary) SummaryResponse {
	return SummaryResponse{
		Abstract:     s.Abstract,
		KeyTakeaways: nonNil(s.KeyTakeaways),
		AITags:       nonNil(s.Tags),
	}
}

func searchResponseToDTO(resp searchuc.Response) SearchResponse {
	items := make([]SearchResultItem, len(resp.Results))
	for i := range resp.Results {
		items[i] = searchResultToDTO(&resp.Results[i])
	}
	return SearchResponse{Results: items, Note: resp.Note()}
}

func searchResultToDTO(r *result.Result) SearchResultItem {
	return SearchResultItem{
		ID:      r.ID(),
		Title:   r.Title(),
		Snippet: r.Snippet(),
		Score:   r.Score(),
		Meta: ResultMeta{
			Organism: r.Organism(),
			Mission:  r.Mission(),
			Year:     r.Year(),
		},
	}
}

func gapReportToDTO(r domgap.Report) GapResponse {
	resp := GapResponse{Topic: r.Topic, Mode: string(r.Mode)}
	if r.Narrative != "" {
		resp.Gaps = r.Narrative
		return resp
	}
	items := make([]GapItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = GapItem{
			Organism:     it.Organism,
			Mission:      it.Mission,
			Count:        it.Count,
			YearFrom:     it.YearFrom,
			YearTo:       it.YearTo,
			MissingYears: it.MissingYears,
			Reason:       string(it.Reason),
		}
	}
	resp.Gaps = items
	return resp
}

func timelineToDTO(tl domtl.Timeline) TimelineResponse {
	missions := make([]MissionEntry, len(tl.Missions))
	for i, e := range tl.Missions {
		items := make([]TimelineItem, len(e.Items))
		for j, it := range e.Items {
			items[j] = TimelineItem{ID: it.ID, Year: it.Year, Organism: it.Organism, Title: it.Title}
		}
		missions[i] = MissionEntry{Mission: e.Mission, Count: e.Count, Summary: e.Summary, Items: items}
	}
	return TimelineResponse{Missions: missions}
}

func documentToDTO(d *domdoc.Document) DocumentResponse {
	return DocumentResponse{
		ID:       d.ID(),
		Title:    d.Title(),
		Abstract: d.Abstract(),
		Organism: d.Organism(),
		Mission:  d.Mission(),
		Year:     d.Year(),
		Tags:     nonNil(d.Tags()),
	}
}

func statsToDTO(s domdoc.Stats) StatsResponse {
	return StatsResponse{
		Total:      s.Total,
		ByOrganism: s.ByOrganism,
		ByMission:  s.ByMission,
		ByYear:     s.ByYear,
	}
}

func usageToDTO(r budget.Report) UsageResponse {
	return UsageResponse{
		Period:          string(r.Period()),
		Provider:        r.Provider(),
		PeriodStartMs:   r.PeriodStart(),
		PeriodEndMs:     r.PeriodEnd(),
		TokensUsed:      r.TokensUsed(),
		TokensLimit:     r.TokensLimit(),
		TokensRemaining: r.Remaining(),
		Exhausted:       r.Exhausted(),
	}
}

func healthToDTO(r health.Report) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{
		Status:    string(r.Status),
		Checks:    checks,
		Documents: r.Documents,
		Provider:  r.Provider,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
