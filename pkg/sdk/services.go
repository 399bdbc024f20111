package astrobio

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/astrobio/internal/domain/budget"
	domgap "github.com/kailas-cloud/astrobio/internal/domain/gap"
	"github.com/kailas-cloud/astrobio/internal/domain/search/request"
	"github.com/kailas-cloud/astrobio/internal/domain/summary"
	chatuc "github.com/kailas-cloud/astrobio/internal/usecase/chat"
)

// Search ranks the corpus against query after applying f. limit <= 0 means 10.
// An empty query browses the filtered corpus in its stored order.
func (c *Client) Search(ctx context.Context, query string, f Filter, limit int) (resp SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, &resp.Usage, err) }()

	flt, err := toInternalFilter(f)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}
	req, err := request.New(query, flt, max(limit, 0))
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", validation(err))
	}

	scope := newUsageScope(ctx)
	out, err := c.searchSvc.Search(scope.ctx, &req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}

	results := make([]SearchResult, len(out.Results))
	for i := range out.Results {
		r := &out.Results[i]
		results[i] = SearchResult{
			ID:       r.ID(),
			Title:    r.Title(),
			Snippet:  r.Snippet(),
			Score:    r.Score(),
			Organism: r.Organism(),
			Mission:  r.Mission(),
			Year:     r.Year(),
		}
	}
	return SearchResponse{Results: results, Note: out.Note(), Usage: scope.report(out.Mode)}, nil
}

// Summarize condenses text into an abstract, takeaways and tags. language
// defaults to "en"; takeaways defaults to 3 and is capped at 5.
func (c *Client) Summarize(ctx context.Context, text, language string, takeaways int) (s Summary, err error) {
	start := time.Now()
	defer func() { c.obs.observe("summarize", start, &s.Usage, err) }()

	req, err := summary.NewRequest(text, language, takeaways)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", validation(err))
	}

	scope := newUsageScope(ctx)
	out, m, err := c.summarizeSvc.Summarize(scope.ctx, req)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}
	return Summary{
		Abstract:     out.Abstract,
		KeyTakeaways: out.KeyTakeaways,
		Tags:         out.Tags,
		Usage:        scope.report(m),
	}, nil
}

// Chat answers the last user message of the conversation.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (reply ChatReply, err error) {
	start := time.Now()
	defer func() { c.obs.observe("chat", start, &reply.Usage, err) }()

	conv, err := toConversation(messages)
	if err != nil {
		return ChatReply{}, fmt.Errorf("chat: %w", err)
	}

	scope := newUsageScope(ctx)
	text, m, err := c.chatSvc.Reply(scope.ctx, chatuc.Request{Conversation: conv})
	if err != nil {
		return ChatReply{}, fmt.Errorf("chat: %w", err)
	}
	return ChatReply{Text: text, Usage: scope.report(m)}, nil
}

// Gaps reports under-covered (organism, mission) combinations for topic.
// threshold <= 0 means 1.
func (c *Client) Gaps(ctx context.Context, topic string, threshold int) (report GapReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("gaps", start, &report.Usage, err) }()

	req, err := domgap.NewRequest(topic, threshold)
	if err != nil {
		return GapReport{}, fmt.Errorf("gaps: %w", validation(err))
	}

	scope := newUsageScope(ctx)
	out, err := c.gapSvc.Analyze(scope.ctx, req)
	if err != nil {
		return GapReport{}, fmt.Errorf("gaps: %w", err)
	}

	var items []GapItem
	if out.Items != nil {
		items = make([]GapItem, len(out.Items))
		for i, it := range out.Items {
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
	}
	return GapReport{
		Topic:     out.Topic,
		Narrative: out.Narrative,
		Items:     items,
		Usage:     scope.report(out.Mode),
	}, nil
}

// Timeline groups the corpus by mission.
func (c *Client) Timeline(ctx context.Context) (tl Timeline, err error) {
	start := time.Now()
	defer func() { c.obs.observe("timeline", start, &tl.Usage, err) }()

	scope := newUsageScope(ctx)
	out, err := c.timelineSvc.Build(scope.ctx)
	if err != nil {
		return Timeline{}, fmt.Errorf("timeline: %w", err)
	}

	missions := make([]MissionEntry, len(out.Missions))
	for i, e := range out.Missions {
		items := make([]TimelineItem, len(e.Items))
		for j, it := range e.Items {
			items[j] = TimelineItem{ID: it.ID, Year: it.Year, Organism: it.Organism, Title: it.Title}
		}
		missions[i] = MissionEntry{Mission: e.Mission, Count: e.Count, Summary: e.Summary, Items: items}
	}
	return Timeline{Missions: missions, Usage: scope.report(out.Mode)}, nil
}

// Document retrieves a study by ID.
func (c *Client) Document(ctx context.Context, id string) (doc Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("document.get", start, nil, err) }()

	d, err := c.docSvc.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(&d), nil
}

// Documents returns a page of studies matching f, in corpus order.
func (c *Client) Documents(ctx context.Context, f Filter, cursor string, limit int) (res ListResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("document.list", start, nil, err) }()

	flt, err := toInternalFilter(f)
	if err != nil {
		return ListResult{}, fmt.Errorf("list documents: %w", err)
	}
	docs, next, err := c.docSvc.List(ctx, flt, cursor, limit)
	if err != nil {
		return ListResult{}, fmt.Errorf("list documents: %w", err)
	}
	out := make([]Document, len(docs))
	for i := range docs {
		out[i] = fromInternalDocument(&docs[i])
	}
	return ListResult{Documents: out, NextCursor: next}, nil
}

// Stats counts the corpus by organism, mission and year.
func (c *Client) Stats(ctx context.Context) (st Stats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("stats", start, nil, err) }()

	s, err := c.docSvc.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return Stats{Total: s.Total, ByOrganism: s.ByOrganism, ByMission: s.ByMission, ByYear: s.ByYear}, nil
}

// TokenUsage reports provider tokens spent in period ("day" or "month";
// empty means day).
func (c *Client) TokenUsage(ctx context.Context, period string) (u TokenUsage, err error) {
	start := time.Now()
	defer func() { c.obs.observe("token_usage", start, nil, err) }()

	p, err := budget.ParsePeriod(period)
	if err != nil {
		return TokenUsage{}, validation(err)
	}
	r := c.usageSvc.Report(ctx, p)
	return TokenUsage{
		Period:          string(r.Period()),
		Provider:        r.Provider(),
		TokensUsed:      r.TokensUsed(),
		TokensLimit:     r.TokensLimit(),
		TokensRemaining: r.Remaining(),
		Exhausted:       r.Exhausted(),
		ResetsAt:        time.UnixMilli(r.ResetsAt()).UTC(),
	}, nil
}
