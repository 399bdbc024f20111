package astrobio

import "time"

// Mode names how a result was produced.
type Mode string

// Mode constants.
const (
	ModeAI        Mode = "ai"
	ModeHeuristic Mode = "heuristic"
)

// Document is a corpus study.
type Document struct {
	ID        string
	Title     string
	Abstract  string
	Organism  string
	Mission   string
	Year      int
	Tags      []string
	Embedding []float32
}

// Filter narrows by exact metadata match. Zero fields are ignored.
type Filter struct {
	Organism string
	Mission  string
	Year     int
}

// SearchResult is a single ranked study.
type SearchResult struct {
	ID       string
	Title    string
	Snippet  string
	Score    float64
	Organism string
	Mission  string
	Year     int
}

// SearchResponse is a ranked result list plus a note naming the scoring mode.
type SearchResponse struct {
	Results []SearchResult
	Note    string
	Usage   Usage
}

// Summary is an abstract, 3-5 key takeaways and topic tags.
type Summary struct {
	Abstract     string
	KeyTakeaways []string
	Tags         []string
	Usage        Usage
}

// ChatMessage is one conversation turn. Role is "user", "assistant" or "system".
type ChatMessage struct {
	Role    string
	Content string
}

// ChatReply is the assistant's answer.
type ChatReply struct {
	Text  string
	Usage Usage
}

// GapItem is an under-covered (organism, mission) pair.
type GapItem struct {
	Organism     string
	Mission      string
	Count        int
	YearFrom     int
	YearTo       int
	MissingYears []int
	Reason       string
}

// GapReport holds a narrative in AI mode and Items in heuristic mode.
type GapReport struct {
	Topic     string
	Narrative string
	Items     []GapItem
	Usage     Usage
}

// TimelineItem is one study within a mission.
type TimelineItem struct {
	ID       string
	Year     int
	Organism string
	Title    string
}

// MissionEntry groups the studies of one mission, sorted by year.
// Summary is empty in heuristic mode.
type MissionEntry struct {
	Mission string
	Count   int
	Summary string
	Items   []TimelineItem
}

// Timeline is the mission aggregation of the corpus.
type Timeline struct {
	Missions []MissionEntry
	Usage    Usage
}

// ListResult is a page of documents.
type ListResult struct {
	Documents  []Document
	NextCursor string
}

// Stats counts documents by organism, mission and year.
type Stats struct {
	Total      int
	ByOrganism map[string]int
	ByMission  map[string]int
	ByYear     map[int]int
}

// TokenUsage is the provider token budget for one period.
// TokensLimit 0 means unlimited, in which case TokensRemaining is -1.
type TokenUsage struct {
	Period          string
	Provider        string
	TokensUsed      int64
	TokensLimit     int64
	TokensRemaining int64
	Exhausted       bool
	ResetsAt        time.Time
}
