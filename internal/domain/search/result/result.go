package result

// Result is a single search hit.
type Result struct {
	id       string
	title    string
	snippet  string
	score    float64
	organism string
	mission  string
	year     int
}

// New creates a search result.
func New(id, title, snippet string, score float64, organism, mission string, year int) Result {
	return Result{
		id: id, title: title, snippet: snippet, score: score,
		organism: organism, mission: mission, year: year,
	}
}

// ID returns the document identifier.
func (r *Result) ID() string { return r.id }

// Title returns the document title.
func (r *Result) Title() string { return r.title }

// Snippet returns the bounded abstract prefix.
func (r *Result) Snippet() string { return r.snippet }

// Score returns the relevance score in [0, 1].
func (r *Result) Score() float64 { return r.score }

// Organism returns the document organism.
func (r *Result) Organism() string { return r.organism }

// Mission returns the document mission.
func (r *Result) Mission() string { return r.mission }

// Year returns the document year.
func (r *Result) Year() int { return r.year }
