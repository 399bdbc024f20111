package timeline

import "github.com/kailas-cloud/astrobio/internal/domain/mode"

// Item is one study within a mission.
type Item struct {
	ID       string
	Year     int
	Organism string
	Title    string
}

// Entry groups the studies of a single mission.
// Summary is empty unless every mission was narrated.
type Entry struct {
	Mission string
	Count   int
	Summary string
	Items   []Item
}

// Timeline is the mode-agnostic mission aggregation.
type Timeline struct {
	Mode     mode.Mode
	Missions []Entry
}

// Total returns the number of studies across all missions.
func (t Timeline) Total() int {
	n := 0
	for _, e := range t.Missions {
		n += e.Count
	}
	return n
}
