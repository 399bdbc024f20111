package document

// Stats aggregates corpus counts by organism, mission and year.
type Stats struct {
	Total      int
	ByOrganism map[string]int
	ByMission  map[string]int
	ByYear     map[int]int
}

// Aggregate computes Stats over docs.
func Aggregate(docs []Document) Stats {
	s := Stats{
		Total:      len(docs),
		ByOrganism: make(map[string]int),
		ByMission:  make(map[string]int),
		ByYear:     make(map[int]int),
	}
	for i := range docs {
		s.ByOrganism[docs[i].organism]++
		s.ByMission[docs[i].mission]++
		s.ByYear[docs[i].year]++
	}
	return s
}
