package text

import "strings"

type rule struct {
	label    string
	keywords []string
}

// Rules are checked in order; the first match wins.
var organismRules = []rule{
	{"Human", []string{"human", "astronaut", "crew", "personnel", "person"}},
	{"Plant", []string{"plant", "arabidopsis", "crop", "vegetation", "botanical"}},
	{"Microbe", []string{"microbe", "bacteria", "virus", "microbial", "pathogen"}},
	{"Animal", []string{"animal", "mouse", "rat", "rodent", "mammal"}},
}

var domainRules = []rule{
	{"Microgravity", []string{"microgravity", "weightless", "zero gravity"}},
	{"Radiation", []string{"radiation", "cosmic ray", "solar particle"}},
	{"Bone/Musculoskeletal", []string{"bone", "skeleton", "osteo", "density"}},
	{"Immunology", []string{"immune", "immunity", "infection"}},
	{"Cardiovascular", []string{"cardiovascular", "heart", "circulation"}},
	{"Psychology/Behavior", []string{"psychological", "behavior", "stress"}},
}

// Fallback labels.
const (
	OtherOrganism = "Other"
	GeneralDomain = "General"
)

// ClassifyOrganism labels the studied organism from title and abstract keywords.
func ClassifyOrganism(title, abstract string) string {
	return classify(title+" "+abstract, organismRules, OtherOrganism)
}

// ClassifyDomain labels the research domain from title and abstract keywords.
func ClassifyDomain(title, abstract string) string {
	return classify(title+" "+abstract, domainRules, GeneralDomain)
}

func classify(s string, rules []rule, fallback string) string {
	s = strings.ToLower(s)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(s, kw) {
				return r.label
			}
		}
	}
	return fallback
}
