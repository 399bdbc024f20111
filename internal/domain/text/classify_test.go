package text

import "testing"

func TestClassifyOrganism(t *testing.T) {
	tests := []struct {
		title, abstract, want string
	}{
		{"Bone Loss in Astronauts", "", "Human"},
		{"Root Growth", "Arabidopsis roots bend.", "Plant"},
		{"Biofilms", "Bacteria form biofilms.", "Microbe"},
		{"Rodent Habitat", "Mouse behavior onboard.", "Animal"},
		{"Fluid Physics", "Capillary flow.", "Other"},
		{"Crew and plants", "", "Human"},
	}
	for _, tt := range tests {
		if got := ClassifyOrganism(tt.title, tt.abstract); got != tt.want {
			t.Errorf("ClassifyOrganism(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestClassifyDomain(t *testing.T) {
	tests := []struct {
		title, abstract, want string
	}{
		{"Weightless fluids", "", "Microgravity"},
		{"Seeds", "Cosmic ray exposure.", "Radiation"},
		{"Osteoporosis", "Osteoclast activity.", "Bone/Musculoskeletal"},
		{"Vaccines", "Immunity wanes.", "Immunology"},
		{"Heart rate", "", "Cardiovascular"},
		{"Isolation", "Crew stress levels.", "Psychology/Behavior"},
		{"Habitat design", "", "General"},
	}
	for _, tt := range tests {
		if got := ClassifyDomain(tt.title, tt.abstract); got != tt.want {
			t.Errorf("ClassifyDomain(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
