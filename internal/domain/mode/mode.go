package mode

// Mode is the execution strategy chosen for a capability.
type Mode string

// Mode constants.
const (
	// AI delegates to the configured provider.
	AI        Mode = "ai"
	Heuristic Mode = "heuristic"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == AI || m == Heuristic
}

// Note is the human-readable label returned with search responses.
func (m Mode) Note() string {
	if m == AI {
		return "AI semantic search"
	}
	return "Heuristic keyword search"
}

// Capability is a unit of work that can run in either mode.
type Capability string

// Capability constants.
const (
	Summarize Capability = "summarize"
	Embed     Capability = "embed"
	// Generate covers chat replies.
	Generate Capability = "generate"
	// Analyze covers gap analysis narratives.
	Analyze Capability = "analyze"
	// Narrate covers timeline mission summaries.
	Narrate Capability = "narrate"
)

// Capabilities lists every capability in a stable order.
func Capabilities() []Capability {
	return []Capability{Summarize, Embed, Generate, Analyze, Narrate}
}

// IsValid checks if the capability is known.
func (c Capability) IsValid() bool {
	switch c {
	case Summarize, Embed, Generate, Analyze, Narrate:
		return true
	}
	return false
}

// NeedsEmbeddings reports whether the capability requires an embedding model.
func (c Capability) NeedsEmbeddings() bool { return c == Embed }
