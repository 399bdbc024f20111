package gap

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/astrobio/internal/domain/mode"
)

// DefaultThreshold is the minimum document count for a covered pair.
const DefaultThreshold = 1

// MaxTopicLength bounds the topic text.
const MaxTopicLength = 512

// Reason explains why a pair was reported.
type Reason string

// Reason constants.
const (
	// ReasonUncovered means no topic-relevant study exists for the pair.
	ReasonUncovered Reason = "no studies on topic"
	ReasonSparse    Reason = "below coverage threshold"
	ReasonYearHoles Reason = "gaps in year coverage"
	ReasonSingle    Reason = "single year of coverage"
)

// Item is an under-covered (organism, mission) combination.
type Item struct {
	Organism     string
	Mission      string
	Count        int
	YearFrom     int
	YearTo       int
	// MissingYears lists the earliest holes in [YearFrom, YearTo], capped at 50.
	MissingYears []int
	Reason       Reason
}

// Report is the mode-agnostic gap analysis result.
// Narrative is set in AI mode, Items in heuristic mode.
type Report struct {
	Topic     string
	Mode      mode.Mode
	Narrative string
	Items     []Item
}

// Request is a validated gap analysis request.
type Request struct {
	topic     string
	threshold int
}

// NewRequest validates a gap analysis request.
func NewRequest(topic string, threshold int) (Request, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Request{}, fmt.Errorf("topic is required")
	}
	if len(topic) > MaxTopicLength {
		return Request{}, fmt.Errorf("topic too long (max %d chars)", MaxTopicLength)
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Request{topic: topic, threshold: threshold}, nil
}

// Topic returns the topic under analysis.
func (r *Request) Topic() string { return r.topic }

// Threshold returns the coverage threshold.
func (r *Request) Threshold() int { return r.threshold }
