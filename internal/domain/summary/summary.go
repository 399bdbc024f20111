package summary

import (
	"fmt"
	"strings"
)

// Takeaway limits.
const (
	DefaultTakeaways = 3
	MaxTakeaways     = 5
	MinTakeaways     = 1
	// MaxTextSize bounds the text accepted for summarization.
	MaxTextSize = 65536
)

// Summary is the mode-agnostic summarization result.
type Summary struct {
	Abstract     string
	KeyTakeaways []string
	Tags         []string
}

// Request is a validated summarization request.
type Request struct {
	text      string
	language  string
	takeaways int
}

// NewRequest validates a summarization request. Language defaults to "en",
// takeaways default to 3 and are capped at 5.
func NewRequest(text, language string, takeaways int) (Request, error) {
	if strings.TrimSpace(text) == "" {
		return Request{}, fmt.Errorf("text is required")
	}
	if len(text) > MaxTextSize {
		return Request{}, fmt.Errorf("text too large (max %d bytes)", MaxTextSize)
	}
	if language == "" {
		language = "en"
	}
	if takeaways <= 0 {
		takeaways = DefaultTakeaways
	}
	if takeaways > MaxTakeaways {
		takeaways = MaxTakeaways
	}
	return Request{text: text, language: language, takeaways: takeaways}, nil
}

// Text returns the text to summarize.
func (r *Request) Text() string { return r.text }

// Language returns the requested output language.
func (r *Request) Language() string { return r.language }

// Takeaways returns the number of key takeaways to produce.
func (r *Request) Takeaways() int { return r.takeaways }
