package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/astrobio/internal/domain"
	domchat "github.com/kailas-cloud/astrobio/internal/domain/chat"
	domdoc "github.com/kailas-cloud/astrobio/internal/domain/document"
	"github.com/kailas-cloud/astrobio/internal/domain/mode"
	"github.com/kailas-cloud/astrobio/internal/domain/text"
	"github.com/kailas-cloud/astrobio/internal/usecase/selector"
)

// Persona is the default system instruction for chat replies.
const Persona = "You are AstroBio Buddy, an assistant for NASA bioscience exploration. " +
	"Be concise, cite concepts from the provided demo corpus when relevant, and avoid fabricating sources."

const (
	greeting = "Hello! I am AstroBio Buddy running in offline mode. " +
		"Ask me about a topic such as microgravity, radiation or plant growth."
	matchReply = "You asked: %q. I am running in offline mode, so I can only point you to the demo corpus. " +
		"The closest study is %q (%s, %s, %d). Use Search and Summarize for more detail."
	noMatchReply = "You asked: %q. I am running in offline mode and found no study in the demo corpus " +
		"matching those terms. Try Search with broader keywords."
)

// Request is a validated chat request.
type Request struct {
	Conversation domchat.Conversation
	// System overrides Persona when non-empty.
	System string
}

// Service produces a single assistant reply for a conversation.
type Service struct {
	corpus Corpus
	sel    *selector.Selector
}

// New creates a chat service.
func New(corpus Corpus, sel *selector.Selector) *Service {
	return &Service{corpus: corpus, sel: sel}
}

// Reply answers the latest turn of the conversation.
func (s *Service) Reply(ctx context.Context, req Request) (string, mode.Mode, error) {
	out, m, err := selector.Run(ctx, s.sel, mode.Generate,
		func(ctx context.Context, ai selector.AI) (string, error) {
			system := strings.TrimSpace(req.System)
			if system == "" {
				system = Persona
			}
			return ai.Generate(ctx, domain.GenerateRequest{
				System: system,
				Prompt: req.Conversation.Transcript(domchat.HistoryWindow),
			})
		},
		func(context.Context) (string, error) {
			return s.offlineReply(req.Conversation)
		},
	)
	if err != nil {
		return "", m, fmt.Errorf("chat: %w", err)
	}
	return out, m, nil
}

// offlineReply quotes the last user message and names the closest study by keyword overlap.
func (s *Service) offlineReply(c domchat.Conversation) (string, error) {
	question := strings.TrimSpace(c.LastUserMessage())
	if question == "" {
		return greeting, nil
	}

	docs, err := s.corpus.All()
	if err != nil {
		return "", fmt.Errorf("load corpus: %w", err)
	}

	best, ok := nearest(text.NewTokenSet(question), docs)
	if !ok {
		return fmt.Sprintf(noMatchReply, question), nil
	}
	return fmt.Sprintf(matchReply, question, best.Title(), best.Organism(), best.Mission(), best.Year()), nil
}

// nearest returns the highest-overlap document; ties go to the earliest in corpus order.
func nearest(q text.TokenSet, docs []domdoc.Document) (domdoc.Document, bool) {
	var (
		best      domdoc.Document
		bestScore float64
	)
	for _, d := range docs {
		score := text.Overlap(q, text.NewTokenSet(d.SearchText()))
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best, bestScore > 0
}
