package provider

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/astrobio/internal/domain"
	"github.com/kailas-cloud/astrobio/internal/domain/summary"
)

func mustRequest(t *testing.T, text, lang string, k int) summary.Request {
	t.Helper()
	req, err := summary.NewRequest(text, lang, k)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return req
}

func TestAdapter_Summarize(t *testing.T) {
	inner := &mockProvider{genRes: domain.GenerateResult{
		Text: `{"abstract":"Bone loss in orbit.","key_takeaways":["a","b","c","d"],` +
			`"ai_tags":["Bone","bone","Microgravity"]}`,
		TotalTokens: 42,
	}}
	a := NewAdapter(inner)

	ctx, usage := domain.NewContextWithUsage(context.Background())
	got, err := a.Summarize(ctx, mustRequest(t, "Some text.", "es", 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Abstract != "Bone loss in orbit." {
		t.Errorf("abstract = %q", got.Abstract)
	}
	if len(got.KeyTakeaways) != 3 {
		t.Errorf("expected takeaways capped at 3, got %v", got.KeyTakeaways)
	}
	if len(got.Tags) != 2 {
		t.Errorf("expected case-insensitive tag dedupe, got %v", got.Tags)
	}
	if !inner.lastReq.JSON {
		t.Error("expected a JSON request")
	}
	if !strings.Contains(inner.lastReq.System, "Target language code: es") {
		t.Errorf("system prompt missing language: %q", inner.lastReq.System)
	}
	if calls, tokens, _ := usage.Snapshot(); calls != 1 || tokens != 42 {
		t.Errorf("usage = (%d, %d), want (1, 42)", calls, tokens)
	}
}

func TestAdapter_SummarizeCodeFence(t *testing.T) {
	inner := &mockProvider{genRes: domain.GenerateResult{
		Text: "```json\n{\"abstract\":\"x\",\"key_takeaways\":[\"y\"],\"ai_tags\":[]}\n```",
	}}
	got, err := NewAdapter(inner).Summarize(context.Background(), mustRequest(t, "t", "", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Abstract != "x" || len(got.KeyTakeaways) != 1 {
		t.Errorf("unexpected summary %+v", got)
	}
}

func TestAdapter_SummarizeMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "Here is your summary: bones."},
		{"missing field", `{"abstract":"x","ai_tags":[]}`},
		{"wrong type", `{"abstract":"x","key_takeaways":"y","ai_tags":[]}`},
		{"blank takeaways", `{"abstract":"x","key_takeaways":["  "],"ai_tags":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &mockProvider{genRes: domain.GenerateResult{Text: tt.text}}
			_, err := NewAdapter(inner).Summarize(context.Background(), mustRequest(t, "t", "", 0))
			if !errors.Is(err, domain.ErrProviderError) {
				t.Fatalf("expected ErrProviderError, got %v", err)
			}
		})
	}
}

func TestAdapter_GenerateEmpty(t *testing.T) {
	inner := &mockProvider{genRes: domain.GenerateResult{Text: "   "}}
	_, err := NewAdapter(inner).Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})
	if !errors.Is(err, domain.ErrProviderError) {
		t.Fatalf("expected ErrProviderError, got %v", err)
	}
}

func TestAdapter_EmbedBatchUsesNativeBatching(t *testing.T) {
	inner := &mockBatchProvider{mockProvider: mockProvider{
		embeds:   true,
		embedRes: domain.EmbeddingResult{Embedding: []float32{1, 0}, TotalTokens: 2},
	}}
	ctx, usage := domain.NewContextWithUsage(context.Background())

	vecs, err := NewAdapter(inner).EmbedBatch(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 2 || inner.batchCalls != 1 || inner.embedCalls != 0 {
		t.Fatalf("expected one native batch call, got batch=%d single=%d", inner.batchCalls, inner.embedCalls)
	}
	if _, tokens, _ := usage.Snapshot(); tokens != 4 {
		t.Errorf("expected 4 tokens recorded, got %d", tokens)
	}
}

func TestAdapter_EmbedEmptyVector(t *testing.T) {
	inner := &mockProvider{embeds: true}
	_, err := NewAdapter(inner).Embed(context.Background(), "q")
	if !errors.Is(err, domain.ErrProviderError) {
		t.Fatalf("expected ErrProviderError, got %v", err)
	}
}

func TestAdapter_EmbedCachedNotCounted(t *testing.T) {
	inner := &mockProvider{embeds: true, embedRes: domain.EmbeddingResult{Embedding: []float32{1}, Cached: true}}
	ctx, usage := domain.NewContextWithUsage(context.Background())

	if _, err := NewAdapter(inner).Embed(ctx, "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls, _, _ := usage.Snapshot(); calls != 0 {
		t.Errorf("expected cached embedding not to count as a provider call, got %d", calls)
	}
}
