package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

// TextGenerator is the general completion capability: one prompt in, one
// answer out. Summaries, context-grounded answers, and the general-knowledge
// fallback all go through it.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// VisionReader extracts readable text from an image via a multimodal model.
type VisionReader interface {
	ReadImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error)
}

// WebSearcher answers a question using search-augmented completion. A quota
// or rate failure in the backend surfaces as ErrQuotaExhausted so callers
// can distinguish "exhausted" from "broken" without sniffing message text.
type WebSearcher interface {
	Search(ctx context.Context, question string) (string, error)
}

// GeminiService implements TextGenerator, VisionReader, and WebSearcher on
// top of a single Gemini client.
type GeminiService struct {
	client *genai.Client
}

// NewGeminiService wraps an already-constructed Gemini client.
func NewGeminiService(client *genai.Client) *GeminiService {
	return &GeminiService{client: client}
}

// Generate implements TextGenerator with a plain, tool-free completion.
func (g *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, geminiModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}
	return collectText(result)
}

// ReadImage implements VisionReader by sending the instruction and the raw
// image bytes in a single multimodal request.
func (g *GeminiService) ReadImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
		},
	}}
	result, err := g.client.Models.GenerateContent(ctx, geminiModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini vision call failed: %w", err)
	}
	return collectText(result)
}

// Search implements WebSearcher using the Gemini GoogleSearch tool.
func (g *GeminiService) Search(ctx context.Context, question string) (string, error) {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	prompt := fmt.Sprintf("Search the web for: %s. Provide a concise answer based on the search results.", question)
	result, err := g.client.Models.GenerateContent(ctx, geminiModel, genai.Text(prompt), config)
	if err != nil {
		if isQuotaError(err) {
			return "", fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
		}
		return "", fmt.Errorf("gemini search call failed: %w", err)
	}
	return collectText(result)
}

// isQuotaError classifies the backend failure text. The Gemini API reports
// exhaustion as HTTP 429 with RESOURCE_EXHAUSTED; other quota wording from
// the billing layer also counts. The sniffing is confined to this adapter
// so everything above it only ever sees ErrQuotaExhausted.
func isQuotaError(err error) bool {
	msg := err.Error()
	if strings.Contains(msg, "429") && strings.Contains(msg, "RESOURCE_EXHAUSTED") {
		return true
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "quota") || strings.Contains(lower, "limit")
}

// collectText concatenates the text parts of the first candidate.
func collectText(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p.Text != "" {
			sb.WriteString(p.Text)
		}
	}
	return sb.String(), nil
}
