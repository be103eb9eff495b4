package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/docuchat/server/models"
)

// notFoundPhrases is the fixed table of hedging phrases that mark a local
// answer as "the content did not cover this". Substring matching on the
// lowercased answer is a deliberate, known-approximate heuristic: it can
// false-positive on legitimate answers containing a listed phrase and
// false-negative on evasive answers that avoid all of them.
var notFoundPhrases = []string{
	"does not provide",
	"does not give",
	"does not contain",
	"does not mention",
	"not found in",
	"no information",
	"cannot find",
	"doesn't provide",
	"doesn't give",
	"doesn't contain",
	"doesn't mention",
	"cannot be answered",
	"not available",
	"not provided",
	"from the given",
	"given context",
	"given text",
	"provided text",
	"available in the",
	"insufficient information",
}

// IsAnswerNotFound classifies a local answer against the phrase table.
func IsAnswerNotFound(answer string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range notFoundPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// FallbackService runs the answer chain: local retrieval, then web search,
// then the model's general knowledge. Each stage makes at most one billed
// collaborator call and nothing is retried internally; a caller who wants
// another attempt re-invokes explicitly.
type FallbackService struct {
	searcher WebSearcher
	llm      TextGenerator
}

func NewFallbackService(searcher WebSearcher, llm TextGenerator) *FallbackService {
	return &FallbackService{
		searcher: searcher,
		llm:      llm,
	}
}

// Answer runs the full chain. With a nil index it starts directly at the
// web-search stage. It never returns an error: every collaborator failure
// degrades into a tagged fallback answer. NotFound is set only when the
// local stage answered but tripped the heuristic, not when it errored.
func (f *FallbackService) Answer(ctx context.Context, index RetrievalIndex, question string) models.AnswerResult {
	if index != nil {
		local, err := f.AnswerLocal(ctx, index, question)
		switch {
		case err != nil:
			log.Printf("FALLBACK: Local query failed, escalating to web search: %v", err)
		case !local.NotFound:
			return local
		default:
			log.Printf("FALLBACK: Answer not found in content, escalating to web search")
			result := f.AnswerWeb(ctx, question)
			result.NotFound = true
			return result
		}
	}
	return f.AnswerWeb(ctx, question)
}

// AnswerLocal queries only the session's index and tags whether the answer
// tripped the not-found heuristic. Callers use the flag to decide on an
// explicit web-search re-invocation.
func (f *FallbackService) AnswerLocal(ctx context.Context, index RetrievalIndex, question string) (models.AnswerResult, error) {
	answer, err := index.Query(ctx, question)
	if err != nil {
		return models.AnswerResult{}, fmt.Errorf("local query failed: %w", err)
	}
	return models.AnswerResult{
		Answer:   answer,
		Source:   models.SourceDocument,
		NotFound: IsAnswerNotFound(answer),
	}, nil
}

// AnswerWeb is the web-search entry point: search-augmented completion
// first, the bare model as fallback on quota exhaustion or any other
// search failure.
func (f *FallbackService) AnswerWeb(ctx context.Context, question string) models.AnswerResult {
	answer, err := f.searcher.Search(ctx, question)
	if err == nil {
		return models.AnswerResult{Answer: answer, Source: models.SourceWebSearch}
	}

	var message string
	if errors.Is(err, ErrQuotaExhausted) {
		log.Printf("FALLBACK: Search quota exceeded, using general knowledge: %v", err)
		message = "Google Search quota exceeded. Used Gemini's general knowledge."
	} else {
		log.Printf("FALLBACK: Search failed, using general knowledge: %v", err)
		message = "Google search error. Used Gemini's general knowledge."
	}

	return f.answerFromKnowledge(ctx, question, message)
}

// answerFromKnowledge asks the bare model, with no search augmentation.
func (f *FallbackService) answerFromKnowledge(ctx context.Context, question, message string) models.AnswerResult {
	answer, err := f.llm.Generate(ctx, question)
	if err != nil {
		// Last stage of the chain: the failure itself becomes the answer
		// text rather than an error crossing this boundary.
		answer = fmt.Sprintf("Gemini search failed: %v", err)
	}
	return models.AnswerResult{
		Answer:  answer,
		Source:  models.SourceFallback,
		Message: message,
	}
}
