package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/docuchat/server/models"
)

const (
	// Content shorter than this is returned verbatim: summarizing it would
	// cost a model call and produce something longer than the input.
	shortContentThreshold = 100

	// Only the head of the combined text is submitted for summarization.
	summaryInputLimit = 2000

	// Previews are truncated to this many characters.
	previewLimit = 300
)

// summaryPrompts selects the instruction by the kind of content ingested.
// KindMixed is used once a session holds content from more than one source.
var summaryPrompts = map[models.SourceKind]string{
	models.KindImage: "Provide a brief 2-3 sentence summary of the text extracted from this image:",
	models.KindPDF:   "Provide a brief 2-3 sentence summary of this PDF document:",
	models.KindURL:   "Provide a brief 2-3 sentence summary of this webpage content:",
	models.KindMixed: "Provide a brief 2-3 sentence summary of this combined content from multiple sources:",
}

const defaultSummaryPrompt = "Provide a brief 2-3 sentence summary of this text:"

// SummaryService produces session summaries and content previews.
type SummaryService struct {
	llm TextGenerator
}

func NewSummaryService(llm TextGenerator) *SummaryService {
	return &SummaryService{llm: llm}
}

// Summarize returns a short synopsis of the document sequence. A failing
// model degrades to a diagnostic string: summarization must never abort the
// ingestion that triggered it.
func (s *SummaryService) Summarize(ctx context.Context, docs models.DocumentSequence, kind models.SourceKind) string {
	combined := combineTexts(docs)
	trimmed := strings.TrimSpace(combined)
	if utf8.RuneCountInString(trimmed) < shortContentThreshold {
		return trimmed
	}

	prompt, ok := summaryPrompts[kind]
	if !ok {
		prompt = defaultSummaryPrompt
	}

	// Limits count characters, not bytes: slicing the string directly
	// would split a multibyte rune.
	head := combined
	if runes := []rune(head); len(runes) > summaryInputLimit {
		head = string(runes[:summaryInputLimit])
	}

	summary, err := s.llm.Generate(ctx, fmt.Sprintf("%s\n\n%s...", prompt, head))
	if err != nil {
		log.Printf("SUMMARY: Degrading to diagnostic, model call failed: %v", err)
		return fmt.Sprintf("Could not generate summary: %v", err)
	}
	return summary
}

// Preview builds a truncated view of the documents. It is pure and never
// fails: empty input yields an empty preview with zero counts.
func (s *SummaryService) Preview(docs models.DocumentSequence, sourceLabel string) models.ContentPreview {
	trimmed := strings.TrimSpace(combineTexts(docs))

	previewText := trimmed
	runes := []rune(trimmed)
	if len(runes) > previewLimit {
		previewText = string(runes[:previewLimit]) + "..."
	}

	return models.ContentPreview{
		Source:         sourceLabel,
		TextPreview:    previewText,
		CharacterCount: len(runes),
		DocumentCount:  len(docs),
	}
}

// combineTexts joins document texts with blank-line separators.
func combineTexts(docs models.DocumentSequence) string {
	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(doc.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
