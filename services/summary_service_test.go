package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/docuchat/server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textDocs(texts ...string) models.DocumentSequence {
	docs := make(models.DocumentSequence, 0, len(texts))
	for _, text := range texts {
		docs = append(docs, models.Document{Text: text, Kind: models.KindText})
	}
	return docs
}

func TestSummarize_ShortContentReturnedVerbatim(t *testing.T) {
	llm := &fakeGenerator{response: "should not be used"}
	svc := NewSummaryService(llm)

	summary := svc.Summarize(context.Background(), textDocs("  A short note.  "), models.KindText)

	assert.Equal(t, "A short note.", summary)
	assert.Empty(t, llm.prompts, "content below the threshold must not cost a model call")
}

func TestSummarize_KindSelectsInstruction(t *testing.T) {
	long := strings.Repeat("lorem ipsum dolor sit amet ", 20)

	cases := []struct {
		kind models.SourceKind
		want string
	}{
		{models.KindImage, "extracted from this image"},
		{models.KindPDF, "this PDF document"},
		{models.KindURL, "this webpage content"},
		{models.KindMixed, "combined content from multiple sources"},
		{models.KindText, "summary of this text"},
	}
	for _, tc := range cases {
		llm := &fakeGenerator{response: "a summary"}
		svc := NewSummaryService(llm)

		summary := svc.Summarize(context.Background(), textDocs(long), tc.kind)

		assert.Equal(t, "a summary", summary)
		require.Len(t, llm.prompts, 1, "kind %s", tc.kind)
		assert.Contains(t, llm.prompts[0], tc.want, "kind %s", tc.kind)
	}
}

func TestSummarize_SubmitsOnlyTheHead(t *testing.T) {
	llm := &fakeGenerator{response: "a summary"}
	svc := NewSummaryService(llm)

	svc.Summarize(context.Background(), textDocs(strings.Repeat("x", 5000)), models.KindText)

	require.Len(t, llm.prompts, 1)
	assert.LessOrEqual(t, len(llm.prompts[0]), summaryInputLimit+len(defaultSummaryPrompt)+10)
}

func TestSummarize_CollaboratorFailureDegrades(t *testing.T) {
	llm := &fakeGenerator{err: errors.New("backend unavailable")}
	svc := NewSummaryService(llm)

	summary := svc.Summarize(context.Background(), textDocs(strings.Repeat("content ", 50)), models.KindText)

	assert.Contains(t, summary, "Could not generate summary")
	assert.Contains(t, summary, "backend unavailable")
}

func TestPreview_Truncation(t *testing.T) {
	svc := NewSummaryService(&fakeGenerator{})

	long := strings.Repeat("a", 450)
	preview := svc.Preview(textDocs(long), "Text content")

	assert.Equal(t, "Text content", preview.Source)
	assert.Equal(t, long[:previewLimit]+"...", preview.TextPreview)
	assert.Equal(t, 450, preview.CharacterCount)
	assert.Equal(t, 1, preview.DocumentCount)
}

func TestPreview_MultibyteTruncationStaysValid(t *testing.T) {
	svc := NewSummaryService(&fakeGenerator{})

	long := "a" + strings.Repeat("é", 400)
	preview := svc.Preview(textDocs(long), "Text content")

	assert.True(t, utf8.ValidString(preview.TextPreview), "truncation must not split a rune")
	assert.Equal(t, string([]rune(long)[:previewLimit])+"...", preview.TextPreview)
	assert.Equal(t, 401, preview.CharacterCount, "counts are characters, not bytes")
}

func TestSummarize_MultibyteThresholdAndHeadCountCharacters(t *testing.T) {
	// 99 two-byte characters stay under the 100-character threshold.
	llm := &fakeGenerator{response: "should not be used"}
	svc := NewSummaryService(llm)
	short := strings.Repeat("é", 99)
	assert.Equal(t, short, svc.Summarize(context.Background(), textDocs(short), models.KindText))
	assert.Empty(t, llm.prompts)

	llm = &fakeGenerator{response: "a summary"}
	svc = NewSummaryService(llm)
	svc.Summarize(context.Background(), textDocs(strings.Repeat("é", 5000)), models.KindText)
	require.Len(t, llm.prompts, 1)
	assert.True(t, utf8.ValidString(llm.prompts[0]))
	assert.LessOrEqual(t, utf8.RuneCountInString(llm.prompts[0]), summaryInputLimit+utf8.RuneCountInString(defaultSummaryPrompt)+10)
}

func TestPreview_ExactBoundaryHasNoEllipsis(t *testing.T) {
	svc := NewSummaryService(&fakeGenerator{})

	exact := strings.Repeat("b", previewLimit)
	preview := svc.Preview(textDocs(exact), "Text content")

	assert.Equal(t, exact, preview.TextPreview)
	assert.Equal(t, previewLimit, preview.CharacterCount)
}

func TestPreview_EmptyInput(t *testing.T) {
	svc := NewSummaryService(&fakeGenerator{})

	preview := svc.Preview(nil, "empty")

	assert.Equal(t, "empty", preview.Source)
	assert.Empty(t, preview.TextPreview)
	assert.Zero(t, preview.CharacterCount)
	assert.Zero(t, preview.DocumentCount)
}

func TestPreview_Deterministic(t *testing.T) {
	svc := NewSummaryService(&fakeGenerator{})
	docs := textDocs("first document", "second document")

	first := svc.Preview(docs, "label")
	second := svc.Preview(docs, "label")

	assert.Equal(t, first, second)
}

func TestPreview_CountsAllDocuments(t *testing.T) {
	svc := NewSummaryService(&fakeGenerator{})

	preview := svc.Preview(textDocs("one", "two", "three"), "label")

	assert.Equal(t, 3, preview.DocumentCount)
	// Characters counted on the untruncated, trimmed concatenation.
	assert.Equal(t, len("one\n\ntwo\n\nthree"), preview.CharacterCount)
}
