package models

// AnswerSource tags which stage of the fallback chain produced an answer.
type AnswerSource string

const (
	SourceDocument  AnswerSource = "document"
	SourceWebSearch AnswerSource = "google_search"
	SourceFallback  AnswerSource = "gemini_fallback"
)

// AnswerResult is the outcome of one pass through the answer chain. NotFound
// is only meaningful for SourceDocument answers: it marks a local answer
// that tripped the not-found heuristic. Message explains why a fallback
// source was used instead of the preceding one.
type AnswerResult struct {
	Answer   string       `json:"answer"`
	Source   AnswerSource `json:"source"`
	NotFound bool         `json:"not_found,omitempty"`
	Message  string       `json:"message,omitempty"`
}
