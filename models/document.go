package models

// SourceKind identifies how a piece of content entered the system.
type SourceKind string

const (
	KindPDF   SourceKind = "pdf"
	KindImage SourceKind = "image"
	KindURL   SourceKind = "url"
	KindText  SourceKind = "text"
	// KindMixed is never a valid ingestion kind; it only selects the
	// summary instruction once a session holds content from several sources.
	KindMixed SourceKind = "mixed"
)

// Document is one unit of normalized extracted text. Documents are treated
// as immutable once created by the loader.
type Document struct {
	Text   string     `json:"text"`
	Kind   SourceKind `json:"kind"`
	Source string     `json:"source,omitempty"`
}

// DocumentSequence is the ordered, append-only list of everything a session
// has ever ingested. It is never reordered or mutated in place.
type DocumentSequence []Document

// ContentPreview is a lightweight view of freshly added content, shown to
// the client alongside the combined summary.
type ContentPreview struct {
	Source         string `json:"source"`
	TextPreview    string `json:"text_preview"`
	CharacterCount int    `json:"character_count"`
	DocumentCount  int    `json:"document_count"`
}
