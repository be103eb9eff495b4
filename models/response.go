package models

// Every endpoint reports failure as data: HTTP 200 with Success=false and a
// descriptive Error string. There are no transport-level error codes, not
// even for unknown sessions.

type IngestResponse struct {
	Success     bool       `json:"success"`
	SessionID   string     `json:"session_id,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	ContentType SourceKind `json:"content_type,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// AddedContent describes what an add-context call appended to a session.
type AddedContent struct {
	Type    SourceKind     `json:"type"`
	Name    string         `json:"name"`
	Preview ContentPreview `json:"preview"`
}

type AddContextResponse struct {
	Success      bool          `json:"success"`
	Summary      string        `json:"summary,omitempty"`
	AddedContent *AddedContent `json:"added_content,omitempty"`
	Error        string        `json:"error,omitempty"`
}

type QueryResponse struct {
	Success  bool         `json:"success"`
	Answer   string       `json:"answer,omitempty"`
	Source   AnswerSource `json:"source,omitempty"`
	NotFound bool         `json:"not_found,omitempty"`
	Message  string       `json:"message,omitempty"`
	Error    string       `json:"error,omitempty"`
}

type WebSearchResponse struct {
	Success bool         `json:"success"`
	Answer  string       `json:"answer,omitempty"`
	Source  AnswerSource `json:"source,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type SummaryResponse struct {
	Success bool   `json:"success"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}
