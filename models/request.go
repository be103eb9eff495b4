package models

// IngestRequest covers the JSON body of both /upload and /add-context.
// Exactly one of URL or Text should be set; file uploads arrive as
// multipart form data instead and never through this struct.
type IngestRequest struct {
	SessionID string `json:"session_id,omitempty"`
	URL       string `json:"url,omitempty"`
	Text      string `json:"text,omitempty"`
}

type QueryRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type WebSearchRequest struct {
	Question string `json:"question"`
}
