package models

// Wire shapes for the Ollama embeddings endpoint, the collaborator behind
// the session index builder.

type OllamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type OllamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}
