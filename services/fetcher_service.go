package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/tmc/langchaingo/documentloaders"
)

// WebFetcher fetches a web page and strips its markup down to text blocks.
type WebFetcher interface {
	Fetch(ctx context.Context, url string) ([]string, error)
}

// HTMLFetcher implements WebFetcher with a plain HTTP GET and the
// langchaingo HTML loader for markup stripping.
type HTMLFetcher struct {
	httpClient *http.Client
}

func NewHTMLFetcher(client *http.Client) *HTMLFetcher {
	return &HTMLFetcher{httpClient: client}
}

// Fetch downloads url and returns the text content of the page.
func (f *HTMLFetcher) Fetch(ctx context.Context, url string) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch request: %w", err)
	}

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch returned non-200 status: %d, body: %s", resp.StatusCode, string(body))
	}

	docs, err := documentloaders.NewHTML(resp.Body).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to strip page markup: %w", err)
	}

	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, doc.PageContent)
	}
	return texts, nil
}
