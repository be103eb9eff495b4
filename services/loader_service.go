package services

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"

	"github.com/docuchat/server/models"
)

// imageExtractionPrompt is the fixed instruction sent to the vision model.
const imageExtractionPrompt = "Extract all readable text from this image."

// ContentLoader normalizes heterogeneous inputs into a uniform document
// sequence. The value argument depends on the kind: a file path for pdf and
// image, a URL for url, and the literal content for text.
type ContentLoader interface {
	Load(ctx context.Context, kind models.SourceKind, value string) (models.DocumentSequence, error)
}

// LoaderService dispatches normalization to the per-kind extractors.
type LoaderService struct {
	pdf     PDFExtractor
	vision  VisionReader
	fetcher WebFetcher
}

func NewLoaderService(pdf PDFExtractor, vision VisionReader, fetcher WebFetcher) *LoaderService {
	return &LoaderService{
		pdf:     pdf,
		vision:  vision,
		fetcher: fetcher,
	}
}

// Load implements ContentLoader. Unknown kinds fail with ErrUnsupportedKind;
// a failing extractor surfaces as an ExtractionError. An empty sequence is
// never produced implicitly: every supported kind yields at least one
// document, even if its text is empty.
func (l *LoaderService) Load(ctx context.Context, kind models.SourceKind, value string) (models.DocumentSequence, error) {
	switch kind {
	case models.KindPDF:
		return l.loadPDF(value)
	case models.KindImage:
		return l.loadImage(ctx, value)
	case models.KindURL:
		return l.loadURL(ctx, value)
	case models.KindText:
		return models.DocumentSequence{{Text: value, Kind: models.KindText, Source: "user_input"}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
}

func (l *LoaderService) loadPDF(path string) (models.DocumentSequence, error) {
	pages, err := l.pdf.ExtractPages(path)
	if err != nil {
		return nil, &ExtractionError{Kind: models.KindPDF, Err: err}
	}
	docs := make(models.DocumentSequence, 0, len(pages))
	for _, page := range pages {
		docs = append(docs, models.Document{Text: page, Kind: models.KindPDF, Source: filepath.Base(path)})
	}
	log.Printf("LOADER: Extracted %d pages from %s", len(docs), filepath.Base(path))
	return docs, nil
}

func (l *LoaderService) loadImage(ctx context.Context, path string) (models.DocumentSequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{Kind: models.KindImage, Err: err}
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "image/png"
	}

	// An image with no readable text is valid content, not an error.
	text, err := l.vision.ReadImage(ctx, imageExtractionPrompt, data, mimeType)
	if err != nil {
		return nil, &ExtractionError{Kind: models.KindImage, Err: err}
	}
	return models.DocumentSequence{{Text: text, Kind: models.KindImage, Source: filepath.Base(path)}}, nil
}

func (l *LoaderService) loadURL(ctx context.Context, url string) (models.DocumentSequence, error) {
	texts, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, &ExtractionError{Kind: models.KindURL, Err: err}
	}
	if len(texts) == 0 {
		// A page that strips down to nothing still yields one document.
		texts = []string{""}
	}
	docs := make(models.DocumentSequence, 0, len(texts))
	for _, text := range texts {
		docs = append(docs, models.Document{Text: text, Kind: models.KindURL, Source: url})
	}
	return docs, nil
}
