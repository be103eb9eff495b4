package services

import (
	"context"
	"fmt"
	"log"

	"github.com/docuchat/server/models"
)

// IngestResult is what a successful first ingestion returns.
type IngestResult struct {
	SessionID   string
	Summary     string
	ContentType models.SourceKind
}

// AddContextResult is what a successful incremental ingestion returns: the
// summary of the combined sequence plus a preview of just the new content.
type AddContextResult struct {
	Summary string
	Preview models.ContentPreview
}

// RAGService is the application core behind the HTTP layer: ingestion,
// incremental context, the answer chain, and summary retrieval.
type RAGService interface {
	Ingest(ctx context.Context, kind models.SourceKind, value string) (*IngestResult, error)
	AddContext(ctx context.Context, sessionID string, kind models.SourceKind, value, label string) (*AddContextResult, error)
	Query(ctx context.Context, sessionID, question string) (models.AnswerResult, error)
	WebSearch(ctx context.Context, question string) models.AnswerResult
	Summary(sessionID string) (string, error)
}

// ragServiceImpl holds the collaborators the core needs to do its job.
type ragServiceImpl struct {
	store     *SessionStore
	loader    ContentLoader
	builder   IndexBuilder
	summaries *SummaryService
	fallback  *FallbackService
}

// NewRAGService creates the application core with its injected collaborators.
func NewRAGService(store *SessionStore, loader ContentLoader, builder IndexBuilder, summaries *SummaryService, fallback *FallbackService) RAGService {
	return &ragServiceImpl{
		store:     store,
		loader:    loader,
		builder:   builder,
		summaries: summaries,
		fallback:  fallback,
	}
}

// Ingest normalizes the content, mints a new session, and derives its index
// and summary.
func (r *ragServiceImpl) Ingest(ctx context.Context, kind models.SourceKind, value string) (*IngestResult, error) {
	docs, err := r.loader.Load(ctx, kind, value)
	if err != nil {
		return nil, err
	}

	session := r.store.Create()
	log.Printf("SERVICE: Ingesting %d documents of kind %q into new session %s", len(docs), kind, session.ID)

	session.mu.Lock()
	defer session.mu.Unlock()

	index, err := r.builder.Build(ctx, session.ID, docs)
	if err != nil {
		return nil, fmt.Errorf("could not build index for session %s: %w", session.ID, err)
	}

	session.documents = docs
	session.index = index
	session.summary = r.summaries.Summarize(ctx, docs, kind)

	return &IngestResult{
		SessionID:   session.ID,
		Summary:     session.summary,
		ContentType: kind,
	}, nil
}

// AddContext appends new content to an existing session and rebuilds the
// index and summary from the entire combined sequence. The session mutex is
// held across the whole append-then-rebuild cycle so concurrent additions
// to the same session serialize instead of racing.
func (r *ragServiceImpl) AddContext(ctx context.Context, sessionID string, kind models.SourceKind, value, label string) (*AddContextResult, error) {
	session, err := r.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	newDocs, err := r.loader.Load(ctx, kind, value)
	if err != nil {
		return nil, err
	}
	preview := r.summaries.Preview(newDocs, label)

	session.mu.Lock()
	defer session.mu.Unlock()

	combined := make(models.DocumentSequence, 0, len(session.documents)+len(newDocs))
	combined = append(combined, session.documents...)
	combined = append(combined, newDocs...)

	index, err := r.builder.Build(ctx, session.ID, combined)
	if err != nil {
		return nil, fmt.Errorf("could not rebuild index for session %s: %w", session.ID, err)
	}

	session.documents = combined
	session.index = index
	session.summary = r.summaries.Summarize(ctx, combined, models.KindMixed)

	log.Printf("SERVICE: Session %s now holds %d documents", session.ID, len(combined))
	return &AddContextResult{
		Summary: session.summary,
		Preview: preview,
	}, nil
}

// Query runs the full answer chain against the session's content.
func (r *ragServiceImpl) Query(ctx context.Context, sessionID, question string) (models.AnswerResult, error) {
	session, err := r.store.Get(sessionID)
	if err != nil {
		return models.AnswerResult{}, err
	}
	log.Printf("SERVICE: Querying session %s: %q", sessionID, question)
	return r.fallback.Answer(ctx, session.Index(), question), nil
}

// WebSearch is the session-free entry point: web search with knowledge
// fallback, no local retrieval stage.
func (r *ragServiceImpl) WebSearch(ctx context.Context, question string) models.AnswerResult {
	log.Printf("SERVICE: Web search: %q", question)
	return r.fallback.AnswerWeb(ctx, question)
}

// Summary returns the stored summary for a session.
func (r *ragServiceImpl) Summary(sessionID string) (string, error) {
	session, err := r.store.Get(sessionID)
	if err != nil {
		return "", err
	}
	return session.Summary(), nil
}
