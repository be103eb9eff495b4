package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/docuchat/server/models"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
)

// localAnswerPrompt grounds the model strictly in the retrieved chunks. The
// phrasing it is told to use for unanswerable questions is what the
// not-found heuristic in fallback_service.go matches against.
const localAnswerPrompt = `You are answering a question using only the context below. Do not use outside knowledge.
If the answer is not present in the context, reply exactly that the provided text does not contain that information.

Context:
%s

Question: %s`

// RetrievalIndex is the opaque semantic index owned by one session. It
// answers natural-language questions against that session's content.
type RetrievalIndex interface {
	Query(ctx context.Context, question string) (string, error)
}

// IndexBuilder builds a queryable index over a full document sequence.
// Rebuilds are always total: the index is a function of the entire current
// sequence, never an incremental patch of a previous one.
type IndexBuilder interface {
	Build(ctx context.Context, sessionID string, docs models.DocumentSequence) (RetrievalIndex, error)
}

// ChromaIndexBuilder implements IndexBuilder over a ChromaDB collection per
// session, with Ollama embeddings and Gemini for grounded answer synthesis.
type ChromaIndexBuilder struct {
	client   chromago.Client
	embedder Embedder
	llm      TextGenerator
}

func NewChromaIndexBuilder(client chromago.Client, embedder Embedder, llm TextGenerator) *ChromaIndexBuilder {
	return &ChromaIndexBuilder{
		client:   client,
		embedder: embedder,
		llm:      llm,
	}
}

// Build drops any previous collection for the session and re-embeds the
// whole sequence into a fresh one.
func (b *ChromaIndexBuilder) Build(ctx context.Context, sessionID string, docs models.DocumentSequence) (RetrievalIndex, error) {
	name := "session-" + sessionID

	// Stale collections from a previous build of this session are dropped
	// first; a missing collection is not an error.
	if err := b.client.DeleteCollection(ctx, name); err != nil {
		log.Printf("INDEX: No previous collection %s to drop: %v", name, err)
	}

	collection, err := b.client.GetOrCreateCollection(
		ctx,
		name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("session_id", sessionID),
				chromago.NewStringAttribute("created_by", "index_builder"),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection for session %s: %w", sessionID, err)
	}

	splitter := textsplitter.NewRecursiveCharacter(textsplitter.WithChunkSize(1000), textsplitter.WithChunkOverlap(100))

	total := 0
	for docNum, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			continue
		}
		chunks, err := splitter.SplitText(doc.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to split document %d: %w", docNum, err)
		}

		for i, chunk := range chunks {
			embeddingVector, err := b.embedder.Embed(ctx, chunk)
			if err != nil {
				return nil, fmt.Errorf("could not embed chunk %d of document %d: %w", i, docNum, err)
			}
			embedding := embeddings.NewEmbeddingFromFloat32(embeddingVector)
			metadata := chromago.NewDocumentMetadata(
				chromago.NewStringAttribute("kind", string(doc.Kind)),
				chromago.NewStringAttribute("source", doc.Source),
				chromago.NewIntAttribute("chunk_num", int64(i)),
			)
			docID := chromago.DocumentID(fmt.Sprintf("%s-chunk%d", uuid.New().String(), i))
			err = collection.Add(ctx,
				chromago.WithIDs(docID),
				chromago.WithTexts(chunk),
				chromago.WithEmbeddings(embedding),
				chromago.WithMetadatas(metadata),
			)
			if err != nil {
				return nil, fmt.Errorf("failed to add chunk to collection %s: %w", name, err)
			}
			total++
		}
	}
	log.Printf("INDEX: Built collection %s with %d chunks from %d documents", name, total, len(docs))

	return &chromaIndex{
		collection: collection,
		embedder:   b.embedder,
		llm:        b.llm,
	}, nil
}

// chromaIndex is the queryable side of a built session collection.
type chromaIndex struct {
	collection chromago.Collection
	embedder   Embedder
	llm        TextGenerator
}

// Query embeds the question, retrieves the closest chunks, and asks the
// model to answer strictly from them.
func (idx *chromaIndex) Query(ctx context.Context, question string) (string, error) {
	queryEmbedding, err := idx.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to embed query text: %w", err)
	}
	embedding := embeddings.NewEmbeddingFromFloat32(queryEmbedding)

	results, err := idx.collection.Query(
		ctx,
		chromago.WithQueryEmbeddings(embedding),
		chromago.WithNResults(4),
	)
	if err != nil {
		return "", fmt.Errorf("failed to query collection: %w", err)
	}

	var contextText strings.Builder
	documentGroups := results.GetDocumentsGroups()
	if len(documentGroups) > 0 {
		for _, doc := range documentGroups[0] {
			if doc.ContentString() != "" {
				contextText.WriteString(doc.ContentString())
				contextText.WriteString("\n\n")
			}
		}
	}

	prompt := fmt.Sprintf(localAnswerPrompt, contextText.String(), question)
	answer, err := idx.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("could not generate grounded answer: %w", err)
	}
	return answer, nil
}
