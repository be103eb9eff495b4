package services

import (
	"context"

	"github.com/docuchat/server/models"
)

// Hand-rolled fakes for the collaborator interfaces. Each records what it
// was called with so tests can assert on the exact prompts and payloads.

type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

type fakeVision struct {
	text    string
	err     error
	prompts []string
	images  [][]byte
}

func (f *fakeVision) ReadImage(_ context.Context, prompt string, data []byte, _ string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.images = append(f.images, data)
	return f.text, f.err
}

type fakeSearcher struct {
	answer    string
	err       error
	questions []string
}

func (f *fakeSearcher) Search(_ context.Context, question string) (string, error) {
	f.questions = append(f.questions, question)
	return f.answer, f.err
}

type fakeFetcher struct {
	texts []string
	err   error
	urls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]string, error) {
	f.urls = append(f.urls, url)
	return f.texts, f.err
}

type fakePDFExtractor struct {
	pages []string
	err   error
	paths []string
}

func (f *fakePDFExtractor) ExtractPages(path string) ([]string, error) {
	f.paths = append(f.paths, path)
	return f.pages, f.err
}

type fakeIndex struct {
	answer    string
	err       error
	questions []string
}

func (f *fakeIndex) Query(_ context.Context, question string) (string, error) {
	f.questions = append(f.questions, question)
	return f.answer, f.err
}

// fakeBuilder hands out a fresh fakeIndex per build and records the full
// document sequence each build saw, so rebuild-from-everything is checkable.
type fakeBuilder struct {
	err        error
	answer     string
	builtDocs  []models.DocumentSequence
	sessionIDs []string
}

func (f *fakeBuilder) Build(_ context.Context, sessionID string, docs models.DocumentSequence) (RetrievalIndex, error) {
	copied := make(models.DocumentSequence, len(docs))
	copy(copied, docs)
	f.builtDocs = append(f.builtDocs, copied)
	f.sessionIDs = append(f.sessionIDs, sessionID)
	if f.err != nil {
		return nil, f.err
	}
	return &fakeIndex{answer: f.answer}, nil
}
