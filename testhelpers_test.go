package sift

import (
	"context"
	"errors"
	"fmt"
)

// mockChat is a test ChatModel that returns canned completions in order and
// records every prompt it receives.
type mockChat struct {
	responses []string // popped in order
	idx       int
	prompts   []string
}

func (m *mockChat) Name() string { return "mock" }
func (m *mockChat) Complete(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	m.prompts = append(m.prompts, req.Prompt)
	if m.idx >= len(m.responses) {
		return CompletionResponse{Text: "exhausted"}, nil
	}
	resp := m.responses[m.idx]
	m.idx++
	return CompletionResponse{Text: resp}, nil
}

// errChat always fails.
type errChat struct{ err error }

func (e errChat) Name() string { return "err" }
func (e errChat) Complete(_ context.Context, _ CompletionRequest) (CompletionResponse, error) {
	if e.err != nil {
		return CompletionResponse{}, e.err
	}
	return CompletionResponse{}, errors.New("model broken")
}

// mockEmbedding maps each input to a fixed-dimension vector derived from its
// length, so distinct texts get distinct but deterministic embeddings.
type mockEmbedding struct {
	dims   int
	inputs [][]string
}

func (m *mockEmbedding) Name() string    { return "mock" }
func (m *mockEmbedding) Dimensions() int { return m.dims }
func (m *mockEmbedding) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.inputs = append(m.inputs, texts)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, m.dims)
		for d := range v {
			v[d] = float32(len(t)%7+d) / 10
		}
		out[i] = v
	}
	return out, nil
}

type errEmbedding struct{}

func (errEmbedding) Name() string    { return "err" }
func (errEmbedding) Dimensions() int { return 3 }
func (errEmbedding) Embed(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errors.New("embedding broken")
}

// mockVectorIndex returns canned search results and records what was added.
type mockVectorIndex struct {
	results []ScoredChunk
	err     error

	added     []Chunk
	vectors   [][]float32
	lastTopK  int
	lastQuery []float32
}

func (m *mockVectorIndex) Add(_ context.Context, chunks []Chunk, vectors [][]float32) error {
	m.added = append(m.added, chunks...)
	m.vectors = append(m.vectors, vectors...)
	return m.err
}

func (m *mockVectorIndex) Search(_ context.Context, query []float32, topK int) ([]ScoredChunk, error) {
	m.lastQuery = query
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	if topK < len(m.results) {
		return m.results[:topK], nil
	}
	return m.results, nil
}

// mockLexicalIndex returns canned keyword search results.
type mockLexicalIndex struct {
	results []ScoredChunk
	err     error

	added     []Chunk
	lastTopK  int
	lastQuery string
}

func (m *mockLexicalIndex) Add(_ context.Context, chunks []Chunk) error {
	m.added = append(m.added, chunks...)
	return m.err
}

func (m *mockLexicalIndex) Search(_ context.Context, query string, topK int) ([]ScoredChunk, error) {
	m.lastQuery = query
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	if topK < len(m.results) {
		return m.results[:topK], nil
	}
	return m.results, nil
}

// stubRetriever returns a fixed result set for every query and records the
// queries it saw.
type stubRetriever struct {
	results []ScoredChunk
	err     error
	queries []string
}

func (s *stubRetriever) Retrieve(_ context.Context, query string) ([]ScoredChunk, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

// perQueryRetriever returns a different result set per query string.
type perQueryRetriever struct {
	byQuery map[string][]ScoredChunk
	queries []string
}

func (p *perQueryRetriever) Retrieve(_ context.Context, query string) ([]ScoredChunk, error) {
	p.queries = append(p.queries, query)
	return p.byQuery[query], nil
}

func testChunk(id, content string) Chunk {
	return Chunk{ID: id, Content: content, Meta: ChunkMeta{SourceType: SourcePDF, FileName: "test.pdf"}}
}

func scored(id string, score float32) ScoredChunk {
	return ScoredChunk{Chunk: testChunk(id, "content of "+id), Score: score}
}

func testChunks(n int) []Chunk {
	out := make([]Chunk, n)
	for i := range out {
		out[i] = testChunk(fmt.Sprintf("c%d", i), fmt.Sprintf("chunk %d", i))
	}
	return out
}
