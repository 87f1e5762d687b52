package sift

import (
	"context"
	"strings"
	"testing"
)

func TestBuildPipeline_IndexesChunks(t *testing.T) {
	vec := &mockVectorIndex{}
	lex := &mockLexicalIndex{}
	emb := &mockEmbedding{dims: 3}
	chunks := testChunks(4)

	gen, err := BuildPipeline(context.Background(), chunks, Deps{
		Chat:      &mockChat{},
		Embedding: emb,
		Vector:    vec,
		Lexical:   lex,
	})
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}
	if gen == nil {
		t.Fatal("nil generator")
	}

	// All chunks embedded in one batch call and added to both indexes.
	if len(emb.inputs) != 1 || len(emb.inputs[0]) != 4 {
		t.Errorf("embedding batches = %v, want one batch of 4", emb.inputs)
	}
	if len(vec.added) != 4 {
		t.Errorf("vector index got %d chunks, want 4", len(vec.added))
	}
	if len(vec.vectors) != 4 {
		t.Errorf("vector index got %d vectors, want 4", len(vec.vectors))
	}
	if len(lex.added) != 4 {
		t.Errorf("lexical index got %d chunks, want 4", len(lex.added))
	}
}

func TestBuildPipeline_EndToEnd(t *testing.T) {
	// Wires real stages over mock infrastructure and runs one question
	// through the full stack: expansion, hybrid retrieval, extraction,
	// answering.
	vec := &mockVectorIndex{results: []ScoredChunk{scored("c0", 0.9)}}
	lex := &mockLexicalIndex{results: []ScoredChunk{scored("c1", 3)}}
	llm := &mockChat{responses: []string{
		"variant question",          // expansion
		"relevant part of c0",       // extraction, chunk c0
		"NO_OUTPUT",                 // extraction, chunk c1
		"The answer from the docs.", // final answer
	}}

	gen, err := BuildPipeline(context.Background(), testChunks(2), Deps{
		Chat:      llm,
		Embedding: &mockEmbedding{dims: 3},
		Vector:    vec,
		Lexical:   lex,
	})
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}

	got := gen.Answer(context.Background(), "what do the docs say?")
	if got.Degraded() {
		t.Fatalf("unexpected degraded answer: %q", got.Text)
	}
	if got.Text != "The answer from the docs." {
		t.Errorf("Text = %q, want %q", got.Text, "The answer from the docs.")
	}

	// Final prompt carries only the extracted span, not the dropped chunk.
	final := llm.prompts[len(llm.prompts)-1]
	if !strings.Contains(final, "relevant part of c0") {
		t.Error("final prompt missing extracted context")
	}
	if strings.Contains(final, "content of c1") {
		t.Error("final prompt contains a chunk extraction dropped")
	}
}

func TestBuildPipeline_EmbedError(t *testing.T) {
	_, err := BuildPipeline(context.Background(), testChunks(2), Deps{
		Chat:      &mockChat{},
		Embedding: errEmbedding{},
		Vector:    &mockVectorIndex{},
		Lexical:   &mockLexicalIndex{},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "embed chunks") {
		t.Errorf("error = %q, want it to contain %q", err, "embed chunks")
	}
}

func TestBuildPipeline_IndexError(t *testing.T) {
	vec := &mockVectorIndex{err: context.DeadlineExceeded}
	_, err := BuildPipeline(context.Background(), testChunks(2), Deps{
		Chat:      &mockChat{},
		Embedding: &mockEmbedding{dims: 3},
		Vector:    vec,
		Lexical:   &mockLexicalIndex{},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "index vectors") {
		t.Errorf("error = %q, want it to contain %q", err, "index vectors")
	}
}
