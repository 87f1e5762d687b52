package sift

import (
	"context"
	"fmt"
	"log/slog"
)

// Deps carries the capabilities needed to assemble an answering pipeline.
// Vector and Lexical are usually two views of one store (a sqlite Store and
// its Keyword view) but any pairing works. Logger is optional.
type Deps struct {
	Chat      ChatModel
	Embedding EmbeddingProvider
	Vector    VectorIndex
	Lexical   LexicalIndex
	Logger    *slog.Logger

	// Retriever options are passed through to the HybridRetriever.
	Retriever []RetrieverOption
}

// BuildPipeline embeds and indexes the chunks, then assembles the fixed
// retrieval stack: hybrid vector+keyword retrieval, query expansion,
// contextual extraction, and a Generator on top. Construction happens once
// per knowledge base; nothing is cached across calls, so the same document
// re-submitted rebuilds everything.
func BuildPipeline(ctx context.Context, chunks []Chunk, deps Deps) (*Generator, error) {
	log := deps.Logger
	if log == nil {
		log = nopLogger
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := deps.Embedding.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embed chunks: got %d embeddings for %d chunks", len(vectors), len(chunks))
	}

	if err := deps.Vector.Add(ctx, chunks, vectors); err != nil {
		return nil, fmt.Errorf("index vectors: %w", err)
	}
	if err := deps.Lexical.Add(ctx, chunks); err != nil {
		return nil, fmt.Errorf("index keywords: %w", err)
	}

	var retriever Retriever = NewHybridRetriever(deps.Vector, deps.Lexical, deps.Embedding, deps.Retriever...)
	retriever = NewMultiQueryRetriever(retriever, deps.Chat, ExpandLogger(log))
	retriever = NewExtractionRetriever(retriever, deps.Chat, ExtractLogger(log))

	log.Info("pipeline ready", "chunks", len(chunks), "embedding", deps.Embedding.Name(), "llm", deps.Chat.Name())
	return NewGenerator(retriever, deps.Chat, GeneratorLogger(log)), nil
}
