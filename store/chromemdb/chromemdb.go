// Package chromemdb implements sift's vector index on chromem-go, an
// embedded pure-Go vector database. It is an alternative to the sqlite
// store's brute-force scan with the same request-scoped lifecycle; pick it
// with the index.vector config key.
//
// Embeddings are computed upstream by the pipeline and attached to the
// documents directly, so chromem's own embedding functions are never
// invoked.
package chromemdb

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	chromem "github.com/philippgille/chromem-go"

	"github.com/rahadian/sift"
)

const collectionName = "chunks"

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithLogger sets a structured logger for the index.
func WithLogger(l *slog.Logger) IndexOption {
	return func(ix *Index) { ix.logger = l }
}

// Index holds chunks in an in-memory chromem collection.
type Index struct {
	collection *chromem.Collection
	logger     *slog.Logger
}

var _ sift.VectorIndex = (*Index)(nil)

var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// New creates an empty in-memory Index.
func New(opts ...IndexOption) (*Index, error) {
	db := chromem.NewDB()
	coll, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	ix := &Index{collection: coll, logger: nopLogger}
	for _, o := range opts {
		o(ix)
	}
	return ix, nil
}

// Add stores chunks with their embeddings. chunks and vectors must be the
// same length, pairwise aligned.
func (ix *Index) Add(ctx context.Context, chunks []sift.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("add chunks: %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		meta := map[string]string{"source_type": string(c.Meta.SourceType)}
		if c.Meta.FileName != "" {
			meta["file_name"] = c.Meta.FileName
		}
		docs[i] = chromem.Document{
			ID:        c.ID,
			Content:   c.Content,
			Metadata:  meta,
			Embedding: vectors[i],
		}
	}
	if err := ix.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	ix.logger.Debug("chromem: chunks added", "count", len(chunks))
	return nil
}

// Search returns the topK chunks by cosine similarity, best first. chromem
// rejects result counts above the collection size, so topK is clamped.
func (ix *Index) Search(ctx context.Context, query []float32, topK int) ([]sift.ScoredChunk, error) {
	count := ix.collection.Count()
	if count == 0 || topK <= 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := ix.collection.QueryEmbedding(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	scored := make([]sift.ScoredChunk, 0, len(results))
	for _, r := range results {
		c := sift.Chunk{
			ID:      r.ID,
			Content: r.Content,
			Meta: sift.ChunkMeta{
				SourceType: sift.SourceType(r.Metadata["source_type"]),
				FileName:   r.Metadata["file_name"],
			},
		}
		scored = append(scored, sift.ScoredChunk{Chunk: c, Score: r.Similarity})
	}
	ix.logger.Debug("chromem: vector search ok", "returned", len(scored))
	return scored, nil
}
