package sift

import "context"

// VectorIndex is the semantic retrieval leg. Chunks are stored alongside
// their embeddings and searched by vector similarity. Search results are
// sorted by score descending; scores are cosine similarity, so higher
// means closer. Implementations live under store/.
type VectorIndex interface {
	// Add stores chunks with their embeddings. vectors[i] belongs to
	// chunks[i]; the two slices must have equal length.
	Add(ctx context.Context, chunks []Chunk, vectors [][]float32) error

	// Search returns the topK chunks nearest to the query vector.
	Search(ctx context.Context, vector []float32, topK int) ([]ScoredChunk, error)
}

// LexicalIndex is the keyword retrieval leg: full-text search with
// bm25-style ranking. Scores are non-negative; higher means more relevant.
// Exact-term recall from this leg complements the vector leg, which blurs
// rare identifiers like control numbers and product names.
type LexicalIndex interface {
	// Add indexes the chunks' content for full-text search.
	Add(ctx context.Context, chunks []Chunk) error

	// Search returns the topK best keyword matches for the query.
	Search(ctx context.Context, query string, topK int) ([]ScoredChunk, error)
}
