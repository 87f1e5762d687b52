package sift

import (
	"context"
	"fmt"
	"sort"
)

// Retriever returns chunks relevant to a query, ranked best first.
// Pipeline stages (query expansion, contextual extraction) are themselves
// Retrievers wrapping a base Retriever, so the pipeline is a composition of
// retrieval transformers and any stage can be swapped or removed without
// touching the others.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]ScoredChunk, error)
}

// RetrieverOption configures a HybridRetriever.
type RetrieverOption func(*retrieverConfig)

type retrieverConfig struct {
	semanticK     int
	semanticPool  int
	minSimilarity float32
	keywordK      int
	keywordWeight float32
}

// WithSemanticK sets how many vector-leg candidates survive into the fusion
// step. Default is 25.
func WithSemanticK(k int) RetrieverOption {
	return func(c *retrieverConfig) { c.semanticK = k }
}

// WithSemanticPool sets the size of the vector-leg candidate pool fetched
// before threshold filtering and trimming. Default is 80.
func WithSemanticPool(n int) RetrieverOption {
	return func(c *retrieverConfig) { c.semanticPool = n }
}

// WithMinSimilarity sets the cosine-similarity floor for the vector leg.
// Candidates scoring below it are dropped before fusion. Default is 0.1.
func WithMinSimilarity(s float32) RetrieverOption {
	return func(c *retrieverConfig) { c.minSimilarity = s }
}

// WithKeywordK sets how many lexical-leg results enter the fusion step.
// Default is 4.
func WithKeywordK(k int) RetrieverOption {
	return func(c *retrieverConfig) { c.keywordK = k }
}

// WithKeywordWeight sets the relative weight of the lexical leg in the RRF
// merge. Must be in [0, 1]; the vector leg gets the remainder. Default is
// 0.4, a small bias toward semantic matching.
func WithKeywordWeight(w float32) RetrieverOption {
	return func(c *retrieverConfig) { c.keywordWeight = w }
}

// --- Reciprocal Rank Fusion ---

const rrfK = 60

// reciprocalRankFusion merges vector and keyword results using weighted
// Reciprocal Rank Fusion. keywordWeight is in [0,1]; vectorWeight =
// 1 - keywordWeight. A chunk appearing in both lists accumulates both
// contributions, which boosts agreement between the legs. Returns the
// merged list deduplicated by chunk ID, sorted by fused score descending.
func reciprocalRankFusion(vector, keyword []ScoredChunk, keywordWeight float32) []ScoredChunk {
	vectorWeight := 1 - keywordWeight

	type entry struct {
		chunk Chunk
		score float32
	}
	merged := make(map[string]*entry)
	var order []string

	for rank, sc := range vector {
		e, ok := merged[sc.ID]
		if !ok {
			e = &entry{chunk: sc.Chunk}
			merged[sc.ID] = e
			order = append(order, sc.ID)
		}
		e.score += vectorWeight * (1.0 / float32(rrfK+rank+1))
	}
	for rank, sc := range keyword {
		e, ok := merged[sc.ID]
		if !ok {
			e = &entry{chunk: sc.Chunk}
			merged[sc.ID] = e
			order = append(order, sc.ID)
		}
		e.score += keywordWeight * (1.0 / float32(rrfK+rank+1))
	}

	results := make([]ScoredChunk, 0, len(merged))
	for _, id := range order {
		e := merged[id]
		results = append(results, ScoredChunk{Chunk: e.chunk, Score: e.score})
	}

	// Stable sort keeps first-seen order for equal scores, so output is
	// deterministic for identical inputs.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// --- HybridRetriever ---

// HybridRetriever combines the semantic and lexical legs into one Retrieve
// call. Both legs run independently for a query: the vector leg draws a
// candidate pool, drops candidates under the similarity floor, and trims to
// its leg size; the lexical leg returns its top keyword matches. The two
// ranked lists merge by weighted Reciprocal Rank Fusion.
type HybridRetriever struct {
	vec VectorIndex
	lex LexicalIndex
	emb EmbeddingProvider
	cfg retrieverConfig
}

var _ Retriever = (*HybridRetriever)(nil)

// NewHybridRetriever creates a Retriever over the given indexes. The query
// is embedded once per Retrieve call with emb.
func NewHybridRetriever(vec VectorIndex, lex LexicalIndex, emb EmbeddingProvider, opts ...RetrieverOption) *HybridRetriever {
	cfg := retrieverConfig{
		semanticK:     25,
		semanticPool:  80,
		minSimilarity: 0.1,
		keywordK:      4,
		keywordWeight: 0.4,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &HybridRetriever{vec: vec, lex: lex, emb: emb, cfg: cfg}
}

// Retrieve runs both legs and merges their rankings.
func (h *HybridRetriever) Retrieve(ctx context.Context, query string) ([]ScoredChunk, error) {
	embs, err := h.emb.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embs) == 0 {
		return nil, fmt.Errorf("embed query: no embedding returned")
	}

	semantic, err := h.vec.Search(ctx, embs[0], h.cfg.semanticPool)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	semantic = h.trimSemantic(semantic)

	keyword, err := h.lex.Search(ctx, query, h.cfg.keywordK)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	return reciprocalRankFusion(semantic, keyword, h.cfg.keywordWeight), nil
}

// trimSemantic applies the similarity floor to the candidate pool and trims
// it to the configured leg size.
func (h *HybridRetriever) trimSemantic(results []ScoredChunk) []ScoredChunk {
	filtered := results[:0]
	for _, r := range results {
		if r.Score >= h.cfg.minSimilarity {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) > h.cfg.semanticK {
		filtered = filtered[:h.cfg.semanticK]
	}
	return filtered
}
