package sift

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// extractPrompt asks the model to pull question-relevant parts out of a
// chunk verbatim, or report that nothing applies.
const extractPrompt = `Given the following question and context, extract any part of the context AS IS that is relevant to answer the question. If none of the context is relevant return NO_OUTPUT.

Remember, DO NOT edit the extracted parts of the context.

Question: %s

Context:
%s

Extracted relevant parts:`

// noOutput is the sentinel the extraction prompt instructs the model to
// return for irrelevant chunks.
const noOutput = "NO_OUTPUT"

// ExtractionRetriever is the contextual compression stage: each retrieved
// chunk's content is replaced by the spans the model judged relevant to the
// question, and chunks with nothing relevant are dropped entirely. This
// shrinks the context handed to the answering model and removes
// distractors.
type ExtractionRetriever struct {
	base   Retriever
	llm    ChatModel
	logger *slog.Logger
}

var _ Retriever = (*ExtractionRetriever)(nil)

// ExtractOption configures an ExtractionRetriever.
type ExtractOption func(*ExtractionRetriever)

// ExtractLogger sets the structured logger. Kept/dropped counts are logged
// at DEBUG level.
func ExtractLogger(l *slog.Logger) ExtractOption {
	return func(r *ExtractionRetriever) { r.logger = l }
}

// NewExtractionRetriever wraps base with a compression stage driven by llm.
func NewExtractionRetriever(base Retriever, llm ChatModel, opts ...ExtractOption) *ExtractionRetriever {
	r := &ExtractionRetriever{base: base, llm: llm}
	for _, o := range opts {
		o(r)
	}
	if r.logger == nil {
		r.logger = nopLogger
	}
	return r
}

// Retrieve compresses the base retriever's results one chunk at a time.
// Calls are sequential; there is no batching across chunks.
func (r *ExtractionRetriever) Retrieve(ctx context.Context, query string) ([]ScoredChunk, error) {
	results, err := r.base.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	var kept []ScoredChunk
	for _, sc := range results {
		resp, err := r.llm.Complete(ctx, CompletionRequest{
			Prompt: fmt.Sprintf(extractPrompt, query, sc.Content),
		})
		if err != nil {
			return nil, fmt.Errorf("extract from chunk %s: %w", sc.ID, err)
		}
		text := strings.TrimSpace(resp.Text)
		if text == "" || strings.EqualFold(text, noOutput) {
			continue
		}
		// ScoredChunk embeds Chunk by value, so this rewrites a copy and
		// leaves the indexed chunk untouched.
		sc.Content = text
		kept = append(kept, sc)
	}
	r.logger.Debug("context extracted", "retrieved", len(results), "kept", len(kept))
	return kept, nil
}
