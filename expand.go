package sift

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// synonymPrompt rewrites a question into domain-equivalent phrasings so the
// retriever catches terminology the document uses instead of the user's.
const synonymPrompt = `You are a compliance and cybersecurity subject-matter expert.
Rewrite the user's question into 3-5 semantically equivalent forms that might match
different phrasing in SOC 2, ISO 27001, or GRC documentation.

Expand terminology and include domain synonyms:
- "personal information" <-> "customer data" / "PII" / "user data"
- "third parties" <-> "vendors" / "subprocessors" / "external providers"
- "incident notification" <-> "security event disclosure" / "breach communication"
- "cloud provider" <-> "hosting provider" / "infrastructure provider"
- "data center location" <-> "hosting region" / "infrastructure region"

Return only the rewritten queries, one per line, with no explanation.

User question:
%s`

// MultiQueryRetriever widens recall by asking a ChatModel to rewrite the
// query into domain-equivalent phrasings, retrieving for every variant plus
// the original, and merging the result lists deduplicated by chunk ID.
type MultiQueryRetriever struct {
	base   Retriever
	llm    ChatModel
	logger *slog.Logger
}

var _ Retriever = (*MultiQueryRetriever)(nil)

// ExpandOption configures a MultiQueryRetriever.
type ExpandOption func(*MultiQueryRetriever)

// ExpandLogger sets the structured logger. Generated variants are logged at
// DEBUG level.
func ExpandLogger(l *slog.Logger) ExpandOption {
	return func(r *MultiQueryRetriever) { r.logger = l }
}

// NewMultiQueryRetriever wraps base with a query-expansion stage driven by
// llm.
func NewMultiQueryRetriever(base Retriever, llm ChatModel, opts ...ExpandOption) *MultiQueryRetriever {
	r := &MultiQueryRetriever{base: base, llm: llm}
	for _, o := range opts {
		o(r)
	}
	if r.logger == nil {
		r.logger = nopLogger
	}
	return r
}

// Retrieve expands the query, retrieves for each variant and the original,
// and merges results in first-seen order. An expansion or retrieval failure
// propagates; per-question degradation is the Generator's concern.
func (r *MultiQueryRetriever) Retrieve(ctx context.Context, query string) ([]ScoredChunk, error) {
	resp, err := r.llm.Complete(ctx, CompletionRequest{Prompt: fmt.Sprintf(synonymPrompt, query)})
	if err != nil {
		return nil, fmt.Errorf("expand query: %w", err)
	}

	queries := parseRewrites(resp.Text)
	r.logger.Debug("query expanded", "variants", len(queries))
	// The original query runs last so first-seen dedup prefers variant hits;
	// duplicates collapse either way.
	queries = append(queries, query)

	seen := make(map[string]bool)
	var merged []ScoredChunk
	for _, q := range queries {
		results, err := r.base.Retrieve(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("retrieve %q: %w", q, err)
		}
		for _, sc := range results {
			if seen[sc.ID] {
				continue
			}
			seen[sc.ID] = true
			merged = append(merged, sc)
		}
	}
	return merged, nil
}

// parseRewrites splits the model's reply into one query per non-blank line,
// stripping the list markers models add despite instructions.
func parseRewrites(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-* \t")
		line = stripNumberPrefix(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// stripNumberPrefix removes a leading "1." or "2)" style list marker.
func stripNumberPrefix(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) {
		return s
	}
	if s[i] == '.' || s[i] == ')' {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
