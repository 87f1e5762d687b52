package sift

// --- Domain types ---

// SourceType identifies the origin of a chunk's content.
type SourceType string

const (
	// SourcePDF marks chunks split from an uploaded PDF.
	SourcePDF SourceType = "pdf"
	// SourceQAPair marks chunks built from JSON question/answer objects.
	SourceQAPair SourceType = "json_qa_pair"
	// SourceQuestions marks chunks lifted from a JSON question list.
	SourceQuestions SourceType = "json_questions"
)

// ChunkMeta carries provenance for a chunk.
type ChunkMeta struct {
	SourceType SourceType `json:"source_type"`
	FileName   string     `json:"file_name,omitempty"`
}

// Chunk is the unit of retrievable text. Chunks are immutable once produced
// by the loader; stages that rewrite content (contextual extraction) work on
// copies, never on the indexed originals.
type Chunk struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	Meta    ChunkMeta `json:"meta"`
}

// ScoredChunk is a chunk with a relevance score. Score semantics depend on
// the producer: cosine similarity for the vector leg, bm25-derived rank for
// the lexical leg, fused rank score after merging. Within one list, higher
// is always more relevant.
type ScoredChunk struct {
	Chunk
	Score float32 `json:"score"`
}

// --- Answers ---

// AnswerKind distinguishes grounded answers from degraded fallbacks.
type AnswerKind int

const (
	// AnswerOK marks an answer generated by the model from retrieved context.
	AnswerOK AnswerKind = iota
	// AnswerDegraded marks an answer synthesized from a pipeline failure.
	AnswerDegraded
)

// Answer is the result of answering a single question. Text always holds
// the string an API client receives; for degraded answers it carries the
// error rendering while Kind and Reason make the failure inspectable
// without string parsing.
type Answer struct {
	Question string     `json:"question"`
	Text     string     `json:"answer"`
	Kind     AnswerKind `json:"-"`
	Reason   string     `json:"-"`
}

// Degraded reports whether the answer reflects a pipeline failure rather
// than model output.
func (a Answer) Degraded() bool { return a.Kind == AnswerDegraded }

// --- LLM protocol types ---

// CompletionRequest is a single-turn prompt for a ChatModel. System is
// optional; providers that have no separate system channel prepend it to
// the prompt.
type CompletionRequest struct {
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
}

// CompletionResponse is the model's reply plus token accounting.
type CompletionResponse struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

// Usage counts tokens consumed by one provider call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
