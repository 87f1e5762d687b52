package sift

import "context"

// ChatModel is a chat-completion backend. Implementations live under
// provider/ and must be safe for concurrent use.
type ChatModel interface {
	// Complete sends one prompt and returns the model's reply.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// Name returns the provider name for logging and error reporting.
	Name() string
}

// EmbeddingProvider converts text into dense vectors for semantic search.
type EmbeddingProvider interface {
	// Embed returns one embedding per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimensionality.
	Dimensions() int

	// Name returns the provider name for logging and error reporting.
	Name() string
}
