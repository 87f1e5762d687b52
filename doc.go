// Package sift answers questions about uploaded documents using hybrid
// retrieval-augmented generation.
//
// A knowledge base (PDF or JSON) is split into chunks, indexed twice
// (dense vectors for semantic search, full-text for keyword search), and
// queried through a pipeline of composable retrieval stages: hybrid fusion
// of both legs, LLM-driven query expansion, and contextual extraction of
// only the relevant spans. A Generator then asks a chat model to answer
// strictly from the retrieved context.
//
// # Core Interfaces
//
// The root package defines the contracts that all components implement:
//
//   - [ChatModel] — single-turn chat completion
//   - [EmbeddingProvider] — text-to-vector embedding
//   - [VectorIndex] — semantic retrieval leg
//   - [LexicalIndex] — keyword retrieval leg
//   - [Retriever] — ranked chunk retrieval; pipeline stages wrap Retrievers
//   - [Answerer] — one question in, one Answer out
//
// # Quick Start
//
//	chunks, _ := ingest.Load("policy.pdf", ingest.ChunkConfig{})
//	chat, _ := openai.NewChat(apiKey, "gpt-4o-mini")
//	emb, _ := openai.NewEmbedding(apiKey, "text-embedding-3-large")
//
//	store := sqlite.NewMemory()
//	_ = store.Init(ctx)
//	defer store.Close()
//
//	gen, _ := sift.BuildPipeline(ctx, chunks, sift.Deps{
//		Chat:      chat,
//		Embedding: emb,
//		Vector:    store,
//		Lexical:   store.Keyword(),
//	})
//	answer := gen.Answer(ctx, "Who are the subprocessors?")
//
// Every stage is swappable: any VectorIndex, LexicalIndex, or provider
// implementation can be substituted without touching pipeline logic, and
// there is no package-level mutable state anywhere.
package sift
