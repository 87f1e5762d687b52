// Command sift runs the question-answering HTTP service.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rahadian/sift"
	"github.com/rahadian/sift/ingest"
	"github.com/rahadian/sift/internal/config"
	"github.com/rahadian/sift/internal/server"
	"github.com/rahadian/sift/observer"
	"github.com/rahadian/sift/provider/openai"
	"github.com/rahadian/sift/store/chromemdb"
	"github.com/rahadian/sift/store/sqlite"
)

func main() {
	// 1. Environment + config
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("SIFT_CONFIG"))

	// 2. Logger
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	if cfg.Log.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Observability (optional)
	var inst *observer.Instruments
	if cfg.Observer.Enabled {
		pricing := make(map[string]observer.ModelPricing, len(cfg.Observer.Pricing))
		for model, p := range cfg.Observer.Pricing {
			pricing[model] = observer.ModelPricing{InputPerMillion: p.Input, OutputPerMillion: p.Output}
		}
		var shutdown func(context.Context) error
		var err error
		inst, shutdown, err = observer.Init(ctx, pricing)
		if err != nil {
			logger.Error("observer init failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(flushCtx)
		}()
	}

	if cfg.LLM.APIKey == "" {
		logger.Warn("no API credential configured; /qa requests will fail until one is set")
	}

	// 4. Per-request pipeline assembly. Providers and indexes are built
	// inside the request so a missing credential fails that request, not
	// the process, matching the lenient startup contract.
	build := newBuildFunc(cfg, logger, inst)

	// 5. HTTP server
	srv := server.New(server.Deps{
		Build:          build,
		Guard:          sift.NewInputGuard(sift.GuardLogger(logger)),
		Chunking:       ingest.ChunkConfig{Size: cfg.Chunking.Size, Overlap: cfg.Chunking.Overlap},
		Logger:         logger,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
	})

	logger.Info("sift starting",
		"addr", cfg.Server.Addr,
		"llm", cfg.LLM.Model,
		"embedding", cfg.Embedding.Model,
		"index", cfg.Index.Vector)

	if err := srv.Run(ctx, cfg.Server.Addr, time.Duration(cfg.Server.ShutdownTimeout)*time.Second); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// newBuildFunc returns the per-request pipeline constructor.
func newBuildFunc(cfg config.Config, logger *slog.Logger, inst *observer.Instruments) server.BuildFunc {
	retrievalOpts := []sift.RetrieverOption{
		sift.WithSemanticK(cfg.Retrieval.SemanticK),
		sift.WithSemanticPool(cfg.Retrieval.SemanticPool),
		sift.WithMinSimilarity(float32(cfg.Retrieval.MinSimilarity)),
		sift.WithKeywordK(cfg.Retrieval.KeywordK),
		sift.WithKeywordWeight(float32(cfg.Retrieval.KeywordWeight)),
	}

	return func(ctx context.Context, chunks []sift.Chunk) (sift.Answerer, func(), error) {
		chat, err := openai.NewChat(cfg.LLM.APIKey, cfg.LLM.Model,
			openai.WithChatBaseURL(cfg.LLM.BaseURL),
			openai.WithTemperature(float32(cfg.LLM.Temperature)),
			openai.WithChatLogger(logger))
		if err != nil {
			return nil, nil, err
		}

		embOpts := []openai.EmbeddingOption{
			openai.WithEmbeddingBaseURL(cfg.Embedding.BaseURL),
			openai.WithEmbeddingLogger(logger),
		}
		if cfg.Embedding.Dimensions > 0 && cfg.Embedding.Dimensions != openai.DefaultDimensions {
			embOpts = append(embOpts, openai.WithDimensions(cfg.Embedding.Dimensions))
		}
		embedding, err := openai.NewEmbedding(cfg.Embedding.APIKey, cfg.Embedding.Model, embOpts...)
		if err != nil {
			return nil, nil, err
		}

		var chatModel sift.ChatModel = chat
		var embProvider sift.EmbeddingProvider = embedding
		if inst != nil {
			chatModel = observer.WrapChat(chat, cfg.LLM.Model, inst)
			embProvider = observer.WrapEmbedding(embedding, cfg.Embedding.Model, inst)
		}

		// The sqlite store always backs the keyword leg; it carries the
		// vector leg too unless chromem is selected.
		store := sqlite.NewMemory(sqlite.WithLogger(logger))
		if err := store.Init(ctx); err != nil {
			return nil, nil, fmt.Errorf("init store: %w", err)
		}
		cleanup := func() {
			if err := store.Close(); err != nil {
				logger.Warn("close store", "error", err)
			}
		}

		var vector sift.VectorIndex = store
		if cfg.Index.Vector == "chromem" {
			ix, err := chromemdb.New(chromemdb.WithLogger(logger))
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("chromem index: %w", err)
			}
			vector = ix
		}

		gen, err := sift.BuildPipeline(ctx, chunks, sift.Deps{
			Chat:      chatModel,
			Embedding: embProvider,
			Vector:    vector,
			Lexical:   store.Keyword(),
			Logger:    logger,
			Retriever: retrievalOpts,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}

		var answerer sift.Answerer = gen
		if inst != nil {
			answerer = observer.WrapAnswerer(gen, inst)
		}
		return answerer, cleanup, nil
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		})
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(cfg.Level)}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
