// Package sqlite implements sift's vector and keyword indexes on pure-Go
// SQLite. Zero CGO required. Embeddings are stored as JSON text with
// similarity computed in-process by brute-force cosine scan; keyword search
// uses an FTS5 table with bm25 ranking.
//
// A Store carries both index legs over one database. The vector leg is the
// Store itself; the lexical leg is the view returned by [Store.Keyword].
// Indexes here are request-scoped: build one with [NewMemory], feed it a
// document's chunks, answer questions, close it.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/rahadian/sift"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// StoreOption configures a SQLite Store.
type StoreOption func(*Store)

// WithLogger sets a structured logger for the store. When set, the store
// emits debug logs for every operation including timing and row counts.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// Store holds indexed chunks in a SQLite database and serves the vector
// leg of retrieval. All goroutines serialize through a single connection
// (SetMaxOpenConns(1)), which eliminates SQLITE_BUSY errors and, for
// in-memory databases, pins the one connection that owns the data.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ sift.VectorIndex = (*Store)(nil)

var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// New creates a Store at dbPath. Call Init before first use and Close when
// done.
func New(dbPath string, opts ...StoreOption) *Store {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		// sql.Open only fails when the driver is not registered; with the
		// blank import above that never happens.
		panic(fmt.Sprintf("sqlite: open driver: %v", err))
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, logger: nopLogger}
	for _, o := range opts {
		o(s)
	}
	s.logger.Debug("sqlite: store opened", "path", dbPath)
	return s
}

// NewMemory creates a private in-memory Store that vanishes on Close.
func NewMemory(opts ...StoreOption) *Store {
	return New(":memory:", opts...)
}

// Init creates the chunk table and the FTS5 index.
func (s *Store) Init(ctx context.Context) error {
	start := time.Now()
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			source_type TEXT NOT NULL,
			file_name TEXT,
			embedding TEXT
		)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(chunk_id UNINDEXED, content)`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	s.logger.Debug("sqlite: init completed", "duration", time.Since(start))
	return nil
}

// Close releases the database. For in-memory stores this discards all
// indexed chunks.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores chunks with their embeddings in one transaction. chunks and
// vectors must be the same length, pairwise aligned.
func (s *Store) Add(ctx context.Context, chunks []sift.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("add chunks: %d chunks but %d vectors", len(chunks), len(vectors))
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i, c := range chunks {
		var fileName *string
		if c.Meta.FileName != "" {
			fileName = &c.Meta.FileName
		}
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO chunks (id, content, source_type, file_name, embedding)
			 VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.Content, string(c.Meta.SourceType), fileName, serializeEmbedding(vectors[i]),
		)
		if err != nil {
			s.logger.Error("sqlite: insert chunk failed", "chunk_id", c.ID, "error", err)
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	s.logger.Debug("sqlite: chunks added", "count", len(chunks), "duration", time.Since(start))
	return nil
}

// Search scans every stored embedding and returns the topK chunks by
// cosine similarity, best first.
func (s *Store) Search(ctx context.Context, query []float32, topK int) ([]sift.ScoredChunk, error) {
	start := time.Now()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, source_type, file_name, embedding FROM chunks WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	var results []sift.ScoredChunk
	scanned := 0
	for rows.Next() {
		c, embJSON, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		scanned++
		stored, err := deserializeEmbedding(embJSON)
		if err != nil {
			continue
		}
		results = append(results, sift.ScoredChunk{Chunk: c, Score: cosineSimilarity(query, stored)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	s.logger.Debug("sqlite: vector search ok", "scanned", scanned, "returned", len(results), "duration", time.Since(start))
	return results, nil
}

func scanChunk(rows *sql.Rows) (sift.Chunk, string, error) {
	var c sift.Chunk
	var sourceType string
	var fileName sql.NullString
	var embJSON string
	if err := rows.Scan(&c.ID, &c.Content, &sourceType, &fileName, &embJSON); err != nil {
		return sift.Chunk{}, "", fmt.Errorf("scan chunk: %w", err)
	}
	c.Meta.SourceType = sift.SourceType(sourceType)
	if fileName.Valid {
		c.Meta.FileName = fileName.String
	}
	return c, embJSON, nil
}

// --- Keyword leg ---

// KeywordIndex is the lexical view of a Store, backed by the FTS5 table.
type KeywordIndex struct {
	s *Store
}

var _ sift.LexicalIndex = (*KeywordIndex)(nil)

// Keyword returns the store's lexical index. Both views share the one
// serialized connection.
func (s *Store) Keyword() *KeywordIndex {
	return &KeywordIndex{s: s}
}

// Add indexes chunk contents for keyword search. Safe to call for chunks
// already indexed; existing FTS rows are replaced.
func (k *KeywordIndex) Add(ctx context.Context, chunks []sift.Chunk) error {
	start := time.Now()

	tx, err := k.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, c := range chunks {
		if _, err := tx.ExecContext(ctx, `DELETE FROM chunks_fts WHERE chunk_id = ?`, c.ID); err != nil {
			return fmt.Errorf("clear chunk fts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO chunks_fts (chunk_id, content) VALUES (?, ?)`, c.ID, c.Content); err != nil {
			return fmt.Errorf("insert chunk fts: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	k.s.logger.Debug("sqlite: fts chunks added", "count", len(chunks), "duration", time.Since(start))
	return nil
}

// Search runs a bag-of-words FTS5 match and returns the topK chunks ranked
// by bm25. Queries are reduced to their word tokens before matching, so
// question punctuation never reaches FTS5 syntax.
func (k *KeywordIndex) Search(ctx context.Context, query string, topK int) ([]sift.ScoredChunk, error) {
	start := time.Now()

	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	rows, err := k.s.db.QueryContext(ctx,
		`SELECT c.id, c.content, c.source_type, c.file_name, f.rank
		 FROM chunks_fts f
		 JOIN chunks c ON c.id = f.chunk_id
		 WHERE chunks_fts MATCH ?
		 ORDER BY f.rank
		 LIMIT ?`,
		match, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	defer rows.Close()

	var results []sift.ScoredChunk
	for rows.Next() {
		var c sift.Chunk
		var sourceType string
		var fileName sql.NullString
		var rank float64
		if err := rows.Scan(&c.ID, &c.Content, &sourceType, &fileName, &rank); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		c.Meta.SourceType = sift.SourceType(sourceType)
		if fileName.Valid {
			c.Meta.FileName = fileName.String
		}
		// FTS5 rank is negative (closer to 0 = better). Use -rank as score.
		score := float32(-rank)
		if score < 0 {
			score = 0
		}
		results = append(results, sift.ScoredChunk{Chunk: c, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	k.s.logger.Debug("sqlite: keyword search ok", "returned", len(results), "duration", time.Since(start))
	return results, nil
}

// ftsQuery turns free text into an FTS5 OR-query over its word tokens:
// `vendor's SLA?` becomes `"vendor" OR "s" OR "SLA"`. Returns "" when the
// text contains no tokens.
func ftsQuery(text string) string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = `"` + tok + `"`
	}
	return strings.Join(quoted, " OR ")
}

// --- Vector math ---

// cosineSimilarity computes the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}

// serializeEmbedding converts []float32 to a JSON array string.
func serializeEmbedding(embedding []float32) string {
	data, _ := json.Marshal(embedding)
	return string(data)
}

// deserializeEmbedding parses a JSON array string back to []float32.
func deserializeEmbedding(s string) ([]float32, error) {
	var v []float32
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}
