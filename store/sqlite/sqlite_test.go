package sqlite

import (
	"context"
	"testing"

	"github.com/rahadian/sift"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := NewMemory()
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func chunk(id, content string) sift.Chunk {
	return sift.Chunk{
		ID:      id,
		Content: content,
		Meta:    sift.ChunkMeta{SourceType: sift.SourcePDF, FileName: "kb.pdf"},
	}
}

func TestAddAndVectorSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	chunks := []sift.Chunk{
		chunk("a", "data residency in Frankfurt"),
		chunk("b", "encryption keys rotate yearly"),
		chunk("c", "vendor onboarding checklist"),
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	if err := s.Add(ctx, chunks, vectors); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, err := s.Search(ctx, []float32{0.9, 0.1, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "a" {
		t.Errorf("got[0].ID = %q, want %q", got[0].ID, "a")
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("scores not descending: %v, %v", got[0].Score, got[1].Score)
	}
	if got[0].Meta.SourceType != sift.SourcePDF || got[0].Meta.FileName != "kb.pdf" {
		t.Errorf("metadata lost: %+v", got[0].Meta)
	}
}

func TestAddLengthMismatch(t *testing.T) {
	s := testStore(t)
	err := s.Add(context.Background(), []sift.Chunk{chunk("a", "x")}, nil)
	if err == nil {
		t.Fatal("expected error for chunk/vector length mismatch")
	}
}

func TestVectorSearchEmptyStore(t *testing.T) {
	s := testStore(t)
	got, err := s.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestAddReplacesExisting(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	c := []sift.Chunk{chunk("a", "first version")}
	v := [][]float32{{1, 0}}
	if err := s.Add(ctx, c, v); err != nil {
		t.Fatal(err)
	}
	c[0].Content = "second version"
	if err := s.Add(ctx, c, v); err != nil {
		t.Fatal(err)
	}

	got, err := s.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (replace, not duplicate)", len(got))
	}
	if got[0].Content != "second version" {
		t.Errorf("Content = %q, want %q", got[0].Content, "second version")
	}
}

func TestKeywordSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	chunks := []sift.Chunk{
		chunk("a", "The subprocessor list is reviewed quarterly."),
		chunk("b", "Backups are encrypted with AES-256."),
		chunk("c", "Employees complete annual security training."),
	}
	if err := s.Keyword().Add(ctx, chunks); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	// Keyword rows join against the chunks table, so store the chunks too.
	if err := s.Add(ctx, chunks, [][]float32{{1}, {2}, {3}}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Keyword().Search(ctx, "subprocessor review", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected at least one keyword match")
	}
	if got[0].ID != "a" {
		t.Errorf("got[0].ID = %q, want %q", got[0].ID, "a")
	}
	for i, sc := range got {
		if sc.Score < 0 {
			t.Errorf("got[%d].Score = %v, want >= 0", i, sc.Score)
		}
	}
}

func TestKeywordSearchPunctuatedQuery(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	chunks := []sift.Chunk{chunk("a", "The vendor SLA guarantees uptime.")}
	if err := s.Keyword().Add(ctx, chunks); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, chunks, [][]float32{{1}}); err != nil {
		t.Fatal(err)
	}

	// Apostrophes and question marks must not produce FTS5 syntax errors.
	got, err := s.Keyword().Search(ctx, `What is the vendor's "SLA"?`, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) == 0 {
		t.Error("expected a match despite punctuation")
	}
}

func TestKeywordSearchNoTokens(t *testing.T) {
	s := testStore(t)
	got, err := s.Keyword().Search(context.Background(), "?!...", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0 for token-free query", len(got))
	}
}

func TestKeywordSearchNoMatch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	chunks := []sift.Chunk{chunk("a", "encryption at rest")}
	if err := s.Keyword().Add(ctx, chunks); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, chunks, [][]float32{{1}}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Keyword().Search(ctx, "zebra", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestKeywordAddReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	chunks := []sift.Chunk{chunk("a", "original text about audits")}
	if err := s.Add(ctx, chunks, [][]float32{{1}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Keyword().Add(ctx, chunks); err != nil {
		t.Fatal(err)
	}
	if err := s.Keyword().Add(ctx, chunks); err != nil {
		t.Fatal(err)
	}

	got, err := s.Keyword().Search(ctx, "audits", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1 (re-add must not duplicate)", len(got))
	}
}

func TestFTSQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain words", `"plain" OR "words"`},
		{"vendor's SLA?", `"vendor" OR "s" OR "SLA"`},
		{"AND OR NOT", `"AND" OR "OR" OR "NOT"`},
		{"...", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ftsQuery(tt.in); got != tt.want {
			t.Errorf("ftsQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"dimension mismatch", []float32{1, 2}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("cosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}
