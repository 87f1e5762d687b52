// Package ingest loads uploaded knowledge-base files into retrievable
// chunks. PDFs are extracted page by page and cut into overlapping windows
// by a cascading splitter; JSON files map structurally onto chunks with no
// splitting. The package is pure input processing: no I/O beyond reading
// the given file, no provider calls.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rahadian/sift"
)

// ErrUnsupportedType is returned for files that are neither .pdf nor
// .json. Extension checks happen before any file I/O.
var ErrUnsupportedType = errors.New("unsupported file type: must be .pdf or .json")

// Load reads the file at path and converts it into chunks. The extension
// picks the branch: .pdf extracts and splits with the given window
// geometry, .json maps structurally (cfg is ignored). An empty result with
// a nil error is a legitimate outcome for unrecognized JSON shapes.
func Load(path string, cfg ChunkConfig) ([]sift.Chunk, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return loadPDF(path, cfg)
	case ".json":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		return loadJSON(content)
	default:
		return nil, ErrUnsupportedType
	}
}

func loadPDF(path string, cfg ChunkConfig) ([]sift.Chunk, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	text, err := extractPDF(content)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}

	name := filepath.Base(path)
	windows := NewSplitter(cfg).Split(text)
	chunks := make([]sift.Chunk, 0, len(windows))
	for _, w := range windows {
		chunks = append(chunks, sift.Chunk{
			ID:      sift.NewID(),
			Content: w,
			Meta:    sift.ChunkMeta{SourceType: sift.SourcePDF, FileName: name},
		})
	}
	return chunks, nil
}
