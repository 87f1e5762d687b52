package ingest

import (
	"strings"
	"unicode/utf8"
)

// Default window geometry for the splitter.
const (
	DefaultChunkSize    = 2500
	DefaultChunkOverlap = 400
)

// ChunkConfig controls the splitter's window geometry. Zero values mean
// defaults, so callers can pass ChunkConfig{} and get 2500/400.
type ChunkConfig struct {
	Size    int
	Overlap int
}

func (c ChunkConfig) withDefaults() ChunkConfig {
	if c.Size <= 0 {
		c.Size = DefaultChunkSize
	}
	if c.Overlap <= 0 {
		c.Overlap = DefaultChunkOverlap
	}
	if c.Overlap >= c.Size {
		c.Overlap = c.Size / 2
	}
	return c
}

// separators is the split cascade, coarse to fine: paragraph break, line
// break, sentence-ending period, whitespace. Text that still exceeds the
// window after the last level gets a hard character cut.
var separators = []string{"\n\n", "\n", ".", " "}

// Splitter cuts text into overlapping windows along the separator cascade.
// Splitting is pure string work: the same input always yields the same
// windows in the same order.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a Splitter with the given geometry.
func NewSplitter(cfg ChunkConfig) *Splitter {
	cfg = cfg.withDefaults()
	return &Splitter{size: cfg.Size, overlap: cfg.Overlap}
}

// Split cuts text into windows of at most the configured size, carrying an
// overlap suffix from each window into the next. Windows are trimmed and
// never empty.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= s.size {
		return []string{text}
	}
	return s.merge(splitCascade(text, s.size, 0))
}

// splitCascade returns pieces each at most size bytes. Oversized pieces
// recurse to the next separator level; past the last level the piece is cut
// at size on rune boundaries.
func splitCascade(text string, size, level int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}
	if level >= len(separators) {
		return hardCut(text, size)
	}
	var pieces []string
	for _, piece := range splitKeep(text, separators[level]) {
		if len(piece) <= size {
			pieces = append(pieces, piece)
		} else {
			pieces = append(pieces, splitCascade(piece, size, level+1)...)
		}
	}
	return pieces
}

// splitKeep splits on sep keeping the separator attached to the end of each
// piece, so concatenating the pieces reproduces the input exactly.
func splitKeep(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hardCut(text string, size int) []string {
	var out []string
	for len(text) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = size
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// merge packs pieces into windows. When a window fills, its tail is carried
// into the next window as overlap, unless that would oversize the window.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var current strings.Builder

	for _, p := range pieces {
		if current.Len() > 0 && current.Len()+len(p) > s.size {
			if c := strings.TrimSpace(current.String()); c != "" {
				chunks = append(chunks, c)
			}
			tail := overlapTail(current.String(), s.overlap)
			current.Reset()
			if tail != "" && len(tail)+1+len(p) <= s.size {
				current.WriteString(tail)
				current.WriteByte('\n')
			}
		}
		current.WriteString(p)
	}

	if c := strings.TrimSpace(current.String()); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}

// overlapTail returns at most n trailing bytes of text, snapped to a rune
// boundary and then to the first word boundary inside the window.
func overlapTail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(text) <= n {
		return strings.TrimSpace(text)
	}
	cut := len(text) - n
	for cut < len(text) && !utf8.RuneStart(text[cut]) {
		cut++
	}
	suffix := text[cut:]
	if idx := strings.IndexByte(suffix, ' '); idx >= 0 {
		suffix = suffix[idx+1:]
	}
	return strings.TrimSpace(suffix)
}
