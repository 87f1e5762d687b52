package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rahadian/sift"
)

// loadJSON turns JSON content into chunks. Two shapes are recognized:
//
//   - a list of objects with question/answer keys: one chunk per object,
//     formatted "Question: {q}\nAnswer: {a}", tagged json_qa_pair
//   - an object with a questions key holding strings: one chunk per
//     string, content verbatim, tagged json_questions
//
// Anything else parses to zero chunks without error; the caller decides
// whether an empty knowledge base is a problem.
func loadJSON(content []byte) ([]sift.Chunk, error) {
	var data any
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	switch v := data.(type) {
	case []any:
		return qaPairChunks(v), nil
	case map[string]any:
		if qs, ok := v["questions"].([]any); ok {
			return questionChunks(qs), nil
		}
	}
	return nil, nil
}

// qaPairChunks converts a list of objects into Q/A chunks. A single
// non-object element disqualifies the whole list, matching the all-or-
// nothing shape check.
func qaPairChunks(items []any) []sift.Chunk {
	objs := make([]map[string]any, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil
		}
		objs = append(objs, obj)
	}

	chunks := make([]sift.Chunk, 0, len(objs))
	for _, obj := range objs {
		q := strings.TrimSpace(stringValue(obj["question"]))
		a := strings.TrimSpace(stringValue(obj["answer"]))
		chunks = append(chunks, sift.Chunk{
			ID:      sift.NewID(),
			Content: fmt.Sprintf("Question: %s\nAnswer: %s", q, a),
			Meta:    sift.ChunkMeta{SourceType: sift.SourceQAPair},
		})
	}
	return chunks
}

// questionChunks lifts each string out of a questions list. Non-string
// elements are skipped.
func questionChunks(items []any) []sift.Chunk {
	var chunks []sift.Chunk
	for _, item := range items {
		q, ok := item.(string)
		if !ok {
			continue
		}
		chunks = append(chunks, sift.Chunk{
			ID:      sift.NewID(),
			Content: q,
			Meta:    sift.ChunkMeta{SourceType: sift.SourceQuestions},
		})
	}
	return chunks
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
