package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rahadian/sift"
	"github.com/rahadian/sift/ingest"
)

type answerItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type qaResponse struct {
	Answers []answerItem `json:"answers"`
}

func errDetail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

// handleQA answers a batch of questions against an uploaded knowledge
// base. Validation failures return 400 with a detail string; anything
// unexpected returns 500. Degraded per-question answers still ride in the
// 200 response as answer text.
func (s *Server) handleQA(c *gin.Context) {
	start := time.Now()
	log := s.logger.With("request_id", sift.NewID())

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	docHeader, docErr := c.FormFile("document")
	qHeader, qErr := c.FormFile("questions")
	if docErr != nil || qErr != nil {
		if isTooLarge(docErr) || isTooLarge(qErr) {
			errDetail(c, http.StatusRequestEntityTooLarge, "Uploaded files exceed the size limit.")
			return
		}
		errDetail(c, http.StatusBadRequest, "Both document and questions files are required.")
		return
	}

	docExt := strings.ToLower(filepath.Ext(docHeader.Filename))
	if docExt != ".pdf" && docExt != ".json" {
		errDetail(c, http.StatusBadRequest, "Knowledge base must be a .pdf or .json file.")
		return
	}
	if strings.ToLower(filepath.Ext(qHeader.Filename)) != ".json" {
		errDetail(c, http.StatusBadRequest, "Questions file must be a .json file.")
		return
	}

	docPath, err := saveTemp(docHeader, docExt)
	if err != nil {
		s.internalError(c, log, err)
		return
	}
	defer os.Remove(docPath)

	qPath, err := saveTemp(qHeader, ".json")
	if err != nil {
		s.internalError(c, log, err)
		return
	}
	defer os.Remove(qPath)

	chunks, err := ingest.Load(docPath, s.chunking)
	if err != nil {
		s.internalError(c, log, err)
		return
	}
	if len(chunks) == 0 {
		errDetail(c, http.StatusBadRequest, "No documents could be loaded from the knowledge base.")
		return
	}
	for _, ch := range chunks {
		s.guard.Check("document", ch.Content)
	}
	log.Info("knowledge base loaded", "file", docHeader.Filename, "chunks", len(chunks))

	answerer, cleanup, err := s.build(c.Request.Context(), chunks)
	if err != nil {
		s.internalError(c, log, err)
		return
	}
	defer cleanup()

	questions, err := readQuestions(qPath)
	if err != nil {
		errDetail(c, http.StatusBadRequest, "Invalid questions.json: must contain a 'questions' list.")
		return
	}

	answers := make([]answerItem, 0, len(questions))
	for _, q := range questions {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		s.guard.Check("question", q)

		qStart := time.Now()
		ans := answerer.Answer(c.Request.Context(), q)
		log.Info("question answered",
			"degraded", ans.Degraded(),
			"duration_ms", time.Since(qStart).Milliseconds())

		answers = append(answers, answerItem{Question: ans.Question, Answer: ans.Text})
	}

	log.Info("qa request complete",
		"chunks", len(chunks),
		"answers", len(answers),
		"duration_ms", time.Since(start).Milliseconds())
	c.JSON(http.StatusOK, qaResponse{Answers: answers})
}

// isTooLarge detects the MaxBytesReader limit. The multipart reader may
// wrap the error in a way that defeats errors.As, so the stable message is
// checked as well.
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "request body too large")
}

func (s *Server) internalError(c *gin.Context, log *slog.Logger, err error) {
	log.Error("qa request failed", "error", err)
	errDetail(c, http.StatusInternalServerError, "Internal Server Error: "+err.Error())
}

// saveTemp copies an upload to a temp file, keeping the extension so the
// loader can dispatch on it. Callers remove the file when done.
func saveTemp(fh *multipart.FileHeader, ext string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "sift-upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return dst.Name(), nil
}

// readQuestions parses the questions upload. The file must be a JSON
// object whose questions key holds an array of strings; anything else is
// a schema error, including wrong element types.
func readQuestions(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if payload.Questions == nil {
		return nil, errors.New("missing questions list")
	}
	return payload.Questions, nil
}
