// Command sift-eval posts a knowledge base and a questions file to a running
// sift server and pretty-prints the JSON response.
//
// Usage:
//
//	sift-eval -doc soc2-type2.pdf -questions questions.json
//	sift-eval -url http://qa.internal:8000/qa -doc handbook.json -questions q.json
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetPrefix("")

	url := flag.String("url", "http://127.0.0.1:8000/qa", "sift /qa endpoint")
	doc := flag.String("doc", "", "knowledge base file (.pdf or .json)")
	questions := flag.String("questions", "", "questions file (.json)")
	timeout := flag.Duration("timeout", 5*time.Minute, "request timeout")
	flag.Parse()

	if *doc == "" || *questions == "" {
		flag.Usage()
		os.Exit(2)
	}

	body, contentType, err := buildForm(*doc, *questions)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}

	client := &http.Client{Timeout: *timeout}
	resp, err := client.Post(*url, contentType, body)
	if err != nil {
		log.Fatalf("post %s: %v", *url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("read response: %v", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		// Not JSON; print as-is.
		fmt.Println(string(raw))
	} else {
		fmt.Println(pretty.String())
	}

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("server returned %s", resp.Status)
	}
}

// buildForm assembles the multipart body with the document and questions
// parts, named the way the /qa endpoint expects.
func buildForm(docPath, questionsPath string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := addFile(w, "document", docPath); err != nil {
		return nil, "", err
	}
	if err := addFile(w, "questions", questionsPath); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func addFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}
