// Package openai implements sift's chat and embedding providers on the
// OpenAI REST API. Requests go straight through net/http; the base URL is
// configurable, so any endpoint speaking the OpenAI wire format works
// (Azure OpenAI, vLLM, LM Studio, proxies).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/rahadian/sift"
)

const (
	// DefaultBaseURL is the hosted OpenAI API base.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultChatModel is used when no chat model is configured.
	DefaultChatModel = "gpt-4o-mini"

	// DefaultEmbeddingModel is used when no embedding model is configured.
	DefaultEmbeddingModel = "text-embedding-3-large"

	// DefaultDimensions is the native dimensionality of the default
	// embedding model.
	DefaultDimensions = 3072
)

const providerName = "openai"

var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// postJSON marshals body and POSTs it to url with bearer auth.
func postJSON(ctx context.Context, client *http.Client, apiKey, url string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &sift.ErrLLM{Provider: providerName, Message: fmt.Sprintf("marshal request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &sift.ErrLLM{Provider: providerName, Message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &sift.ErrLLM{Provider: providerName, Message: fmt.Sprintf("send request: %v", err)}
	}
	return resp, nil
}

// httpErr drains the response body into an ErrHTTP.
func httpErr(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return &sift.ErrHTTP{Status: resp.StatusCode, Body: string(body)}
}
